package pdfannot

import (
	"bytes"
	"fmt"
	"math"
)

// bezierKappa is the cubic-Bezier control-point offset (as a fraction of
// the radius) that best approximates a quarter circle: 4/3 * (sqrt(2) - 1).
const bezierKappa = 0.5523

// squigglyWaveLength and squigglyAmplitude produce a wavy baseline: a
// chain of cubic Beziers with wave length 4 and amplitude 1.5.
const (
	squigglyWaveLength = 4.0
	squigglyAmplitude  = 1.5
)

var (
	colorOlive    = Color{R: 0.5, G: 0.5, B: 0}
	colorFoldDark = Color{R: 0.35, G: 0.35, B: 0}
	colorDarkGrey = Color{R: 0.3, G: 0.3, B: 0.3}
	colorSigBlue  = Color{R: 0.2, G: 0.3, B: 0.6}
	colorSigGrey  = Color{R: 0.5, G: 0.5, B: 0.5}
)

func rg(w *bytes.Buffer, op string, c Color) {
	c = c.clamped()
	fmt.Fprintf(w, "%s %s %s %s\n", formatFloat(c.R), formatFloat(c.G), formatFloat(c.B), op)
}

func fillRect(w *bytes.Buffer, x0, y0, x1, y1 float64) {
	fmt.Fprintf(w, "%s %s %s %s re\nf\n", formatFloat(x0), formatFloat(y0), formatFloat(x1-x0), formatFloat(y1-y0))
}

func strokeRectPath(w *bytes.Buffer, x0, y0, x1, y1 float64) {
	fmt.Fprintf(w, "%s %s %s %s re\n", formatFloat(x0), formatFloat(y0), formatFloat(x1-x0), formatFloat(y1-y0))
}

// generateAppearance synthesizes the annotation's content stream (to be
// wrapped in a form-XObject by the chunk builder) along with the local
// extent the BBox should cover. Drawing happens in the annotation's own
// coordinate system: origin (0,0) at the rect's lower-left.
func generateAppearance(a Annotation) (content []byte, width, height float64) {
	rect := a.Base.Rect.Normalize()
	width, height = rect.Width(), rect.Height()

	var buf bytes.Buffer

	switch a.Kind {
	case KindHighlight:
		c := colorOrDefault(a.Base.Color, ColorYellow)
		buf.WriteString("q\n")
		rg(&buf, "rg", c)
		fillRect(&buf, 0, 0, width, height)
		buf.WriteString("Q\n")

	case KindUnderline:
		c := colorOrDefault(a.Base.Color, ColorRed)
		buf.WriteString("q\n1 w\n")
		rg(&buf, "RG", c)
		fmt.Fprintf(&buf, "0 0.5 m\n%s 0.5 l\nS\nQ\n", formatFloat(width))

	case KindStrikeOut:
		c := colorOrDefault(a.Base.Color, ColorRed)
		mid := height / 2
		buf.WriteString("q\n1 w\n")
		rg(&buf, "RG", c)
		fmt.Fprintf(&buf, "0 %s m\n%s %s l\nS\nQ\n", formatFloat(mid), formatFloat(width), formatFloat(mid))

	case KindSquiggly:
		c := colorOrDefault(a.Base.Color, ColorRed)
		buf.WriteString("q\n0.5 w\n")
		rg(&buf, "RG", c)
		writeSquigglyPath(&buf, width)
		buf.WriteString("S\nQ\n")

	case KindInk:
		c := colorOrDefault(a.Base.Color, ColorBlack)
		buf.WriteString("q\n1 J\n1 j\n")
		fmt.Fprintf(&buf, "%s w\n", formatFloat(a.LineWidth))
		rg(&buf, "RG", c)
		for _, path := range a.InkList {
			for i, p := range path {
				lx, ly := p.X-rect.X0, p.Y-rect.Y0
				if i == 0 {
					fmt.Fprintf(&buf, "%s %s m\n", formatFloat(lx), formatFloat(ly))
				} else {
					fmt.Fprintf(&buf, "%s %s l\n", formatFloat(lx), formatFloat(ly))
				}
			}
		}
		buf.WriteString("S\nQ\n")

	case KindFreeText:
		c := colorOrDefault(a.Base.Color, ColorBlack)
		buf.WriteString("q\n1 1 1 rg\n")
		fillRect(&buf, 0, 0, width, height)
		buf.WriteString("Q\nq\n0 0 0 RG\n0.5 w\n")
		strokeRectPath(&buf, 0, 0, width, height)
		buf.WriteString("S\nQ\n")
		y := height - a.FontSize - 2
		buf.WriteString("BT\n")
		fmt.Fprintf(&buf, "/Helv %s Tf\n", formatFloat(a.FontSize))
		rg(&buf, "rg", c)
		fmt.Fprintf(&buf, "2 %s Td\n(%s) Tj\n", formatFloat(y), escapeAnnotString(a.Text))
		buf.WriteString("ET\n")

	case KindSquare, KindCircle:
		inset := a.LineWidth / 2
		x0, y0, x1, y1 := inset, inset, width-inset, height-inset
		buf.WriteString("q\n")
		fmt.Fprintf(&buf, "%s w\n", formatFloat(a.LineWidth))
		rg(&buf, "RG", colorOrDefault(a.Base.Color, ColorBlack))
		if a.InteriorColor != nil {
			rg(&buf, "rg", *a.InteriorColor)
		}
		if a.Kind == KindCircle {
			writeEllipsePath(&buf, x0, y0, x1, y1)
		} else {
			strokeRectPath(&buf, x0, y0, x1, y1)
		}
		if a.InteriorColor != nil {
			buf.WriteString("B\n")
		} else {
			buf.WriteString("S\n")
		}
		buf.WriteString("Q\n")

	case KindLine:
		c := colorOrDefault(a.Base.Color, ColorBlack)
		sx, sy := a.Start.X-rect.X0, a.Start.Y-rect.Y0
		ex, ey := a.End.X-rect.X0, a.End.Y-rect.Y0
		buf.WriteString("q\n1 J\n1 j\n")
		fmt.Fprintf(&buf, "%s w\n", formatFloat(a.LineWidth))
		rg(&buf, "RG", c)
		fmt.Fprintf(&buf, "%s %s m\n%s %s l\nS\nQ\n", formatFloat(sx), formatFloat(sy), formatFloat(ex), formatFloat(ey))

	case KindText:
		buf.WriteString("q\n")
		rg(&buf, "rg", ColorYellow)
		fillRect(&buf, 0, 0, 24, 24)
		buf.WriteString("0.5 w\n")
		rg(&buf, "RG", colorOlive)
		strokeRectPath(&buf, 0, 0, 24, 24)
		buf.WriteString("S\n")
		rg(&buf, "rg", colorFoldDark)
		buf.WriteString("19 24 m\n24 24 l\n24 19 l\nh\nf\nQ\n")
		width, height = 24, 24

	case KindTextField:
		buf.WriteString("q\n1 1 1 rg\n")
		fillRect(&buf, 0, 0, width, height)
		buf.WriteString("Q\nq\n1 w\n")
		rg(&buf, "RG", colorDarkGrey)
		strokeRectPath(&buf, 0.5, 0.5, width-0.5, height-0.5)
		buf.WriteString("S\nQ\n")
		if a.Value != nil {
			y := math.Max(height-12, 2)
			buf.WriteString("BT\n/Helv 10 Tf\n0 0 0 rg\n")
			fmt.Fprintf(&buf, "3 %s Td\n(%s) Tj\nET\n", formatFloat(y), escapeAnnotString(*a.Value))
		}

	case KindSignatureField:
		buf.WriteString("q\n1 1 1 rg\n")
		fillRect(&buf, 0, 0, width, height)
		buf.WriteString("Q\nq\n1.2 w\n")
		rg(&buf, "RG", colorSigBlue)
		strokeRectPath(&buf, 0.6, 0.6, width-0.6, height-0.6)
		buf.WriteString("S\nQ\n")
		lineY := math.Max(8, math.Min(height*0.35, height-4))
		buf.WriteString("q\n0.5 w\n")
		rg(&buf, "RG", colorSigGrey)
		fmt.Fprintf(&buf, "4 %s m\n%s %s l\nS\nQ\n", formatFloat(lineY), formatFloat(width-4), formatFloat(lineY))
		buf.WriteString("BT\n/Helv 8 Tf\n")
		rg(&buf, "rg", colorSigGrey)
		fmt.Fprintf(&buf, "4 %s Td\n(Sign here) Tj\nET\n", formatFloat(lineY+2))

	case KindLink:
		return nil, width, height
	}

	return buf.Bytes(), width, height
}

func colorOrDefault(c *Color, def Color) Color {
	if c != nil {
		return *c
	}
	return def
}

// writeSquigglyPath approximates a wavy baseline with cubic Bezier half
// waves of the given wave length, flipping amplitude sign each segment.
// The final segment's endpoint is clamped to width.
func writeSquigglyPath(w *bytes.Buffer, width float64) {
	fmt.Fprintf(w, "0 0 m\n")
	x := 0.0
	up := true
	for x < width {
		next := x + squigglyWaveLength
		if next > width {
			next = width
		}
		amp := squigglyAmplitude
		if !up {
			amp = -amp
		}
		c1x := x + (next-x)/3
		c2x := x + 2*(next-x)/3
		fmt.Fprintf(w, "%s %s %s %s %s %s c\n",
			formatFloat(c1x), formatFloat(amp), formatFloat(c2x), formatFloat(amp), formatFloat(next), formatFloat(0.0))
		x = next
		up = !up
	}
}

// writeEllipsePath emits a path tracing the ellipse inscribed in
// [x0,y0]-[x1,y1] as four cubic Beziers, control offset kappa * radius.
func writeEllipsePath(w *bytes.Buffer, x0, y0, x1, y1 float64) {
	cx, cy := (x0+x1)/2, (y0+y1)/2
	rx, ry := (x1-x0)/2, (y1-y0)/2
	kx, ky := bezierKappa*rx, bezierKappa*ry

	fmt.Fprintf(w, "%s %s m\n", formatFloat(cx+rx), formatFloat(cy))
	fmt.Fprintf(w, "%s %s %s %s %s %s c\n",
		formatFloat(cx+rx), formatFloat(cy+ky), formatFloat(cx+kx), formatFloat(cy+ry), formatFloat(cx), formatFloat(cy+ry))
	fmt.Fprintf(w, "%s %s %s %s %s %s c\n",
		formatFloat(cx-kx), formatFloat(cy+ry), formatFloat(cx-rx), formatFloat(cy+ky), formatFloat(cx-rx), formatFloat(cy))
	fmt.Fprintf(w, "%s %s %s %s %s %s c\n",
		formatFloat(cx-rx), formatFloat(cy-ky), formatFloat(cx-kx), formatFloat(cy-ry), formatFloat(cx), formatFloat(cy-ry))
	fmt.Fprintf(w, "%s %s %s %s %s %s c\n",
		formatFloat(cx+kx), formatFloat(cy-ry), formatFloat(cx+rx), formatFloat(cy-ky), formatFloat(cx+rx), formatFloat(cy))
	w.WriteString("h\n")
}

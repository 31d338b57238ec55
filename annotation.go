package pdfannot

import (
	"bytes"
	"fmt"
	"strings"
)

// Kind identifies one arm of the closed annotation union. There is no
// extensibility requirement — the dispatch in writeDict and in the
// appearance synthesizer is a full switch over these thirteen values, not
// an open interface.
type Kind int

const (
	KindHighlight Kind = iota
	KindUnderline
	KindStrikeOut
	KindSquiggly
	KindFreeText
	KindInk
	KindSquare
	KindCircle
	KindLine
	KindText
	KindLink
	KindTextField
	KindSignatureField
)

// AnnotationBase holds the fields shared by every annotation kind.
type AnnotationBase struct {
	Rect     Rect
	Color    *Color
	Author   string
	Contents string
	// Modified is a raw PDF date string; it is not validated.
	Modified string
	// Flags is the /F bit field. Bit 2 (value 4) is "Print".
	Flags uint32
	// Opacity is clamped to [0, 1] on serialization and omitted from
	// the wire (/CA) when >= 1.
	Opacity float64
}

// NewAnnotationBase returns a base record with sensible defaults:
// Flags = 4 (Print) and Opacity = 1.0.
func NewAnnotationBase(rect Rect) AnnotationBase {
	return AnnotationBase{Rect: rect, Flags: 4, Opacity: 1.0}
}

// Annotation is a flat, tagged representation of all thirteen annotation
// kinds: one struct with a Kind discriminator and the kind-specific
// fields left unset on irrelevant kinds. This keeps dispatch a single
// switch rather than thirteen small interface implementations with no
// behavior beyond "which kind am I".
type Annotation struct {
	Kind Kind
	Base AnnotationBase

	// Highlight, Underline, StrikeOut, Squiggly
	QuadPoints []float64

	// FreeText
	Text              string
	FontSize          float64
	DefaultAppearance string

	// Ink; LineWidth also used by Square, Circle, Line
	InkList   [][]Point
	LineWidth float64

	// Square, Circle
	InteriorColor *Color
	IsCircle      bool

	// Line
	Start, End Point

	// Text (sticky note)
	Open bool
	Icon string

	// Link
	URI      string
	DestPage *int

	// TextField
	FieldName    string
	Value        *string
	DefaultValue *string
	MaxLen       *int
	ReadOnly     bool
	Required     bool
	Multiline    bool

	// SignatureField
	Tooltip string
}

// PageAnnotations pairs a zero-based page index with the annotations to
// place on it. Multiple entries sharing a page index are merged by
// concatenating their annotation lists in arrival order.
type PageAnnotations struct {
	PageIndex   int
	Annotations []Annotation
}

// mergePageAnnotations concatenates annotation lists that share a page
// index, preserving the index of each page's first appearance and the
// arrival order of annotations within it.
func mergePageAnnotations(plan []PageAnnotations) []PageAnnotations {
	order := make([]int, 0, len(plan))
	merged := make(map[int][]Annotation)
	for _, pa := range plan {
		if _, ok := merged[pa.PageIndex]; !ok {
			order = append(order, pa.PageIndex)
		}
		merged[pa.PageIndex] = append(merged[pa.PageIndex], pa.Annotations...)
	}
	out := make([]PageAnnotations, 0, len(order))
	for _, idx := range order {
		out = append(out, PageAnnotations{PageIndex: idx, Annotations: merged[idx]})
	}
	return out
}

func NewHighlight(rect Rect, quadPoints []float64) Annotation {
	return Annotation{Kind: KindHighlight, Base: NewAnnotationBase(rect), QuadPoints: quadPoints}
}

func NewUnderline(rect Rect, quadPoints []float64) Annotation {
	return Annotation{Kind: KindUnderline, Base: NewAnnotationBase(rect), QuadPoints: quadPoints}
}

func NewStrikeOut(rect Rect, quadPoints []float64) Annotation {
	return Annotation{Kind: KindStrikeOut, Base: NewAnnotationBase(rect), QuadPoints: quadPoints}
}

func NewSquiggly(rect Rect, quadPoints []float64) Annotation {
	return Annotation{Kind: KindSquiggly, Base: NewAnnotationBase(rect), QuadPoints: quadPoints}
}

func NewFreeText(rect Rect, text string, fontSize float64, defaultAppearance string) Annotation {
	return Annotation{
		Kind:              KindFreeText,
		Base:              NewAnnotationBase(rect),
		Text:              text,
		FontSize:          fontSize,
		DefaultAppearance: defaultAppearance,
	}
}

func NewInk(rect Rect, inkList [][]Point, lineWidth float64) Annotation {
	return Annotation{Kind: KindInk, Base: NewAnnotationBase(rect), InkList: inkList, LineWidth: lineWidth}
}

func NewSquare(rect Rect, lineWidth float64, interiorColor *Color) Annotation {
	return Annotation{Kind: KindSquare, Base: NewAnnotationBase(rect), LineWidth: lineWidth, InteriorColor: interiorColor}
}

func NewCircle(rect Rect, lineWidth float64, interiorColor *Color) Annotation {
	return Annotation{Kind: KindCircle, Base: NewAnnotationBase(rect), LineWidth: lineWidth, InteriorColor: interiorColor, IsCircle: true}
}

func NewLine(rect Rect, start, end Point, lineWidth float64) Annotation {
	return Annotation{Kind: KindLine, Base: NewAnnotationBase(rect), Start: start, End: end, LineWidth: lineWidth}
}

func NewText(rect Rect, open bool, icon string) Annotation {
	return Annotation{Kind: KindText, Base: NewAnnotationBase(rect), Open: open, Icon: canonicalIcon(icon)}
}

func NewLinkURI(rect Rect, uri string) Annotation {
	return Annotation{Kind: KindLink, Base: NewAnnotationBase(rect), URI: uri}
}

func NewLinkDest(rect Rect, destPage int) Annotation {
	d := destPage
	return Annotation{Kind: KindLink, Base: NewAnnotationBase(rect), DestPage: &d}
}

func NewTextField(rect Rect, fieldName, defaultAppearance string) Annotation {
	return Annotation{Kind: KindTextField, Base: NewAnnotationBase(rect), FieldName: fieldName, DefaultAppearance: defaultAppearance}
}

func NewSignatureField(rect Rect, fieldName, tooltip string, required bool) Annotation {
	return Annotation{Kind: KindSignatureField, Base: NewAnnotationBase(rect), FieldName: fieldName, Tooltip: tooltip, Required: required}
}

var iconNames = map[string]bool{
	"Note": true, "Comment": true, "Key": true, "Help": true,
	"NewParagraph": true, "Paragraph": true, "Insert": true,
}

// canonicalIcon maps anything not in the recognized set to "Note".
func canonicalIcon(icon string) string {
	if iconNames[icon] {
		return icon
	}
	return "Note"
}

func (k Kind) subtype() string {
	switch k {
	case KindHighlight:
		return "Highlight"
	case KindUnderline:
		return "Underline"
	case KindStrikeOut:
		return "StrikeOut"
	case KindSquiggly:
		return "Squiggly"
	case KindFreeText:
		return "FreeText"
	case KindInk:
		return "Ink"
	case KindSquare:
		return "Square"
	case KindCircle:
		return "Circle"
	case KindLine:
		return "Line"
	case KindText:
		return "Text"
	case KindLink:
		return "Link"
	case KindTextField, KindSignatureField:
		return "Widget"
	default:
		return ""
	}
}

// escapeAnnotString escapes the characters that are meaningful inside a
// PDF literal string: backslash, the two parens, and raw CR/LF.
func escapeAnnotString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`(`, `\(`,
		`)`, `\)`,
		"\r", `\r`,
		"\n", `\n`,
	)
	return r.Replace(s)
}

func truncateToMultipleOf8(pts []float64) []float64 {
	n := (len(pts) / 8) * 8
	return pts[:n]
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}

// writeDict writes the annotation dictionary (without the surrounding
// "<id> 0 obj"/"endobj" wrapper, which the chunk builder adds) to w.
// apStreamRef is the object id of the appearance form-XObject, or 0 if
// none was emitted. pageRefs maps a zero-based page index to that page's
// object id, used only to resolve Link /Dest.
func (a Annotation) writeDict(w *bytes.Buffer, apStreamRef int, pageRefs []int) error {
	base := a.Base.Rect.Normalize()

	w.WriteString("<<\n/Type /Annot\n")
	fmt.Fprintf(w, "/Subtype /%s\n", a.Kind.subtype())
	fmt.Fprintf(w, "/Rect [%s %s %s %s]\n",
		formatFloat(base.X0), formatFloat(base.Y0), formatFloat(base.X1), formatFloat(base.Y1))

	flags := a.Base.Flags
	isField := a.Kind == KindTextField || a.Kind == KindSignatureField
	var fieldFlags uint32
	if isField {
		if a.ReadOnly {
			fieldFlags |= 1 << 0
		}
		if a.Required {
			fieldFlags |= 1 << 1
		}
	}

	if a.Base.Color != nil {
		c := a.Base.Color.clamped()
		fmt.Fprintf(w, "/C [%s %s %s]\n", formatFloat(c.R), formatFloat(c.G), formatFloat(c.B))
	}

	if a.Base.Author != "" {
		fmt.Fprintf(w, "/T (%s)\n", escapeAnnotString(a.Base.Author))
	}

	contents := a.Base.Contents
	if a.Kind == KindFreeText && contents == "" {
		contents = a.Text
	}
	if contents != "" {
		fmt.Fprintf(w, "/Contents (%s)\n", escapeAnnotString(contents))
	}

	if a.Base.Modified != "" {
		fmt.Fprintf(w, "/M (%s)\n", escapeAnnotString(a.Base.Modified))
	}

	opacity := clamp01(a.Base.Opacity)
	if a.Base.Opacity < 1 {
		fmt.Fprintf(w, "/CA %s\n", formatFloat(opacity))
	}

	if apStreamRef != 0 {
		fmt.Fprintf(w, "/AP << /N %d 0 R >>\n", apStreamRef)
	}

	switch a.Kind {
	case KindHighlight, KindUnderline, KindStrikeOut, KindSquiggly:
		qp := truncateToMultipleOf8(a.QuadPoints)
		w.WriteString("/QuadPoints [")
		for i, f := range qp {
			if i > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(formatFloat(f))
		}
		w.WriteString("]\n")

	case KindFreeText:
		fmt.Fprintf(w, "/DA (%s)\n", escapeAnnotString(a.DefaultAppearance))

	case KindInk:
		w.WriteString("/InkList [")
		for _, path := range a.InkList {
			w.WriteString("[")
			for i, p := range path {
				if i > 0 {
					w.WriteByte(' ')
				}
				fmt.Fprintf(w, "%s %s", formatFloat(p.X), formatFloat(p.Y))
			}
			w.WriteString("] ")
		}
		w.WriteString("]\n")

	case KindSquare, KindCircle:
		if a.InteriorColor != nil {
			c := a.InteriorColor.clamped()
			fmt.Fprintf(w, "/IC [%s %s %s]\n", formatFloat(c.R), formatFloat(c.G), formatFloat(c.B))
		}
		fmt.Fprintf(w, "/BS << /W %s >>\n", formatFloat(a.LineWidth))

	case KindLine:
		fmt.Fprintf(w, "/L [%s %s %s %s]\n",
			formatFloat(a.Start.X), formatFloat(a.Start.Y), formatFloat(a.End.X), formatFloat(a.End.Y))
		fmt.Fprintf(w, "/BS << /W %s >>\n", formatFloat(a.LineWidth))

	case KindText:
		if a.Open {
			w.WriteString("/Open true\n")
		}
		fmt.Fprintf(w, "/Name /%s\n", canonicalIcon(a.Icon))

	case KindLink:
		if a.URI != "" {
			fmt.Fprintf(w, "/A << /S /URI /URI (%s) >>\n", escapeAnnotString(a.URI))
		} else if a.DestPage != nil {
			idx := *a.DestPage
			if idx < 0 || idx >= len(pageRefs) {
				return errInvalidDestinationPage(idx)
			}
			fmt.Fprintf(w, "/Dest [%d 0 R /Fit]\n", pageRefs[idx])
		}

	case KindTextField:
		fmt.Fprintf(w, "/FT /Tx\n/T (%s)\n", escapeAnnotString(a.FieldName))
		if a.Value != nil {
			fmt.Fprintf(w, "/V (%s)\n", escapeAnnotString(*a.Value))
		}
		if a.DefaultValue != nil {
			fmt.Fprintf(w, "/DV (%s)\n", escapeAnnotString(*a.DefaultValue))
		}
		if a.MaxLen != nil {
			fmt.Fprintf(w, "/MaxLen %d\n", *a.MaxLen)
		}
		if a.DefaultAppearance != "" {
			fmt.Fprintf(w, "/DA (%s)\n", escapeAnnotString(a.DefaultAppearance))
		}
		if a.Multiline {
			fieldFlags |= 1 << 12
		}

	case KindSignatureField:
		fmt.Fprintf(w, "/FT /Sig\n/T (%s)\n", escapeAnnotString(a.FieldName))
		if a.Tooltip != "" {
			fmt.Fprintf(w, "/TU (%s)\n", escapeAnnotString(a.Tooltip))
		}
	}

	if isField {
		fmt.Fprintf(w, "/Ff %d\n", fieldFlags)
	}
	fmt.Fprintf(w, "/F %d\n", flags)
	w.WriteString(">>")
	return nil
}

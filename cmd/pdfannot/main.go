// Command pdfannot appends a small set of annotations to an existing PDF
// from the command line, for manual testing of the pdfannot library.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/VantageDataChat/pdfannot"
	"github.com/spf13/cobra"
)

func main() {
	var (
		outPath        string
		highlightRect  []float64
		highlightColor []float64
		highlightPage  int
	)

	root := &cobra.Command{
		Use:   "pdfannot [input.pdf]",
		Short: "Append annotations to a PDF and write the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var plan []pdfannot.PageAnnotations
			if len(highlightRect) == 4 {
				rect := pdfannot.Rect{X0: highlightRect[0], Y0: highlightRect[1], X1: highlightRect[2], Y1: highlightRect[3]}
				qp := []float64{rect.X0, rect.Y1, rect.X1, rect.Y1, rect.X0, rect.Y0, rect.X1, rect.Y0}
				h := pdfannot.NewHighlight(rect, qp)
				if len(highlightColor) == 3 {
					c := pdfannot.Color{R: highlightColor[0], G: highlightColor[1], B: highlightColor[2]}
					h.Base.Color = &c
				}
				plan = append(plan, pdfannot.PageAnnotations{PageIndex: highlightPage, Annotations: []pdfannot.Annotation{h}})
			}

			out, err := pdfannot.Serialize(data, plan)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = args[0] + ".annotated.pdf"
			}
			if err := os.WriteFile(outPath, out, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d bytes)\n", outPath, len(out))
			return nil
		},
	}

	root.Flags().StringVarP(&outPath, "out", "o", "", "output path (default: <input>.annotated.pdf)")
	root.Flags().Float64SliceVar(&highlightRect, "highlight-rect", nil, "x0,y0,x1,y1 rect for a test highlight annotation")
	root.Flags().Float64SliceVar(&highlightColor, "highlight-color", nil, "r,g,b in [0,1] for the test highlight")
	root.Flags().IntVar(&highlightPage, "highlight-page", 0, "zero-based page index for the test highlight")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

package pdfannot

import (
	"bytes"
	"compress/zlib"
	"fmt"
)

// allocator is the monotone object-id counter shared between the driver
// and the external page extractor: a single counter handed out through a
// callable so the extractor never assigns ids the driver could also
// assign.
type allocator struct {
	next int
}

func newAllocator(start int) *allocator {
	return &allocator{next: start}
}

func (a *allocator) alloc() int {
	id := a.next
	a.next++
	return id
}

func writeIndirectHeader(buf *bytes.Buffer, id int) {
	fmt.Fprintf(buf, "%d 0 obj\n", id)
}

func writeIndirectFooter(buf *bytes.Buffer) {
	buf.WriteString("\nendobj\n")
}

func writeCatalog(buf *bytes.Buffer, catalogID, pageTreeID int) {
	writeIndirectHeader(buf, catalogID)
	fmt.Fprintf(buf, "<<\n/Type /Catalog\n/Pages %d 0 R\n>>", pageTreeID)
	writeIndirectFooter(buf)
}

func writePageTree(buf *bytes.Buffer, pageTreeID int, kids []int) {
	writeIndirectHeader(buf, pageTreeID)
	buf.WriteString("<<\n/Type /Pages\n/Kids [")
	for _, k := range kids {
		fmt.Fprintf(buf, "%d 0 R ", k)
	}
	fmt.Fprintf(buf, "]\n/Count %d\n>>", len(kids))
	writeIndirectFooter(buf)
}

// writeFormXObject deflate-compresses content at level 6 and emits a form
// XObject indirect object. fontRef is the object id of a Helvetica font
// resource to expose as /Helv, or 0 to omit the Resources dictionary
// entirely. buildAnnotationChunk passes a font only for FreeText; the
// TextField and SignatureField streams also select /Helv but are
// written without a Resources dictionary.
func writeFormXObject(buf *bytes.Buffer, id int, content []byte, width, height float64, fontRef int) error {
	var compressed bytes.Buffer
	zw, err := zlib.NewWriterLevel(&compressed, zlib.BestCompression-3) // level 6
	if err != nil {
		return errInvalidPdf(err)
	}
	if _, err := zw.Write(content); err != nil {
		return errInvalidPdf(err)
	}
	if err := zw.Close(); err != nil {
		return errInvalidPdf(err)
	}

	writeIndirectHeader(buf, id)
	buf.WriteString("<<\n/Type /XObject\n/Subtype /Form\n/FormType 1\n")
	fmt.Fprintf(buf, "/BBox [0 0 %s %s]\n", formatFloat(width), formatFloat(height))
	buf.WriteString("/Filter /FlateDecode\n")
	if fontRef != 0 {
		fmt.Fprintf(buf, "/Resources << /Font << /Helv %d 0 R >> >>\n", fontRef)
	}
	fmt.Fprintf(buf, "/Length %d\n>>\nstream\n", compressed.Len())
	buf.Write(compressed.Bytes())
	buf.WriteString("\nendstream")
	writeIndirectFooter(buf)
	return nil
}

func writeHelveticaFont(buf *bytes.Buffer, id int) {
	writeIndirectHeader(buf, id)
	buf.WriteString("<<\n/Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica\n>>")
	writeIndirectFooter(buf)
}

func writeAnnotsArray(buf *bytes.Buffer, id int, annotRefs []int) {
	writeIndirectHeader(buf, id)
	buf.WriteString("[")
	for _, r := range annotRefs {
		fmt.Fprintf(buf, "%d 0 R ", r)
	}
	buf.WriteString("]")
	writeIndirectFooter(buf)
}

// buildAnnotationChunk emits, for every (page, annotations) entry, the
// appearance form-XObject (and its font, for FreeText), the annotation
// dictionary, and finally the page's /Annots array — in that order, per
// §4.2. It returns the object id of each page's /Annots array, keyed by
// the page's own object id, so the splicer knows what to inject where.
func buildAnnotationChunk(buf *bytes.Buffer, alloc func() int, plan []PageAnnotations, pageRefs []int) (map[int]int, error) {
	touched := make(map[int]int)

	for _, pa := range plan {
		if len(pa.Annotations) == 0 {
			continue
		}
		if pa.PageIndex < 0 || pa.PageIndex >= len(pageRefs) {
			return nil, errInvalidPageIndex(pa.PageIndex)
		}

		var annotRefs []int
		for _, a := range pa.Annotations {
			annotRef := alloc()

			content, width, height := generateAppearance(a)
			// apStreamRef is allocated for every annotation, even ones
			// with no appearance stream (e.g. Link): Link's id is a
			// deliberate gap, left unused and reclaimed by the free list
			// in rebuildXref.
			apStreamRef := alloc()
			dictApRef := 0
			if len(content) > 0 {
				dictApRef = apStreamRef
				fontRef := 0
				if a.Kind == KindFreeText {
					fontRef = alloc()
				}
				if err := writeFormXObject(buf, apStreamRef, content, width, height, fontRef); err != nil {
					return nil, err
				}
				if fontRef != 0 {
					writeHelveticaFont(buf, fontRef)
				}
			}

			writeIndirectHeader(buf, annotRef)
			if err := a.writeDict(buf, dictApRef, pageRefs); err != nil {
				return nil, err
			}
			writeIndirectFooter(buf)

			annotRefs = append(annotRefs, annotRef)
		}

		arrRef := alloc()
		writeAnnotsArray(buf, arrRef, annotRefs)
		pageObjID := pageRefs[pa.PageIndex]
		touched[pageObjID] = arrRef
	}

	return touched, nil
}

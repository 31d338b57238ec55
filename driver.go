package pdfannot

import (
	"bytes"
	"sort"

	"github.com/VantageDataChat/pdfannot/pageextract"
)

// Driver is the top-level entry point. The zero value is
// ready to use and extracts pages with a gofpdi-backed extractor,
// falling back to a dependency-light raw extractor if gofpdi fails.
type Driver struct {
	// Extractor overrides the default extraction strategy. Most callers
	// leave this nil.
	Extractor pageextract.Extractor
}

// Serialize is the package-level convenience entry point equivalent to
// (&Driver{}).Serialize(original, plan).
func Serialize(original []byte, plan []PageAnnotations) ([]byte, error) {
	return (&Driver{}).Serialize(original, plan)
}

// Serialize takes ownership of original by copy, validates the plan,
// extracts every page of the input through the driver's extractor,
// assembles a new catalog/page-tree/annotation chunk, splices /Annots
// into every touched page, and — only if at least one splice actually
// happened — rebuilds the cross-reference section. An empty plan (or a
// plan whose merged lists are all empty) is not an error: the input
// bytes are returned unmodified.
func (d *Driver) Serialize(original []byte, plan []PageAnnotations) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errInvalidPdff("panic during serialization: %v", r)
		}
	}()

	merged := mergePageAnnotations(plan)
	total := 0
	for _, pa := range merged {
		total += len(pa.Annotations)
	}
	if total == 0 {
		passthrough := make([]byte, len(original))
		copy(passthrough, original)
		return passthrough, nil
	}

	extractor := d.extractor()

	pageCount, err := extractor.PageCount(original)
	if err != nil {
		return nil, errInvalidPdf(err)
	}

	for _, pa := range merged {
		if pa.PageIndex < 0 || pa.PageIndex >= pageCount {
			return nil, errInvalidPageIndex(pa.PageIndex)
		}
		for _, a := range pa.Annotations {
			if a.Kind == KindLink && a.DestPage != nil {
				if *a.DestPage < 0 || *a.DestPage >= pageCount {
					return nil, errInvalidDestinationPage(*a.DestPage)
				}
			}
		}
	}

	maxID, err := extractor.MaxObjectID(original)
	if err != nil {
		return nil, errInvalidPdf(err)
	}
	alloc := newAllocator(maxID + 1)

	catalogRef := alloc.alloc()
	pageTreeRef := alloc.alloc()

	var buf bytes.Buffer
	buf.Write(original)
	if buf.Len() == 0 || buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}

	pageRefs := make([]int, pageCount)
	var subgraphs bytes.Buffer
	for i := 0; i < pageCount; i++ {
		sg, err := extractor.ExtractPage(original, i, alloc.alloc)
		if err != nil {
			return nil, errInvalidPdff("extracting page %d: %v", i, err)
		}
		pageRefs[i] = sg.PageRef
		subgraphs.Write(sg.Bytes)
		subgraphs.WriteByte('\n')
	}

	writeCatalog(&buf, catalogRef, pageTreeRef)
	buf.WriteByte('\n')
	writePageTree(&buf, pageTreeRef, pageRefs)
	buf.WriteByte('\n')
	buf.Write(subgraphs.Bytes())

	touched, err := buildAnnotationChunk(&buf, alloc.alloc, merged, pageRefs)
	if err != nil {
		return nil, err
	}

	data := buf.Bytes()
	touchedIDs := make([]int, 0, len(touched))
	for id := range touched {
		touchedIDs = append(touchedIDs, id)
	}
	sort.Ints(touchedIDs)

	splicedAny := false
	for _, pageObjID := range touchedIDs {
		newData, inserted, err := spliceAnnots(data, pageObjID, touched[pageObjID])
		if err != nil {
			return nil, err
		}
		data = newData
		if inserted {
			splicedAny = true
		}
	}

	if !splicedAny {
		return data, nil
	}
	return rebuildXref(data, catalogRef)
}

func (d *Driver) extractor() pageextract.Extractor {
	if d.Extractor != nil {
		return d.Extractor
	}
	return &fallbackExtractor{
		primary:   &pageextract.GofpdiExtractor{},
		secondary: &pageextract.RawExtractor{},
	}
}

// fallbackExtractor tries primary first and falls back to secondary
// whenever primary errors — gofpdi is known to reject or panic on some
// otherwise-valid PDFs (gofpdi_safe.go's whole reason for existing), and
// the raw extractor has no such failure mode for well-formed input.
// MaxObjectID always goes straight to secondary.
type fallbackExtractor struct {
	primary, secondary pageextract.Extractor
}

func (f *fallbackExtractor) PageCount(data []byte) (int, error) {
	if n, err := f.primary.PageCount(data); err == nil {
		return n, nil
	}
	return f.secondary.PageCount(data)
}

func (f *fallbackExtractor) MaxObjectID(data []byte) (int, error) {
	return f.secondary.MaxObjectID(data)
}

func (f *fallbackExtractor) ExtractPage(data []byte, pageIndex int, alloc pageextract.Allocator) (pageextract.Subgraph, error) {
	if sg, err := f.primary.ExtractPage(data, pageIndex, alloc); err == nil {
		return sg, nil
	}
	return f.secondary.ExtractPage(data, pageIndex, alloc)
}

package pdfannot

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/VantageDataChat/pdfannot/pageextract"
)

// fakeExtractor stands in for a real gofpdi/ledongthuc-backed extractor so
// driver tests are deterministic and don't depend on third-party PDF
// parsing behavior. Each page becomes a tiny, self-contained Page object
// at a predictable id.
type fakeExtractor struct {
	pages  int
	maxID  int
	failOn int // pageIndex to fail on, -1 for never
}

func (f *fakeExtractor) PageCount(data []byte) (int, error) {
	return f.pages, nil
}

func (f *fakeExtractor) MaxObjectID(data []byte) (int, error) {
	return f.maxID, nil
}

func (f *fakeExtractor) ExtractPage(data []byte, pageIndex int, alloc pageextract.Allocator) (pageextract.Subgraph, error) {
	if f.failOn == pageIndex {
		return pageextract.Subgraph{}, fmt.Errorf("fake extraction failure on page %d", pageIndex)
	}
	ref := alloc()
	body := fmt.Sprintf("%d 0 obj\n<< /Type /Page /MediaBox [0 0 612 792] >>\nendobj\n", ref)
	return pageextract.Subgraph{Bytes: []byte(body), PageRef: ref}, nil
}

func blankInput() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n")
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n9\n%%EOF")
	return buf.Bytes()
}

func driverWithFake(pages, maxID int) *Driver {
	return &Driver{Extractor: &fakeExtractor{pages: pages, maxID: maxID, failOn: -1}}
}

func TestSerializeBlankPDFWithHighlight(t *testing.T) {
	d := driverWithFake(1, 3)
	input := blankInput()

	h := NewHighlight(Rect{X0: 100, Y0: 700, X1: 300, Y1: 720}, nil)
	h.Base.Color = &ColorYellow
	plan := []PageAnnotations{{PageIndex: 0, Annotations: []Annotation{h}}}

	out, err := d.Serialize(input, plan)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Contains(out, []byte("/Subtype /Highlight")) {
		t.Fatalf("missing highlight annotation in output")
	}
	if !bytes.Contains(out, []byte("/Annots")) {
		t.Fatalf("missing /Annots splice in output")
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output should still start with the original PDF header")
	}
}

func TestSerializeBlankPDFWithInk(t *testing.T) {
	d := driverWithFake(1, 3)
	ink := NewInk(Rect{X0: 0, Y0: 0, X1: 100, Y1: 100}, [][]Point{{{X: 0, Y: 0}, {X: 50, Y: 50}, {X: 100, Y: 0}}}, 2)
	plan := []PageAnnotations{{PageIndex: 0, Annotations: []Annotation{ink}}}

	out, err := d.Serialize(blankInput(), plan)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Contains(out, []byte("/Subtype /Ink")) {
		t.Fatalf("missing ink annotation in output")
	}
}

func TestSerializeLinkToPage(t *testing.T) {
	d := driverWithFake(3, 3)
	link := NewLinkDest(Rect{X0: 0, Y0: 0, X1: 50, Y1: 20}, 2)
	plan := []PageAnnotations{{PageIndex: 0, Annotations: []Annotation{link}}}

	out, err := d.Serialize(blankInput(), plan)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Contains(out, []byte("/Dest")) {
		t.Fatalf("missing /Dest in output")
	}
}

func TestSerializeClampsOutOfRangeColorAndOpacity(t *testing.T) {
	d := driverWithFake(1, 3)
	h := NewHighlight(Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}, nil)
	h.Base.Color = &Color{R: -1, G: 5, B: 0.5}
	h.Base.Opacity = 50

	out, err := d.Serialize(blankInput(), []PageAnnotations{{PageIndex: 0, Annotations: []Annotation{h}}})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Contains(out, []byte("/C [0 1 0.5]")) {
		t.Fatalf("color should be clamped to [0,1]: %s", out)
	}
	// Opacity clamped to 1 (fully opaque) is the default and is omitted
	// from the wire entirely, per /CA's documented convention.
	if bytes.Contains(out, []byte("/CA")) {
		t.Fatalf("opacity clamped to 1 should be omitted from the wire: %s", out)
	}
}

func TestSerializeMergesSamePageIndexTwice(t *testing.T) {
	d := driverWithFake(1, 3)
	a := NewHighlight(Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}, nil)
	b := NewUnderline(Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}, nil)
	plan := []PageAnnotations{
		{PageIndex: 0, Annotations: []Annotation{a}},
		{PageIndex: 0, Annotations: []Annotation{b}},
	}

	out, err := d.Serialize(blankInput(), plan)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Contains(out, []byte("/Subtype /Highlight")) || !bytes.Contains(out, []byte("/Subtype /Underline")) {
		t.Fatalf("both merged annotations must appear in output")
	}
}

func TestSerializeInvalidDestinationPage(t *testing.T) {
	d := driverWithFake(1, 3)
	link := NewLinkDest(Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}, 9)
	_, err := d.Serialize(blankInput(), []PageAnnotations{{PageIndex: 0, Annotations: []Annotation{link}}})
	if err == nil {
		t.Fatal("expected error for dest_page out of range on a 1-page document")
	}
	se, ok := err.(*SerializeError)
	if !ok || se.Kind != InvalidDestinationPage {
		t.Fatalf("got %#v, want InvalidDestinationPage", err)
	}
}

func TestSerializeEmptyPlanIsPassthrough(t *testing.T) {
	d := driverWithFake(1, 3)
	input := blankInput()
	out, err := d.Serialize(input, nil)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Fatal("an empty plan must return the input bytes unmodified")
	}
}

func TestSerializeInvalidPageIndex(t *testing.T) {
	d := driverWithFake(1, 3)
	h := NewHighlight(Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}, nil)
	_, err := d.Serialize(blankInput(), []PageAnnotations{{PageIndex: 4, Annotations: []Annotation{h}}})
	if err == nil {
		t.Fatal("expected InvalidPageIndex error")
	}
	se, ok := err.(*SerializeError)
	if !ok || se.Kind != InvalidPageIndex {
		t.Fatalf("got %#v, want InvalidPageIndex", err)
	}
}

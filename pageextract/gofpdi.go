package pageextract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/phpdave11/gofpdi"
)

// GofpdiExtractor wraps github.com/phpdave11/gofpdi to import a single
// page of an existing PDF as a self-contained form XObject. gofpdi's own
// source isn't vendored anywhere this module can read, so every method
// call here is restricted to its documented sequence: NewImporter,
// SetSourceStream, GetNumPages, GetPageSizes, SetNextObjectID,
// ImportPage, PutFormXobjects, GetImportedObjects.
type GofpdiExtractor struct {
	// Box selects which page box to import: "/MediaBox" (default),
	// "/CropBox", "/BleedBox", "/TrimBox", or "/ArtBox".
	Box string
}

func (e *GofpdiExtractor) box() string {
	if e.Box != "" {
		return e.Box
	}
	return "/MediaBox"
}

// safeImport recovers from the panics gofpdi is known to raise on
// certain malformed-but-common PDFs.
func safeImport(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gofpdi: %v", r)
		}
	}()
	return fn()
}

func (e *GofpdiExtractor) PageCount(data []byte) (n int, err error) {
	err = safeImport(func() error {
		imp := gofpdi.NewImporter()
		rs := io.ReadSeeker(bytes.NewReader(data))
		imp.SetSourceStream(&rs)
		n = imp.GetNumPages()
		return nil
	})
	return n, err
}

func (e *GofpdiExtractor) MaxObjectID(data []byte) (int, error) {
	return rawMaxObjectID(data)
}

func (e *GofpdiExtractor) ExtractPage(data []byte, pageIndex int, alloc Allocator) (sg Subgraph, err error) {
	err = safeImport(func() error {
		imp := gofpdi.NewImporter()
		rs := io.ReadSeeker(bytes.NewReader(data))
		imp.SetSourceStream(&rs)

		sizes := imp.GetPageSizes()
		box := e.box()
		dims, ok := sizes[pageIndex+1][box]
		if !ok {
			return fmt.Errorf("cannot read page size for page %d", pageIndex)
		}
		w, h := dims["w"], dims["h"]

		start := alloc()
		imp.SetNextObjectID(start)

		tpl := imp.ImportPage(pageIndex+1, box)
		tplObjIDs := imp.PutFormXobjects()
		imported := imp.GetImportedObjects()

		maxUsed := start - 1
		for id := range imported {
			if id > maxUsed {
				maxUsed = id
			}
		}
		for next := start; next <= maxUsed; next++ {
			alloc() // fast-forward the shared counter past ids gofpdi claimed on its own
		}

		var buf bytes.Buffer
		for id, body := range imported {
			fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", id, body)
		}

		xobjName, xobjID, ok := templateObjectID(tplObjIDs, tpl)
		if !ok {
			return fmt.Errorf("gofpdi: no form xobject for imported page %d", pageIndex)
		}

		contentID := alloc()
		streamBody := fmt.Sprintf("q %g 0 0 %g 0 0 cm %s Do Q", w, h, xobjName)
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			contentID, len(streamBody), streamBody)

		pageID := alloc()
		fmt.Fprintf(&buf, "%d 0 obj\n<<\n/Type /Page\n/MediaBox [0 0 %g %g]\n/Resources << /XObject << %s %d 0 R >> >>\n/Contents %d 0 R\n>>\nendobj\n",
			pageID, w, h, xobjName, xobjID, contentID)

		sg = Subgraph{Bytes: buf.Bytes(), PageRef: pageID}
		return nil
	})
	return sg, err
}

func templateObjectID(tplObjIDs map[string]int, tpl int) (name string, id int, ok bool) {
	want := fmt.Sprintf("/GOFPDITPL%d", tpl)
	if id, ok := tplObjIDs[want]; ok {
		return want, id, true
	}
	for name, id := range tplObjIDs {
		return name, id, true
	}
	return "", 0, false
}

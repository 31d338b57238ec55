package pageextract

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"regexp"
	"strconv"

	lpdf "github.com/ledongthuc/pdf"
)

var objLineRe = regexp.MustCompile(`(\d+)\s+0\s+obj\b`)

// rawMaxObjectID scans data for every "<id> 0 obj" header (regardless of
// line position) and returns the highest id found, so a caller can seed
// its own allocator disjoint from the input document's own ids.
func rawMaxObjectID(data []byte) (int, error) {
	max := 0
	for _, m := range objLineRe.FindAllSubmatch(data, -1) {
		n, err := strconv.Atoi(string(m[1]))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

// RawExtractor is a dependency-light fallback page extractor built on
// github.com/ledongthuc/pdf: a hand-built gofpdi replacement over the
// same library, doing raw object/page discovery and FlateDecode
// handling. Use it when gofpdi panics or rejects a document
// GofpdiExtractor can't otherwise recover from.
type RawExtractor struct{}

func (e *RawExtractor) reader(data []byte) (*lpdf.Reader, error) {
	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		// Some inputs carry a PDF version newer than ledongthuc/pdf
		// supports; patching the header version unblocks the parser.
		patched := patchPDFHeader(data)
		return lpdf.NewReader(bytes.NewReader(patched), int64(len(patched)))
	}
	return r, nil
}

var headerRe = regexp.MustCompile(`^%PDF-\d\.\d`)

func patchPDFHeader(data []byte) []byte {
	if !headerRe.Match(data) {
		return data
	}
	out := make([]byte, len(data))
	copy(out, data)
	copy(out[5:8], []byte("1.7"))
	return out
}

func (e *RawExtractor) PageCount(data []byte) (int, error) {
	r, err := e.reader(data)
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

func (e *RawExtractor) MaxObjectID(data []byte) (int, error) {
	return rawMaxObjectID(data)
}

func (e *RawExtractor) ExtractPage(data []byte, pageIndex int, alloc Allocator) (Subgraph, error) {
	r, err := e.reader(data)
	if err != nil {
		return Subgraph{}, err
	}
	if pageIndex < 0 || pageIndex >= r.NumPage() {
		return Subgraph{}, ErrNoSuchPage
	}
	page := r.Page(pageIndex + 1)
	if page.V.IsNull() {
		return Subgraph{}, fmt.Errorf("pageextract: empty page %d", pageIndex)
	}

	w, h, err := pageSize(page)
	if err != nil {
		return Subgraph{}, err
	}

	content, err := extractContent(page)
	if err != nil {
		return Subgraph{}, err
	}

	var extra bytes.Buffer
	resources := "<< >>"
	if res := page.V.Key("Resources"); !res.IsNull() {
		resources = serializeValue(res, alloc, &extra)
	}

	var compressed bytes.Buffer
	zw, _ := zlib.NewWriterLevel(&compressed, zlib.BestCompression-3)
	zw.Write(content)
	zw.Close()

	xobjID := alloc()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /XObject /Subtype /Form /FormType 1\n/BBox [0 0 %g %g]\n/Resources %s\n/Filter /FlateDecode\n/Length %d >>\nstream\n",
		xobjID, w, h, resources, compressed.Len())
	buf.Write(compressed.Bytes())
	buf.WriteString("\nendstream\nendobj\n")

	contentID := alloc()
	streamBody := fmt.Sprintf("q %g 0 0 %g 0 0 cm /Fp0 Do Q", w, h)
	fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", contentID, len(streamBody), streamBody)

	pageID := alloc()
	fmt.Fprintf(&buf, "%d 0 obj\n<<\n/Type /Page\n/MediaBox [0 0 %g %g]\n/Resources << /XObject << /Fp0 %d 0 R >> >>\n/Contents %d 0 R\n>>\nendobj\n",
		pageID, w, h, xobjID, contentID)

	buf.Write(extra.Bytes())

	return Subgraph{Bytes: buf.Bytes(), PageRef: pageID}, nil
}

// pageSize walks /MediaBox with a fallback up the /Parent chain, since
// a leaf page may inherit its box from an ancestor /Pages node.
func pageSize(page lpdf.Page) (w, h float64, err error) {
	v := page.V
	for i := 0; i < 32; i++ {
		if mb := v.Key("MediaBox"); !mb.IsNull() && mb.Len() == 4 {
			x0 := mb.Index(0).Float64()
			y0 := mb.Index(1).Float64()
			x1 := mb.Index(2).Float64()
			y1 := mb.Index(3).Float64()
			return x1 - x0, y1 - y0, nil
		}
		parent := v.Key("Parent")
		if parent.IsNull() {
			break
		}
		v = parent
	}
	return 612, 792, nil // US Letter default when no box is found anywhere in the chain
}

func extractContent(page lpdf.Page) ([]byte, error) {
	c := page.V.Key("Contents")
	var parts [][]byte
	switch c.Kind() {
	case lpdf.Stream:
		b, err := io.ReadAll(c.Reader())
		if err != nil {
			return nil, err
		}
		parts = append(parts, b)
	case lpdf.Array:
		for i := 0; i < c.Len(); i++ {
			s := c.Index(i)
			if s.Kind() != lpdf.Stream {
				continue
			}
			b, err := io.ReadAll(s.Reader())
			if err != nil {
				return nil, err
			}
			parts = append(parts, b)
		}
	}
	return bytes.Join(parts, []byte("\n")), nil
}

// serializeValue renders a parsed PDF value back to wire syntax,
// recursively, for the value kinds a /Resources dictionary can contain.
// ledongthuc/pdf's Key/Index transparently dereference indirect
// references, so by the time a Value reaches here its original object
// number is already gone — an embedded Image XObject or a font's
// /FontFile* arrives as a Value with Kind()==Stream, not Dict. Rather
// than inlining that stream's bytes as if it were a dict value (not
// valid PDF: a stream can only exist as its own indirect object),
// serializeValue allocates a fresh id through alloc, writes the stream
// as a real top-level object into extra, and substitutes a proper
// "id 0 R" indirect reference in its place.
func serializeValue(v lpdf.Value, alloc Allocator, extra *bytes.Buffer) string {
	switch v.Kind() {
	case lpdf.Null:
		return "null"
	case lpdf.Bool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case lpdf.Integer:
		return fmt.Sprintf("%d", v.Int64())
	case lpdf.Real:
		return fmt.Sprintf("%g", v.Float64())
	case lpdf.String:
		return fmt.Sprintf("(%s)", v.RawString())
	case lpdf.Name:
		return "/" + v.Name()
	case lpdf.Dict:
		var b bytes.Buffer
		b.WriteString("<< ")
		for _, k := range v.Keys() {
			fmt.Fprintf(&b, "/%s %s ", k, serializeValue(v.Key(k), alloc, extra))
		}
		b.WriteString(">>")
		return b.String()
	case lpdf.Array:
		var b bytes.Buffer
		b.WriteString("[")
		for i := 0; i < v.Len(); i++ {
			b.WriteString(serializeValue(v.Index(i), alloc, extra))
			b.WriteString(" ")
		}
		b.WriteString("]")
		return b.String()
	case lpdf.Stream:
		return serializeStreamObject(v, alloc, extra)
	default:
		return "null"
	}
}

// serializeStreamObject writes v's decoded bytes as a fresh, freshly
// re-compressed indirect object appended to extra, and returns the
// "id 0 R" reference to it. /Length, /Filter and /DecodeParms are
// recomputed rather than copied, since the bytes are being re-encoded.
func serializeStreamObject(v lpdf.Value, alloc Allocator, extra *bytes.Buffer) string {
	data, err := io.ReadAll(v.Reader())
	if err != nil {
		return "null"
	}

	var compressed bytes.Buffer
	zw, _ := zlib.NewWriterLevel(&compressed, zlib.BestCompression-3)
	zw.Write(data)
	zw.Close()

	id := alloc()
	fmt.Fprintf(extra, "%d 0 obj\n<< ", id)
	for _, k := range v.Keys() {
		switch k {
		case "Length", "Filter", "DecodeParms":
			continue
		}
		fmt.Fprintf(extra, "/%s %s ", k, serializeValue(v.Key(k), alloc, extra))
	}
	fmt.Fprintf(extra, "/Filter /FlateDecode /Length %d >>\nstream\n", compressed.Len())
	extra.Write(compressed.Bytes())
	extra.WriteString("\nendstream\nendobj\n")

	return fmt.Sprintf("%d 0 R", id)
}

package pdfannot

import (
	"bytes"
	"testing"
)

func sampleDocWithXref() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n")
	buf.WriteString("xref\n0 4\n0000000000 65535 f\r\n0000000009 00000 n\r\n0000000060 00000 n\r\n0000000120 00000 n\r\n")
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n180\n%%EOF")
	return buf.Bytes()
}

func TestLastStartxref(t *testing.T) {
	data := sampleDocWithXref()
	off, ok := lastStartxref(data)
	if !ok || off != 180 {
		t.Fatalf("lastStartxref = (%d, %v), want (180, true)", off, ok)
	}
}

func TestRebuildXrefFreeListAndPrev(t *testing.T) {
	data := sampleDocWithXref()
	out, err := rebuildXref(data, 1)
	if err != nil {
		t.Fatalf("rebuildXref: %v", err)
	}

	if !bytes.Contains(out, []byte("/Prev 180")) {
		t.Fatalf("rebuilt xref should chain /Prev to the prior startxref: %s", out)
	}
	if !bytes.Contains(out, []byte("/Root 1 0 R")) {
		t.Fatalf("rebuilt trailer missing /Root: %s", out)
	}
	if !bytes.Contains(out, []byte("/Size 4")) {
		t.Fatalf("rebuilt trailer missing correct /Size: %s", out)
	}
	// Object 0 must always be the free-list head with generation 65535.
	if !bytes.Contains(out, []byte("0000000000 65535 f\r\n")) {
		t.Fatalf("rebuilt xref missing free-list head entry: %s", out)
	}

	newOff, ok := lastStartxref(out)
	if !ok {
		t.Fatal("rebuilt output should itself carry a trailing startxref")
	}
	if newOff <= 180 {
		t.Fatalf("new startxref offset %d should point past the appended section, not before it", newOff)
	}
}

func TestRebuildXrefWithGap(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")
	// no object 3 — a gap in the id space other than 0
	buf.WriteString("4 0 obj\n<< /Foo true >>\nendobj\n")

	out, err := rebuildXref(buf.Bytes(), 1)
	if err != nil {
		t.Fatalf("rebuildXref: %v", err)
	}
	if !bytes.Contains(out, []byte("/Size 5")) {
		t.Fatalf("rebuilt trailer should size to maxID+1=5: %s", out)
	}
}

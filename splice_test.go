package pdfannot

import (
	"bytes"
	"strings"
	"testing"
)

func TestFindMatchingDictHandlesNestedDict(t *testing.T) {
	data := []byte("1 0 obj\n<< /Type /Page /Resources << /Font << /F1 2 0 R >> >> /MediaBox [0 0 612 792] >>\nendobj\n")
	open, close, err := FindMatchingDict(data, 0)
	if err != nil {
		t.Fatalf("FindMatchingDict: %v", err)
	}
	got := string(data[open:close])
	if !strings.HasSuffix(got, ">>") || !strings.Contains(got, "/MediaBox") {
		t.Fatalf("matched span = %q, want it to cover the whole outer dict including /MediaBox", got)
	}
	// The matched span must not stop at the first nested ">>".
	if strings.Count(got, "<<") != strings.Count(got, ">>") {
		t.Fatalf("matched span has unbalanced delimiters: %q", got)
	}
}

func TestSpliceAnnotsInsertsAndIsIdempotent(t *testing.T) {
	data := []byte("3 0 obj\n<< /Type /Page /Parent 1 0 R /MediaBox [0 0 612 792] >>\nendobj\n")

	out, inserted, err := spliceAnnots(data, 3, 99)
	if err != nil {
		t.Fatalf("spliceAnnots: %v", err)
	}
	if !inserted {
		t.Fatal("expected an insertion on first splice")
	}
	if !bytes.Contains(out, []byte("/Annots 99 0 R")) {
		t.Fatalf("output missing /Annots entry: %s", out)
	}

	again, inserted2, err := spliceAnnots(out, 3, 42)
	if err != nil {
		t.Fatalf("second spliceAnnots: %v", err)
	}
	if inserted2 {
		t.Fatal("second splice onto an already-annotated page must be a no-op")
	}
	if !bytes.Equal(again, out) {
		t.Fatal("idempotent splice must return data unchanged")
	}
}

func TestSpliceAnnotsMissingPageObject(t *testing.T) {
	data := []byte("3 0 obj\n<< /Type /Page >>\nendobj\n")
	if _, _, err := spliceAnnots(data, 7, 1); err == nil {
		t.Fatal("expected error for a page object id that doesn't exist")
	}
}

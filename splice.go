package pdfannot

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
)

var objHeaderRe = regexp.MustCompile(`(\d+)\s+0\s+obj\b`)

// findObjHeaderEnd returns the byte offset just past "<id> 0 obj" for the
// given object id, or false if no such header exists. Matching on the
// full greedy \d+ run (rather than a literal "<id> 0 obj" substring)
// avoids falsely matching, say, id 1 inside "21 0 obj".
func findObjHeaderEnd(data []byte, id int) (int, bool) {
	for _, m := range objHeaderRe.FindAllSubmatchIndex(data, -1) {
		n, err := strconv.Atoi(string(data[m[2]:m[3]]))
		if err == nil && n == id {
			return m[1], true
		}
	}
	return 0, false
}

// FindMatchingDict scans data starting at from for the first "<<" and
// walks forward with a depth counter, incrementing on every "<<" and
// decrementing on every ">>", to find the matching closing delimiter.
// A naive "find the next >>" search is wrong whenever the dictionary
// contains nested dictionaries, which page dictionaries routinely do
// (e.g. /Resources).
func FindMatchingDict(data []byte, from int) (open, close int, err error) {
	open = bytes.Index(data[from:], []byte("<<"))
	if open < 0 {
		return 0, 0, errInvalidPdff("no dictionary found from offset %d", from)
	}
	open += from

	depth := 0
	i := open
	for i < len(data)-1 {
		switch {
		case data[i] == '<' && data[i+1] == '<':
			depth++
			i += 2
		case data[i] == '>' && data[i+1] == '>':
			depth--
			i += 2
			if depth == 0 {
				return open, i, nil
			}
		default:
			i++
		}
	}
	return 0, 0, errInvalidPdff("unbalanced dictionary delimiters from offset %d", from)
}

// spliceAnnots injects "/Annots <arrRef> 0 R" into the dictionary of the
// page object pageObjID, immediately before its matching closing ">>".
// It is idempotent: if /Annots already appears in the dictionary's span,
// data is returned unchanged and inserted is false. All bytes from the
// insertion point onward shift right by the insertion length.
func spliceAnnots(data []byte, pageObjID, arrRef int) (out []byte, inserted bool, err error) {
	headerEnd, ok := findObjHeaderEnd(data, pageObjID)
	if !ok {
		return nil, false, errInvalidPdff("page object %d not found", pageObjID)
	}

	open, close, err := FindMatchingDict(data, headerEnd)
	if err != nil {
		return nil, false, err
	}

	if bytes.Contains(data[open:close], []byte("/Annots")) {
		return data, false, nil
	}

	// close is just past the closing ">>"; insert in front of it.
	at := close - 2
	insertion := []byte(fmt.Sprintf("\n  /Annots %d 0 R\n", arrRef))
	out = make([]byte, 0, len(data)+len(insertion))
	out = append(out, data[:at]...)
	out = append(out, insertion...)
	out = append(out, data[at:]...)
	return out, true, nil
}

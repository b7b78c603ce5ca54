package pdftext

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// ErrEmptyDocument is returned for zero-length uploads.
var ErrEmptyDocument = errors.New("empty document")

var blankLines = regexp.MustCompile(`\n{3,}`)

// Extract returns the plain text of a PDF. Runs of blank lines are collapsed.
func Extract(r io.ReaderAt, size int64) (text string, err error) {
	if size <= 0 {
		return "", ErrEmptyDocument
	}
	// the pdf package panics on some malformed cross-reference tables
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", errors.Errorf("malformed pdf: %v", rec)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", errors.Wrap(err, "open pdf")
	}
	plain, err := doc.GetPlainText()
	if err != nil {
		return "", errors.Wrap(err, "extract pdf text")
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", errors.Wrap(err, "read pdf text")
	}
	return Clean(buf.String()), nil
}

// ExtractBytes is Extract over an in-memory document.
func ExtractBytes(data []byte) (string, error) {
	return Extract(bytes.NewReader(data), int64(len(data)))
}

// Clean normalizes line endings, trims trailing spaces and collapses blank lines.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n\n"))
}

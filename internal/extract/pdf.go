package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls the text layer out of a PDF, page by page. Image-only or
// broken pages are skipped; a document with no usable text layer comes back
// as a scanned-image warning rather than empty content.
func extractPDF(data []byte, fileName string) (out string) {
	// The pdf library panics on some malformed inputs; a corrupt upload must
	// not take down the request.
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("Could not read this PDF file.\nPossible causes: corrupt file, password protection, or an unusual PDF variant.\nError: %v", r)
		}
	}()

	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Sprintf("Could not read this PDF file.\nPossible causes: corrupt file, password protection, or an unusual PDF variant.\nError: %v", err)
	}

	numPages := rdr.NumPage()
	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		pg := rdr.Page(i)
		if pg.V.IsNull() {
			continue
		}
		txt, err := pg.GetPlainText(nil)
		if err != nil {
			// Image-only or problematic page.
			continue
		}
		txt = strings.TrimSpace(txt)
		if txt == "" {
			continue
		}
		sb.WriteString(txt)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if len([]rune(text)) < minMeaningfulChars {
		return "Warning: this PDF has no extractable text and may be a scanned image.\nPlease use a PDF with a text layer."
	}

	return truncate(fmt.Sprintf("File: %s\nPages: %d\n\n%s", fileName, numPages, text))
}

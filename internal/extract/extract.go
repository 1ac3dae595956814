// Package extract converts uploaded documents into plain text for prompt
// context. Extraction never fails the surrounding upload or chat flow:
// unsupported types and parse errors come back as human-readable diagnostic
// text in place of content.
package extract

import (
	"fmt"
	"strings"

	"github.com/docuchat/docuchat-server/internal/types"
)

// Declared MIME types the extractor understands.
const (
	MIMEPDF  = "application/pdf"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEXls  = "application/vnd.ms-excel"
	MIMEText = "text/plain"
)

// minMeaningfulChars is the threshold under which a PDF or Word document is
// reported as likely scanned or empty rather than returned as-is.
const minMeaningfulChars = 10

// Extract converts a raw file plus its declared MIME type into plain text.
// The result is capped at types.MaxExtractChars with a truncation marker.
func Extract(data []byte, declaredMIME, fileName string) string {
	switch normalizeMIME(declaredMIME) {
	case MIMEPDF:
		return extractPDF(data, fileName)
	case MIMEDocx:
		return extractDocx(data, fileName)
	case MIMEXlsx:
		return extractXlsx(data, fileName)
	case MIMEXls:
		return extractXls(data, fileName)
	case MIMEText:
		return extractText(data, fileName)
	default:
		return fmt.Sprintf("Unsupported file type: %s\n\nSupported formats:\n- PDF (.pdf)\n- Word (.docx)\n- Excel (.xlsx, .xls)\n- Text (.txt)", declaredMIME)
	}
}

// normalizeMIME strips parameters like "; charset=utf-8" and lowercases.
func normalizeMIME(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}

// truncate cuts s at types.MaxExtractChars characters and appends the shared
// truncation marker when content was dropped.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= types.MaxExtractChars {
		return s
	}
	return string(runes[:types.MaxExtractChars]) + types.TruncationMarker
}

func extractText(data []byte, fileName string) string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return "Warning: this text file is empty."
	}
	return truncate(fmt.Sprintf("File: %s\n\n%s", fileName, text))
}

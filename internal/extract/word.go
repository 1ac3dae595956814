package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDocx reads the main document part of an OOXML Word file and
// flattens its text runs. Paragraphs become newlines, tabs and explicit
// breaks are preserved.
func extractDocx(data []byte, fileName string) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Sprintf("Could not read this Word file.\nError: %v", err)
	}

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			break
		}
	}
	if doc == nil || err != nil {
		return "Could not read this Word file.\nError: missing word/document.xml"
	}
	defer doc.Close()

	text, err := flattenDocumentXML(doc)
	if err != nil {
		return fmt.Sprintf("Could not read this Word file.\nError: %v", err)
	}

	text = strings.TrimSpace(text)
	if len([]rune(text)) < minMeaningfulChars {
		return "Warning: this Word document is empty or contains no readable text."
	}

	return truncate(fmt.Sprintf("File: %s\n\n%s", fileName, text))
}

// flattenDocumentXML walks WordprocessingML and keeps only what reads as
// text: w:t character data, w:tab, w:br, and paragraph boundaries.
func flattenDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	var inText bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}

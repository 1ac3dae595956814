package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const sheetDivider = "=================================================="

// minWorkbookChars is the threshold under which a workbook is reported as
// empty. Higher than the document threshold because the sheet markers alone
// contribute boilerplate.
const minWorkbookChars = 50

// extractXlsx serializes every worksheet of an OOXML workbook in workbook
// order. Each sheet is preceded by a boundary carrying its position and
// name; no sheet is dropped, even when empty.
func extractXlsx(data []byte, fileName string) string {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Sprintf("Could not read this Excel file.\nError: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var sb strings.Builder
	fmt.Fprintf(&sb, "File: %s\nSheets: %d\n", fileName, len(sheets))

	var cells int
	for i, name := range sheets {
		writeSheetBoundary(&sb, i+1, name)
		rows, err := f.GetRows(name)
		if err != nil {
			fmt.Fprintf(&sb, "(could not read sheet: %v)\n", err)
			continue
		}
		for _, row := range rows {
			sb.WriteString(strings.Join(row, " | "))
			sb.WriteByte('\n')
			cells += len(row)
		}
	}

	if cells == 0 || len([]rune(sb.String())) < minWorkbookChars {
		return "Warning: this Excel file is empty or contains no data."
	}
	return truncate(sb.String())
}

// extractXls handles the legacy binary Excel format, with the same sheet
// boundary layout as extractXlsx.
func extractXls(data []byte, fileName string) string {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil || wb == nil {
		// Legacy MIME is often declared for OOXML files; try that before
		// giving up.
		if looksLikeZip(data) {
			return extractXlsx(data, fileName)
		}
		return fmt.Sprintf("Could not read this Excel file.\nError: %v", err)
	}

	numSheets := wb.NumSheets()
	var sb strings.Builder
	fmt.Fprintf(&sb, "File: %s\nSheets: %d\n", fileName, numSheets)

	var cells int
	for i := 0; i < numSheets; i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		writeSheetBoundary(&sb, i+1, sheet.Name)
		for j := 0; j <= int(sheet.MaxRow); j++ {
			row := sheet.Row(j)
			if row == nil {
				continue
			}
			var fields []string
			for k := row.FirstCol(); k <= row.LastCol(); k++ {
				fields = append(fields, row.Col(k))
			}
			sb.WriteString(strings.Join(fields, " | "))
			sb.WriteByte('\n')
			cells += len(fields)
		}
	}

	if cells == 0 || len([]rune(sb.String())) < minWorkbookChars {
		return "Warning: this Excel file is empty or contains no data."
	}
	return truncate(sb.String())
}

func writeSheetBoundary(sb *strings.Builder, index int, name string) {
	sb.WriteByte('\n')
	sb.WriteString(sheetDivider)
	fmt.Fprintf(sb, "\nSheet %d: %s\n", index, name)
	sb.WriteString(sheetDivider)
	sb.WriteByte('\n')
}

// looksLikeZip reports whether data starts with the PK zip signature.
func looksLikeZip(data []byte) bool {
	return len(data) >= 2 && data[0] == 'P' && data[1] == 'K'
}

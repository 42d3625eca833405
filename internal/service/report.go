package service

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/pageza/forkful/backend/internal/types"
)

// ShoppingListPDF renders the aggregated shopping list as a one-page-or-more
// PDF document. When fontPath names a TTF file it is embedded so non-Latin
// ingredient names render; otherwise the built-in Helvetica is used.
func ShoppingListPDF(items []types.ShoppingItem, fontPath string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	family := "Helvetica"
	if fontPath != "" {
		family = "Report"
		pdf.AddUTF8Font(family, "", fontPath)
	}

	pdf.SetFont(family, "", 22)
	pdf.CellFormat(0, 12, "Shopping list", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "", 14)
	for i, item := range items {
		line := fmt.Sprintf("%d. %s - %d%s", i+1, item.Name, item.Amount, item.MeasurementUnit)
		pdf.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render shopping list: %w", err)
	}
	return buf.Bytes(), nil
}

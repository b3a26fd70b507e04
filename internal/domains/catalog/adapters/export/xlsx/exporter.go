// Package xlsx renders supplier catalogs as Excel workbooks.
package xlsx

import (
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
	"github.com/Apurer/ventrest-api/internal/domains/catalog/ports"
)

// ContentType is the media type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var _ ports.Exporter = (*Exporter)(nil)

var headers = []string{
	"ID", "Name", "Description", "Category", "Unit", "Price", "Stock",
	"Status", "MinOrderQuantity", "BulkDiscounts", "Tags", "Featured",
}

// Exporter writes one sheet with a header row and one row per product.
type Exporter struct {
	SheetName string
}

// NewExporter builds an exporter writing to the "Products" sheet.
func NewExporter() *Exporter {
	return &Exporter{SheetName: "Products"}
}

// Export writes the workbook to w.
func (e *Exporter) Export(w io.Writer, products []*domain.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(e.SheetName)
	if err != nil {
		return err
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}
	for _, p := range products {
		if p == nil {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID.String())
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(string(p.Category))
		row.AddCell().SetValue(string(p.Unit))
		row.AddCell().SetFloat(p.Price.InexactFloat64())
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetValue(string(p.Status))
		row.AddCell().SetInt(p.MinOrderQuantity)
		row.AddCell().SetValue(formatTiers(p.BulkDiscounts))
		row.AddCell().SetValue(strings.Join(p.Tags, ","))
		row.AddCell().SetBool(p.Featured)
	}
	return file.Write(w)
}

// formatTiers renders tiers as "10:5%,50:10%".
func formatTiers(tiers []domain.DiscountTier) string {
	parts := make([]string, 0, len(tiers))
	for _, t := range tiers {
		parts = append(parts, strconv.Itoa(t.MinQuantity)+":"+t.DiscountPercent.String()+"%")
	}
	return strings.Join(parts, ",")
}

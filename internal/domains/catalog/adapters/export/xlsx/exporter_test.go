package xlsx

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/Apurer/ventrest-api/internal/domains/catalog/domain"
)

func TestExportWritesHeaderAndRows(t *testing.T) {
	product, err := domain.NewProduct(uuid.New(), uuid.New(), "Pav Bhaji Masala", decimal.RequireFromString("45.5"), domain.CategoryIngredients, 12, domain.UnitPack)
	require.NoError(t, err)
	require.NoError(t, product.ReplaceDiscountTiers([]domain.DiscountTier{
		{MinQuantity: 10, DiscountPercent: decimal.NewFromInt(5)},
		{MinQuantity: 50, DiscountPercent: decimal.NewFromInt(12)},
	}))
	product.ReplaceTags([]string{"spice", "bulk"})

	var buf bytes.Buffer
	require.NoError(t, NewExporter().Export(&buf, []*domain.Product{product, nil}))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	assert.Equal(t, "Products", sheet.Name)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, "Name", sheet.Rows[0].Cells[1].String())
	row := sheet.Rows[1]
	assert.Equal(t, product.ID.String(), row.Cells[0].String())
	assert.Equal(t, "Pav Bhaji Masala", row.Cells[1].String())
	assert.Equal(t, "ingredients", row.Cells[3].String())
	assert.Equal(t, "12", row.Cells[6].String())
	assert.Equal(t, "10:5%,50:12%", row.Cells[9].String())
	assert.Equal(t, "spice,bulk", row.Cells[10].String())
}

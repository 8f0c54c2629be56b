package xlsxparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	// Show quantities with two decimals; the reader must see raw values.
	style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C10", style))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestRead(t *testing.T) {
	data := workbook(t, [][]any{
		{"Betegnelse", "Materialkorttekst", "Målkvantum", "KE", "KE"},
		{"Papp", "Papp og kartong", 12.5, "x", "KG"},
		{},
		{"Jern", "Jern og metaller", 3, "x", "ST"},
	})
	require.True(t, IsWorkbook(data))

	tbl, err := New().Read("export.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Betegnelse", "Materialkorttekst", "Målkvantum", "KE", "KE.1"}, tbl.Headers)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "12.5", tbl.Rows[0]["Målkvantum"])
	assert.Equal(t, "KG", tbl.Rows[0]["KE.1"])
	assert.Equal(t, "3", tbl.Rows[1]["Målkvantum"])
	assert.Equal(t, "export.xlsx", tbl.Source)
}

func TestRead_EmptySheet(t *testing.T) {
	tbl, err := New().Read("empty.xlsx", workbook(t, nil))
	require.NoError(t, err)
	assert.Empty(t, tbl.Headers)
	assert.Empty(t, tbl.Rows)
}

func TestRead_NotAWorkbook(t *testing.T) {
	data := []byte("Betegnelse,KE.1\n")
	assert.False(t, IsWorkbook(data))

	_, err := New().Read("export.xlsx", data)
	require.Error(t, err)
}

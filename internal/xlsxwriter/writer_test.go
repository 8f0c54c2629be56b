package xlsxwriter_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/TeoCir/IsekkKran/internal/types"
	"github.com/TeoCir/IsekkKran/internal/xlsxwriter"
)

func TestWrite(t *testing.T) {
	sheet := types.Sheet{
		Name:   "Fraksjonsoversikt",
		Header: []string{"Fraksjon", "KG", "ST"},
		Rows: [][]any{
			{"Papp", int64(5), nil},
			{"Jern", 3.3, int64(2)},
			{"SUM", 8.3, int64(2)},
		},
	}

	data, err := xlsxwriter.New().Write(sheet)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Fraksjonsoversikt"}, f.GetSheetList())

	rows, err := f.GetRows("Fraksjonsoversikt")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Fraksjon", "KG", "ST"},
		{"Papp", "5"},
		{"Jern", "3.3", "2"},
		{"SUM", "8.3", "2"},
	}, rows)

	empty, err := f.GetCellValue("Fraksjonsoversikt", "C2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWrite_DefaultSheetName(t *testing.T) {
	data, err := xlsxwriter.New().Write(types.Sheet{Header: []string{"A"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
}

func TestWrite_UnsupportedType(t *testing.T) {
	_, err := xlsxwriter.New().Write(types.Sheet{
		Name:   "X",
		Header: []string{"A"},
		Rows:   [][]any{{true}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported cell type bool")
}

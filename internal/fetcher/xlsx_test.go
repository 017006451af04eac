package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func licenseSheet() [][]string {
	return [][]string{
		{"License Number", "Business Name", "Status"},
		{"11223344-5501", "WASATCH GENERATOR CO", "ACTIVE"},
		{"11223355-5501", "DESERET ELECTRIC LLC", "EXPIRED"},
	}
}

func TestReadXLSX_Basic(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Licenses": licenseSheet()})

	rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"License Number", "Business Name", "Status"}, rows[0])
	assert.Equal(t, []string{"11223344-5501", "WASATCH GENERATOR CO", "ACTIVE"}, rows[1])
}

func TestReadXLSX_SkipRows(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Licenses": licenseSheet()})

	rows, err := ReadXLSX(path, XLSXOptions{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "11223344-5501", rows[0][0])
}

func TestReadXLSX_HeaderChannel(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Licenses": licenseSheet()})

	headerCh := make(chan []string, 1)
	rows, err := ReadXLSX(path, XLSXOptions{SkipRows: 1, HeaderCh: headerCh})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"License Number", "Business Name", "Status"}, <-headerCh)
}

func TestReadXLSX_SheetName(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Cover":    {{"Generated 2026-08-15"}},
		"Licenses": licenseSheet(),
	})

	rows, err := ReadXLSX(path, XLSXOptions{SheetName: "Licenses"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestReadXLSX_SheetNameNotFound(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Licenses": licenseSheet()})

	_, err := ReadXLSX(path, XLSXOptions{SheetName: "Contractors"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadXLSX_SheetIndexOutOfRange(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Licenses": licenseSheet()})

	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadXLSX_EmptySheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Licenses": {}})

	rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadXLSX_FileNotFound(t *testing.T) {
	_, err := ReadXLSX("/nonexistent/export.xlsx", XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx: open file")
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a workbook"), 0o644))

	_, err := ReadXLSX(path, XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx: open file")
}

func TestStreamXLSX_Basic(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Licenses": licenseSheet()})

	rowCh, errCh := StreamXLSX(context.Background(), path, XLSXOptions{})
	rows, err := drainRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "DESERET ELECTRIC LLC", rows[2][1])
}

func TestStreamXLSX_SkipAndHeader(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Licenses": licenseSheet()})

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamXLSX(context.Background(), path, XLSXOptions{
		SkipRows: 1,
		HeaderCh: headerCh,
	})
	rows, err := drainRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"License Number", "Business Name", "Status"}, <-headerCh)
}

func TestStreamXLSX_FileNotFound(t *testing.T) {
	rowCh, errCh := StreamXLSX(context.Background(), "/nonexistent/export.xlsx", XLSXOptions{})
	rows, err := drainRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx: open file")
	assert.Empty(t, rows)
}

func TestStreamXLSX_SheetNotFound(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Licenses": licenseSheet()})

	rowCh, errCh := StreamXLSX(context.Background(), path, XLSXOptions{SheetName: "Contractors"})
	_, err := drainRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestStreamXLSX_CancelMidStream(t *testing.T) {
	rows := make([][]string, 1000)
	for i := range rows {
		rows[i] = []string{"11223344-5501", "WASATCH GENERATOR CO", "ACTIVE"}
	}
	path := writeWorkbook(t, map[string][][]string{"Licenses": rows})

	ctx, cancel := context.WithCancel(context.Background())
	rowCh, errCh := StreamXLSX(ctx, path, XLSXOptions{})

	read := 0
	for range rowCh {
		read++
		if read >= 5 {
			cancel()
			break
		}
	}
	for range rowCh { //nolint:revive // drain
	}
	for range errCh { //nolint:revive // drain
	}
	cancel()
}

package xlsx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shareline"
)

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadWorkbook(t *testing.T) {
	data := workbook(t, [][]any{
		{"Name", "PAN", "Category", "SHARES AS ON 31st Jul 2021"},
		{"AQUA FUND", "AAACA0001A", "Mutual Funds", "1,20,000"},
		{"BLUEPOOL", "AAACB0001B", "FII", 5000},
	})

	table, err := Read(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "PAN", "Category", "SHARES AS ON 31st Jul 2021"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "AQUA FUND", table.Rows[0]["Name"])
	assert.Equal(t, "1,20,000", table.Rows[0]["SHARES AS ON 31st Jul 2021"])
	assert.Equal(t, "5000", table.Rows[1]["SHARES AS ON 31st Jul 2021"])
}

func TestReadWorkbookPadsShortRows(t *testing.T) {
	data := workbook(t, [][]any{
		{"Name", "PAN", "SHARES AS ON 2024-01-01"},
		{"SHORT ROW"},
	})

	table, err := Read(data)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "", table.Rows[0]["PAN"])
	assert.Equal(t, "", table.Rows[0]["SHARES AS ON 2024-01-01"])
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read([]byte("this is not a zip archive"))
	var perr *shareline.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, shareline.UnreadableWorkbook, perr.Reason)
}

func TestReadCSV(t *testing.T) {
	data := []byte("Name,PAN,SHARES AS ON 2024-01-01\nAQUA FUND,AAACA0001A,1000\nBLUEPOOL,AAACB0001B,2000,extra\n")

	table, err := ReadCSV(data)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1000", table.Rows[0]["SHARES AS ON 2024-01-01"])
	// the extra trailing cell is dropped, not an error
	assert.Equal(t, "2000", table.Rows[1]["SHARES AS ON 2024-01-01"])
}

func TestReadFileDispatch(t *testing.T) {
	csv := []byte("Name,SHARES AS ON 2024-01-01\nAQUA FUND,1000\n")
	table, err := ReadFile("upload.CSV", csv)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	_, err = ReadFile("upload.xlsx", csv)
	require.Error(t, err, "csv bytes are not a workbook")
}

func TestWorkbookToNormalizer(t *testing.T) {
	// end to end: workbook bytes to typed records
	data := workbook(t, [][]any{
		{"Name", "PAN", "Category", "SHARES AS ON 31st Jul 2021"},
		{"AQUA FUND", "AAACA0001A", "Mutual Funds", "1,20,000"},
	})
	table, err := Read(data)
	require.NoError(t, err)

	on, records, err := shareline.Normalize(table)
	require.NoError(t, err)
	assert.Equal(t, "2021-07-31", on.String())
	require.Len(t, records, 1)
	assert.True(t, records[0].Shares.Equal(shareline.Q(120000)))
}

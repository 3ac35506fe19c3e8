package xlsx

import (
	"bytes"
	"encoding/csv"
)

// csvRecords reads all CSV records, tolerating ragged row lengths: uploads
// routinely carry trailing commas or short rows.
func csvRecords(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

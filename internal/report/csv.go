package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

var venueHeader = []string{"code", "name", "nucleo", "structure", "capacity", "slots", "filled"}

// EncodeVenuesCSV renders the venue rows of a report, header first.
func EncodeVenuesCSV(rows []VenueRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(venueHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.Code,
			row.Name,
			row.Nucleo,
			row.Structure,
			strconv.Itoa(row.Capacity),
			strconv.Itoa(row.Slots),
			strconv.Itoa(row.Filled),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

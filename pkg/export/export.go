// Package export renders comparison results for files and pipes.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/fleetcost/trucktco/core/tco"
)

// WriteJSON writes the full result to w in JSON format.
func WriteJSON(w io.Writer, res tco.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes the discounted annual tables to w, one row per vehicle and
// year with a column per cost component.
func WriteCSV(w io.Writer, res tco.Result) error {
	cw := csv.NewWriter(w)
	header := []string{"vehicle", "year"}
	for _, c := range tco.ComponentOrder {
		header = append(header, string(c))
	}
	header = append(header, "total")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, table := range []tco.CostTable{res.ElectricDiscounted, res.DieselDiscounted} {
		for _, row := range table.Rows {
			rec := []string{table.Vehicle, strconv.Itoa(row.Year)}
			for _, c := range tco.ComponentOrder {
				rec = append(rec, formatAmount(row.Costs[c]))
			}
			rec = append(rec, formatAmount(row.Total))
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSensitivityCSV writes the sweep rows to w.
func WriteSensitivityCSV(w io.Writer, rows []tco.SensitivityRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"parameter", "low_delta", "high_delta"}); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			row.Parameter,
			formatAmount(row.LowDelta),
			formatAmount(row.HighDelta),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

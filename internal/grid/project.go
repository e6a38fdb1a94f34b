package grid

import "isolateledger/pkg/domain"

// Projection is the flat, export-ready form of the grid: header labels in
// display order and one string row per selected record. Total counts all
// rows that passed the filters, selected or not, so a front end can render
// its paging fold without the projector truncating anything.
type Projection struct {
	Header []string
	Rows   [][]string
	Total  int
}

// Project serializes the selected subset of the filtered rows over the
// visible columns. With nothing selected the projection is header-only.
func Project(rows []domain.Record, cols []Column, sel Selection) Projection {
	visible := Visible(cols)
	header := make([]string, len(visible))
	for i, col := range visible {
		header[i] = col.Label
	}
	proj := Projection{Header: header, Total: len(rows)}
	for _, rec := range rows {
		if !sel.Has(rec.Key) {
			continue
		}
		row := make([]string, len(visible))
		for i, col := range visible {
			row[i] = CellValue(rec, col)
		}
		proj.Rows = append(proj.Rows, row)
	}
	return proj
}

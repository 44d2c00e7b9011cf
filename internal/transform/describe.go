package transform

import "consensuscli/pkg/contracts/domain"

// Stats summarises a set of rows for logging
type Stats struct {
	Rows        int            `json:"rows"`
	Columns     int            `json:"columns"`
	ColumnNames []string       `json:"column_names"`
	EmptyCounts map[string]int `json:"empty_counts"`
}

// Describe counts rows and empty cells per column
func Describe(rows []domain.Row, columns []string) Stats {
	stats := Stats{
		Rows:        len(rows),
		Columns:     len(columns),
		ColumnNames: append([]string(nil), columns...),
		EmptyCounts: make(map[string]int, len(columns)),
	}

	for _, col := range columns {
		stats.EmptyCounts[col] = 0
	}
	for _, row := range rows {
		for _, col := range columns {
			if row[col] == "" {
				stats.EmptyCounts[col]++
			}
		}
	}

	return stats
}

// Complete returns the fraction of non-empty cells, or 1 for no rows
func (s Stats) Complete() float64 {
	cells := s.Rows * s.Columns
	if cells == 0 {
		return 1
	}
	empty := 0
	for _, n := range s.EmptyCounts {
		empty += n
	}
	return float64(cells-empty) / float64(cells)
}

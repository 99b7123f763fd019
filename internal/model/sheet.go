package model

// TableKind identifies which configured sheet a table came from.
type TableKind string

const (
	TableDetails       TableKind = "details"       // locomotive inventory
	TableSchedules     TableKind = "schedules"     // maintenance schedules
	TableModifications TableKind = "modifications" // modification checklists
	TableFailures      TableKind = "failures"      // failure incident logs
)

// RawCell is a cell as delivered by the data source. Both values may be
// absent; a null cell is the zero value.
type RawCell struct {
	Value     any     `json:"v,omitempty"`
	Formatted *string `json:"f,omitempty"`
}

// RawTable is the wire table: ordered column labels and rows of cells.
// Labels may be empty or duplicated.
type RawTable struct {
	Labels []string    `json:"labels"`
	Rows   [][]RawCell `json:"rows"`
}

// Record maps a column key (canonical or raw label) to a string value.
// Absent cells are stored as "" so comparisons stay total.
type Record map[string]string

// Table is a parsed sheet: records plus the column keys in sheet order.
type Table struct {
	Sheet   string    `json:"sheet"`
	Kind    TableKind `json:"kind"`
	Columns []string  `json:"columns"`
	Records []Record  `json:"records"`
}

package record

// Header is the fixed column layout of the watering records table.
var Header = []any{"Date", "Gardener", "Watered", "Notes", "Timestamp"}

// Columns is the width of a stored row.
const Columns = 5

// WateringRecord is one log entry, keyed by calendar date. Date is always the
// canonical YYYY-MM-DD form; Timestamp is the RFC 3339 instant of the last
// write and exists for audit/display only.
type WateringRecord struct {
	Date      string `json:"date"`
	Gardener  string `json:"gardener"`
	Watered   bool   `json:"watered"`
	Notes     string `json:"notes"`
	Timestamp string `json:"timestamp"`
}

// Row renders the record as a positional store row in Header order.
func (r WateringRecord) Row() []any {
	return []any{r.Date, r.Gardener, r.Watered, r.Notes, r.Timestamp}
}

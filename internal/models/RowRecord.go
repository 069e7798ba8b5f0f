package models

// RowRecord is one data row of the row log, addressed by header name.
// HasRating is false when the row is shorter than the header.
type RowRecord struct {
	Date      string
	Rating    string
	HasRating bool
}

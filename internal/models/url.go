package models

import "time"

// URL represents the durable pairing of an original URL and its short code.
// Records are immutable after creation: there are no update or delete
// operations on them.
type URL struct {
	// ID is the unique identifier for the record.
	ID int64
	// ShortCode is the code assigned to the original URL. It is unique
	// across all records.
	ShortCode string
	// OriginalURL is the original, full-length URL that the short code points to.
	// It is stored exactly as submitted and is unique across all records.
	OriginalURL string
	// CreatedAt is the timestamp indicating when the record was created.
	CreatedAt time.Time
}

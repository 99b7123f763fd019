package model

import "time"

// FetchLog is one sheet retrieval as recorded in the operational log.
type FetchLog struct {
	ID         int64     `json:"id"`
	Sheet      string    `json:"sheet"`
	Status     string    `json:"status"` // ok/error
	Rows       int       `json:"rows"`
	Bytes      int64     `json:"bytes"`
	Hash       string    `json:"hash"` // xxh3 of the raw payload
	DurationMs int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

// EditLog is one amendment forwarded to the remote edit endpoint.
type EditLog struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"requestId"`
	LocoNo     string    `json:"locoNo"`
	DateFailed string    `json:"dateFailed"`
	NewValue   string    `json:"newValue"`
	Variant    Variant   `json:"variant"`
	Status     string    `json:"status"` // success/partial/error
	Code       int       `json:"code"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

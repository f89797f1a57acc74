package models

import "time"

// QuotaSample is one recorded usage observation, kept in the local
// history database so trends survive restarts.
type QuotaSample struct {
	ID                int64
	AccountID         string
	Username          string
	UsedRequests      int64
	IncludedRequests  *int64
	RemainingRequests *int64
	Plan              *string
	RecordedAt        time.Time
}

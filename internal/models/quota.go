package models

import "encoding/json"

// Quota is a point-in-time Copilot usage snapshot, always attached to an
// Account and replaced wholesale on each refresh.
type Quota struct {
	UsedRequests      int64           `json:"used_requests"`
	IncludedRequests  *int64          `json:"included_requests"`
	RemainingRequests *int64          `json:"remaining_requests"`
	UsageItemsCount   int             `json:"usage_items_count"`
	CopilotPlan       *string         `json:"copilot_plan"`
	QuotaResetDate    *string         `json:"quota_reset_date"`
	RawData           json.RawMessage `json:"raw_data,omitempty"`
}

// Clone returns a deep copy of the quota snapshot.
func (q *Quota) Clone() Quota {
	clone := *q
	if q.RawData != nil {
		clone.RawData = make(json.RawMessage, len(q.RawData))
		copy(clone.RawData, q.RawData)
	}
	return clone
}

// UsedPercent returns used requests as a percentage of the included
// allotment, or 0 when the allotment is unknown or zero.
func (q *Quota) UsedPercent() float64 {
	if q.IncludedRequests == nil || *q.IncludedRequests <= 0 {
		return 0
	}
	return float64(q.UsedRequests) / float64(*q.IncludedRequests) * 100
}

// RemainingPercent returns remaining requests as a percentage of the
// included allotment, or 0 when the allotment is unknown or zero.
func (q *Quota) RemainingPercent() float64 {
	if q.IncludedRequests == nil || *q.IncludedRequests <= 0 || q.RemainingRequests == nil {
		return 0
	}
	return float64(*q.RemainingRequests) / float64(*q.IncludedRequests) * 100
}

// AccountWithStatus pairs an account with its current-account flag for
// display in the TUI.
type AccountWithStatus struct {
	Account
	IsCurrent bool `json:"is_current"`
}

package model

import "time"

// ResponseData is the test-taker's submitted payload. Only selected_option
// is specified today; the map shape leaves room for richer item kinds
// without breaking the wire contract.
type ResponseData map[string]any

// SelectedOption extracts the selected_option field, if present.
func (r ResponseData) SelectedOption() (string, bool) {
	v, ok := r["selected_option"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Response is the persisted shape of the aggregate's grandchild entity.
// A Response is pending iff SubmittedAt is nil.
type Response struct {
	ID           string
	SessionID    string
	ItemID       string
	Data         ResponseData
	IsCorrect    *bool
	RawScore     *float64
	PresentedAt  time.Time
	SubmittedAt  *time.Time
	TimeTaken    *int
}

// IsPending reports whether this response has not yet been submitted.
func (r Response) IsPending() bool {
	return r.SubmittedAt == nil
}

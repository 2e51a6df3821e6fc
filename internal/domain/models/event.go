package models

// ChangeOp is the row-level operation a change event reports.
type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
)

// ChangeEvent is a typed row-level change pushed by the store. The payload is
// deliberately thin: consumers re-fetch through the cache rather than trusting
// event contents, so a dropped or duplicated event can never corrupt state.
type ChangeEvent struct {
	Table  string   `json:"table"`
	Op     ChangeOp `json:"op"`
	UserID string   `json:"user_id"` // recipient / submitter the row belongs to
}

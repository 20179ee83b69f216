package models

// Delivery outcomes recorded in the delivery log.
const (
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
	DeliverySkipped = "skipped"
)

// Delivery is one row of the delivery log: the result of handing a payload
// to a single channel (or of skipping it entirely).
type Delivery struct {
	ID         int64  `json:"id"          db:"id"`
	ProjectKey string `json:"project_key" db:"project_key"`
	Channel    string `json:"channel"     db:"channel"`     // chat channel, e.g. #builds
	Notifier   string `json:"notifier"    db:"notifier"`    // slack | webhook | "" when skipped
	GateStatus string `json:"gate_status" db:"gate_status"` // PASS | WARN | FAIL | "" when no gate
	Outcome    string `json:"outcome"     db:"outcome"`     // sent | failed | skipped
	ErrorMsg   string `json:"error_msg"   db:"error_msg"`
	CreatedAt  string `json:"created_at"  db:"created_at"`
}

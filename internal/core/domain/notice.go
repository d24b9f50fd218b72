package domain

import "time"

// Severity classifies a notice for display and metrics.
type Severity string

const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
	SeverityWarn    Severity = "warn"
)

// Notice is the uniform, displayable form every failure or success payload
// is normalized into before it reaches the operator.
type Notice struct {
	ID       string    `json:"id" bson:"_id"`
	Severity Severity  `json:"severity" bson:"severity"`
	Summary  string    `json:"summary" bson:"summary"`
	Detail   string    `json:"detail" bson:"detail"`
	Source   string    `json:"source,omitempty" bson:"source,omitempty"`
	At       time.Time `json:"at" bson:"at"`
}

// Package events defines the payloads published through the outbox.
package events

import "time"

// Topics the dispatcher delivers to.
const (
	TopicActivityEvents = "activity_events"
	TopicCreditEvents   = "credit_events"
)

// Event types recorded in the outbox.
const (
	TypeActivityCreated = "activity.created"
	TypeCreditsGranted  = "credits.granted"
)

// ActivityCreated is emitted when a new activity is persisted.
type ActivityCreated struct {
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id"`
	Activity   string    `json:"activity"`
	Duration   float64   `json:"duration"`
	TimeShape  string    `json:"time_shape"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreditsGranted is emitted when verified payment credits land on a user.
type CreditsGranted struct {
	UserID    string    `json:"user_id"`
	Credits   int       `json:"credits"`
	Reference string    `json:"reference,omitempty"`
	GrantedAt time.Time `json:"granted_at"`
}

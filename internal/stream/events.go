package stream

import "time"

const (
	// ApplicationStatusTopic carries an event for every workflow transition.
	ApplicationStatusTopic = "application.status"

	// OfficerStatusTopic carries an event whenever an admin changes an officer account.
	OfficerStatusTopic = "officer.status"
)

type ApplicationEvent struct {
	ApplicationID     int64     `json:"application_id"`
	ApplicationNumber string    `json:"application_number"`
	FullNames         string    `json:"full_names"`
	Action            string    `json:"action"`
	Status            string    `json:"status"`
	IDNumber          string    `json:"id_number,omitempty"`
	OfficerID         *int64    `json:"officer_id,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type OfficerEvent struct {
	OfficerID  int64     `json:"officer_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

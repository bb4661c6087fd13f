package domain

import "time"

// RequestStatus enumerates generation request lifecycle states.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusProcessing RequestStatus = "processing"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusFailed     RequestStatus = "failed"
)

// GenerationRequest is one submission to the remote generative-music API.
// A request is created pending and transitioned by the worker as the remote
// task progresses; completed and failed are terminal.
type GenerationRequest struct {
	ID             string
	ContentID      string
	ExternalTaskID string
	Status         RequestStatus
	Prompt         string
	ModelID        string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

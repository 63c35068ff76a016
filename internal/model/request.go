package model

import "time"

type RequestStatus string

const RequestStatusRequested RequestStatus = "requested"

// VolunteerRequest is a volunteer's application against a post.
type VolunteerRequest struct {
	ID             string        `json:"id"`
	PostID         string        `json:"post_id" validate:"required,uuid"`
	VolunteerEmail string        `json:"volunteer_email" validate:"required,email"`
	VolunteerName  string        `json:"volunteer_name" validate:"max=200"`
	OrganizerEmail string        `json:"organizer_email" validate:"omitempty,email"`
	Suggestion     string        `json:"suggestion" validate:"max=2000"`
	Status         RequestStatus `json:"status"`
	CreatedAt      *time.Time    `json:"created_at,omitempty"`
}

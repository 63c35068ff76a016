package model

import "time"

type Post struct {
	ID               string     `json:"id"`
	Title            string     `json:"post_title" validate:"required,max=200"`
	Category         string     `json:"category" validate:"required,max=100"`
	Description      string     `json:"description" validate:"max=5000"`
	Location         string     `json:"location" validate:"max=200"`
	Thumbnail        string     `json:"thumbnail" validate:"omitempty,url"`
	OrganizerName    string     `json:"organizer_name" validate:"max=200"`
	OrganizerEmail   string     `json:"organizer_email" validate:"required,email"`
	Deadline         time.Time  `json:"deadline" validate:"required"`
	VolunteersTotal  int        `json:"volunteers_total" validate:"gte=1"`
	VolunteersNeeded int        `json:"volunteers_needed"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// PostFilter narrows a catalog listing. Empty fields match everything.
type PostFilter struct {
	Category string
	Search   string
}

type CatalogQuery struct {
	PostFilter
	Page int
	Size int
	Sort SortOrder
}

type PostCount struct {
	Total int64 `json:"total"`
}

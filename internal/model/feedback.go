package model

import "time"

// Feedback is a user's rating of the service
type Feedback struct {
	Rating    int       `json:"rating"` // 1-5
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Comments  string    `json:"comments,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

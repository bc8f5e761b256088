package models

import "time"

// Player is nested inside the game document, keyed by uid.
type Player struct {
	Username          string    `json:"username"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	IsHost            bool      `json:"is_host"`
	JoinedAt          time.Time `json:"joined_at"`
	Score             int       `json:"score"`
}

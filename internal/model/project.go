package model

import "time"

// DefaultProjectColor is used when a project has no color
const DefaultProjectColor = "#4ECDC4"

// Project groups tasks; reports use its name and color
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

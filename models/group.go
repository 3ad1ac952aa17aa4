package models

import "time"

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserGroup links a customer account to a group. Direct email assignment on
// an apartment works without any UserGroup row.
type UserGroup struct {
	UserID  string `json:"user_id"`
	GroupID string `json:"group_id"`
}

type GroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type MembershipRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

package model

import "time"

// Role enumerates platform roles.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleEduadmin   Role = "eduadmin"
	RoleUser       Role = "user"
)

// User represents a platform account (student, education-center admin, or superadmin).
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CenterID     *int      `json:"center_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

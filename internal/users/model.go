package users

import "time"

type User struct {
	ID           int64     `json:"id"`
	HubID        int64     `json:"hub_id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Capabilities []string  `json:"capabilities"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	FullName     string   `json:"full_name" validate:"required,max=200"`
	Password     string   `json:"password" validate:"required,min=8"`
	Capabilities []string `json:"capabilities"`
}

type UpdateUserRequest struct {
	FullName     *string   `json:"full_name" validate:"omitempty,max=200"`
	Password     *string   `json:"password" validate:"omitempty,min=8"`
	Capabilities *[]string `json:"capabilities"`
	IsActive     *bool     `json:"is_active"`
}

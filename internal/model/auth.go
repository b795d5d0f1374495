package model

import "go.mongodb.org/mongo-driver/v2/bson"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterRequest is the self-signup payload. Only learner and corporate
// accounts can sign up; other roles are created by an admin.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Name        string `json:"name" binding:"required,max=120"`
	Role        Role   `json:"role" binding:"required,oneof=INDIVIDUAL CORPORATE"`
	CompanyName string `json:"companyName" binding:"required_if=Role CORPORATE,max=200"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
	User        *User  `json:"user"`
}

// Viewer is the authenticated caller of a request.
type Viewer struct {
	ID    bson.ObjectID
	Email string
	Role  Role
}

// UserRegisteredEvent is published on the broker after a self-signup.
type UserRegisteredEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

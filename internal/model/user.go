package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleIndividual Role = "INDIVIDUAL"
	RoleCorporate  Role = "CORPORATE"
	RoleStaff      Role = "STAFF"
	RoleSubAdmin   Role = "SUB_ADMIN"
	RoleAdmin      Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleIndividual, RoleCorporate, RoleStaff, RoleSubAdmin, RoleAdmin:
		return true
	}
	return false
}

// IsAdmin covers both platform operator roles.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSubAdmin
}

type UserStatus string

const (
	UserStatusSubscribed    UserStatus = "subscribed"
	UserStatusNotSubscribed UserStatus = "not-subscribed"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusSubscribed || s == UserStatusNotSubscribed
}

type User struct {
	ID           bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string        `json:"email" bson:"email"`
	Name         string        `json:"name" bson:"name"`
	PasswordHash string        `json:"-" bson:"password_hash"`
	Role         Role          `json:"role" bson:"role"`
	Status       UserStatus    `json:"status" bson:"status"`
	LastLogin    *time.Time    `json:"lastLogin,omitempty" bson:"last_login,omitempty"`
	LastActivity *time.Time    `json:"lastActivity,omitempty" bson:"last_activity,omitempty"`
	CreatedAt    time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" bson:"updated_at"`
}

// IndividualProfile is the profile document of an INDIVIDUAL user.
type IndividualProfile struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    bson.ObjectID `json:"userId" bson:"user_id"`
	FirstName string        `json:"firstName" bson:"first_name"`
	LastName  string        `json:"lastName" bson:"last_name"`
	Phone     string        `json:"phone,omitempty" bson:"phone,omitempty"`
	Bio       string        `json:"bio,omitempty" bson:"bio,omitempty"`
	Interests []string      `json:"interests,omitempty" bson:"interests,omitempty"`
	CreatedAt time.Time     `json:"createdAt" bson:"created_at"`
}

type UserFilters struct {
	Role   Role
	Status UserStatus
	Search string
	Pagination
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=120"`
	Password string `json:"password" binding:"required,min=8"`
	Role     Role   `json:"role" binding:"required,oneof=INDIVIDUAL CORPORATE STAFF SUB_ADMIN ADMIN"`
}

type UpdateUserStatusRequest struct {
	Status UserStatus `json:"status" binding:"required,oneof=subscribed not-subscribed"`
}

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CorporateStatus string

const (
	CorporateStatusPending   CorporateStatus = "pending"
	CorporateStatusVerified  CorporateStatus = "verified"
	CorporateStatusActive    CorporateStatus = "active"
	CorporateStatusSuspended CorporateStatus = "suspended"
)

// CorporateProfile is the 1:1 profile of a CORPORATE user, keyed by OwnerID.
type CorporateProfile struct {
	ID            bson.ObjectID   `json:"id" bson:"_id,omitempty"`
	OwnerID       bson.ObjectID   `json:"ownerId" bson:"owner_id"`
	CompanyName   string          `json:"companyName" bson:"company_name"`
	Status        CorporateStatus `json:"status" bson:"status"`
	Industry      string          `json:"industry,omitempty" bson:"industry,omitempty"`
	EmployeeCount *int            `json:"employeeCount,omitempty" bson:"employee_count,omitempty"`
	Logo          string          `json:"logo,omitempty" bson:"logo,omitempty"`
	CreatedAt     time.Time       `json:"createdAt" bson:"created_at"`
}

type StaffStatus string

const (
	StaffStatusActive     StaffStatus = "active"
	StaffStatusInactive   StaffStatus = "inactive"
	StaffStatusTerminated StaffStatus = "terminated"
)

func (s StaffStatus) Valid() bool {
	switch s {
	case StaffStatusActive, StaffStatusInactive, StaffStatusTerminated:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// CorporateStaff places a STAFF user inside one corporate roster.
type CorporateStaff struct {
	ID             bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID         bson.ObjectID  `json:"userId" bson:"user_id"`
	CorporateID    bson.ObjectID  `json:"corporateId" bson:"corporate_id"`
	Role           string         `json:"role" bson:"role"`
	Department     string         `json:"department,omitempty" bson:"department,omitempty"`
	Status         StaffStatus    `json:"status" bson:"status"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus" bson:"approval_status"`
	JoinDate       time.Time      `json:"joinDate" bson:"join_date"`
	CreatedAt      time.Time      `json:"createdAt" bson:"created_at"`
}

type AddStaffRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required,max=120"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"required,max=80"`
	Department string `json:"department" binding:"omitempty,max=80"`
}

type UpdateStaffRequest struct {
	Role       *string      `json:"role" binding:"omitempty,max=80"`
	Department *string      `json:"department" binding:"omitempty,max=80"`
	Status     *StaffStatus `json:"status" binding:"omitempty,oneof=active inactive terminated"`
}

type StaffApprovalRequest struct {
	ApprovalStatus ApprovalStatus `json:"approvalStatus" binding:"required,oneof=pending approved rejected"`
}

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is one mutating API call, persisted in Postgres.
type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ActorID    string          `json:"actorId" db:"actor_id"`
	ActorRole  string          `json:"actorRole" db:"actor_role"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entityType" db:"entity_type"`
	EntityID   string          `json:"entityId" db:"entity_id"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"`
	IPAddress  string          `json:"ipAddress" db:"ip_address"`
	UserAgent  string          `json:"userAgent" db:"user_agent"`
	StatusCode int             `json:"statusCode" db:"status_code"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

const (
	// Action types
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionLogin  = "login"
)

type AuditFilters struct {
	ActorID    string
	EntityType string
	Action     string
	Pagination
}

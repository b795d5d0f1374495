package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"pageSize" form:"pageSize"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps page and page size into sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Skip is the number of documents to skip for the current page.
func (p Pagination) Skip() int64 {
	p = p.Normalize()
	return int64((p.Page - 1) * p.PageSize)
}

// DateRange bounds analytics queries. Zero values mean unbounded.
type DateRange struct {
	Start time.Time `json:"startDate,omitempty"`
	End   time.Time `json:"endDate,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// IDs converts hex ids into ObjectIDs, skipping malformed ones.
func IDs(hexes ...string) []bson.ObjectID {
	out := make([]bson.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		if id, err := bson.ObjectIDFromHex(h); err == nil {
			out = append(out, id)
		}
	}
	return out
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Group is a multi-user conversation. OwnerID is fixed at creation and
// the owner is always a member. Admins and Members are id sets stored as
// Postgres text arrays; membership mutations go through atomic
// array_append/array_remove statements in storage so concurrent writers
// cannot lose updates.
type Group struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Avatar    string         `json:"avatar"`
	Notice    string         `json:"notice"`
	OwnerID   string         `gorm:"not null" json:"owner_id"`
	Admins    pq.StringArray `gorm:"type:text[]" json:"admins"`
	Members   pq.StringArray `gorm:"type:text[]" json:"members"`
	CreatedAt time.Time      `json:"created_at"`
}

// BeforeCreate generates a UUID for the group if the ID is not set yet.
func (g *Group) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return
}

// IsMember reports whether id is in the member set.
func (g *Group) IsMember(id string) bool {
	for _, m := range g.Members {
		if m == id {
			return true
		}
	}
	return false
}

// IsAdmin reports whether id is in the stored admin set. The owner's
// authority is not stored here; use IsEffectiveAdmin for checks.
func (g *Group) IsAdmin(id string) bool {
	for _, a := range g.Admins {
		if a == id {
			return true
		}
	}
	return false
}

// IsEffectiveAdmin is the derived authority rule: effective admin =
// admin set ∪ {owner}. Evaluated at authorization time, never stored.
func (g *Group) IsEffectiveAdmin(id string) bool {
	return id == g.OwnerID || g.IsAdmin(id)
}

package service

import (
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// Viewer identifies the user acting on a request. The zero Viewer is
// anonymous.
type Viewer struct {
	ID   uint
	Role string
}

func (v Viewer) IsAnonymous() bool {
	return v.ID == 0
}

func (v Viewer) IsAdmin() bool {
	return v.Role == models.RoleAdmin
}

// CanModify reports whether the viewer may change content owned by ownerID.
func (v Viewer) CanModify(ownerID uint) bool {
	return !v.IsAnonymous() && (v.ID == ownerID || v.IsAdmin())
}

// Pagination selects one page of a list. Page numbers start at 1.
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Scope applies the page to a query. A non-positive Limit selects every row.
func (p Pagination) Scope(db *gorm.DB) *gorm.DB {
	if p.Limit <= 0 {
		return db
	}
	return db.Offset(p.Offset()).Limit(p.Limit)
}

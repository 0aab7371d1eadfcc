package scope

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/pkg/auth"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
)

// Access captures the caller identity resolved by the auth middleware. It is
// threaded explicitly through services and repos, never pulled from globals.
type Access struct {
	UserID       uuid.UUID
	ProfileID    *uuid.UUID
	BranchID     *uuid.UUID
	IsSupervisor bool
	IsAdmin      bool
}

// FromClaims builds an Access from validated JWT claims.
func FromClaims(claims *auth.AccessTokenClaims) Access {
	if claims == nil {
		return Access{}
	}
	return Access{
		UserID:       claims.UserID,
		ProfileID:    claims.ProfileID,
		BranchID:     claims.BranchID,
		IsSupervisor: claims.IsSupervisor,
		IsAdmin:      claims.IsAdmin(),
	}
}

// RequireBranch returns the caller's branch. A non-admin caller without a
// branch profile is a broken invariant, not a request error.
func (a Access) RequireBranch() (uuid.UUID, error) {
	if a.BranchID == nil || *a.BranchID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "caller has no branch profile")
	}
	return *a.BranchID, nil
}

// RequireProfile returns the caller's profile id with the same invariant.
func (a Access) RequireProfile() (uuid.UUID, error) {
	if a.ProfileID == nil || *a.ProfileID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "caller has no branch profile")
	}
	return *a.ProfileID, nil
}

// BranchColumn narrows a query to the caller's branch through the named
// column. Admin callers see everything.
func (a Access) BranchColumn(q *gorm.DB, column string) (*gorm.DB, error) {
	if a.IsAdmin {
		return q, nil
	}
	branchID, err := a.RequireBranch()
	if err != nil {
		return nil, err
	}
	return q.Where(column+" = ?", branchID), nil
}

// BranchJoin narrows a query whose branch lives on a joined table. The join
// clause is applied first, then the branch predicate on the joined column.
func (a Access) BranchJoin(q *gorm.DB, join, column string) (*gorm.DB, error) {
	if a.IsAdmin {
		return q, nil
	}
	branchID, err := a.RequireBranch()
	if err != nil {
		return nil, err
	}
	return q.Joins(join).Where(column+" = ?", branchID), nil
}

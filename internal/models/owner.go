package models

import "database/sql"

// OwnerKind distinguishes the three ownership states an action can run
// under. At most one owner is active per session.
type OwnerKind int

const (
	OwnerNone OwnerKind = iota
	OwnerRegistered
	OwnerAnonymous
)

// Owner is the single sum type used everywhere ownership is referenced.
// It collapses to the two nullable owner columns only at the storage
// boundary, via UserID and AnonymousUserID.
type Owner struct {
	Kind     OwnerKind `json:"kind"`
	ID       string    `json:"id,omitempty"`
	Email    string    `json:"email,omitempty"`    // registered only
	Username string    `json:"username,omitempty"` // anonymous only
}

func NoOwner() Owner {
	return Owner{Kind: OwnerNone}
}

func RegisteredOwner(id, email string) Owner {
	return Owner{Kind: OwnerRegistered, ID: id, Email: email}
}

func AnonymousOwner(id, username string) Owner {
	return Owner{Kind: OwnerAnonymous, ID: id, Username: username}
}

func (o Owner) IsNone() bool {
	return o.Kind == OwnerNone
}

// UserID returns the registered-user column value for this owner.
// NULL unless the owner is registered.
func (o Owner) UserID() sql.NullString {
	if o.Kind == OwnerRegistered {
		return sql.NullString{String: o.ID, Valid: true}
	}
	return sql.NullString{}
}

// AnonymousUserID returns the anonymous-profile column value for this
// owner. NULL unless the owner is anonymous.
func (o Owner) AnonymousUserID() sql.NullString {
	if o.Kind == OwnerAnonymous {
		return sql.NullString{String: o.ID, Valid: true}
	}
	return sql.NullString{}
}

// OwnerFromColumns rebuilds an Owner from the two nullable storage
// columns. Exactly one of them is expected to be set for persisted
// rows; both empty yields the None owner.
func OwnerFromColumns(userID, anonymousUserID sql.NullString) Owner {
	switch {
	case userID.Valid:
		return Owner{Kind: OwnerRegistered, ID: userID.String}
	case anonymousUserID.Valid:
		return Owner{Kind: OwnerAnonymous, ID: anonymousUserID.String}
	default:
		return NoOwner()
	}
}

// Package models holds the server-side domain records.
package models

import "strings"

// Role is the authorization role persisted with an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	// RoleBanned is stored as "ban", the value existing databases carry.
	RoleBanned Role = "ban"
)

// ParseRole maps a stored or user-supplied role name to a Role.
// "banned" is accepted as an alias of "ban".
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleBanned, "banned":
		return RoleBanned, true
	}
	return "", false
}

// Valid reports whether r is one of the stored role values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleBanned
}

// Account is one row of the accounts table. Timestamps are epoch
// milliseconds.
type Account struct {
	ID             int64
	AccountName    string
	PasswordDigest string
	UnionID        string
	MpOpenID       string
	DisplayName    string
	AvatarURL      string
	Profile        string
	Role           Role
	CreatedAt      int64
	UpdatedAt      int64
	Deleted        bool
}

// Clone returns a copy that shares no state with a.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func (a *Account) IsAdmin() bool  { return a != nil && a.Role == RoleAdmin }
func (a *Account) IsBanned() bool { return a != nil && a.Role == RoleBanned }

// AccountQuery is the predicate used by FindOne, Count and List. Empty fields
// do not constrain the match; soft-deleted rows never match.
type AccountQuery struct {
	ID             int64
	AccountName    string
	PasswordDigest string
	UnionID        string
	MpOpenID       string
	Role           Role
	// DisplayName matches as a case-insensitive substring.
	DisplayName string
}

// Matches evaluates q against a in memory, mirroring the SQL predicate.
func (q AccountQuery) Matches(a *Account) bool {
	if a == nil || a.Deleted {
		return false
	}
	if q.ID != 0 && a.ID != q.ID {
		return false
	}
	if q.AccountName != "" && a.AccountName != q.AccountName {
		return false
	}
	if q.PasswordDigest != "" && a.PasswordDigest != q.PasswordDigest {
		return false
	}
	if q.UnionID != "" && a.UnionID != q.UnionID {
		return false
	}
	if q.MpOpenID != "" && a.MpOpenID != q.MpOpenID {
		return false
	}
	if q.Role != "" && a.Role != q.Role {
		return false
	}
	if q.DisplayName != "" && !strings.Contains(strings.ToLower(a.DisplayName), strings.ToLower(q.DisplayName)) {
		return false
	}
	return true
}

// IsEmpty reports whether q places no constraint besides excluding deleted
// rows.
func (q AccountQuery) IsEmpty() bool {
	return q == AccountQuery{}
}

// Page bounds a List call. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

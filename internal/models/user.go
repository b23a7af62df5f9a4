package models

import "time"

// User role constants.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// InternalUser represents a user account stored in echo-server.
type InternalUser struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Role         string    `json:"role"`
	Provider     string    `json:"provider,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// UserKeyValue is a per-user configuration record (profile, digest
// preference, coping kit, calendar link).
type UserKeyValue struct {
	UserID   string    `json:"user_id"`
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	Version  int       `json:"version"`
	DateTime time.Time `json:"datetime"`
}

// Well-known per-user KV keys.
const (
	KVProfileFullName = "profile_full_name"
	KVDigestEnabled   = "digest_enabled"
	KVCopingKit       = "coping_kit"
	KVCalendarLink    = "calendar_link"
	KVTriggers        = "triggers"
)

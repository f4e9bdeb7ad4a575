// Package model defines the data structures used throughout the application.
package model

// User represents a registered account.
//
// PasswordHash is the fixed-length PBKDF2 output and Salt the random value it
// was derived with. Neither is ever rendered; the json "-" tags keep them out
// of any accidental serialization.
type User struct {
	ID           int64  `json:"id"       db:"id"`
	Username     string `json:"username" db:"username"` // unique, case-sensitive as stored
	PasswordHash []byte `json:"-"        db:"password"`
	Salt         []byte `json:"-"        db:"salt"`
}

// Package models holds the records persisted by the server.
package models

import "time"

// User is an account. Deleted accounts stay in the table and can no
// longer authenticate.
type User struct {
	ID           string
	Name         string
	PasswordHash string
	Deleted      bool
	CreatedAt    time.Time
}

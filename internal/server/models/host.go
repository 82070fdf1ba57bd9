package models

import "time"

// Host is a monitored machine owned by a user.
type Host struct {
	ID        int64
	UserID    string
	Name      string
	IP        string
	MemoryMB  int64
	DiskGB    int64
	Deleted   bool
	CreatedAt time.Time
}

package models

import "time"

// Reading is one utilisation sample pushed by an agent. Percentages are
// in the range [0, 100].
type Reading struct {
	ID          int64
	HostID      int64
	CPU         float64
	Memory      float64
	Disk        float64
	CollectedAt time.Time
}

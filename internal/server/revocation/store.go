// Package revocation holds the key/value store that tracks the currently
// valid refresh and agent tokens and the logout markers.
package revocation

import (
	"context"
	"strconv"
	"time"
)

// Store is the revocation store contract.
//
// Get returns common.ErrorNotFound for an absent or expired key. Delete of
// an absent key succeeds. Transport failures wrap common.ErrStore.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetWithExpire(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RefreshKey holds the single active refresh token of a user.
func RefreshKey(userID string) string {
	return "refresh:" + userID
}

// AgentKey holds the active agent token for a user and host pair.
func AgentKey(userID string, hostID int64) string {
	return "agent:" + userID + ":" + strconv.FormatInt(hostID, 10)
}

// LogoutKey marks a user as logged out.
func LogoutKey(userID string) string {
	return "logout:" + userID
}

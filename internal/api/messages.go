package api

import "time"

type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// TokenResponse answers Login and RefreshToken. RefreshToken is empty when
// a renewal kept the current refresh token.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type RegisterHostRequest struct {
	Name     string `json:"host_name"`
	IP       string `json:"host_ip,omitempty"`
	MemoryMB int64  `json:"memory_mb,omitempty"`
	DiskGB   int64  `json:"disk_gb,omitempty"`
}

type Host struct {
	ID        int64     `json:"host_id"`
	Name      string    `json:"host_name"`
	IP        string    `json:"host_ip,omitempty"`
	MemoryMB  int64     `json:"memory_mb,omitempty"`
	DiskGB    int64     `json:"disk_gb,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterHostResponse struct {
	Host       Host   `json:"host"`
	AgentToken string `json:"agent_token"`
	TokenType  string `json:"token_type"`
}

type ListHostsRequest struct{}

type ListHostsResponse struct {
	Hosts []Host `json:"hosts"`
}

type GetHostRequest struct {
	HostID int64 `json:"host_id"`
}

type GetHostResponse struct {
	Host Host `json:"host"`
}

// UpdateHostRequest changes the fields that are set; nil fields keep their
// value.
type UpdateHostRequest struct {
	HostID   int64   `json:"host_id"`
	Name     *string `json:"host_name,omitempty"`
	IP       *string `json:"host_ip,omitempty"`
	MemoryMB *int64  `json:"memory_mb,omitempty"`
	DiskGB   *int64  `json:"disk_gb,omitempty"`
}

type UpdateHostResponse struct {
	Host Host `json:"host"`
}

type DeleteHostRequest struct {
	HostID int64 `json:"host_id"`
}

type DeleteHostResponse struct{}

// PushReadingRequest carries one sample; a zero CollectedAt means "now".
type PushReadingRequest struct {
	CPU         float64   `json:"cpu"`
	Memory      float64   `json:"memory"`
	Disk        float64   `json:"disk"`
	CollectedAt time.Time `json:"collected_at"`
}

type PushReadingResponse struct {
	ReadingID int64 `json:"reading_id"`
}

type ListReadingsRequest struct {
	HostID int64     `json:"host_id"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Limit  int       `json:"limit,omitempty"`
}

type Reading struct {
	ID          int64     `json:"reading_id"`
	HostID      int64     `json:"host_id"`
	CPU         float64   `json:"cpu"`
	Memory      float64   `json:"memory"`
	Disk        float64   `json:"disk"`
	CollectedAt time.Time `json:"collected_at"`
}

type ListReadingsResponse struct {
	Readings []Reading `json:"readings"`
}

type LatestReadingRequest struct {
	HostID int64 `json:"host_id"`
}

type LatestReadingResponse struct {
	Reading Reading `json:"reading"`
}

type User struct {
	ID        string    `json:"user_id"`
	Name      string    `json:"name,omitempty"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
}

type GetUserRequest struct{}

type GetUserResponse struct {
	User User `json:"user"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

type UpdateUserResponse struct {
	User User `json:"user"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

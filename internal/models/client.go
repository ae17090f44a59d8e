package models

import "time"

// Client statuses.
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// Client is an advertiser account managed by the administrative layer.
// The pipeline only reads clients; creation and deletion happen elsewhere.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	AccountID string    `json:"account_id"` // external ads-platform account identifier
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the client is eligible for batch collection.
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

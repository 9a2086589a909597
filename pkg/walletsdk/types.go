package walletsdk

import "encoding/json"

// ============================================================================
// Badge Types
// ============================================================================

// Badge is a badge awarded to a wallet.
type Badge struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`

	// Unix timestamps in seconds
	CreatedAt  int64 `json:"createdAt"`
	UpdatedAt  int64 `json:"updatedAt"`
	ReceivedAt int64 `json:"receivedAt"`
}

// ============================================================================
// Notification Types
// ============================================================================

// NotificationQuery filters the notification list.
type NotificationQuery struct {
	// WalletID is required
	WalletID string

	// FromTimestamp is an optional RFC 3339 lower bound
	FromTimestamp string

	// Type optionally restricts the notification type (e.g. "message")
	Type string
}

func (q NotificationQuery) params() map[string]string {
	params := map[string]string{"walletId": q.WalletID}
	if q.FromTimestamp != "" {
		params["fromTimestamp"] = q.FromTimestamp
	}
	if q.Type != "" {
		params["type"] = q.Type
	}
	return params
}

// Notification is a single entry of the notification feed.
type Notification struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt int64           `json:"createdAt"`
}

// ============================================================================
// Connection Types
// ============================================================================

// ConnectionInvite asks another user to connect.
type ConnectionInvite struct {
	TargetUserID string `json:"targetUserId"`
	AccessKey    string `json:"accessKey"`
	WalletID     string `json:"walletId"`
}

// IdentityKeyUpdate is one connection whose identity keys change.
type IdentityKeyUpdate struct {
	SourceUserAccessKey string `json:"sourceUserAccessKey"`
	SourceIdentityKey   string `json:"sourceIdentityKey"`
	TargetIdentityKey   string `json:"targetIdentityKey"`
	TargetUserID        string `json:"targetUserId"`
}

// UpdateIdentityKeysRequest updates identity keys of existing connections.
type UpdateIdentityKeysRequest struct {
	WalletID    string              `json:"walletId"`
	Connections []IdentityKeyUpdate `json:"connections"`
}

// ResultResponse is the generic {result, message} answer of mutating endpoints.
type ResultResponse struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

package walletsdk

import (
	"context"
	"fmt"
	"net/http"
)

// Connections manages connections between wallets.
type Connections struct {
	client *Client
}

// Invite sends a connection invitation.
func (c *Connections) Invite(ctx context.Context, invite ConnectionInvite) (*ResultResponse, error) {
	if invite.TargetUserID == "" {
		return nil, fmt.Errorf("%w: targetUserId", ErrMissingField)
	}
	return c.post(ctx, "/connection/invite", invite)
}

// UpdateIdentityKeys replaces the identity keys of existing connections.
func (c *Connections) UpdateIdentityKeys(ctx context.Context, update UpdateIdentityKeysRequest) (*ResultResponse, error) {
	if update.Connections == nil {
		update.Connections = []IdentityKeyUpdate{}
	}
	return c.post(ctx, "/connection/update-identity-keys", update)
}

func (c *Connections) post(ctx context.Context, path string, body any) (*ResultResponse, error) {
	req := c.client.authorized(NewRequest(http.MethodPost, c.client.apiURL(path))).WithJSON(body)
	req, err := c.client.signer.Sign(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	var result ResultResponse
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

package walletsdk

import (
	"context"
	"net/http"
)

// Badges reads the badges of a wallet.
type Badges struct {
	client *Client
}

// My lists the badges received by walletID.
func (b *Badges) My(ctx context.Context, walletID string) ([]Badge, error) {
	req := b.client.authorized(NewRequest(http.MethodGet, b.client.apiURL("/badge/my"))).
		WithParams(map[string]string{"walletId": walletID})

	resp, err := b.client.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	var badges []Badge
	if err := resp.Decode(&badges); err != nil {
		return nil, err
	}
	return badges, nil
}

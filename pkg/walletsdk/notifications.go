package walletsdk

import (
	"context"
	"fmt"
	"net/http"
)

// Notifications reads the notification feed, served by the notifications
// service which may live on its own host.
type Notifications struct {
	client *Client
}

// List returns notifications matching q. Requests are signed.
func (n *Notifications) List(ctx context.Context, q NotificationQuery) ([]Notification, error) {
	if q.WalletID == "" {
		return nil, fmt.Errorf("%w: walletId", ErrMissingField)
	}

	req := n.client.authorized(NewRequest(http.MethodGet, n.client.notificationsURL("/notification/list"))).
		WithParams(q.params())
	req, err := n.client.signer.Sign(req)
	if err != nil {
		return nil, err
	}

	resp, err := n.client.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	var notifications []Notification
	if err := resp.Decode(&notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

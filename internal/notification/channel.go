package notification

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"

	"decor-agenda-backend/internal/feed"
	"decor-agenda-backend/internal/store"
)

// TenantChannel adapts the worker pool and the subscription store to the
// feed's PushChannel for one tenant.
type TenantChannel struct {
	tenantID string
	pool     *WorkerPool
	store    store.Store
	options  *webpush.Options
}

var _ feed.PushChannel = (*TenantChannel)(nil)

// NewTenantChannel binds push delivery to a tenant.
func NewTenantChannel(tenantID string, pool *WorkerPool, s store.Store, options *webpush.Options) *TenantChannel {
	return &TenantChannel{tenantID: tenantID, pool: pool, store: s, options: options}
}

// RequestPermission grants delivery when VAPID keys are configured and the
// tenant has at least one registered subscription to deliver to. A tenant
// with nothing to push to is a denial, not an error.
func (c *TenantChannel) RequestPermission(ctx context.Context) (bool, error) {
	if c.options == nil || c.options.VAPIDPublicKey == "" || c.options.VAPIDPrivateKey == "" {
		return false, nil
	}
	subs, err := c.store.ListSubscriptions(ctx, c.tenantID)
	if err != nil {
		return false, err
	}
	return len(subs) > 0, nil
}

// Notify queues the notification for asynchronous delivery.
func (c *TenantChannel) Notify(ctx context.Context, title, body string) error {
	c.pool.Dispatch(Job{TenantID: c.tenantID, Title: title, Body: body})
	return nil
}

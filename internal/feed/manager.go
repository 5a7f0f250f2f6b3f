package feed

import "sync"

// ChannelFactory binds a push channel to a tenant.
type ChannelFactory func(tenantID string) PushChannel

// Manager owns one feed per tenant, created lazily. Feeds are fully
// partitioned by tenant, so no cross-tenant locking is needed beyond the
// map itself.
type Manager struct {
	mu       sync.Mutex
	feeds    map[string]*Feed
	horizon  int
	channels ChannelFactory
}

// NewManager creates a feed manager. channels may be nil when push delivery
// is not configured; feeds then run in silent mode only.
func NewManager(horizonDays int, channels ChannelFactory) *Manager {
	return &Manager{
		feeds:    make(map[string]*Feed),
		horizon:  horizonDays,
		channels: channels,
	}
}

// Feed returns the tenant's feed, creating it on first use.
func (m *Manager) Feed(tenantID string) *Feed {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.feeds[tenantID]; ok {
		return f
	}
	var ch PushChannel
	if m.channels != nil {
		ch = m.channels(tenantID)
	}
	f := New(tenantID, m.horizon, ch)
	m.feeds[tenantID] = f
	return f
}

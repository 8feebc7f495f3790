// Package session holds the client's persisted state: the resend cooldown,
// the console token pair and a deferred redirect.
package session

import "sync"

// Keys under which session values are stored.
const (
	KeyCountdown    = "register_countdown"
	KeyAccessToken  = "console_token"
	KeyRefreshToken = "refresh_token"
	KeyRedirect     = "redirect_url"
)

// Store is a small string key/value store. Writes are last-writer-wins.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Clear removes key. Clearing an absent key is not an error.
	Clear(key string) error
}

// MemoryStore is a Store that lives for the process only.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Clear(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

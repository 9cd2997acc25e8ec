package memory

import "sync"

// Manager hands out at most one Store per user ID, so every goroutine in
// the process funnels writes through the same mutex. Opening the same user
// from two Manager instances (or two processes) is not supported.
type Manager struct {
	mu      sync.Mutex
	dataDir string
	stores  map[string]*Store
}

// NewManager returns a Manager rooted at dataDir.
func NewManager(dataDir string) *Manager {
	return &Manager{
		dataDir: dataDir,
		stores:  make(map[string]*Store),
	}
}

// Store returns the shared Store for userID, opening it on first request.
func (m *Manager) Store(userID string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[userID]; ok {
		return s, nil
	}
	s, err := Open(m.dataDir, userID)
	if err != nil {
		return nil, err
	}
	m.stores[userID] = s
	return s, nil
}

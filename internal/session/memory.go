package session

import "sync"

// MemoryStore keeps the session in process memory only
type MemoryStore struct {
	mu     sync.RWMutex
	values map[Field]string
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Field]string)}
}

func (m *MemoryStore) Get(field Field) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[field]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(field Field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if value == "" {
		delete(m.values, field)
		return nil
	}
	m.values[field] = value
	return nil
}

func (m *MemoryStore) SetAll(token string, role Role, userID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = make(map[Field]string, len(Fields))
	for f, v := range map[Field]string{
		FieldToken:  token,
		FieldRole:   string(role),
		FieldUserID: userID,
		FieldEmail:  email,
	} {
		if v != "" {
			m.values[f] = v
		}
	}
	return nil
}

func (m *MemoryStore) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = make(map[Field]string)
	return nil
}

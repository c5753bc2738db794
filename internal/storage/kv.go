package storage

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned by KV.Get for missing keys.
var ErrNotFound = errors.New("storage: key not found")

// KV is the persistence surface the client core depends on.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	List(prefix string) ([]string, error)
}

// Namespace scopes every key of a KV under prefix.
// SSH sessions use it to keep per-user caches in one database.
type Namespace struct {
	kv     KV
	prefix string
}

// NewNamespace wraps kv so all keys are stored as prefix+key.
func NewNamespace(kv KV, prefix string) *Namespace {
	return &Namespace{kv: kv, prefix: prefix}
}

func (n *Namespace) Get(key string) (string, error) { return n.kv.Get(n.prefix + key) }

func (n *Namespace) Set(key, value string) error { return n.kv.Set(n.prefix+key, value) }

func (n *Namespace) Delete(key string) error { return n.kv.Delete(n.prefix + key) }

// List returns matching keys with the namespace prefix stripped.
func (n *Namespace) List(prefix string) ([]string, error) {
	keys, err := n.kv.List(n.prefix + prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, n.prefix)
	}
	return keys, nil
}

// MemoryKV is an in-process KV, used when no database is available and in tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) List(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

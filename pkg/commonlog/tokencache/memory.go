package tokencache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore: Store в памяти процесса.
// Подходит для одного инстанса и для тестов: между процессами кэш не разделяется,
// поэтому каждый новый процесс заново запрашивает токен Lark.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	// now подменяется в тестах.
	now func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // нулевое значение: без истечения
}

// cleanupThreshold: количество записей, после которого удаляются истёкшие.
const cleanupThreshold = 100

// NewMemoryStore создаёт пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get возвращает значение, если оно есть и не истекло.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set сохраняет значение с TTL.
func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if len(m.entries) > cleanupThreshold {
		m.cleanupExpiredLocked(now)
	}

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// TTL возвращает оставшееся время жизни ключа. Для ключа без истечения и
// отсутствующего ключа возвращает 0.
func (m *MemoryStore) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expiresAt.IsZero() {
		return 0
	}
	return e.expiresAt.Sub(m.now())
}

// SetNowFunc подменяет источник времени. Используется в тестах.
func (m *MemoryStore) SetNowFunc(fn func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = fn
}

// cleanupExpiredLocked удаляет истёкшие записи. Вызывается под mutex.
func (m *MemoryStore) cleanupExpiredLocked(now time.Time) {
	for key, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}

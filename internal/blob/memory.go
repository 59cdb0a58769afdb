package blob

import (
	"context"
	stderrors "errors"
	"sync"
)

// ErrQuotaExceeded is returned by Memory.Set when the write would exceed the quota.
var ErrQuotaExceeded = stderrors.New("blob quota exceeded")

// Memory is an in-process Medium. A positive quota caps the total bytes of
// all stored values.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	quota  int
}

// NewMemory returns an empty Memory. quota <= 0 means unlimited.
func NewMemory(quota int) *Memory {
	return &Memory{values: make(map[string]string), quota: quota}
}

// Get implements Medium.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Medium.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		total := len(value)
		for k, v := range m.values {
			if k != key {
				total += len(v)
			}
		}
		if total > m.quota {
			return ErrQuotaExceeded
		}
	}
	m.values[key] = value
	return nil
}

// Remove implements Medium.
func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// SetQuota changes the byte quota. Existing values are kept even if they exceed it.
func (m *Memory) SetQuota(quota int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quota = quota
}

// Close implements io.Closer. It is a no-op.
func (m *Memory) Close() error {
	return nil
}

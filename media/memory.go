package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Memory is an in-process Store for tests and local development. It
// records every call so tests can assert on cleanup behavior, and can be
// told to fail removals to exercise the best-effort paths.
type Memory struct {
	mu         sync.Mutex
	nextID     int
	assets     map[string]Asset
	Removed    []string
	FailRemove bool
}

func NewMemory() *Memory {
	return &Memory{assets: map[string]Asset{}}
}

func (m *Memory) Upload(_ context.Context, file io.Reader) (Asset, error) {
	if _, err := io.Copy(io.Discard, file); err != nil {
		return Asset{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	asset := Asset{
		URL:      fmt.Sprintf("https://media.test/%d.png", m.nextID),
		PublicID: fmt.Sprintf("asset-%d", m.nextID),
	}
	m.assets[asset.PublicID] = asset
	return asset, nil
}

func (m *Memory) Remove(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRemove {
		return errors.New("media host unavailable")
	}
	delete(m.assets, publicID)
	m.Removed = append(m.Removed, publicID)
	return nil
}

func (m *Memory) RemoveMany(_ context.Context, publicIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRemove {
		return errors.New("media host unavailable")
	}
	for _, id := range publicIDs {
		delete(m.assets, id)
		m.Removed = append(m.Removed, id)
	}
	return nil
}

// Stored reports whether an uploaded asset is still present.
func (m *Memory) Stored(publicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.assets[publicID]
	return ok
}

package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type item struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process LRU cache with a TTL per entry.
type Memory struct {
	lru *lru.Cache[string, item]
	now func() time.Time
}

// NewMemory creates an LRU cache holding at most size entries.
func NewMemory(size int) (*Memory, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, fmt.Errorf("create LRU cache: %w", err)
	}
	return &Memory{lru: l, now: time.Now}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.lru.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if m.now().After(v.expiresAt) {
		m.lru.Remove(key)
		return nil, ErrMiss
	}
	return v.data, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.lru.Add(key, item{data: value, expiresAt: m.now().Add(ttl)})
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

func (m *Memory) Close() error {
	m.lru.Purge()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	return m.lru.Len()
}

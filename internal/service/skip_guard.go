package service

import (
	"context"
	"sync"
)

// memorySkipGuard 进程内的跳过计数，单实例部署或测试使用
type memorySkipGuard struct {
	mu     sync.Mutex
	counts map[uint64]int
}

func NewMemorySkipGuard() SkipGuard {
	return &memorySkipGuard{counts: make(map[uint64]int)}
}

func (g *memorySkipGuard) Count(_ context.Context, userID uint64) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[userID], nil
}

func (g *memorySkipGuard) Reserve(_ context.Context, userID uint64, limit int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.counts[userID] >= limit {
		return false, nil
	}
	g.counts[userID]++
	return true, nil
}

func (g *memorySkipGuard) Release(_ context.Context, userID uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.counts[userID] <= 1 {
		delete(g.counts, userID)
		return nil
	}
	g.counts[userID]--
	return nil
}

func (g *memorySkipGuard) Reset(_ context.Context, userID uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.counts, userID)
	return nil
}

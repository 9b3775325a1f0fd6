package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/writ/pkg/domain"
)

type nopStore struct{}

func (nopStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return nil
}
func (nopStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return nil, domain.ErrSessionNotFound
}
func (nopStore) Delete(ctx context.Context, sessionID string) error { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, &domain.State{})
		_ = mgr.Delete(ctx, sid)
	}

	if lockCount := mgr.locks.len(); lockCount != 0 {
		t.Errorf("memory leak: %d locks remaining after Delete", lockCount)
	}
}

func TestManager_WatchCleanup(t *testing.T) {
	mgr := NewManager(nopStore{})
	_, cancel := mgr.Watch("s1")
	_, cancel2 := mgr.Watch("s1")
	cancel()
	cancel2()

	if n := len(mgr.subs); n != 0 {
		t.Errorf("expected no subscriptions, got %d", n)
	}
}

package session

import (
	"github.com/aretw0/writ/pkg/domain"
)

const watchBuffer = 16

// Watch subscribes to the state diffs produced by this manager for one
// session. Slow readers miss diffs rather than block writers. The returned
// function cancels the subscription and closes the channel.
func (m *Manager) Watch(sessionID string) (<-chan *domain.StateDiff, func()) {
	ch := make(chan *domain.StateDiff, watchBuffer)

	m.subMu.Lock()
	set, ok := m.subs[sessionID]
	if !ok {
		set = make(map[chan *domain.StateDiff]struct{})
		m.subs[sessionID] = set
	}
	set[ch] = struct{}{}
	m.subMu.Unlock()

	cancel := func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		set, ok := m.subs[sessionID]
		if !ok {
			return
		}
		if _, ok := set[ch]; !ok {
			return
		}
		delete(set, ch)
		if len(set) == 0 {
			delete(m.subs, sessionID)
		}
		close(ch)
	}
	return ch, cancel
}

func (m *Manager) publish(sessionID string, prev, next *domain.State) {
	diff := domain.Diff(prev, next)
	if diff == nil {
		return
	}

	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subs[sessionID] {
		select {
		case ch <- diff:
		default:
			m.logger.Debug("dropping state diff for slow watcher", "session_id", sessionID)
		}
	}
}

package containers

import "sync"

// Subscription is a handle on a per-container change feed. Release it when
// the consumer goes away; releasing twice is harmless.
type Subscription struct {
	m           *Module
	containerID int
	id          uint64
	once        sync.Once
}

// ContainerID returns the container the subscription follows.
func (s *Subscription) ContainerID() int { return s.containerID }

// Release stops delivery.
func (s *Subscription) Release() {
	s.once.Do(func() { s.m.unsubscribe(s.containerID, s.id) })
}

// Subscribe delivers every slot change of container id to fn until the
// subscription is released or the container closes.
func (m *Module) Subscribe(id int, fn func(Change)) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSub++
	m.subs[id] = append(m.subs[id], subscriber{id: m.nextSub, fn: fn})
	return &Subscription{m: m, containerID: id, id: m.nextSub}
}

// Subscribers returns the number of live subscriptions for container id.
func (m *Module) Subscribers(id int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[id])
}

func (m *Module) unsubscribe(containerID int, subID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.subs[containerID]
	for i, s := range list {
		if s.id == subID {
			m.subs[containerID] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(m.subs[containerID]) == 0 {
		delete(m.subs, containerID)
	}
}

func (m *Module) notify(ch Change) {
	m.mu.RLock()
	list := m.subs[ch.ContainerID]
	fns := make([]func(Change), len(list))
	for i, s := range list {
		fns[i] = s.fn
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(ch)
	}
}

package store

// Subscribe returns a channel carrying the latest state after every change,
// starting with the current one. Slow readers only see the newest state.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	ch := make(chan State, 1)
	ch <- s.stateLocked()
	s.subscribers[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}

	return ch, unsubscribe
}

func (s *Store) publishLocked() {
	if len(s.subscribers) == 0 {
		return
	}

	state := s.stateLocked()
	for _, ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

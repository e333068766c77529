package services

import "sync"

// listeners is a set of callbacks notified in subscription order.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
	ids  []int
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	l.ids = append(l.ids, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.fns, id)
			for i, v := range l.ids {
				if v == id {
					l.ids = append(l.ids[:i], l.ids[i+1:]...)
					break
				}
			}
		})
	}
}

func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.fns))
	for _, id := range l.ids {
		if fn, ok := l.fns[id]; ok {
			fns = append(fns, fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

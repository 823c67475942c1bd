package service

import "sync"

// TicketLocks serializes commands per ticket. Commands on different tickets
// proceed independently; two commands on the same ticket never interleave.
type TicketLocks struct {
	mu    sync.Mutex
	locks map[string]*ticketLock
}

type ticketLock struct {
	mu   sync.Mutex
	refs int
}

// NewTicketLocks creates an empty registry.
func NewTicketLocks() *TicketLocks {
	return &TicketLocks{locks: make(map[string]*ticketLock)}
}

// Lock acquires the exclusive lock for a ticket key and returns the release
// function. Entries are reference-counted so the registry does not grow with
// every ticket ever touched.
func (l *TicketLocks) Lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &ticketLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

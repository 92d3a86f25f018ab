// Package replies remembers which output message answers which command
// message, so an edited command can be re-run into the same output.
package replies

import "sync"

// Key identifies a command message.
type Key struct {
	Chat    int64
	Message int
}

// Store is an in-memory LRU map from command messages to the output
// messages sent for them. It is safe for concurrent use.
type Store struct {
	mu  sync.Mutex
	cap int

	// Doubly-linked list for LRU ordering (most recent at head).
	head, tail *entry
	items      map[Key]*entry
}

type entry struct {
	key    Key
	output int
	prev   *entry
	next   *entry
}

// DefaultCapacity is the number of commands remembered by New(0).
const DefaultCapacity = 256

// New creates a Store holding up to cap entries.
// A capacity below 1 selects DefaultCapacity.
func New(cap int) *Store {
	if cap < 1 {
		cap = DefaultCapacity
	}
	return &Store{
		cap:   cap,
		items: make(map[Key]*entry, cap),
	}
}

// Put records output as the reply to key, evicting the least recently
// used entry when full.
func (s *Store) Put(key Key, output int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.items[key]; ok {
		e.output = output
		s.moveToFront(e)
		return
	}
	e := &entry{key: key, output: output}
	s.items[key] = e
	s.pushFront(e)
	if len(s.items) > s.cap {
		s.evict()
	}
}

// Get returns the output message recorded for key.
func (s *Store) Get(key Key) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok {
		return 0, false
	}
	s.moveToFront(e)
	return e.output, true
}

// Len returns the number of remembered commands.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) pushFront(e *entry) {
	e.prev = nil
	e.next = s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *Store) moveToFront(e *entry) {
	if s.head == e {
		return
	}
	s.remove(e)
	s.pushFront(e)
}

func (s *Store) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (s *Store) evict() {
	if s.tail == nil {
		return
	}
	e := s.tail
	s.remove(e)
	delete(s.items, e.key)
}

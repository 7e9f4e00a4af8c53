// Package filter holds the query filter shared by the terminal views.
package filter

import (
	"sync"

	"github.com/balkashynov/pilotlog/internal/logbook"
)

// Filter narrows the flights shown by a view
type Filter struct {
	DateFrom     string
	DateTo       string
	AsOf         string
	Crew         string
	Tail         string
	Airport      string
	AircraftType string
}

// Query converts the filter into a logbook query
func (f Filter) Query() logbook.Query {
	return logbook.Query{
		DateFrom:     f.DateFrom,
		DateTo:       f.DateTo,
		Crew:         f.Crew,
		Tail:         f.Tail,
		Airport:      f.Airport,
		AircraftType: f.AircraftType,
	}
}

// State is an observable Filter. Subscribers are called synchronously, in
// subscription order, after every change.
type State struct {
	mu          sync.Mutex
	current     Filter
	nextID      int
	subscribers map[int]func(Filter)
	order       []int
}

// NewState creates a state holding initial
func NewState(initial Filter) *State {
	return &State{
		current:     initial,
		subscribers: make(map[int]func(Filter)),
	}
}

// Get returns the current filter
func (s *State) Get() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the filter and notifies subscribers
func (s *State) Set(f Filter) {
	s.Update(func(Filter) Filter { return f })
}

// Update applies fn to the current filter and notifies subscribers
func (s *State) Update(fn func(Filter) Filter) {
	s.mu.Lock()
	s.current = fn(s.current)
	current := s.current
	callbacks := make([]func(Filter), 0, len(s.order))
	for _, id := range s.order {
		callbacks = append(callbacks, s.subscribers[id])
	}
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(current)
	}
}

// Subscribe registers fn and returns a func that removes it
func (s *State) Subscribe(fn func(Filter)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[id]; !ok {
			return
		}
		delete(s.subscribers, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

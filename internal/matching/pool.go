package matching

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a claimed name has no record
	ErrNotFound = errors.New("not found")
	// ErrAlreadyClaimed is returned when a name is claimed a second time
	ErrAlreadyClaimed = errors.New("used more than once")
	// ErrDuplicateRecord is returned when two records resolve to the same name
	ErrDuplicateRecord = errors.New("found two records")
)

type poolEntry[T any] struct {
	record T
	filled bool
}

// Pool is the registry of records wanted by manual directives. Every wanted name can be
// filled once by Offer and claimed once by Claim.
type Pool[T any] struct {
	kind    string
	entries map[string]*poolEntry[T]
	claimed map[string]bool
}

// NewPool creates a pool that accepts records for the given names
func NewPool[T any](kind string, names []string) *Pool[T] {
	p := &Pool[T]{
		kind:    kind,
		entries: make(map[string]*poolEntry[T], len(names)),
		claimed: make(map[string]bool),
	}
	for _, name := range names {
		p.entries[name] = &poolEntry[T]{}
	}
	return p
}

// Offer stores record under name, or under alias if name is not wanted. Records that
// are wanted under neither are ignored.
func (p *Pool[T]) Offer(record T, name, alias string) error {
	key := name
	entry, ok := p.entries[key]
	if !ok {
		key = alias
		entry, ok = p.entries[key]
	}
	if !ok {
		return nil
	}
	if entry.filled {
		return fmt.Errorf("%s %q: %w", p.kind, key, ErrDuplicateRecord)
	}
	entry.record = record
	entry.filled = true
	return nil
}

// Claim removes and returns the record stored under name
func (p *Pool[T]) Claim(name string) (T, error) {
	var zero T
	if p.claimed[name] {
		return zero, fmt.Errorf("%s %q %w", p.kind, name, ErrAlreadyClaimed)
	}
	entry, ok := p.entries[name]
	if !ok || !entry.filled {
		return zero, fmt.Errorf("%s %q %w", p.kind, name, ErrNotFound)
	}
	delete(p.entries, name)
	p.claimed[name] = true
	return entry.record, nil
}

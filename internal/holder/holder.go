// Package holder provides small generic value holders: a single item,
// pairs and trios, plus mutex-guarded and ordered variants.
package holder

import (
	"cmp"
	"fmt"
	"sync"
)

// Single holds one item.
type Single[T any] struct {
	Item T
}

func NewSingle[T any](item T) *Single[T] { return &Single[T]{Item: item} }

func (s *Single[T]) Get() T     { return s.Item }
func (s *Single[T]) Set(item T) { s.Item = item }

func (s *Single[T]) String() string { return fmt.Sprintf("Single [item=%v]", s.Item) }

// Pair holds two items.
type Pair[F, S any] struct {
	First  F
	Second S
}

func NewPair[F, S any](first F, second S) Pair[F, S] {
	return Pair[F, S]{First: first, Second: second}
}

func (p Pair[F, S]) String() string {
	return fmt.Sprintf("Pair [first=%v, second=%v]", p.First, p.Second)
}

// Trio holds three items.
type Trio[F, S, T any] struct {
	First  F
	Second S
	Third  T
}

func NewTrio[F, S, T any](first F, second S, third T) Trio[F, S, T] {
	return Trio[F, S, T]{First: first, Second: second, Third: third}
}

func (t Trio[F, S, T]) String() string {
	return fmt.Sprintf("Trio [first=%v, second=%v, third=%v]", t.First, t.Second, t.Third)
}

// SynchronizedSingle is a Single whose every read and write is mutually
// exclusive. It is meant for handing one value across goroutines; compound
// read-modify-write sequences need Update.
type SynchronizedSingle[T any] struct {
	mu   sync.Mutex
	item T
}

func NewSynchronizedSingle[T any](item T) *SynchronizedSingle[T] {
	return &SynchronizedSingle[T]{item: item}
}

func (s *SynchronizedSingle[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.item
}

func (s *SynchronizedSingle[T]) Set(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.item = item
}

// Update replaces the item with fn(item) under the lock and returns the new item.
func (s *SynchronizedSingle[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.item = fn(s.item)
	return s.item
}

// SynchronizedTrio guards its three items with a single lock.
// Each accessor is exclusive on its own; no invariant spans several calls.
type SynchronizedTrio[F, S, T any] struct {
	mu   sync.Mutex
	trio Trio[F, S, T]
}

func NewSynchronizedTrio[F, S, T any](first F, second S, third T) *SynchronizedTrio[F, S, T] {
	return &SynchronizedTrio[F, S, T]{trio: NewTrio(first, second, third)}
}

func (s *SynchronizedTrio[F, S, T]) First() F {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trio.First
}

func (s *SynchronizedTrio[F, S, T]) SetFirst(v F) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trio.First = v
}

func (s *SynchronizedTrio[F, S, T]) Second() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trio.Second
}

func (s *SynchronizedTrio[F, S, T]) SetSecond(v S) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trio.Second = v
}

func (s *SynchronizedTrio[F, S, T]) Third() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trio.Third
}

func (s *SynchronizedTrio[F, S, T]) SetThird(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trio.Third = v
}

// Snapshot returns a copy of all three items taken under one lock.
func (s *SynchronizedTrio[F, S, T]) Snapshot() Trio[F, S, T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trio
}

// ComparablePair orders lexicographically by First then Second.
type ComparablePair[F, S cmp.Ordered] struct {
	Pair[F, S]
}

func NewComparablePair[F, S cmp.Ordered](first F, second S) ComparablePair[F, S] {
	return ComparablePair[F, S]{Pair: NewPair(first, second)}
}

func (p ComparablePair[F, S]) Compare(o ComparablePair[F, S]) int {
	if c := cmp.Compare(p.First, o.First); c != 0 {
		return c
	}
	return cmp.Compare(p.Second, o.Second)
}

// ComparableTrio orders lexicographically by First, Second, Third.
type ComparableTrio[F, S, T cmp.Ordered] struct {
	Trio[F, S, T]
}

func NewComparableTrio[F, S, T cmp.Ordered](first F, second S, third T) ComparableTrio[F, S, T] {
	return ComparableTrio[F, S, T]{Trio: NewTrio(first, second, third)}
}

func (t ComparableTrio[F, S, T]) Compare(o ComparableTrio[F, S, T]) int {
	if c := cmp.Compare(t.First, o.First); c != 0 {
		return c
	}
	if c := cmp.Compare(t.Second, o.Second); c != 0 {
		return c
	}
	return cmp.Compare(t.Third, o.Third)
}

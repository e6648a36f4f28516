package impulse

import (
	"fmt"
	"iter"
)

// Handle refers to an object stored in a World. A handle stays invalid
// once its object is removed, even if the slot is reused.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero Handle, which never refers to anything.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d@%d", h.index, h.generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
	order      int // position in arena.order
}

// arena stores values in reusable slots and iterates them in insertion order.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	order []uint32
}

func (a *arena[T]) insert(value T) Handle {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}
	s := &a.slots[index]
	s.generation++
	s.value = value
	s.live = true
	s.order = len(a.order)
	a.order = append(a.order, index)
	return Handle{index: index, generation: s.generation}
}

func (a *arena[T]) get(h Handle) (T, bool) {
	var zero T
	if int(h.index) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[h.index]
	if !s.live || s.generation != h.generation {
		return zero, false
	}
	return s.value, true
}

func (a *arena[T]) remove(h Handle) (T, bool) {
	value, ok := a.get(h)
	if !ok {
		return value, false
	}
	a.removeIndex(h.index)
	a.compact()
	return value, true
}

// removeIndex frees the slot but leaves a tombstone in the order list.
func (a *arena[T]) removeIndex(index uint32) {
	s := &a.slots[index]
	var zero T
	s.value = zero
	s.live = false
	a.order[s.order] = ^uint32(0)
	a.free = append(a.free, index)
}

func (a *arena[T]) compact() {
	n := 0
	for _, index := range a.order {
		if index == ^uint32(0) {
			continue
		}
		a.slots[index].order = n
		a.order[n] = index
		n++
	}
	a.order = a.order[:n]
}

// removeFunc removes every value for which pred returns true, calling
// onRemove for each of them in insertion order.
func (a *arena[T]) removeFunc(pred func(T) bool, onRemove func(T)) int {
	removed := 0
	for _, index := range a.order {
		if index == ^uint32(0) {
			continue
		}
		value := a.slots[index].value
		if !pred(value) {
			continue
		}
		a.removeIndex(index)
		removed++
		if onRemove != nil {
			onRemove(value)
		}
	}
	if removed > 0 {
		a.compact()
	}
	return removed
}

func (a *arena[T]) len() int {
	return len(a.order)
}

// all yields live values in insertion order.
func (a *arena[T]) all() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		for _, index := range a.order {
			if index == ^uint32(0) {
				continue
			}
			s := &a.slots[index]
			if !yield(Handle{index: index, generation: s.generation}, s.value) {
				return
			}
		}
	}
}

// values appends the live values to dst in insertion order.
func (a *arena[T]) values(dst []T) []T {
	for _, v := range a.all() {
		dst = append(dst, v)
	}
	return dst
}

// Package alphabet provides the bijection between input symbols and the
// contiguous integer indices used by reusetree for O(1) edge-slot lookup.
package alphabet

import "fmt"

// Alphabet is a finite ordered set of symbols of type I, each mapped to a
// unique index in [0, Size()). Construction order is preserved and defines
// the index assignment.
type Alphabet[I comparable] struct {
	symbols []I
	index   map[I]int
}

// New builds an Alphabet from the given symbols. Duplicate symbols are an
// error: the alphabet must be a set, and silently deduplicating would hide
// a caller mistake in constructing it.
func New[I comparable](symbols ...I) (*Alphabet[I], error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("alphabet: at least one symbol is required")
	}

	idx := make(map[I]int, len(symbols))
	for i, sym := range symbols {
		if _, dup := idx[sym]; dup {
			return nil, fmt.Errorf("alphabet: duplicate symbol %v", sym)
		}
		idx[sym] = i
	}

	cp := make([]I, len(symbols))
	copy(cp, symbols)

	return &Alphabet[I]{symbols: cp, index: idx}, nil
}

// Size returns the number of symbols in the alphabet.
func (a *Alphabet[I]) Size() int {
	return len(a.symbols)
}

// IndexOf returns the index of sym and true, or (0, false) if sym is not a
// member of the alphabet.
func (a *Alphabet[I]) IndexOf(sym I) (int, bool) {
	i, ok := a.index[sym]
	return i, ok
}

// Symbol returns the symbol assigned to index i. It panics if i is out of
// range, consistent with slice indexing.
func (a *Alphabet[I]) Symbol(i int) I {
	return a.symbols[i]
}

// Symbols returns the alphabet's symbols in index order. The returned slice
// must not be mutated by the caller.
func (a *Alphabet[I]) Symbols() []I {
	return a.symbols
}

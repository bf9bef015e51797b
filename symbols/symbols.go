// Package symbols maps addresses to names for disassembly and register
// dumps.
package symbols

import (
	"cmp"
	"fmt"

	"golang.org/x/exp/slices"
)

// Symbol is a named address range. Size 0 means the extent is unknown and
// the symbol covers everything up to the next one.
type Symbol struct {
	Name string
	Addr uint64
	Size uint64
}

// Resolver looks up the symbol covering an address. With allowOffset false
// only exact matches succeed; otherwise the result may be "name+0xoff".
type Resolver interface {
	LookupAddress(addr uint64, allowOffset bool) (string, bool)
}

// Registry is a Resolver backed by a sorted symbol table.
type Registry struct {
	syms   []Symbol
	sorted bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sorted: true}
}

// Add registers a symbol.
func (r *Registry) Add(name string, addr, size uint64) {
	r.syms = append(r.syms, Symbol{Name: name, Addr: addr, Size: size})
	r.sorted = false
}

// Len returns the number of symbols.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.syms)
}

// Symbols returns the symbols in address order.
func (r *Registry) Symbols() []Symbol {
	r.sort()
	return slices.Clone(r.syms)
}

// LookupName finds a symbol by name.
func (r *Registry) LookupName(name string) (Symbol, bool) {
	i := slices.IndexFunc(r.syms, func(s Symbol) bool { return s.Name == name })
	if i < 0 {
		return Symbol{}, false
	}
	return r.syms[i], true
}

// LookupAddress returns the symbol at addr. A nil registry finds nothing.
func (r *Registry) LookupAddress(addr uint64, allowOffset bool) (string, bool) {
	if r == nil {
		return "", false
	}
	r.sort()

	i, found := slices.BinarySearchFunc(r.syms, addr, func(s Symbol, a uint64) int {
		return cmp.Compare(s.Addr, a)
	})
	if found {
		return r.syms[i].Name, true
	}
	if !allowOffset || i == 0 {
		return "", false
	}

	s := r.syms[i-1]
	if s.Size != 0 && addr >= s.Addr+s.Size {
		return "", false
	}

	return fmt.Sprintf("%s+0x%x", s.Name, addr-s.Addr), true
}

func (r *Registry) sort() {
	if r.sorted {
		return
	}
	slices.SortStableFunc(r.syms, func(a, b Symbol) int {
		return cmp.Compare(a.Addr, b.Addr)
	})
	r.sorted = true
}

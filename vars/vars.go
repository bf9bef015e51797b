// Package vars exposes component state as named, string-valued variables
// for debuggers and configuration front ends.
package vars

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errors returned by the registry.
var (
	ErrUnknownVariable   = errors.New("unknown variable")
	ErrReadOnly          = errors.New("variable is read-only")
	ErrDuplicateVariable = errors.New("duplicate variable")
	ErrBadValue          = errors.New("bad value")
)

// Variable is a named piece of state.
type Variable interface {
	String() string
	Set(value string) error
}

// Registry holds a component's variables in registration order.
type Registry struct {
	names []string
	vars  map[string]Variable
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{vars: make(map[string]Variable)}
}

// Add registers v under name.
func (r *Registry) Add(name string, v Variable) error {
	if _, ok := r.vars[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateVariable, name)
	}
	r.vars[name] = v
	r.names = append(r.names, name)
	return nil
}

// Lookup returns the variable registered under name.
func (r *Registry) Lookup(name string) (Variable, bool) {
	v, ok := r.vars[name]
	return v, ok
}

// Names returns the variable names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the current value of name.
func (r *Registry) Get(name string) (string, error) {
	v, ok := r.vars[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	return v.String(), nil
}

// Set assigns value to name.
func (r *Registry) Set(name, value string) error {
	v, ok := r.vars[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	if err := v.Set(value); err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	return nil
}

// Uint64Var is a variable bound to a uint64 owned by someone else.
type Uint64Var struct {
	p *uint64
}

// NewUint64 binds a variable to p.
func NewUint64(p *uint64) *Uint64Var {
	return &Uint64Var{p: p}
}

func (v *Uint64Var) String() string {
	return fmt.Sprintf("0x%x", *v.p)
}

// Set parses value as an unsigned or signed integer in any base strconv
// understands. Negative values are stored in two's complement.
func (v *Uint64Var) Set(value string) error {
	value = strings.TrimSpace(value)

	if u, err := strconv.ParseUint(value, 0, 64); err == nil {
		*v.p = u
		return nil
	}

	s, err := strconv.ParseInt(value, 0, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadValue, value)
	}
	*v.p = uint64(s)
	return nil
}

// ReadOnlyString is a string variable that cannot be set.
type ReadOnlyString string

func (c ReadOnlyString) String() string {
	return string(c)
}

// Set always fails.
func (c ReadOnlyString) Set(string) error {
	return ErrReadOnly
}

// Package functions holds the registry of builtin functions callable from
// VPL predicates. The registry follows an init-then-freeze lifecycle: the
// embedding runtime may register additional functions before the first
// validation, after which the registry is frozen and safe for concurrent
// lookups with no coordination.
package functions

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"vigil-hq/vigil/pkg/vpl/ast"
)

// ErrRegistryFrozen is returned by Register after Freeze has been called.
var ErrRegistryFrozen = errors.New("functions: registry is frozen")

// Signature declares a function's name, parameter kinds, and result kind.
// A variadic signature accepts any number of extra arguments beyond the
// declared parameters, each typed as the last declared parameter.
type Signature struct {
	Name     string
	Params   []ast.ValueKind
	Variadic bool
	Result   ast.ValueKind
}

// MinArgs returns the smallest argument count the signature accepts.
func (s Signature) MinArgs() int {
	return len(s.Params)
}

// AcceptsArity reports whether the signature accepts n arguments.
func (s Signature) AcceptsArity(n int) bool {
	if s.Variadic {
		return n >= len(s.Params)
	}
	return n == len(s.Params)
}

// ParamKind returns the expected kind of the i-th argument. For variadic
// signatures, positions past the declared parameters repeat the last one.
func (s Signature) ParamKind(i int) ast.ValueKind {
	if i < len(s.Params) {
		return s.Params[i]
	}
	if s.Variadic && len(s.Params) > 0 {
		return s.Params[len(s.Params)-1]
	}
	return ast.ValueAny
}

// String renders the signature as name(kind, kind, ...) kind.
func (s Signature) String() string {
	args := ""
	for i, p := range s.Params {
		if i > 0 {
			args += ", "
		}
		args += string(p)
	}
	if s.Variadic {
		args += "..."
	}
	return fmt.Sprintf("%s(%s) %s", s.Name, args, s.Result)
}

// Registry maps function names to signatures.
type Registry struct {
	mu     sync.RWMutex
	frozen bool
	sigs   map[string]Signature
}

// NewRegistry creates an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{sigs: map[string]Signature{}}
}

// Builtins creates a registry pre-populated with the standard VPL
// functions, still open for registration.
func Builtins() *Registry {
	r := NewRegistry()
	number := ast.ValueNumber
	for _, sig := range []Signature{
		{Name: "abs", Params: []ast.ValueKind{number}, Result: number},
		{Name: "ceil", Params: []ast.ValueKind{number}, Result: number},
		{Name: "floor", Params: []ast.ValueKind{number}, Result: number},
		{Name: "sqrt", Params: []ast.ValueKind{number}, Result: number},
		{Name: "log", Params: []ast.ValueKind{number}, Result: number},
		{Name: "len", Params: []ast.ValueKind{ast.ValueAny}, Result: number},
		{Name: "str", Params: []ast.ValueKind{ast.ValueAny}, Result: ast.ValueString},
		{Name: "int", Params: []ast.ValueKind{ast.ValueAny}, Result: number},
		{Name: "bool", Params: []ast.ValueKind{ast.ValueAny}, Result: ast.ValueBool},
		{Name: "min", Params: []ast.ValueKind{number, number}, Variadic: true, Result: number},
		{Name: "max", Params: []ast.ValueKind{number, number}, Variadic: true, Result: number},
	} {
		if err := r.Register(sig); err != nil {
			panic(err) // unreachable: fresh registry, distinct names
		}
	}
	return r
}

// Register adds a signature. It fails if the registry is frozen, the name
// is empty, or the name is already taken.
func (r *Registry) Register(sig Signature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	if sig.Name == "" {
		return errors.New("functions: signature requires a name")
	}
	if _, exists := r.sigs[sig.Name]; exists {
		return fmt.Errorf("functions: %q is already registered", sig.Name)
	}
	r.sigs[sig.Name] = sig
	return nil
}

// Freeze closes the registry for registration. Freezing twice is a no-op.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether the registry is closed for registration.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup returns the signature registered under the name.
func (r *Registry) Lookup(name string) (Signature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sig, ok := r.sigs[name]
	return sig, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sigs))
	for name := range r.sigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, populated with the builtins
// on first use. Callers extending it must do so before any validation and
// freeze it afterwards.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = Builtins()
	})
	return defaultRegistry
}

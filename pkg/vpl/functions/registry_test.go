package functions

import (
	"errors"
	"testing"

	"vigil-hq/vigil/pkg/vpl/ast"
)

func TestBuiltins(t *testing.T) {
	r := Builtins()

	tests := []struct {
		name       string
		minArgs    int
		variadic   bool
		result     ast.ValueKind
		acceptsOne bool
	}{
		{name: "abs", minArgs: 1, result: ast.ValueNumber, acceptsOne: true},
		{name: "len", minArgs: 1, result: ast.ValueNumber, acceptsOne: true},
		{name: "str", minArgs: 1, result: ast.ValueString, acceptsOne: true},
		{name: "bool", minArgs: 1, result: ast.ValueBool, acceptsOne: true},
		{name: "min", minArgs: 2, variadic: true, result: ast.ValueNumber},
		{name: "max", minArgs: 2, variadic: true, result: ast.ValueNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := r.Lookup(tt.name)
			if !ok {
				t.Fatalf("builtin %q not registered", tt.name)
			}
			if sig.MinArgs() != tt.minArgs {
				t.Errorf("MinArgs() = %d, want %d", sig.MinArgs(), tt.minArgs)
			}
			if sig.Variadic != tt.variadic {
				t.Errorf("Variadic = %v, want %v", sig.Variadic, tt.variadic)
			}
			if sig.Result != tt.result {
				t.Errorf("Result = %s, want %s", sig.Result, tt.result)
			}
			if sig.AcceptsArity(1) != tt.acceptsOne {
				t.Errorf("AcceptsArity(1) = %v, want %v", sig.AcceptsArity(1), tt.acceptsOne)
			}
		})
	}
}

func TestSignature_Variadic(t *testing.T) {
	r := Builtins()
	sig, ok := r.Lookup("min")
	if !ok {
		t.Fatal("min not registered")
	}
	if sig.AcceptsArity(1) {
		t.Error("min should require at least 2 arguments")
	}
	for _, n := range []int{2, 3, 7} {
		if !sig.AcceptsArity(n) {
			t.Errorf("AcceptsArity(%d) = false", n)
		}
	}
	if got := sig.ParamKind(5); got != ast.ValueNumber {
		t.Errorf("ParamKind(5) = %s, want %s", got, ast.ValueNumber)
	}
}

func TestRegistry_Lifecycle(t *testing.T) {
	r := NewRegistry()
	custom := Signature{Name: "distance", Params: []ast.ValueKind{ast.ValueAny, ast.ValueAny}, Result: ast.ValueNumber}

	if err := r.Register(custom); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(custom); err == nil {
		t.Error("duplicate registration accepted")
	}
	if err := r.Register(Signature{}); err == nil {
		t.Error("nameless registration accepted")
	}

	r.Freeze()
	if !r.Frozen() {
		t.Error("Frozen() = false after Freeze")
	}
	err := r.Register(Signature{Name: "late", Result: ast.ValueBool})
	if !errors.Is(err, ErrRegistryFrozen) {
		t.Errorf("Register after Freeze: error = %v, want ErrRegistryFrozen", err)
	}

	if _, ok := r.Lookup("distance"); !ok {
		t.Error("Lookup failed after Freeze")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(Signature{Name: name, Result: ast.ValueBool}); err != nil {
			t.Fatalf("Register(%q): %v", name, err)
		}
	}
	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}

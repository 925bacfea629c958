// Package capability implements the sandbox allow-list: the closed set of
// Python modules and builtins reachable from submitted code. The policy is
// allow-list, not deny-list: anything not enumerated here is absent from
// the sandbox namespace, so untrusted code cannot even discover it.
package capability

import (
	"fmt"
	"sort"
	"strings"
)

// defaultModules is the restricted standard-library surface: pure
// computation only. No filesystem, no network, no process control, no
// introspection modules that could be used to climb back out.
var defaultModules = []string{
	"array",
	"bisect",
	"cmath",
	"collections",
	"copy",
	"datetime",
	"decimal",
	"fractions",
	"functools",
	"heapq",
	"itertools",
	"json",
	"math",
	"operator",
	"random",
	"re",
	"statistics",
	"string",
	"textwrap",
	"time",
	"typing",
	"unicodedata",
}

// defaultBuiltins is the builtin surface exposed to the sandbox namespace.
// Notable absences: open, eval, exec, compile, globals, locals, vars,
// breakpoint, memoryview, and __import__ (replaced by the import guard).
var defaultBuiltins = []string{
	"abs", "all", "any", "ascii", "bin", "bool", "bytearray", "bytes",
	"callable", "chr", "complex", "dict", "divmod", "enumerate", "filter",
	"float", "format", "frozenset", "hasattr", "hash", "hex", "id", "input",
	"int", "isinstance", "issubclass", "iter", "len", "list", "map", "max",
	"min", "next", "object", "oct", "ord", "pow", "print", "range", "repr",
	"reversed", "round", "set", "slice", "sorted", "str", "sum", "tuple",
	"type", "zip",
	// class statements compile to a __build_class__ call.
	"__build_class__",
	// Exception types so user code can raise and catch its own errors.
	// EOFError included so input() exhaustion is catchable.
	"ArithmeticError", "AssertionError", "AttributeError", "BaseException",
	"EOFError", "Exception", "IndexError", "KeyError", "LookupError", "NameError",
	"NotImplementedError", "OverflowError", "RecursionError", "RuntimeError",
	"StopIteration", "TypeError", "ValueError", "ZeroDivisionError",
	"False", "None", "True", "NotImplemented", "Ellipsis",
}

// Filter is the allow-list consulted when the sandbox namespace is built.
// The zero value permits nothing; use Default.
type Filter struct {
	modules  map[string]struct{}
	builtins []string
}

// Default returns the filter with the stock module and builtin surface.
func Default() *Filter {
	return New(defaultModules, defaultBuiltins)
}

// New builds a filter from explicit module and builtin lists.
func New(modules, builtins []string) *Filter {
	f := &Filter{
		modules:  make(map[string]struct{}, len(modules)),
		builtins: append([]string(nil), builtins...),
	}
	for _, m := range modules {
		f.modules[m] = struct{}{}
	}
	return f
}

// IsPermitted reports whether an import of the named module is allowed.
// Dotted imports are checked by their root package: permitting "os.path"
// while denying "os" would be a hole, so the root decides.
func (f *Filter) IsPermitted(module string) bool {
	root, _, _ := strings.Cut(module, ".")
	_, ok := f.modules[root]
	return ok
}

// Modules returns the permitted module names, sorted.
func (f *Filter) Modules() []string {
	out := make([]string, 0, len(f.modules))
	for m := range f.modules {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Builtins returns the permitted builtin names in declaration order.
func (f *Filter) Builtins() []string {
	return append([]string(nil), f.builtins...)
}

// PythonSet renders names as a Python set literal, e.g. {'math', 're'},
// for splicing into the sandbox harness. An empty list renders as set()
// because {} would be a dict.
func PythonSet(names []string) string {
	if len(names) == 0 {
		return "set()"
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}

// Validate rejects names that could break out of a Python string literal
// when rendered. Filters are built from trusted config, but config is
// still operator input.
func Validate(names []string) error {
	for _, n := range names {
		if n == "" || strings.ContainsAny(n, "'\"\\\n\r") {
			return fmt.Errorf("invalid capability name %q", n)
		}
	}
	return nil
}

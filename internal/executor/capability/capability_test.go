package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPermitted(t *testing.T) {
	f := Default()

	tests := []struct {
		name   string
		module string
		want   bool
	}{
		{name: "math is allowed", module: "math", want: true},
		{name: "re is allowed", module: "re", want: true},
		{name: "json is allowed", module: "json", want: true},
		{name: "os is denied", module: "os", want: false},
		{name: "sys is denied", module: "sys", want: false},
		{name: "subprocess is denied", module: "subprocess", want: false},
		{name: "socket is denied", module: "socket", want: false},
		{name: "ctypes is denied", module: "ctypes", want: false},
		{name: "dotted import checked by root", module: "os.path", want: false},
		{name: "dotted allowed root", module: "collections.abc", want: true},
		{name: "empty name is denied", module: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IsPermitted(tt.module))
		})
	}
}

func TestDefaultHasNoIOCapability(t *testing.T) {
	f := Default()

	// None of these may ever appear on the default allow-list.
	for _, m := range []string{"os", "sys", "io", "subprocess", "socket",
		"shutil", "pathlib", "importlib", "builtins", "ctypes", "signal",
		"multiprocessing", "threading", "pickle", "urllib", "http"} {
		assert.False(t, f.IsPermitted(m), "module %q must not be permitted", m)
	}

	for _, b := range f.Builtins() {
		assert.NotContains(t, []string{"open", "eval", "exec", "compile",
			"__import__", "globals", "locals", "vars", "breakpoint"}, b)
	}
}

func TestDefaultSupportsOrdinaryPrograms(t *testing.T) {
	b := Default().Builtins()

	// class statements and input() exhaustion are plain terminating code
	// and must work inside the sandbox.
	assert.Contains(t, b, "__build_class__")
	assert.Contains(t, b, "EOFError")
	assert.Contains(t, b, "input")
}

func TestPythonSet(t *testing.T) {
	assert.Equal(t, "set()", PythonSet(nil))
	assert.Equal(t, "{'math'}", PythonSet([]string{"math"}))
	assert.Equal(t, "{'math', 're'}", PythonSet([]string{"math", "re"}))
}

func TestModulesSorted(t *testing.T) {
	f := New([]string{"re", "math", "json"}, nil)
	assert.Equal(t, []string{"json", "math", "re"}, f.Modules())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]string{"math", "collections"}))
	assert.Error(t, Validate([]string{""}))
	assert.Error(t, Validate([]string{"ma'th"}))
	assert.Error(t, Validate([]string{"evil\\"}))
	assert.Error(t, Validate([]string{"new\nline"}))
}

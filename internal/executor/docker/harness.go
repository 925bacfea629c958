package docker

import (
	"strconv"
	"strings"

	"github.com/sakif/code-sandbox/internal/executor/capability"
)

// Exit codes reported by the harness. Chosen above the usual shell range so
// they cannot collide with anything submitted code can produce on its own
// (user code never gets a reference to os._exit).
const (
	exitSyntaxError       = 42
	exitSecurityViolation = 43
	exitMemoryExceeded    = 44
)

// harnessTemplate is the trusted Python bootstrap run as
//
//	python3 -u -B -I -c <harness> <user code>
//
// It applies rlimits, compiles the submission (syntax errors never enter
// the sandbox), pre-imports the allow-listed modules, builds a namespace
// containing only allow-listed builtins plus a guarded __import__, and
// executes the submission inside it. A denied capability terminates the
// interpreter via os._exit, which user code cannot intercept with
// try/except.
//
// The guard is exec'd into its own namespace so that introspecting it from
// inside the sandbox (__globals__, __defaults__, __closure__) reaches only
// the preloaded mapping of permitted modules, the stream handles, and a
// bare exit primitive. It never holds the os module or the real
// __import__, and imports are served exclusively from the preloaded
// mapping.
const harnessTemplate = `
import sys as _sys, os as _os, builtins as _builtins, resource as _resource

_code = _sys.argv[1] if len(_sys.argv) > 1 else ''

def _die(code, msg):
    _sys.stdout.flush()
    _sys.stderr.write(msg + '\n')
    _sys.stderr.flush()
    _os._exit(code)

try:
    _resource.setrlimit(_resource.RLIMIT_CPU, (@CPU_SECONDS@, @CPU_SECONDS@))
    _resource.setrlimit(_resource.RLIMIT_AS, (@MEMORY_BYTES@, @MEMORY_BYTES@))
except (ValueError, OSError):
    pass

_ALLOWED_MODULES = @MODULES@
_ALLOWED_BUILTINS = @BUILTINS@

_preloaded = {}
for _name in _ALLOWED_MODULES:
    try:
        _preloaded[_name] = _builtins.__import__(_name)
    except ImportError:
        pass

try:
    _compiled = compile(_code, '<submission>', 'exec')
except SyntaxError as e:
    _die(@EXIT_SYNTAX@, 'SyntaxError: ' + str(e.msg) + ' (line ' + str(e.lineno) + ')')

_guard_env = {
    '__builtins__': {},
    '_preloaded': _preloaded,
    '_stdout': _sys.stdout,
    '_stderr': _sys.stderr,
    '_exit': _os._exit,
    '_getattr': getattr,
    '_ImportError': ImportError,
}
exec('''
def _guarded_import(name, globals=None, locals=None, fromlist=(), level=0):
    root = name.partition('.')[0]
    if level != 0 or root not in _preloaded:
        _stdout.flush()
        _stderr.write("capability '" + root + "' not permitted\\n")
        _stderr.flush()
        _exit(@EXIT_SECURITY@)
    module = _preloaded[root]
    if name == root:
        return module
    node = module
    for part in name.split('.')[1:]:
        node = _getattr(node, part, None)
        if node is None:
            raise _ImportError(name + ' is not available in the sandbox')
    return node if fromlist else module
''', _guard_env)

_safe = {}
for _name in _ALLOWED_BUILTINS:
    if hasattr(_builtins, _name):
        _safe[_name] = getattr(_builtins, _name)
_safe['__import__'] = _guard_env['_guarded_import']

_scope = {'__name__': '__main__', '__builtins__': _safe}

try:
    exec(_compiled, _scope)
except MemoryError:
    _die(@EXIT_MEMORY@, 'memory limit exceeded')
except BaseException as e:
    _die(1, type(e).__name__ + ': ' + str(e))

_sys.stdout.flush()
_sys.stderr.flush()
`

// buildHarness renders the bootstrap for the given config. The submitted
// code is never spliced into the script; it travels as a separate argv
// element, so no amount of quoting in it can alter the harness.
func buildHarness(cfg Config) string {
	cpuSeconds := int64(cfg.CPUTimeLimit.Seconds())
	if cpuSeconds < 1 {
		cpuSeconds = 1
	}
	// Leave the harness and interpreter some headroom under the container
	// ceiling so allocations fail as MemoryError instead of an OOM kill.
	memBytes := cfg.MemoryLimit - cfg.MemoryLimit/8

	r := strings.NewReplacer(
		"@CPU_SECONDS@", strconv.FormatInt(cpuSeconds, 10),
		"@MEMORY_BYTES@", strconv.FormatInt(memBytes, 10),
		"@MODULES@", capability.PythonSet(cfg.Capabilities.Modules()),
		"@BUILTINS@", capability.PythonSet(cfg.Capabilities.Builtins()),
		"@EXIT_SECURITY@", strconv.Itoa(exitSecurityViolation),
		"@EXIT_SYNTAX@", strconv.Itoa(exitSyntaxError),
		"@EXIT_MEMORY@", strconv.Itoa(exitMemoryExceeded),
	)
	return r.Replace(harnessTemplate)
}

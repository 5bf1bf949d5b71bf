// Package sandbox provides a goja-based runtime for server-side preflight
// of plain scripts found in generated artifacts. It is advisory only: the
// in-surface supervisor remains the authority on whether code runs. The
// runtime never sees React authoring syntax, which must be transformed
// before any evaluation and therefore can only be judged in the surface.
package sandbox

import (
	"context"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// Runtime wraps a goja VM with the globals untrusted scripts may touch
// removed or stubbed out.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex

	console   []LogEntry
	consoleMu sync.Mutex
}

// New creates a sandboxed runtime
func New(config Config) (*Runtime, error) {
	r := &Runtime{
		vm:     goja.New(),
		config: config,
	}

	r.vm.SetMaxCallStackSize(1024)

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}

	return r, nil
}

// Check parse-checks a script without executing it. A non-nil error means
// the script would fail at the transform/parse stage in the surface too.
func Check(script string) error {
	_, err := goja.Compile("preflight", script, false)
	return err
}

// Execute runs a plain script with a timeout and returns its completion
// value, captured console output, and any runtime error. The error is a
// diagnostic, not a render blocker.
func (r *Runtime) Execute(ctx context.Context, script string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	result := &Result{}

	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	done := make(chan struct{})
	go func() {
		select {
		case <-timer.C:
			r.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	r.consoleMu.Lock()
	r.console = r.console[:0]
	r.consoleMu.Unlock()

	val, err := r.vm.RunString(script)
	close(done)

	result.Duration = time.Since(start)

	r.consoleMu.Lock()
	result.Console = append([]LogEntry{}, r.console...)
	r.consoleMu.Unlock()

	if err != nil {
		result.Error = err
		return result, err
	}

	if val != nil && !goja.IsUndefined(val) && !goja.IsNull(val) {
		result.Value = val.Export()
	}

	return result, nil
}

// setupGlobals strips escape hatches and installs the stubs generated
// scripts commonly reach for.
func (r *Runtime) setupGlobals() error {
	r.vm.Set("require", goja.Undefined())
	r.vm.Set("process", goja.Undefined())
	r.vm.Set("module", goja.Undefined())
	r.vm.Set("exports", goja.Undefined())
	r.vm.Set("fetch", goja.Undefined())

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		console.Set("log", r.makeConsoleFunc("log"))
		console.Set("warn", r.makeConsoleFunc("warn"))
		console.Set("error", r.makeConsoleFunc("error"))
		console.Set("info", r.makeConsoleFunc("info"))
		r.vm.Set("console", console)
	}

	// Timers are no-ops: preflight judges top-level execution only.
	noop := func(call goja.FunctionCall) goja.Value { return goja.Undefined() }
	r.vm.Set("setTimeout", noop)
	r.vm.Set("setInterval", noop)
	r.vm.Set("clearTimeout", noop)
	r.vm.Set("clearInterval", noop)

	if r.config.StubDOM {
		if err := r.stubDOM(); err != nil {
			return err
		}
	}

	return nil
}

// stubDOM installs inert document/window objects so scripts that wire up
// event listeners at top level do not produce false failure signals.
func (r *Runtime) stubDOM() error {
	element := func(call goja.FunctionCall) goja.Value {
		elem := r.vm.NewObject()
		elem.Set("addEventListener", func(goja.FunctionCall) goja.Value { return goja.Undefined() })
		elem.Set("setAttribute", func(goja.FunctionCall) goja.Value { return goja.Undefined() })
		elem.Set("getAttribute", func(goja.FunctionCall) goja.Value { return goja.Null() })
		elem.Set("appendChild", func(goja.FunctionCall) goja.Value { return goja.Undefined() })
		elem.Set("classList", r.vm.NewObject())
		elem.Set("style", r.vm.NewObject())
		elem.Set("textContent", "")
		elem.Set("innerHTML", "")
		return elem
	}

	document := r.vm.NewObject()
	document.Set("getElementById", element)
	document.Set("querySelector", element)
	document.Set("createElement", element)
	document.Set("querySelectorAll", func(goja.FunctionCall) goja.Value {
		return r.vm.NewArray()
	})
	document.Set("addEventListener", func(goja.FunctionCall) goja.Value { return goja.Undefined() })
	document.Set("body", element(goja.FunctionCall{}))
	r.vm.Set("document", document)

	window := r.vm.NewObject()
	window.Set("addEventListener", func(goja.FunctionCall) goja.Value { return goja.Undefined() })
	window.Set("location", r.vm.NewObject())
	r.vm.Set("window", window)

	return nil
}

// makeConsoleFunc creates a console capture function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: msg,
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// Reset clears the runtime state between probes
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = goja.New()
	r.vm.SetMaxCallStackSize(1024)
	r.console = nil
	return r.setupGlobals()
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	return nil
}

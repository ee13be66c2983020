package jsconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/gnana997/twconfig/pkg/palette"
)

// Virtual modules served by the require shim in addition to plugin ids.
const (
	ModuleColors       = "tailwindcss/colors"
	ModuleDefaultTheme = "tailwindcss/defaultTheme"
)

// DefaultFontFamily is the toolkit's default font stacks as exposed by
// tailwindcss/defaultTheme.
var DefaultFontFamily = map[string][]string{
	"sans": {"ui-sans-serif", "system-ui", "sans-serif", `"Apple Color Emoji"`, `"Segoe UI Emoji"`, `"Segoe UI Symbol"`, `"Noto Color Emoji"`},
	"serif": {"ui-serif", "Georgia", "Cambria", `"Times New Roman"`, "Times", "serif"},
	"mono": {"ui-monospace", "SFMono-Regular", "Menlo", "Monaco", "Consolas", `"Liberation Mono"`, `"Courier New"`, "monospace"},
}

// ErrTimeout is returned when evaluation exceeds its deadline.
var ErrTimeout = errors.New("config evaluation timed out")

// prelude defines the plugin marker factory. Markers are callable so that
// require("plugin")(options) works; options are discarded.
const prelude = `
function __twconfigPlugin(id) {
  var p = function () { return p; };
  p.__twconfigPlugin = id;
  return p;
}
`

// normalize replaces plugin markers in module.exports.plugins with their ids.
const normalize = `
(function (cfg) {
  if (cfg && Array.isArray(cfg.plugins)) {
    cfg.plugins = cfg.plugins.map(function (p) {
      return (p && p.__twconfigPlugin) || p;
    });
  }
  return cfg;
})(module.exports)
`

// evaluator runs config sources in a fresh VM per call.
type evaluator struct {
	colorsJSON string
	themeJSON  string
	isPlugin   func(id string) bool
}

func newEvaluator(pal *palette.Palette, isPlugin func(string) bool) (*evaluator, error) {
	colors := make(map[string]any, len(pal.Singles)+len(pal.Scales))
	for name, v := range pal.Singles {
		colors[name] = v
	}
	for name, scale := range pal.Scales {
		colors[name] = scale
	}
	colorsJSON, err := json.Marshal(colors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode palette: %w", err)
	}
	themeJSON, err := json.Marshal(map[string]any{"fontFamily": DefaultFontFamily})
	if err != nil {
		return nil, fmt.Errorf("failed to encode default theme: %w", err)
	}
	return &evaluator{
		colorsJSON: string(colorsJSON),
		themeJSON:  string(themeJSON),
		isPlugin:   isPlugin,
	}, nil
}

type evalResult struct {
	exports map[string]any
	err     error
}

// eval runs source and returns the exported configuration object.
// The VM is interrupted when ctx is done.
func (e *evaluator) eval(ctx context.Context, source, name string) (map[string]any, error) {
	vm := goja.New()
	done := make(chan evalResult, 1)

	go func() {
		exports, err := e.run(vm, source, name)
		done <- evalResult{exports: exports, err: err}
	}()

	select {
	case <-ctx.Done():
		vm.Interrupt("timeout")
		return nil, fmt.Errorf("%s: %w: %w", name, ErrTimeout, ctx.Err())
	case res := <-done:
		return res.exports, res.err
	}
}

func (e *evaluator) run(vm *goja.Runtime, source, name string) (map[string]any, error) {
	if _, err := vm.RunString(prelude); err != nil {
		return nil, fmt.Errorf("failed to install prelude: %w", err)
	}

	module := vm.NewObject()
	exports := vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}
	process := vm.NewObject()
	if err := process.Set("env", vm.NewObject()); err != nil {
		return nil, err
	}

	for k, v := range map[string]any{
		"module":  module,
		"exports": exports,
		"process": process,
		"require": e.require(vm),
	} {
		if err := vm.Set(k, v); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", k, err)
		}
	}

	if _, err := vm.RunScript(name, source); err != nil {
		return nil, fmt.Errorf("failed to evaluate %s: %w", name, err)
	}

	value, err := vm.RunString(normalize)
	if err != nil {
		return nil, fmt.Errorf("failed to read module.exports: %w", err)
	}
	if goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, fmt.Errorf("%s: module.exports is empty", name)
	}
	cfg, ok := value.Export().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: module.exports must be an object", name)
	}
	return cfg, nil
}

// require returns the shim bound to vm. Unknown modules throw inside the VM.
func (e *evaluator) require(vm *goja.Runtime) func(goja.FunctionCall) goja.Value {
	cache := make(map[string]goja.Value)
	return func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).String()
		if v, ok := cache[id]; ok {
			return v
		}

		var (
			v   goja.Value
			err error
		)
		switch {
		case id == ModuleColors:
			v, err = vm.RunString("(" + e.colorsJSON + ")")
		case id == ModuleDefaultTheme:
			v, err = vm.RunString("(" + e.themeJSON + ")")
		case e.isPlugin(id):
			marker, ok := goja.AssertFunction(vm.Get("__twconfigPlugin"))
			if !ok {
				err = fmt.Errorf("plugin marker factory is missing")
				break
			}
			v, err = marker(goja.Undefined(), vm.ToValue(id))
		default:
			err = fmt.Errorf("module %q is not available", id)
		}
		if err != nil {
			panic(vm.NewGoError(err))
		}
		cache[id] = v
		return v
	}
}

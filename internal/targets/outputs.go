package targets

import (
	"fmt"
	"os"
	"path/filepath"
)

// MissingTargetError reports that an environment needs a wasm-bindgen target
// whose output was never produced (for example an incomplete prebuilt
// tarball). Synthesis never substitutes a different target.
type MissingTargetError struct {
	// Environment that requested the target, if the lookup came from
	// entrypoint synthesis. Empty otherwise.
	Environment Environment
	Target      Target
}

func (e *MissingTargetError) Error() string {
	if e.Environment != "" {
		return fmt.Sprintf("environment %q requires wasm-bindgen target %q, which was not produced", e.Environment, e.Target)
	}
	return fmt.Sprintf("wasm-bindgen target %q was not produced", e.Target)
}

// Output is the typed view over one target's already-generated binding
// output. Read-only after construction.
type Output struct {
	Target Target
	// Glue is the absolute path to the generated glue module.
	Glue string
	// Wasm is the absolute path to the generated binary artifact.
	Wasm string
	// Types is the absolute path to the generated .d.ts, if present.
	Types string
	// WasmBytes holds the binary artifact contents for the web target,
	// read once at load time so later synthesis stays free of I/O.
	WasmBytes []byte
}

// OutputSet is the typed view over the binding outputs of all targets that
// were actually produced. Constructed once per build, read-only afterward.
type OutputSet struct {
	// Name is the wasm module base name (crate name with underscores).
	Name    string
	outputs map[Target]Output
}

// LoadOutputSet scans bindgenDir (the wasm_bindgen/ tree) for each target's
// output. Targets whose glue module is absent are simply left out of the set;
// the miss surfaces as a MissingTargetError when something asks for them.
// Call after post-processing, so the nodejs glue already carries its .cjs
// extension.
func LoadOutputSet(bindgenDir, wasmName string) (*OutputSet, error) {
	set := &OutputSet{Name: wasmName, outputs: make(map[Target]Output)}

	for _, t := range AllTargets() {
		dir := filepath.Join(bindgenDir, t.DirName())
		glue := filepath.Join(dir, wasmName+"."+t.GlueExt())
		if _, err := os.Stat(glue); err != nil {
			continue
		}

		out := Output{
			Target: t,
			Glue:   glue,
			Wasm:   filepath.Join(dir, wasmName+"_bg.wasm"),
		}

		dts := filepath.Join(dir, wasmName+".d.ts")
		if _, err := os.Stat(dts); err == nil {
			out.Types = dts
		}

		if t == TargetWeb {
			bytes, err := os.ReadFile(out.Wasm)
			if err != nil {
				return nil, fmt.Errorf("reading wasm artifact for target %q: %w", t, err)
			}
			out.WasmBytes = bytes
		}

		set.outputs[t] = out
	}

	return set, nil
}

// Get returns the output for a target, or a MissingTargetError if that
// target was never produced.
func (s *OutputSet) Get(t Target) (Output, error) {
	out, ok := s.outputs[t]
	if !ok {
		return Output{}, &MissingTargetError{Target: t}
	}
	return out, nil
}

// GetFor is Get with the requesting environment recorded in the error.
func (s *OutputSet) GetFor(env Environment) (Output, error) {
	out, ok := s.outputs[env.Target()]
	if !ok {
		return Output{}, &MissingTargetError{Environment: env, Target: env.Target()}
	}
	return out, nil
}

// Has reports whether a target's output is present.
func (s *OutputSet) Has(t Target) bool {
	_, ok := s.outputs[t]
	return ok
}

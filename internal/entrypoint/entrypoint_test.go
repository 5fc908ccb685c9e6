package entrypoint

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wasmbodge/wasmbodge/internal/targets"
)

func testOutputSet(t *testing.T, wasmName string, present ...targets.Target) *targets.OutputSet {
	t.Helper()
	dir := t.TempDir()
	for _, target := range present {
		targetDir := filepath.Join(dir, target.DirName())
		if err := os.MkdirAll(targetDir, 0755); err != nil {
			t.Fatal(err)
		}
		glue := filepath.Join(targetDir, wasmName+"."+target.GlueExt())
		if err := os.WriteFile(glue, []byte("export function greet() {}\n"), 0644); err != nil {
			t.Fatal(err)
		}
		wasm := filepath.Join(targetDir, wasmName+"_bg.wasm")
		if err := os.WriteFile(wasm, []byte{0, 1, 2}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	set, err := targets.LoadOutputSet(dir, wasmName)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestSynthesizeShapes(t *testing.T) {
	set := testOutputSet(t, "widget", targets.AllTargets()...)

	tests := []struct {
		env      targets.Environment
		contains []string
		absent   []string
	}{
		{
			env:      targets.EnvBundler,
			contains: []string{"export * from '../wasm_bindgen/bundler/widget.js';"},
			absent:   []string{"initSync"},
		},
		{
			// The nodejs glue is CommonJS; its extension was renamed so
			// an ESM-first package still loads it as such.
			env:      targets.EnvNode,
			contains: []string{"export * from '../wasm_bindgen/nodejs/widget.cjs';"},
			absent:   []string{"initSync"},
		},
		{
			env: targets.EnvWeb,
			contains: []string{
				"import { initSync } from '../wasm_bindgen/web/widget.js';",
				"import { wasmBase64 } from './wasm-base64.js';",
				"Uint8Array.from(atob(wasmBase64), c => c.charCodeAt(0))",
				"initSync(bytes);",
				"export * from '../wasm_bindgen/web/widget.js';",
			},
		},
		{
			env: targets.EnvWorkerd,
			contains: []string{
				"import wasmModule from '../wasm_bindgen/web/widget_bg.wasm';",
				"initSync({ module: wasmModule });",
				"export * from '../wasm_bindgen/web/widget.js';",
			},
			absent: []string{"atob"},
		},
		{
			env: targets.EnvSlim,
			contains: []string{
				"export * from '../wasm_bindgen/web/widget.js';",
				"export { default } from '../wasm_bindgen/web/widget.js';",
			},
			absent: []string{"initSync("},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			mod, err := Synthesize(tt.env, set)
			if err != nil {
				t.Fatal(err)
			}
			if mod.System != ESM {
				t.Errorf("System = %q, want %q", mod.System, ESM)
			}
			if mod.Environment != tt.env {
				t.Errorf("Environment = %q, want %q", mod.Environment, tt.env)
			}
			for _, want := range tt.contains {
				if !strings.Contains(mod.Source, want) {
					t.Errorf("source missing %q:\n%s", want, mod.Source)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(mod.Source, unwanted) {
					t.Errorf("source should not contain %q:\n%s", unwanted, mod.Source)
				}
			}
		})
	}
}

func TestSynthesizeIsPure(t *testing.T) {
	set := testOutputSet(t, "widget", targets.AllTargets()...)

	for _, env := range targets.AllEnvironments() {
		first, err := Synthesize(env, set)
		if err != nil {
			t.Fatalf("%s: %v", env, err)
		}
		second, err := Synthesize(env, set)
		if err != nil {
			t.Fatalf("%s: %v", env, err)
		}
		if first.Source != second.Source {
			t.Errorf("%s: repeated synthesis produced different output", env)
		}
	}
}

func TestSynthesizeMissingTarget(t *testing.T) {
	// Only nodejs output exists; everything needing the web tree must fail
	// naming web, never substitute another target.
	set := testOutputSet(t, "widget", targets.TargetNodejs)

	for _, env := range []targets.Environment{targets.EnvWorkerd, targets.EnvWeb, targets.EnvSlim, targets.EnvWasmBase64} {
		_, err := Synthesize(env, set)
		var missing *targets.MissingTargetError
		if !errors.As(err, &missing) {
			t.Fatalf("%s: error = %v, want MissingTargetError", env, err)
		}
		if missing.Target != targets.TargetWeb {
			t.Errorf("%s: missing target = %q, want %q", env, missing.Target, targets.TargetWeb)
		}
	}
}

func TestSynthesizeCJS(t *testing.T) {
	set := testOutputSet(t, "widget", targets.AllTargets()...)

	mod, ok, err := SynthesizeCJS(targets.EnvNode, set)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("node should have a plain CJS shim")
	}
	want := "module.exports = require('../wasm_bindgen/nodejs/widget.cjs');\n"
	if mod.Source != want {
		t.Errorf("node cjs shim = %q, want %q", mod.Source, want)
	}

	for _, env := range []targets.Environment{targets.EnvWeb, targets.EnvSlim, targets.EnvBundler, targets.EnvWorkerd} {
		_, ok, err := SynthesizeCJS(env, set)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Errorf("%s should not have a plain CJS shim (bundled instead)", env)
		}
	}
}

func TestEmbedRoundTrip(t *testing.T) {
	original := []byte{0, 1, 2}
	source := Embed(original)

	want := "export const wasmBase64 = \"" + base64.StdEncoding.EncodeToString(original) + "\";\n"
	if source != want {
		t.Errorf("Embed = %q, want %q", source, want)
	}

	// Extract the constant and decode it back.
	parts := strings.Split(source, `"`)
	if len(parts) != 3 {
		t.Fatalf("unexpected module shape: %q", source)
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != string(original) {
		t.Errorf("round trip = %v, want %v", decoded, original)
	}

	// Re-encoding must reproduce the constant exactly.
	if reencoded := base64.StdEncoding.EncodeToString(decoded); reencoded != parts[1] {
		t.Errorf("re-encoded = %q, want %q", reencoded, parts[1])
	}
}

func TestEmbedViaSynthesize(t *testing.T) {
	set := testOutputSet(t, "widget", targets.TargetWeb)

	mod, err := Synthesize(targets.EnvWasmBase64, set)
	if err != nil {
		t.Fatal(err)
	}
	if mod.Source != Embed([]byte{0, 1, 2}) {
		t.Errorf("wasm-base64 entrypoint = %q, want embed of artifact bytes", mod.Source)
	}
}

func TestEmbedCJS(t *testing.T) {
	source := EmbedCJS([]byte{0, 1, 2})
	want := "module.exports.wasmBase64 = \"AAEC\";\n"
	if source != want {
		t.Errorf("EmbedCJS = %q, want %q", source, want)
	}
}

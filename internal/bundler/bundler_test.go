package bundler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeModules(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	util := `export function greet(name) { return "Hello " + name; }`
	if err := os.WriteFile(filepath.Join(dir, "util.js"), []byte(util), 0644); err != nil {
		t.Fatal(err)
	}

	entry := `import { greet } from './util.js';
export { greet };
`
	if err := os.WriteFile(filepath.Join(dir, "entry.js"), []byte(entry), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestCJSBundle(t *testing.T) {
	dir := writeModules(t)
	out := filepath.Join(dir, "entry.cjs")

	if err := CJSBundle(filepath.Join(dir, "entry.js"), out); err != nil {
		t.Fatal(err)
	}

	bundled, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	// The import chain must be inlined: CommonJS output with no ESM import left.
	if strings.Contains(string(bundled), "import {") {
		t.Error("CJS bundle still contains an ESM import")
	}
	if !strings.Contains(string(bundled), "Hello ") {
		t.Error("imported module was not inlined into the bundle")
	}
	if !strings.Contains(string(bundled), "module.exports") {
		t.Error("bundle is not CommonJS")
	}
}

func TestIIFEBundle(t *testing.T) {
	dir := writeModules(t)
	out := filepath.Join(dir, "index.js")

	if err := IIFEBundle(filepath.Join(dir, "entry.js"), out, "MyWidget"); err != nil {
		t.Fatal(err)
	}

	bundled, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bundled), "MyWidget") {
		t.Error("IIFE bundle does not assign the global name")
	}
}

func TestCJSBundleReportsErrors(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "broken.js")
	if err := os.WriteFile(entry, []byte("import { missing } from './nope.js';\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := CJSBundle(entry, filepath.Join(dir, "broken.cjs"))
	if err == nil {
		t.Fatal("expected bundling error for unresolvable import")
	}
	if !strings.Contains(err.Error(), "esbuild") {
		t.Errorf("error should mention esbuild: %v", err)
	}
}

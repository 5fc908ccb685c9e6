// Package manifest assembles the package.json for the generated npm package.
//
// The conditional exports tree is order-sensitive: host resolvers evaluate
// sibling conditions in declaration order and commit to the first structural
// match, so a generic import/require branch declared before a runtime-specific
// one would shadow it. Every object here is therefore an orderedmap, never a
// plain map, and the template document round-trips with its field order
// intact.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/orderedmap"

	"github.com/wasmbodge/wasmbodge/internal/targets"
)

// ErrMissingPackageName means the template carries no "name" and no default
// could be derived from the crate. The manifest is never emitted without one.
var ErrMissingPackageName = errors.New("package name missing: not in template and no crate name to derive it from")

// ErrManifestWrite wraps I/O failures at the atomic-write boundary.
var ErrManifestWrite = errors.New("manifest write failed")

// ownedFields are fully replaced by the generator; everything else in the
// template passes through verbatim.
var ownedFields = []string{"type", "main", "module", "types", "files", "exports"}

// Document is an order-preserving package.json document. Key order survives
// both parsing and serialization.
type Document = orderedmap.OrderedMap

// ParseTemplate parses a package.json template, preserving field order.
func ParseTemplate(data []byte) (*Document, error) {
	template := orderedmap.New()
	if err := json.Unmarshal(data, template); err != nil {
		return nil, fmt.Errorf("parsing package.json template: %w", err)
	}
	return template, nil
}

// PackageName resolves the npm package name: the template's "name" field if
// present, otherwise the crate name with underscores turned into hyphens.
func PackageName(template *Document, crateName string) (string, error) {
	if v, ok := template.Get("name"); ok {
		if name, ok := v.(string); ok && name != "" {
			return name, nil
		}
	}
	if crateName == "" {
		return "", ErrMissingPackageName
	}
	return strings.ReplaceAll(crateName, "_", "-"), nil
}

// Build merges the generated fields into a copy of the template. Owned fields
// (type, main, module, types, files, exports) are replaced outright; all
// other template fields pass through unchanged and in their original order.
// packageName must be non-empty or assembly fails with ErrMissingPackageName.
func Build(template *Document, packageName string) (*Document, error) {
	if packageName == "" {
		return nil, ErrMissingPackageName
	}

	out := orderedmap.New()
	for _, key := range template.Keys() {
		if isOwned(key) {
			continue
		}
		v, _ := template.Get(key)
		out.Set(key, v)
	}

	out.Set("type", "module")
	out.Set("main", "./"+targets.CJSEntrypoint(targets.EnvNode))
	out.Set("module", "./"+targets.ESMEntrypoint(targets.EnvBundler))
	out.Set("types", "./"+targets.TypesFile())
	out.Set("files", generatedFiles(packageName))
	out.Set("exports", buildExports(packageName))

	return out, nil
}

// generatedFiles enumerates everything the build emits: the generated output
// directories plus the loose declaration and binary files at the root.
func generatedFiles(packageName string) []string {
	return []string{
		"esm",
		"cjs",
		"iife",
		"wasm_bindgen",
		targets.TypesFile(),
		targets.StandaloneWasm(packageName),
	}
}

// buildExports assembles the conditional export tree from the declarative
// mapping in the targets package.
func buildExports(packageName string) *orderedmap.OrderedMap {
	root := orderedmap.New()

	// Types first so TypeScript resolves declarations before any runtime
	// branch matches.
	root.Set("types", "./"+targets.TypesFile())

	for _, m := range targets.RootExportOrder {
		esmPath := "./" + targets.ESMEntrypoint(m.ESM)
		cjsPath := "./" + targets.CJSEntrypoint(m.CJS)

		switch m.Condition {
		case "import":
			root.Set("import", esmPath)
		case "require":
			root.Set("require", cjsPath)
		default:
			// Runtime-specific condition: a two-key {import, require}
			// object. The require side always resolves to a CJS-safe
			// variant; CommonJS cannot synchronously import a native
			// wasm module or an ESM-only re-export chain.
			cond := orderedmap.New()
			cond.Set("import", esmPath)
			cond.Set("require", cjsPath)
			root.Set(m.Condition, cond)
		}
	}

	slim := orderedmap.New()
	slim.Set("types", "./"+targets.TypesFile())
	slim.Set("import", "./"+targets.ESMEntrypoint(targets.EnvSlim))
	slim.Set("require", "./"+targets.CJSEntrypoint(targets.EnvSlim))

	base64 := orderedmap.New()
	base64.Set("import", "./"+targets.WasmBase64ESM())
	base64.Set("require", "./"+targets.WasmBase64CJS())

	exports := orderedmap.New()
	exports.Set(".", root)
	exports.Set("./slim", slim)
	// Bare path: any consumer may fetch or require the raw artifact.
	exports.Set("./wasm", "./"+targets.StandaloneWasm(packageName))
	exports.Set("./wasm-base64", base64)
	exports.Set("./iife", "./"+targets.IIFEBundle())

	return exports
}

func isOwned(key string) bool {
	for _, f := range ownedFields {
		if key == f {
			return true
		}
	}
	return false
}

// Write commits the manifest to path atomically: marshal, write to a temp
// file in the same directory, then rename over the destination. An aborted
// build never leaves a half-written package.json behind. Failures wrap
// ErrManifestWrite.
func Write(path string, m *Document) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding: %v", ErrManifestWrite, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".package.json-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrManifestWrite, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", ErrManifestWrite, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: closing %s: %v", ErrManifestWrite, tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: renaming into place: %v", ErrManifestWrite, err)
	}
	return nil
}

// Package build sequences the wasmbodge pipeline: obtain the wasm-bindgen
// output trees, post-process them, synthesize entrypoints, bundle the CJS and
// IIFE variants, and finalize the package with its manifest. The phases run
// strictly in order over in-memory inputs; the manifest write at the end is
// the single externally observable commit point.
package build

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/iancoleman/strcase"

	"github.com/wasmbodge/wasmbodge/internal/bundler"
	"github.com/wasmbodge/wasmbodge/internal/entrypoint"
	"github.com/wasmbodge/wasmbodge/internal/manifest"
	"github.com/wasmbodge/wasmbodge/internal/postprocess"
	"github.com/wasmbodge/wasmbodge/internal/targets"
	"github.com/wasmbodge/wasmbodge/internal/wasmbindgen"
)

// Config is the build command's configuration, populated from CLI flags.
type Config struct {
	// CratePath is the Rust crate directory (must contain Cargo.toml).
	CratePath string
	// PackageJSON is the path to the template package.json.
	PackageJSON string
	// OutDir is the output directory for the assembled package.
	OutDir string
	// Profile is the cargo build profile.
	Profile string
	// WasmBindgenTar, if set, is a gzip'd tar of prebuilt wasm-bindgen
	// output used instead of running cargo and wasm-bindgen.
	WasmBindgenTar string
}

// Run executes the full build. On failure nothing generated is left in the
// output directory: the partial entrypoint set is removed and the manifest
// was never committed (its write is atomic and happens last).
func Run(cfg Config) (err error) {
	log.Printf("wasmbodge build starting...")

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	crateName, err := readCrateName(cfg.CratePath)
	if err != nil {
		return err
	}
	wasmName := strings.ReplaceAll(crateName, "-", "_")
	log.Printf("Crate name: %s", crateName)

	templateData, err := os.ReadFile(cfg.PackageJSON)
	if err != nil {
		return fmt.Errorf("reading package.json template: %w", err)
	}
	template, err := manifest.ParseTemplate(templateData)
	if err != nil {
		return err
	}
	packageName, err := manifest.PackageName(template, crateName)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			removeGenerated(cfg.OutDir, packageName)
		}
	}()

	bindgenDir := filepath.Join(cfg.OutDir, "wasm_bindgen")

	// Phase 1: produce or unpack the wasm-bindgen trees.
	if cfg.WasmBindgenTar != "" {
		log.Printf("Extracting prebuilt wasm-bindgen output from %s", cfg.WasmBindgenTar)
		if err := ExtractTarball(cfg.WasmBindgenTar, bindgenDir); err != nil {
			return err
		}
	} else {
		log.Printf("Phase 1: Building wasm...")
		if err := wasmbindgen.Build(cfg.CratePath, bindgenDir, cfg.Profile, crateName); err != nil {
			return err
		}
	}

	// Phase 2: corrective transforms on the raw binding output.
	log.Printf("Phase 2: Post-processing...")
	if err := postprocess.Run(bindgenDir, wasmName); err != nil {
		return err
	}

	set, err := targets.LoadOutputSet(bindgenDir, wasmName)
	if err != nil {
		return err
	}

	// Phase 3: synthesize entrypoints and bundle their variants.
	log.Printf("Phase 3: Generating entrypoints...")
	if err := writeEntrypoints(cfg.OutDir, set); err != nil {
		return err
	}
	log.Printf("  Bundling with esbuild...")
	if err := bundle(cfg.OutDir, packageName); err != nil {
		return err
	}

	// Phase 4: loose files and the manifest commit.
	log.Printf("Phase 4: Finalizing package...")
	if err := finalize(cfg.OutDir, set, template, packageName); err != nil {
		return err
	}

	log.Printf("Build complete! Output in %s", cfg.OutDir)
	return nil
}

// writeEntrypoints synthesizes every environment's ESM entrypoint plus the
// plain CJS shims that need no bundling.
func writeEntrypoints(outDir string, set *targets.OutputSet) error {
	for _, dir := range []string{"esm", "cjs", "iife"} {
		if err := os.MkdirAll(filepath.Join(outDir, dir), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	for _, env := range targets.AllEnvironments() {
		mod, err := entrypoint.Synthesize(env, set)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, filepath.FromSlash(targets.ESMEntrypoint(env)))
		if err := os.WriteFile(path, []byte(mod.Source), 0644); err != nil {
			return fmt.Errorf("writing %s entrypoint: %w", env, err)
		}

		cjsMod, ok, err := entrypoint.SynthesizeCJS(env, set)
		if err != nil {
			return err
		}
		if ok {
			path := filepath.Join(outDir, filepath.FromSlash(targets.CJSEntrypoint(env)))
			if err := os.WriteFile(path, []byte(cjsMod.Source), 0644); err != nil {
				return fmt.Errorf("writing %s cjs entrypoint: %w", env, err)
			}
		}
	}

	// CJS twin of the base64 module, generated directly from the bytes.
	webOut, err := set.GetFor(targets.EnvWasmBase64)
	if err != nil {
		return err
	}
	cjsBase64 := filepath.Join(outDir, filepath.FromSlash(targets.WasmBase64CJS()))
	if err := os.WriteFile(cjsBase64, []byte(entrypoint.EmbedCJS(webOut.WasmBytes)), 0644); err != nil {
		return fmt.Errorf("writing cjs base64 module: %w", err)
	}

	return nil
}

// bundle produces the IIFE bundle and the CJS twins that need esbuild.
func bundle(outDir, packageName string) error {
	webEntry := filepath.Join(outDir, filepath.FromSlash(targets.ESMEntrypoint(targets.EnvWeb)))
	iifeOut := filepath.Join(outDir, filepath.FromSlash(targets.IIFEBundle()))
	if err := bundler.IIFEBundle(webEntry, iifeOut, strcase.ToCamel(packageName)); err != nil {
		return err
	}

	for _, env := range targets.AllEnvironments() {
		if !env.NeedsCJSBundle() {
			continue
		}
		entry := filepath.Join(outDir, filepath.FromSlash(targets.ESMEntrypoint(env)))
		out := filepath.Join(outDir, filepath.FromSlash(targets.CJSEntrypoint(env)))
		if err := bundler.CJSBundle(entry, out); err != nil {
			return err
		}
	}
	return nil
}

// finalize copies the loose declaration and binary files to the output root
// and commits the manifest.
func finalize(outDir string, set *targets.OutputSet, template *manifest.Document, packageName string) error {
	nodeOut, err := set.Get(targets.TargetNodejs)
	if err != nil {
		return err
	}
	if nodeOut.Types != "" {
		if err := copyFile(nodeOut.Types, filepath.Join(outDir, targets.TypesFile())); err != nil {
			return fmt.Errorf("copying type declarations: %w", err)
		}
		log.Printf("  Copied type declarations to %s", targets.TypesFile())
	}

	webOut, err := set.Get(targets.TargetWeb)
	if err != nil {
		return err
	}
	wasmDest := filepath.Join(outDir, targets.StandaloneWasm(packageName))
	if err := os.WriteFile(wasmDest, webOut.WasmBytes, 0644); err != nil {
		return fmt.Errorf("copying wasm artifact: %w", err)
	}
	log.Printf("  Copied wasm to %s", targets.StandaloneWasm(packageName))

	pkg, err := manifest.Build(template, packageName)
	if err != nil {
		return err
	}
	if err := manifest.Write(filepath.Join(outDir, "package.json"), pkg); err != nil {
		return err
	}
	log.Printf("  Wrote package.json")
	return nil
}

// removeGenerated clears everything the build may have emitted so a failed
// run leaves no partial entrypoint set behind. The wasm_bindgen tree stays:
// it is input material, not generated output.
func removeGenerated(outDir, packageName string) {
	for _, dir := range []string{"esm", "cjs", "iife"} {
		_ = os.RemoveAll(filepath.Join(outDir, dir))
	}
	_ = os.Remove(filepath.Join(outDir, targets.TypesFile()))
	if packageName != "" {
		_ = os.Remove(filepath.Join(outDir, targets.StandaloneWasm(packageName)))
	}
}

// readCrateName extracts the crate name from Cargo.toml.
func readCrateName(cratePath string) (string, error) {
	var cargo struct {
		Package struct {
			Name string `toml:"name"`
		} `toml:"package"`
	}
	path := filepath.Join(cratePath, "Cargo.toml")
	if _, err := toml.DecodeFile(path, &cargo); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	if cargo.Package.Name == "" {
		return "", fmt.Errorf("no package name in %s", path)
	}
	return cargo.Package.Name, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

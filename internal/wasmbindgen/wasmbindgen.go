// Package wasmbindgen shells out to cargo and the wasm-bindgen CLI to produce
// the per-target binding output trees the rest of the pipeline consumes.
package wasmbindgen

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wasmbodge/wasmbodge/internal/targets"
)

// Build compiles the crate to wasm32-unknown-unknown and runs wasm-bindgen
// once per target, populating outputDir/wasm_bindgen-style subdirectories
// (one per target).
func Build(cratePath, outputDir, profile, crateName string) error {
	log.Printf("  Building Rust crate...")

	profileArg := "--profile=" + profile
	if profile == "release" {
		profileArg = "--release"
	}

	cargo := exec.Command("cargo", "build",
		"--target", "wasm32-unknown-unknown",
		profileArg,
		"--manifest-path", filepath.Join(cratePath, "Cargo.toml"))
	cargo.Stdout = os.Stdout
	cargo.Stderr = os.Stderr
	if err := cargo.Run(); err != nil {
		return fmt.Errorf("cargo build: %w", err)
	}

	targetDir, err := findTargetDir(cratePath)
	if err != nil {
		return err
	}

	wasmName := strings.ReplaceAll(crateName, "-", "_")
	wasmFile := filepath.Join(targetDir, "wasm32-unknown-unknown", profile, wasmName+".wasm")
	if _, err := os.Stat(wasmFile); err != nil {
		return fmt.Errorf("wasm artifact not found at %s: %w", wasmFile, err)
	}

	for _, t := range targets.AllTargets() {
		log.Printf("  Running wasm-bindgen for target %q...", t)
		outDir := filepath.Join(outputDir, t.DirName())
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", outDir, err)
		}

		bindgen := exec.Command("wasm-bindgen", wasmFile,
			"--out-dir", outDir,
			"--target", t.DirName(),
			"--weak-refs")
		bindgen.Stdout = os.Stdout
		bindgen.Stderr = os.Stderr
		if err := bindgen.Run(); err != nil {
			return fmt.Errorf("wasm-bindgen for target %q: %w", t, err)
		}
	}

	return nil
}

// findTargetDir asks cargo metadata for the workspace target directory,
// falling back to the crate-local target/ when metadata is unavailable.
func findTargetDir(cratePath string) (string, error) {
	out, err := exec.Command("cargo", "metadata",
		"--format-version=1", "--no-deps",
		"--manifest-path", filepath.Join(cratePath, "Cargo.toml")).Output()
	if err == nil {
		var meta struct {
			TargetDirectory string `json:"target_directory"`
		}
		if jsonErr := json.Unmarshal(out, &meta); jsonErr == nil && meta.TargetDirectory != "" {
			return meta.TargetDirectory, nil
		}
	}
	return filepath.Join(cratePath, "target"), nil
}

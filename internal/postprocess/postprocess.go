// Package postprocess applies the corrective transforms the raw wasm-bindgen
// output needs before entrypoints can be synthesized against it: renaming the
// nodejs glue to .cjs and suppressing bundler asset scanning of the wasm URL
// in the web glue. Nothing else mutates binding output.
package postprocess

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/wasmbodge/wasmbodge/internal/targets"
)

// PatternNotFoundError reports that the asset-scanner fix could not find the
// locator construction it patches. wasm-bindgen emits that construction with
// an exact textual form; its absence means this tool and the installed
// wasm-bindgen disagree about what the web glue looks like.
type PatternNotFoundError struct {
	File    string
	Pattern string
}

func (e *PatternNotFoundError) Error() string {
	return fmt.Sprintf("asset-scanner fix: pattern %q not found in %s (wasm-bindgen version mismatch?)", e.Pattern, e.File)
}

// ApplyAssetScannerFix inserts a @vite-ignore marker into the construction of
// the wasm URL from import.meta.url in the web glue source. The marker goes
// inside the argument list, not before the call: Vite re-scans only the
// matched span for the marker. Only the construction referencing
// {wasmName}_bg.wasm is touched; unrelated new URL(...) occurrences pass
// through untouched.
//
// Idempotent: already-fixed text is returned unchanged. If neither the plain
// nor the fixed form is present, the transform fails with
// *PatternNotFoundError rather than silently doing nothing.
func ApplyAssetScannerFix(source, wasmName string) (string, error) {
	plain := fmt.Sprintf("new URL('%s_bg.wasm', import.meta.url)", wasmName)
	fixed := fmt.Sprintf("new URL(/* @vite-ignore */ '%s_bg.wasm', import.meta.url)", wasmName)

	if strings.Contains(source, fixed) {
		return source, nil
	}
	if !strings.Contains(source, plain) {
		return "", &PatternNotFoundError{Pattern: plain}
	}
	return strings.ReplaceAll(source, plain, fixed), nil
}

// Run post-processes the wasm_bindgen/ tree in place:
//  1. renames the nodejs glue .js to .cjs (the package declares
//     "type": "module", so the CommonJS glue needs the explicit extension)
//  2. applies the asset-scanner fix to the web glue
//
// Targets absent from the tree are skipped here; synthesis reports them.
func Run(bindgenDir, wasmName string) error {
	nodejsDir := filepath.Join(bindgenDir, targets.TargetNodejs.DirName())
	jsFile := filepath.Join(nodejsDir, wasmName+".js")
	cjsFile := filepath.Join(nodejsDir, wasmName+".cjs")
	if _, err := os.Stat(jsFile); err == nil {
		log.Printf("  Renaming nodejs glue to %s", filepath.Base(cjsFile))
		if err := os.Rename(jsFile, cjsFile); err != nil {
			return fmt.Errorf("renaming nodejs glue: %w", err)
		}
	}

	webGlue := filepath.Join(bindgenDir, targets.TargetWeb.DirName(), wasmName+".js")
	if _, err := os.Stat(webGlue); err != nil {
		return nil
	}

	log.Printf("  Applying asset-scanner fix to web glue...")
	source, err := os.ReadFile(webGlue)
	if err != nil {
		return fmt.Errorf("reading web glue: %w", err)
	}

	fixedSource, err := ApplyAssetScannerFix(string(source), wasmName)
	if err != nil {
		var pnf *PatternNotFoundError
		if errors.As(err, &pnf) {
			pnf.File = webGlue
		}
		return err
	}

	if err := os.WriteFile(webGlue, []byte(fixedSource), 0644); err != nil {
		return fmt.Errorf("writing web glue: %w", err)
	}
	return nil
}

// Package bundler drives esbuild over the synthesized ESM entrypoints to
// produce their CommonJS twins and the script-tag IIFE bundle. The core
// pipeline only prepares inputs and records expected outputs; everything
// JavaScript-shaped stays inside esbuild.
package bundler

import (
	"fmt"
	"strings"

	esbuild "github.com/evanw/esbuild/pkg/api"
)

// CJSBundle bundles an ESM entrypoint into a self-contained CommonJS module.
// Used for the web and slim entrypoints, whose ESM-only re-export chains a
// plain require shim cannot load.
func CJSBundle(entry, outfile string) error {
	return run(esbuild.BuildOptions{
		EntryPoints: []string{entry},
		Outfile:     outfile,
		Bundle:      true,
		Write:       true,
		Format:      esbuild.FormatCommonJS,
		Platform:    esbuild.PlatformNode,
		// The import.meta code path is dead in CJS output; silence the warning.
		LogOverride: map[string]esbuild.LogLevel{"empty-import-meta": esbuild.LogLevelSilent},
	}, "cjs")
}

// IIFEBundle bundles an ESM entrypoint into a script-tag IIFE that assigns
// its exports to globalName.
func IIFEBundle(entry, outfile, globalName string) error {
	return run(esbuild.BuildOptions{
		EntryPoints: []string{entry},
		Outfile:     outfile,
		Bundle:      true,
		Write:       true,
		Format:      esbuild.FormatIIFE,
		GlobalName:  globalName,
		LogOverride: map[string]esbuild.LogLevel{"empty-import-meta": esbuild.LogLevelSilent},
	}, "iife")
}

func run(opts esbuild.BuildOptions, format string) error {
	result := esbuild.Build(opts)
	if len(result.Errors) > 0 {
		var msgs []string
		for _, e := range result.Errors {
			msgs = append(msgs, e.Text)
		}
		return fmt.Errorf("esbuild %s bundle failed: %s", format, strings.Join(msgs, "; "))
	}
	return nil
}

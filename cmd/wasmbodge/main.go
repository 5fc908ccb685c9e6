// Command wasmbodge takes wasm-bindgen output and wraps it into a single npm
// package whose conditional exports pick the right loading strategy for every
// JavaScript runtime.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wasmbodge/wasmbodge/internal/build"
)

const usage = `wasmbodge - wrap wasm-bindgen output for all JavaScript runtimes

Usage:
  wasmbodge build [flags]    Build an npm package from a wasm-bindgen Rust crate

Build flags:
  --crate-path path          Rust crate directory (default ".")
  --package-json path        Template package.json (default "./package.json")
  --out-dir path             Output directory (default "./dist")
  --profile name             Cargo build profile (default "release")
  --wasm-bindgen-tar path    Use prebuilt wasm-bindgen output from a tarball
`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:])
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	cfg := build.Config{}
	fs.StringVar(&cfg.CratePath, "crate-path", ".", "path to the Rust crate directory")
	fs.StringVar(&cfg.PackageJSON, "package-json", "./package.json", "path to template package.json")
	fs.StringVar(&cfg.OutDir, "out-dir", "./dist", "output directory")
	fs.StringVar(&cfg.Profile, "profile", "release", "cargo build profile")
	fs.StringVar(&cfg.WasmBindgenTar, "wasm-bindgen-tar", "", "use prebuilt wasm-bindgen output from tarball")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	if err := build.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "wasmbodge: %v\n", err)
		os.Exit(1)
	}
}

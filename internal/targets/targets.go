// Package targets is the single source of truth for how wasmbodge assembles
// packages. It declares the wasm-bindgen targets we consume, the JavaScript
// environments we emit entrypoints for, how each environment initializes the
// wasm module, and how package.json export conditions map onto environments.
//
// To understand how a specific export is built, start from RootExportOrder
// and follow the Environment it names.
package targets

// Target identifies one wasm-bindgen CLI target whose output tree we consume.
type Target string

const (
	// TargetBundler is `--target bundler`: ESM output expecting the bundler
	// to handle wasm loading.
	TargetBundler Target = "bundler"
	// TargetNodejs is `--target nodejs`: CommonJS output with fs-based wasm
	// loading.
	TargetNodejs Target = "nodejs"
	// TargetWeb is `--target web`: ESM output with manual initialization.
	TargetWeb Target = "web"
)

// AllTargets returns every target that has to be produced for a full build.
func AllTargets() []Target {
	return []Target{TargetBundler, TargetNodejs, TargetWeb}
}

// DirName is the directory name under wasm_bindgen/ holding this target's output.
func (t Target) DirName() string { return string(t) }

func (t Target) String() string { return string(t) }

// GlueExt is the extension of the target's glue module after post-processing.
// The nodejs glue is CommonJS, and the package declares "type": "module", so
// it gets renamed to .cjs.
func (t Target) GlueExt() string {
	if t == TargetNodejs {
		return "cjs"
	}
	return "js"
}

// InitStrategy describes how a synthesized entrypoint initializes the wasm
// module before (or whether it leaves that to) the consumer.
type InitStrategy int

const (
	// InitNone re-exports a glue module that needs no explicit call
	// (the bundler handles loading, or the glue auto-initializes).
	InitNone InitStrategy = iota
	// InitEagerModuleImport initializes from a wasm module obtained through a
	// plain module import. No current environment uses it.
	InitEagerModuleImport
	// InitEagerBase64Decode decodes the embedded base64 wasm and calls
	// initSync with the bytes.
	InitEagerBase64Decode
	// InitEagerNativeModule imports the .wasm artifact as a native module
	// reference and calls initSync({module: ref}) (workerd).
	InitEagerNativeModule
	// InitManual performs no initialization; the consumer calls initSync.
	InitManual
)

// Environment is a JavaScript consumption context we synthesize an
// entrypoint for. Environments are not targets: workerd and web both consume
// the web target's output but initialize differently.
type Environment string

const (
	EnvBundler    Environment = "bundler"
	EnvNode       Environment = "node"
	EnvWeb        Environment = "web"
	EnvWorkerd    Environment = "workerd"
	EnvSlim       Environment = "slim"
	EnvWasmBase64 Environment = "wasm-base64"
	// EnvIife is not synthesized directly; esbuild bundles the web
	// entrypoint into iife/index.js with a PascalCase global name.
	EnvIife Environment = "iife"
)

// AllEnvironments returns every environment that gets its own synthesized ESM
// entrypoint under esm/. IIFE is excluded: it is bundled from the web
// entrypoint instead.
func AllEnvironments() []Environment {
	return []Environment{EnvBundler, EnvNode, EnvWeb, EnvWorkerd, EnvSlim, EnvWasmBase64}
}

func (e Environment) String() string { return string(e) }

// FileStem is the base filename for this environment's entrypoints.
func (e Environment) FileStem() string {
	if e == EnvIife {
		return "index" // in iife/ subdir
	}
	return string(e)
}

// Target returns the wasm-bindgen target whose output this environment's
// entrypoint is built from.
func (e Environment) Target() Target {
	switch e {
	case EnvBundler:
		return TargetBundler
	case EnvNode:
		return TargetNodejs
	default:
		// web, workerd, slim, wasm-base64, iife all consume the web tree.
		return TargetWeb
	}
}

// Init returns how this environment's entrypoint initializes the wasm module.
func (e Environment) Init() InitStrategy {
	switch e {
	case EnvWeb, EnvIife:
		return InitEagerBase64Decode
	case EnvWorkerd:
		return InitEagerNativeModule
	case EnvSlim:
		return InitManual
	default:
		return InitNone
	}
}

// NeedsCJSBundle reports whether this environment's CJS twin has to be
// produced by esbuild. Node's glue is already CommonJS so its twin is a plain
// require shim, and bundler/workerd fall back to the web CJS twin in the
// export map.
func (e Environment) NeedsCJSBundle() bool {
	return e == EnvWeb || e == EnvSlim
}

// ExportMapping ties one package.json export condition to the environments
// that serve its import and require branches.
type ExportMapping struct {
	// Condition is the key in the export object ("workerd", "node",
	// "browser", or the bare "import"/"require" fallbacks).
	Condition string
	// ESM is the environment serving the import branch.
	ESM Environment
	// CJS is the environment serving the require branch.
	CJS Environment
}

// RootExportOrder defines the conditions of the root "." export, in the exact
// order they must appear in package.json. Host resolvers commit to the first
// structurally matching sibling, so the specific runtime conditions must
// precede the generic import/require fallbacks. This is a slice, not a map:
// the order is part of the contract.
var RootExportOrder = []ExportMapping{
	{Condition: "workerd", ESM: EnvWorkerd, CJS: EnvWeb},
	{Condition: "node", ESM: EnvNode, CJS: EnvNode},
	{Condition: "browser", ESM: EnvBundler, CJS: EnvWeb},
	{Condition: "import", ESM: EnvWeb, CJS: EnvWeb},
	{Condition: "require", ESM: EnvWeb, CJS: EnvWeb},
}

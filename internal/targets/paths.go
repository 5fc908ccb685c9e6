package targets

// Output layout path helpers. All paths are slash-separated and relative to
// the output root: they appear verbatim in package.json and in generated
// import specifiers, so they must stay forward-slashed on every platform.
// Callers crossing the filesystem boundary run them through filepath.FromSlash.

// WasmBindgenDir is the wasm-bindgen output directory for a target:
// wasm_bindgen/{target}.
func WasmBindgenDir(t Target) string {
	return "wasm_bindgen/" + t.DirName()
}

// GlueFile is the target's glue module: wasm_bindgen/{target}/{name}.js
// (.cjs for the nodejs target).
func GlueFile(t Target, wasmName string) string {
	return WasmBindgenDir(t) + "/" + wasmName + "." + t.GlueExt()
}

// WasmArtifact is the target's binary artifact: wasm_bindgen/{target}/{name}_bg.wasm.
func WasmArtifact(t Target, wasmName string) string {
	return WasmBindgenDir(t) + "/" + wasmName + "_bg.wasm"
}

// DeclarationFile is the target's TypeScript declarations:
// wasm_bindgen/{target}/{name}.d.ts.
func DeclarationFile(t Target, wasmName string) string {
	return WasmBindgenDir(t) + "/" + wasmName + ".d.ts"
}

// ESMEntrypoint is the synthesized ESM entrypoint: esm/{env}.js.
func ESMEntrypoint(e Environment) string {
	return "esm/" + e.FileStem() + ".js"
}

// CJSEntrypoint is the CommonJS twin: cjs/{env}.cjs.
func CJSEntrypoint(e Environment) string {
	return "cjs/" + e.FileStem() + ".cjs"
}

// IIFEBundle is the script-tag bundle: iife/index.js.
func IIFEBundle() string { return "iife/index.js" }

// WasmBase64ESM is the ESM module exporting the base64 wasm constant.
func WasmBase64ESM() string { return ESMEntrypoint(EnvWasmBase64) }

// WasmBase64CJS is the CommonJS twin of the base64 module.
func WasmBase64CJS() string { return CJSEntrypoint(EnvWasmBase64) }

// TypesFile is the package-level TypeScript declaration file.
func TypesFile() string { return "index.d.ts" }

// StandaloneWasm is the raw binary artifact copied to the output root,
// served by the "./wasm" export.
func StandaloneWasm(packageName string) string { return packageName + ".wasm" }

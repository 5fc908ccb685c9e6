package entrypoint

import (
	"encoding/base64"
	"fmt"
)

// Embed produces a self-contained ESM module exporting the wasm binary as a
// base64 string constant. Deterministic, no size cap: the ~33% inflation is a
// documented cost of the base64 loading strategy, not something we guard.
func Embed(wasm []byte) string {
	return fmt.Sprintf("export const wasmBase64 = %q;\n", base64.StdEncoding.EncodeToString(wasm))
}

// EmbedCJS is the CommonJS twin of Embed.
func EmbedCJS(wasm []byte) string {
	return fmt.Sprintf("module.exports.wasmBase64 = %q;\n", base64.StdEncoding.EncodeToString(wasm))
}

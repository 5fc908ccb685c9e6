// Package entrypoint synthesizes the per-environment entrypoint modules that
// select and perform wasm initialization for each JavaScript runtime. The
// templates form a closed set dispatched on the environment's init strategy;
// adding an environment is a one-branch change here plus its position in the
// export mapping.
package entrypoint

import (
	"fmt"

	"github.com/wasmbodge/wasmbodge/internal/targets"
)

// ModuleSystem is the module-system variant of a synthesized entrypoint.
type ModuleSystem string

const (
	ESM ModuleSystem = "esm"
	CJS ModuleSystem = "cjs"
)

// Module is one synthesized entrypoint: source text plus the environment and
// module system it was produced for. Never mutated after creation.
type Module struct {
	Environment targets.Environment
	System      ModuleSystem
	Source      string
}

// Synthesize produces the ESM entrypoint for one environment. It is a pure
// function of the environment and the output set: no I/O, byte-identical
// output for identical inputs. A missing required target fails with
// *targets.MissingTargetError; it is never substituted.
func Synthesize(env targets.Environment, set *targets.OutputSet) (Module, error) {
	out, err := set.GetFor(env)
	if err != nil {
		return Module{}, err
	}

	name := set.Name
	glue := targets.GlueFile(out.Target, name)

	var source string
	switch {
	case env == targets.EnvWasmBase64:
		source = Embed(out.WasmBytes)

	case env.Init() == targets.InitNone:
		// Re-export from the glue module. For node the glue is already
		// CommonJS (renamed to .cjs so an ESM-first package still loads
		// it as such); for bundler the consuming bundler handles wasm.
		source = fmt.Sprintf("export * from '../%s';\n", glue)

	case env.Init() == targets.InitEagerBase64Decode:
		source = fmt.Sprintf(`import { initSync } from '../%[1]s';
import { wasmBase64 } from './wasm-base64.js';
const bytes = Uint8Array.from(atob(wasmBase64), c => c.charCodeAt(0));
initSync(bytes);
export * from '../%[1]s';
`, glue)

	case env.Init() == targets.InitEagerNativeModule:
		source = fmt.Sprintf(`import { initSync } from '../%[1]s';
import wasmModule from '../%[2]s';
initSync({ module: wasmModule });
export * from '../%[1]s';
`, glue, targets.WasmArtifact(out.Target, name))

	case env.Init() == targets.InitManual:
		// Re-export everything including the default init and initSync;
		// the consumer initializes when it wants to.
		source = fmt.Sprintf("export * from '../%[1]s';\nexport { default } from '../%[1]s';\n", glue)

	default:
		return Module{}, fmt.Errorf("no synthesis rule for environment %q", env)
	}

	return Module{Environment: env, System: ESM, Source: source}, nil
}

// SynthesizeCJS produces the CommonJS twin for environments whose twin is a
// plain shim rather than an esbuild bundle. Only node qualifies: its glue is
// already CommonJS, so a require re-export suffices. The second return is
// false when the environment's twin comes from the bundler instead.
func SynthesizeCJS(env targets.Environment, set *targets.OutputSet) (Module, bool, error) {
	if env != targets.EnvNode {
		return Module{}, false, nil
	}
	out, err := set.GetFor(env)
	if err != nil {
		return Module{}, false, err
	}
	source := fmt.Sprintf("module.exports = require('../%s');\n", targets.GlueFile(out.Target, set.Name))
	return Module{Environment: env, System: CJS, Source: source}, true, nil
}

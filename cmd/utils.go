package cmd

import (
	"strings"
	"unicode"

	"github.com/crytic/abibind/bindgen"
	"github.com/crytic/abibind/config"
	"github.com/crytic/abibind/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

// updateArtifactTarget will update the artifact target in the projectConfig if the --target flag is used in the
// command
func updateArtifactTarget(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	if !cmd.Flags().Changed("target") {
		return nil
	}
	newTarget, err := cmd.Flags().GetString("target")
	if err != nil {
		return err
	}
	if projectConfig.Artifacts == nil {
		return errors.New("cannot set a target without an artifacts config")
	}
	return projectConfig.Artifacts.SetTarget(newTarget)
}

// reservedFileSuffixes are the file name suffixes the go tool treats as test files or build constraints.
var reservedFileSuffixes = map[string]bool{
	"test": true, "aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true, "hurd": true,
	"illumos": true, "ios": true, "js": true, "linux": true, "nacl": true, "netbsd": true, "openbsd": true,
	"plan9": true, "solaris": true, "wasip1": true, "windows": true, "zos": true, "386": true, "amd64": true,
	"arm": true, "arm64": true, "loong64": true, "mips": true, "mipsle": true, "mips64": true, "mips64le": true,
	"ppc64": true, "ppc64le": true, "riscv64": true, "s390x": true, "wasm": true, "sparc64": true,
}

// bindingFileName returns the name of the file the binding of a contract type is written to, the snake_case form of
// the type name. Names the go tool would exclude from the build get a `_binding` suffix.
func bindingFileName(contractName string) string {
	runes := []rune(contractName)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			// Split before an upper-case rune following a lower-case one, or ending an acronym.
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				sb.WriteRune('_')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}

	name := sb.String()
	if i := strings.LastIndex(name, "_"); i >= 0 && reservedFileSuffixes[name[i+1:]] {
		name += "_binding"
	}
	return name + ".go"
}

// optionsDigest returns the values of the generation options a binding depends on, in a stable order. The version
// of the generator takes part, so upgrading it regenerates every binding. The output directory takes part, so moving
// it writes the bindings again even when the cache file is shared.
func optionsDigest(opts bindgen.Options, outputDirectory string) []string {
	digest := []string{
		"version=" + version.Version,
		"out=" + outputDirectory,
		"package=" + opts.Package,
		"runtime=" + opts.RuntimePackage,
		"common=" + opts.CommonPackage,
	}
	aliases := make([]string, 0, len(opts.Aliases))
	for signature, alias := range opts.Aliases {
		aliases = append(aliases, "alias="+signature+"="+alias)
	}
	slices.Sort(aliases)
	return append(digest, aliases...)
}

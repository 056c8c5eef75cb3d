package cmd

import (
	"strings"

	"github.com/crytic/abibind/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// addGenerateFlags adds the various flags for the generate command
func addGenerateFlags() error {
	// Get the default project config and throw an error if we cant
	defaultConfig, err := config.GetDefaultProjectConfig(DefaultArtifactPlatform)
	if err != nil {
		return err
	}

	// Prepare the flags
	generateCmd.Flags().String("config", "", "path to config file")

	// Target
	generateCmd.Flags().String("target", "", TargetFlagDescription)

	// Output directory
	generateCmd.Flags().String("out", "",
		"directory the generated bindings are written to (unless a config file is provided, default is "+
			"\""+defaultConfig.Generation.OutputDirectory+"\")")

	// Package name
	generateCmd.Flags().String("package", "",
		"package name of the generated bindings (unless a config file is provided, default is "+
			"\""+defaultConfig.Generation.Package+"\")")

	// Contracts
	generateCmd.Flags().StringSlice("contracts", []string{}, "names of the contracts to generate bindings for, "+
		"all loaded contracts if empty")

	// Aliases
	generateCmd.Flags().StringArray("alias", []string{}, "method alias in the form Contract:signature=Name, "+
		"e.g. Token:transfer(address,uint256)=Send")

	// Regenerate unchanged contracts
	generateCmd.Flags().Bool("force", false, "regenerate bindings even if their artifacts did not change")

	// Disable the generation cache
	generateCmd.Flags().Bool("no-cache", false, "do not read or record the generation cache")

	// Logging color
	generateCmd.Flags().Bool("no-color", false, "disabled colored terminal output")

	return nil
}

// updateProjectConfigWithGenerateFlags will update the given projectConfig with any CLI arguments that were provided
// to the generate command
func updateProjectConfigWithGenerateFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// If --target was used
	if err = updateArtifactTarget(cmd, projectConfig); err != nil {
		return err
	}

	// Update output directory
	if cmd.Flags().Changed("out") {
		projectConfig.Generation.OutputDirectory, err = cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
	}

	// Update package name
	if cmd.Flags().Changed("package") {
		projectConfig.Generation.Package, err = cmd.Flags().GetString("package")
		if err != nil {
			return err
		}
	}

	// Update contracts
	if cmd.Flags().Changed("contracts") {
		projectConfig.Generation.Contracts, err = cmd.Flags().GetStringSlice("contracts")
		if err != nil {
			return err
		}
	}

	// Add aliases on top of the ones of the config file
	if cmd.Flags().Changed("alias") {
		aliasFlags, err := cmd.Flags().GetStringArray("alias")
		if err != nil {
			return err
		}
		for _, aliasFlag := range aliasFlags {
			contract, signature, alias, err := parseAliasFlag(aliasFlag)
			if err != nil {
				return err
			}
			if projectConfig.Generation.Aliases == nil {
				projectConfig.Generation.Aliases = make(map[string]map[string]string)
			}
			if projectConfig.Generation.Aliases[contract] == nil {
				projectConfig.Generation.Aliases[contract] = make(map[string]string)
			}
			projectConfig.Generation.Aliases[contract][signature] = alias
		}
	}

	// Update cache usage
	if cmd.Flags().Changed("no-cache") {
		noCache, err := cmd.Flags().GetBool("no-cache")
		if err != nil {
			return err
		}
		projectConfig.Generation.CacheEnabled = !noCache
	}

	// Update logging color mode
	if cmd.Flags().Changed("no-color") {
		projectConfig.Logging.NoColor, err = cmd.Flags().GetBool("no-color")
		if err != nil {
			return err
		}
	}

	return nil
}

// parseAliasFlag splits an alias flag of the form `Contract:signature=Name`. The signature is split at its first
// `=`, as signatures never contain one.
func parseAliasFlag(value string) (string, string, string, error) {
	contract, rest, ok := strings.Cut(value, ":")
	if !ok || contract == "" {
		return "", "", "", errors.Errorf("alias '%s' does not name a contract, expected Contract:signature=Name", value)
	}
	signature, alias, ok := strings.Cut(rest, "=")
	if !ok || signature == "" || alias == "" {
		return "", "", "", errors.Errorf("alias '%s' is malformed, expected Contract:signature=Name", value)
	}
	return strings.TrimSpace(contract), strings.TrimSpace(signature), strings.TrimSpace(alias), nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/crytic/abibind/bindgen"
	"github.com/crytic/abibind/cache"
	"github.com/crytic/abibind/cmd/exitcodes"
	"github.com/crytic/abibind/compilation"
	"github.com/crytic/abibind/compilation/types"
	"github.com/crytic/abibind/config"
	"github.com/crytic/abibind/logging"
	"github.com/crytic/abibind/logging/colors"
	"github.com/crytic/abibind/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// generateCmd represents the command provider for binding generation
var generateCmd = &cobra.Command{
	Use:               "generate",
	Short:             "Generates Go bindings for compiled contracts",
	Long:              `Generates Go bindings for the compiled contracts of a project`,
	Args:              cmdValidateGenerateArgs,
	ValidArgsFunction: cmdValidGenerateArgs,
	RunE:              cmdRunGenerate,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the generate command
	err := addGenerateFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the generate command", err)
	}

	// Add the generate command and its associated flags to the root command
	rootCmd.AddCommand(generateCmd)
}

// cmdValidGenerateArgs will return which flags are valid for dynamic completion for the generate command
func cmdValidGenerateArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateGenerateArgs makes sure that there are no positional arguments provided to the generate command
func cmdValidateGenerateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = errors.New("generate does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the generate command", err)
		return err
	}
	return nil
}

// cmdRunGenerate executes the CLI generate command and navigates through the following possibilities:
// #1: We will search for either a custom config file (via --config) or the default (abibind.json).
// If we find it, read it. If we can't read it, throw an error.
// #2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
// #3: If abibind.json can't be found, use the default project configuration.
func cmdRunGenerate(cmd *cobra.Command, args []string) error {
	var projectConfig *config.ProjectConfig

	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return err
	}

	// If --config was not used, look for `abibind.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the generate command", err)
			return err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		projectConfig, err = config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			cmdLogger.Error("Failed to run the generate command", err)
			return err
		}
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed && existenceError != nil {
		cmdLogger.Error("Failed to run the generate command", existenceError)
		return exitcodes.NewErrorWithExitCode(existenceError, exitcodes.ExitCodeHandledError)
	}

	// Possibility #3: --config flag was not used and abibind.json was not found, so use the default project config
	if !configFlagUsed && existenceError != nil {
		cmdLogger.Warn(fmt.Sprintf("Unable to find the config file at %v, will use the default project configuration for the "+
			"%v artifact platform instead", configPath, DefaultArtifactPlatform))

		projectConfig, err = config.GetDefaultProjectConfig(DefaultArtifactPlatform)
		if err != nil {
			cmdLogger.Error("Failed to run the generate command", err)
			return err
		}
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithGenerateFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return err
	}

	// Paths in the configuration are relative to the directory it is supplied from.
	err = os.Chdir(filepath.Dir(configPath))
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return err
	}

	err = projectConfig.Validate()
	if err != nil {
		cmdLogger.Error("Invalid project configuration", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	closeLogFile, err := setupGlobalLogger(projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to set up logging", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer closeLogFile()

	summary, err := generateBindings(cmd.Context(), projectConfig, force)
	if err != nil {
		cmdLogger.Error("Failed to generate bindings", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	cmdLogger.Info(
		"Generated ", colors.Bold, summary.Generated, colors.Reset, " binding(s), skipped ",
		colors.Bold, summary.Skipped, colors.Reset, " unchanged, ",
		colors.Bold, len(summary.Failed), colors.Reset, " failed",
	)
	if len(summary.Failed) > 0 {
		return exitcodes.NewErrorWithExitCode(
			errors.Errorf("failed to generate the bindings of %v", summary.Failed),
			exitcodes.ExitCodeGenerationError,
		)
	}
	return nil
}

// setupGlobalLogger configures logging.GlobalLogger from the logging config, writing to the console and, if a log
// directory is set, to a structured log file. Returns a function closing the log file.
func setupGlobalLogger(loggingConfig config.LoggingConfig) (func(), error) {
	if loggingConfig.NoColor {
		colors.DisableColor()
	}
	cmdLogger.SetLevel(loggingConfig.Level)

	logging.GlobalLogger = logging.NewLogger(loggingConfig.Level)
	logging.GlobalLogger.AddWriter(os.Stdout, logging.UNSTRUCTURED, !loggingConfig.NoColor)
	if loggingConfig.LogDirectory == "" {
		return func() {}, nil
	}

	fileName := fmt.Sprintf("abibind-%d.log", time.Now().Unix())
	file, err := utils.CreateFile(loggingConfig.LogDirectory, fileName)
	if err != nil {
		return nil, err
	}
	logging.GlobalLogger.AddWriter(file, logging.STRUCTURED, false)
	cmdLogger.AddWriter(file, logging.STRUCTURED, false)
	return func() {
		logging.GlobalLogger.RemoveWriter(file, logging.STRUCTURED, false)
		cmdLogger.RemoveWriter(file, logging.STRUCTURED, false)
		_ = file.Close()
	}, nil
}

// generationSummary describes the outcome of a generate run.
type generationSummary struct {
	// Generated counts the bindings written.
	Generated int

	// Skipped counts the bindings left untouched as their artifacts did not change.
	Skipped int

	// Failed lists the contracts whose binding could not be generated.
	Failed []string

	// Files lists the paths of the bindings written.
	Files []string
}

// generateBindings loads the project's artifacts and writes the binding of every selected contract to the output
// directory. A contract whose binding cannot be generated is reported in the summary without stopping the others.
// Errors are returned for failures affecting the whole run.
func generateBindings(ctx context.Context, projectConfig *config.ProjectConfig, force bool) (*generationSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	generation := &projectConfig.Generation
	compilations, err := projectConfig.Artifacts.Load()
	if err != nil {
		return nil, err
	}
	cmdLogger.Info("Loaded artifacts with hash ", colors.Bold, compilation.ComputeArtifactHash(compilations)[:16], colors.Reset)

	contracts, err := selectContracts(types.Contracts(compilations), generation)
	if err != nil {
		return nil, err
	}

	if err = utils.MakeDirectory(generation.OutputDirectory); err != nil {
		return nil, errors.WithStack(err)
	}

	var generationCache *cache.GenerationCache
	if generation.CacheEnabled {
		generationCache, err = cache.Open(ctx, generation.CachePath())
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := generationCache.Close(); err != nil {
				cmdLogger.Error("Failed to save the generation cache", err)
			}
		}()
	}

	summary := &generationSummary{Failed: make([]string, 0), Files: make([]string, 0)}
	for _, contract := range contracts {
		opts := generation.BindgenOptions(contract.Name)
		hash := compilation.ComputeContractHash(contract, optionsDigest(opts, generation.OutputDirectory)...)
		outputFile := filepath.Join(generation.OutputDirectory, bindingFileName(bindgen.ContractIdentifier(contract.Name)))

		if generationCache != nil && !force {
			if entry, fresh := generationCache.IsFresh(contract.Name, hash); fresh {
				cmdLogger.Info("Skipping ", colors.Bold, contract.Name, colors.Reset, ", unchanged since its last generation (",
					entry.Age(), " ago)")
				summary.Skipped++
				continue
			}
		}

		binding, err := bindgen.Generate(contract.Contract, contract.Name, opts)
		if err != nil {
			var internalErr *bindgen.InternalError
			if errors.As(err, &internalErr) {
				cmdLogger.Error("Internal error while generating the binding of ", contract.Name, err)
			} else {
				cmdLogger.Error("Failed to generate the binding of ", contract.Name, err)
			}
			summary.Failed = append(summary.Failed, contract.Name)
			continue
		}

		if err = utils.WriteFileAtomic(outputFile, binding.Source, 0644); err != nil {
			return summary, err
		}
		cmdLogger.Info("Generated ", colors.Bold, binding.ContractName, colors.Reset, " (", len(binding.Functions),
			" functions) to ", colors.Bold, outputFile, colors.Reset)
		summary.Generated++
		summary.Files = append(summary.Files, outputFile)

		if generationCache != nil {
			err = generationCache.Put(contract.Name, cache.Entry{Hash: hash, OutputFile: outputFile, GeneratedAt: time.Now()})
			if err != nil {
				return summary, err
			}
		}
	}

	return summary, nil
}

// selectContracts returns the contracts bindings are generated for. Every contract named in the config must be
// loaded, and no two selected contracts may map to the same binding type as they would be written to the same file.
func selectContracts(contracts []types.NamedContract, generation *config.GenerationConfig) ([]types.NamedContract, error) {
	type declaration struct {
		name       string
		sourcePath string
	}
	selected := make([]types.NamedContract, 0, len(contracts))
	declarations := make(map[string]declaration)
	found := make(map[string]bool)
	for _, contract := range contracts {
		if !generation.IncludesContract(contract.Name) {
			continue
		}
		identifier := bindgen.ContractIdentifier(contract.Name)
		if previous, ok := declarations[identifier]; ok && identifier != "" {
			if previous.name == contract.Name {
				return nil, errors.Errorf("contract '%s' is declared in both '%s' and '%s', select the contracts to "+
					"generate bindings for", contract.Name, previous.sourcePath, contract.SourcePath)
			}
			return nil, errors.Errorf("contracts '%s' ('%s') and '%s' ('%s') both generate the binding type '%s', "+
				"select the contracts to generate bindings for", previous.name, previous.sourcePath, contract.Name,
				contract.SourcePath, identifier)
		}
		declarations[identifier] = declaration{name: contract.Name, sourcePath: contract.SourcePath}
		found[contract.Name] = true
		selected = append(selected, contract)
	}

	for _, name := range generation.Contracts {
		if !found[name] {
			return nil, errors.Errorf("contract '%s' was not found in the loaded artifacts", name)
		}
	}
	if len(selected) == 0 {
		return nil, errors.New("no contracts were found in the loaded artifacts")
	}
	return selected, nil
}

package cmd

import (
	"os"

	"github.com/crytic/abibind/logging"
	"github.com/crytic/abibind/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cmdLogger is the logger used by the commands of this package
var cmdLogger = logging.NewLogger(zerolog.InfoLevel)

// rootCmd represents the root CLI command object which all other commands stem from.
var rootCmd = &cobra.Command{
	Use:     "abibind",
	Version: version.GetInfo().Short(),
	Short:   "A generator of typed Go bindings for smart contract ABIs",
	Long:    "abibind generates typed Go bindings from the ABIs of compiled smart contracts",
}

func init() {
	cmdLogger = cmdLogger.NewSubLogger("module", logging.CLI_SERVICE)
	cmdLogger.AddWriter(os.Stdout, logging.UNSTRUCTURED, true)
}

// Execute provides an exportable function to invoke the CLI. Returns an error if one was encountered.
func Execute() error {
	return rootCmd.Execute()
}

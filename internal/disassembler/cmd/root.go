package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"disassembler/internal/config"
	"disassembler/internal/disassembler/log"
	"disassembler/internal/engine"
)

// cfg is the configuration resolved before any command runs.
var cfg = config.Default()

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON configuration file")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	addDisasmFlags(rootCmd)

	rootCmd.AddCommand(disasmCmd, viewCmd, tableCmd, versionCmd, schemaCmd)
}

var rootCmd = &cobra.Command{
	Use:   "disassembler [file...]",
	Short: "Table driven bytecode disassembler",
	Long: `Disassembler turns bytecode into a textual listing, one instruction per line.
Unknown opcodes and truncated instructions make the listing absent unless
compatibility mode keeps unknown bytes as raw data.`,
	Example: `
# Disassemble a file
disassembler program.bin

# Decode a hex dump from stdin in compatibility mode
echo "01 05 50 02" | disassembler --hex --compat -

# Browse a listing interactively
disassembler view program.bin
  `,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runDisasm(cmd, args)
	},
}

// setup loads the configuration and installs logging.
func setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		loaded.Debug = true
	}
	cfg = loaded

	log.Setup(cfg.Debug)
	slog.Debug("Configuration loaded", "path", path, "compat", cfg.Compat, "workers", cfg.Workers, "wasm", cfg.WasmModule)
	return nil
}

func Execute() {
	defer log.Close()

	// Bypass fang when output is being piped so listings stay plain
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(engine.Version()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// inputName is how an argument is shown in headers and errors.
func inputName(arg string) string {
	if arg == "-" {
		return "<stdin>"
	}
	return arg
}

// errAbsent marks inputs with no listing.
type errAbsent struct {
	name string
	err  error
}

func (e *errAbsent) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: no listing", e.name)
	}
	return fmt.Sprintf("%s: %v", e.name, e.err)
}

func (e *errAbsent) Unwrap() error { return e.err }

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"disassembler/internal/engine"
	"disassembler/internal/wasmhost"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the engine version",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, engine.Version())

		path, _ := cmd.Flags().GetString("wasm")
		if path == "" {
			path = cfg.WasmModule
		}
		if path == "" {
			return nil
		}

		mod, err := wasmhost.Open(cmd.Context(), path)
		if err != nil {
			return err
		}
		defer mod.Close(cmd.Context())

		v, err := mod.Version(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%s)\n", v, path)
		return nil
	},
}

func init() {
	versionCmd.Flags().String("wasm", "", "Also print the version of this wasm module")
}

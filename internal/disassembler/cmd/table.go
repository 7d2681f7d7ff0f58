package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"disassembler/internal/disassembler/styles"
	"disassembler/internal/isa"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the opcode table",
	Long: `Print every opcode with its mnemonic, operand layout, size and tier.
The table is rendered for the terminal, or printed as markdown when piped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		markdown, _ := cmd.Flags().GetBool("markdown")
		md := opcodeTable(isa.Entries())

		out := cmd.OutOrStdout()
		f, isFile := out.(*os.File)
		if markdown || !isFile || !term.IsTerminal(f.Fd()) {
			_, err := fmt.Fprint(out, md)
			return err
		}

		width := 80
		if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
			width = w
		}
		rendered, err := styles.RenderMarkdown(md, width-2)
		if err != nil {
			return fmt.Errorf("render table: %w", err)
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	},
}

func init() {
	tableCmd.Flags().Bool("markdown", false, "Print markdown even on a terminal")
}

// opcodeTable renders entries as a markdown table.
func opcodeTable(entries []isa.Entry) string {
	var sb strings.Builder
	sb.WriteString("# Opcodes\n\n")
	sb.WriteString("| Opcode | Mnemonic | Operands | Size | Tier |\n")
	sb.WriteString("|--------|----------|----------|------|------|\n")
	for _, e := range entries {
		ops := make([]string, len(e.Operands))
		for i, op := range e.Operands {
			ops[i] = op.String()
		}
		fmt.Fprintf(&sb, "| 0x%02x | `%s` | %s | %d | %s |\n",
			e.Opcode, e.Mnemonic, strings.Join(ops, ", "), e.Size(), e.Tier)
	}
	return sb.String()
}

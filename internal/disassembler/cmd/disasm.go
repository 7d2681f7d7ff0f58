package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"disassembler/internal/config"
	"disassembler/internal/decoder"
	"disassembler/internal/disasm"
	"disassembler/internal/disassembler/styles"
	"disassembler/internal/engine"
	"disassembler/internal/format"
	"disassembler/internal/ui/colorize"
	"disassembler/internal/wasmhost"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [file...]",
	Short: "Disassemble files into listings",
	Long: `Disassemble one or more bytecode files. Use - to read stdin.
Files are decoded concurrently and printed in argument order.`,
	Example: `
# Listing with offsets and raw bytes
disassembler disasm --offsets program.bin

# Machine readable output for regression testing
disassembler disasm --json a.bin b.bin
  `,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDisasm(cmd, args)
	},
}

func init() {
	addDisasmFlags(disasmCmd)
}

func addDisasmFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Bool("compat", false, "Decode compatibility encodings and keep unknown opcodes as raw bytes")
	fs.Bool("hex", false, "Input is a hex dump instead of raw bytes")
	fs.Bool("offsets", false, "Show offsets and raw bytes next to each instruction")
	fs.BoolP("json", "j", false, "Output results as JSON for regression testing")
	fs.String("color", config.ColorAuto, "Syntax highlighting: auto, always or never")
	fs.String("wasm", "", "Disassemble through this wasm build of the engine")
	fs.IntP("workers", "w", 0, "Files disassembled concurrently (default from config)")
}

// disasmOptions are the resolved settings of one invocation.
type disasmOptions struct {
	Policy  decoder.Policy
	Hex     bool
	Offsets bool
	JSON    bool
	Color   bool
	Workers int
	Wasm    string
}

// resolveOptions merges flags over the loaded configuration.
func resolveOptions(fs *pflag.FlagSet, base config.Config, out io.Writer) (disasmOptions, error) {
	c := base
	if fs.Changed("compat") {
		c.Compat, _ = fs.GetBool("compat")
	}
	if fs.Changed("offsets") {
		c.Offsets, _ = fs.GetBool("offsets")
	}
	if fs.Changed("color") {
		c.Color, _ = fs.GetString("color")
	}
	if fs.Changed("wasm") {
		c.WasmModule, _ = fs.GetString("wasm")
	}
	if fs.Changed("workers") {
		c.Workers, _ = fs.GetInt("workers")
	}
	if err := c.Validate(); err != nil {
		return disasmOptions{}, err
	}

	hexInput, _ := fs.GetBool("hex")
	jsonOut, _ := fs.GetBool("json")
	opts := disasmOptions{
		Policy:  decoder.PolicyFor(c.Compat),
		Hex:     hexInput,
		Offsets: c.Offsets,
		JSON:    jsonOut,
		Color:   useColor(c.Color, out),
		Workers: c.Workers,
		Wasm:    c.WasmModule,
	}
	if opts.Wasm != "" && (opts.Offsets || opts.JSON) {
		return opts, errors.New("--offsets and --json need the native engine, drop --wasm")
	}
	return opts, nil
}

// useColor decides highlighting for the given color mode and writer.
// NO_COLOR wins over every mode.
func useColor(mode string, out io.Writer) bool {
	if colorize.Disabled() {
		return false
	}
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// result is the outcome of one input.
type result struct {
	name   string
	text   string
	stream disasm.Stream
	report *engine.Report
	err    error
}

// fileReport is one input of the JSON output. Failed inputs keep their
// position and carry Error instead of a report.
type fileReport struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
	*engine.Report
}

// decodeFunc disassembles one input.
type decodeFunc func(ctx context.Context, code []byte) (result, error)

func runDisasm(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	opts, err := resolveOptions(cmd.Flags(), cfg, out)
	if err != nil {
		return err
	}

	decode := nativeDecoder(opts)
	if opts.Wasm != "" {
		mod, err := wasmhost.Open(cmd.Context(), opts.Wasm)
		if err != nil {
			return err
		}
		defer mod.Close(context.Background())
		decode = wasmDecoder(mod, opts)
	}

	results, err := disassembleAll(cmd.Context(), args, cmd.InOrStdin(), opts, decode)
	if err != nil {
		return err
	}
	return writeResults(out, cmd.ErrOrStderr(), results, opts)
}

func nativeDecoder(opts disasmOptions) decodeFunc {
	return func(_ context.Context, code []byte) (result, error) {
		switch {
		case opts.JSON:
			r, err := engine.NewReport(code, opts.Policy)
			return result{report: r, err: err}, nil
		case opts.Offsets:
			s, err := engine.Listing(code, opts.Policy)
			return result{stream: s, err: err}, nil
		default:
			text, err := engine.Run(code, opts.Policy)
			return result{text: text, err: err}, nil
		}
	}
}

func wasmDecoder(mod *wasmhost.Module, opts disasmOptions) decodeFunc {
	compat := opts.Policy == decoder.Tolerant
	return func(ctx context.Context, code []byte) (result, error) {
		text, ok, err := mod.Disassemble(ctx, code, compat)
		if err != nil {
			// Host failures abort the whole run
			return result{}, err
		}
		if !ok {
			return result{err: errors.New("malformed bytecode")}, nil
		}
		return result{text: text}, nil
	}
}

// disassembleAll decodes every input with at most opts.Workers running at
// once. Results keep argument order. Decoding failures stay with their
// input; read and host failures stop the run.
func disassembleAll(ctx context.Context, args []string, stdin io.Reader, opts disasmOptions, decode decodeFunc) ([]result, error) {
	var (
		stdinData []byte
		seenStdin bool
	)
	for _, arg := range args {
		if arg != "-" {
			continue
		}
		if seenStdin {
			return nil, errors.New("stdin given more than once")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		stdinData, seenStdin = data, true
	}

	results := make([]result, len(args))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))

	for i, arg := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			code, err := readInput(arg, stdinData, opts.Hex)
			if err != nil {
				return err
			}
			slog.Debug("Disassembling", "input", inputName(arg), "size", len(code), "policy", opts.Policy)

			r, err := decode(ctx, code)
			if err != nil {
				return fmt.Errorf("%s: %w", inputName(arg), err)
			}
			r.name = inputName(arg)
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// readInput returns the bytes of one argument, decoding hex dumps.
func readInput(arg string, stdinData []byte, hexInput bool) ([]byte, error) {
	data := stdinData
	if arg != "-" {
		var err error
		data, err = os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
	}
	if !hexInput {
		return data, nil
	}
	code, err := engine.ParseHex(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inputName(arg), err)
	}
	return code, nil
}

// writeResults prints results in order. Inputs without a listing are
// reported on errOut and make the returned error non-nil.
func writeResults(out, errOut io.Writer, results []result, opts disasmOptions) error {
	var failed []error
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, &errAbsent{name: r.name, err: r.err})
		}
	}

	if opts.JSON {
		reports := make([]fileReport, 0, len(results))
		for _, r := range results {
			fr := fileReport{Name: r.name, Report: r.report}
			if r.err != nil {
				fr.Error, fr.Report = r.err.Error(), nil
			}
			reports = append(reports, fr)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	} else {
		headers := len(results) > 1
		for i, r := range results {
			if r.err != nil {
				continue
			}
			if headers {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, renderHeader(r.name, opts.Color))
			}
			text := r.text
			if opts.Offsets {
				text = renderListing(r.stream, opts.Color)
			} else if opts.Color {
				text = colorize.Line(text)
			}
			if text != "" {
				fmt.Fprintln(out, text)
			}
		}
	}

	for _, err := range failed {
		fmt.Fprintln(errOut, styleError(err.Error(), opts.Color))
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d inputs have no listing: %w", len(failed), len(results), errors.Join(failed...))
	}
	return nil
}

func renderHeader(name string, color bool) string {
	h := "; " + name
	if color {
		return styles.HeaderStyle.Render(h)
	}
	return h
}

func styleError(s string, color bool) string {
	if color {
		return styles.ErrorStyle.Render(s)
	}
	return s
}

// renderListing lays a listing out as offset, raw bytes and instruction
// columns.
func renderListing(s disasm.Stream, color bool) string {
	width := 0
	for _, in := range s {
		width = max(width, len(in.Raw)*3-1)
	}

	lines := make([]string, 0, len(s))
	for _, in := range s {
		off := format.Address(in.Offset)
		raw := fmt.Sprintf("%-*s", width, spacedHex(in.Raw))
		text := in.Text
		if color {
			off = styles.OffsetStyle.Render(off)
			raw = styles.BytesStyle.Render(raw)
			if in.Op == ".byte" {
				text = styles.RawStyle.Render(text)
			} else {
				text = colorize.Line(text)
			}
		}
		lines = append(lines, strings.TrimRight(off+"  "+raw+"  "+text, " "))
	}
	return strings.Join(lines, "\n")
}

func spacedHex(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02x", c)
	}
	return strings.Join(parts, " ")
}

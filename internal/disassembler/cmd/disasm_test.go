package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disassembler/internal/config"
	"disassembler/internal/decoder"
	"disassembler/internal/engine"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newDisasmFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addDisasmFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestResolveOptions(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("DISASSEMBLER_NO_COLOR", "")
	base := config.Default()
	base.Compat = true

	tests := []struct {
		name    string
		args    []string
		want    disasmOptions
		wantErr bool
	}{
		{
			name: "config values",
			want: disasmOptions{Policy: decoder.Tolerant, Workers: 4},
		},
		{
			name: "flags override config",
			args: []string{"--compat=false", "--offsets", "--workers", "2", "--hex"},
			want: disasmOptions{Policy: decoder.Strict, Offsets: true, Hex: true, Workers: 2},
		},
		{
			name: "color always",
			args: []string{"--color", "always", "--json"},
			want: disasmOptions{Policy: decoder.Tolerant, JSON: true, Color: true, Workers: 4},
		},
		{
			name:    "invalid color",
			args:    []string{"--color", "rainbow"},
			wantErr: true,
		},
		{
			name:    "invalid workers",
			args:    []string{"--workers", "0"},
			wantErr: true,
		},
		{
			name:    "wasm excludes offsets",
			args:    []string{"--wasm", "engine.wasm", "--offsets"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newDisasmFlags(t, tt.args...)
			got, err := resolveOptions(cmd.Flags(), base, &bytes.Buffer{})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUseColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("DISASSEMBLER_NO_COLOR", "")
	var buf bytes.Buffer
	assert.True(t, useColor(config.ColorAlways, &buf))
	assert.False(t, useColor(config.ColorNever, &buf))
	assert.False(t, useColor(config.ColorAuto, &buf), "auto on a buffer")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, useColor(config.ColorAlways, &buf), "NO_COLOR wins over always")
}

func TestDisassembleAllKeepsOrder(t *testing.T) {
	paths := []string{
		writeFile(t, "a.bin", []byte{0x01, 0x05}),
		writeFile(t, "b.bin", []byte{0xFF}),
		writeFile(t, "c.bin", []byte{0x08}),
	}
	opts := disasmOptions{Policy: decoder.Strict, Workers: 2}

	results, err := disassembleAll(context.Background(), paths, nil, opts, nativeDecoder(opts))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "PUSH 5", results[0].text)
	assert.ErrorIs(t, results[1].err, decoder.ErrUnknownOpcode)
	assert.Equal(t, "RET", results[2].text)
	for i, r := range results {
		assert.Equal(t, paths[i], r.name)
	}
}

func TestDisassembleAllStdinHex(t *testing.T) {
	opts := disasmOptions{Policy: decoder.Tolerant, Hex: true, Workers: 1}
	stdin := strings.NewReader("01 05\n0xff\n")

	results, err := disassembleAll(context.Background(), []string{"-"}, stdin, opts, nativeDecoder(opts))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "<stdin>", results[0].name)
	assert.Equal(t, "PUSH 5\n.byte 0xff", results[0].text)
}

func TestDisassembleAllErrors(t *testing.T) {
	opts := disasmOptions{Policy: decoder.Strict, Workers: 1}

	_, err := disassembleAll(context.Background(), []string{"-", "-"}, strings.NewReader(""), opts, nativeDecoder(opts))
	assert.Error(t, err, "stdin twice")

	_, err = disassembleAll(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, nil, opts, nativeDecoder(opts))
	assert.ErrorIs(t, err, os.ErrNotExist)

	hostErr := errors.New("host failure")
	failing := func(context.Context, []byte) (result, error) { return result{}, hostErr }
	_, err = disassembleAll(context.Background(), []string{writeFile(t, "a.bin", []byte{0x08})}, nil, opts, failing)
	assert.ErrorIs(t, err, hostErr)
}

func TestWriteResults(t *testing.T) {
	results := []result{
		{name: "a.bin", text: "PUSH 5"},
		{name: "b.bin", err: decoder.ErrTruncatedInstruction},
		{name: "c.bin", text: "RET"},
	}

	var out, errOut bytes.Buffer
	err := writeResults(&out, &errOut, results, disasmOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, decoder.ErrTruncatedInstruction)
	assert.Contains(t, err.Error(), "1 of 3 inputs")

	assert.Equal(t, "; a.bin\nPUSH 5\n\n; c.bin\nRET\n", out.String())
	assert.Contains(t, errOut.String(), "b.bin")
}

func TestWriteResultsSingleNoHeader(t *testing.T) {
	var out, errOut bytes.Buffer
	err := writeResults(&out, &errOut, []result{{name: "a.bin", text: "NOP"}}, disasmOptions{})
	require.NoError(t, err)
	assert.Equal(t, "NOP\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestWriteResultsJSON(t *testing.T) {
	report, err := engine.NewReport([]byte{0x01, 0x05}, decoder.Strict)
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	require.NoError(t, writeResults(&out, &errOut, []result{{name: "a.bin", report: report}}, disasmOptions{JSON: true}))

	var got []fileReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a.bin", got[0].Name)
	require.NotNil(t, got[0].Report)
	assert.Equal(t, "PUSH 5", got[0].Instructions[0].Text)
	assert.Equal(t, "0105", got[0].Instructions[0].Bytes)
}

func TestWriteResultsJSONKeepsFailedInputs(t *testing.T) {
	paths := []string{
		writeFile(t, "a.bin", []byte{0x01, 0x05}),
		writeFile(t, "b.bin", []byte{0x01}),
		writeFile(t, "c.bin", []byte{0x08}),
	}
	opts := disasmOptions{Policy: decoder.Strict, JSON: true, Workers: 2}

	results, err := disassembleAll(context.Background(), paths, nil, opts, nativeDecoder(opts))
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	err = writeResults(&out, &errOut, results, opts)
	assert.ErrorIs(t, err, decoder.ErrTruncatedInstruction)

	var got []fileReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 3)
	for i, fr := range got {
		assert.Equal(t, paths[i], fr.Name)
	}

	require.NotNil(t, got[0].Report)
	assert.Equal(t, "PUSH 5", got[0].Instructions[0].Text)

	assert.Nil(t, got[1].Report)
	assert.Contains(t, got[1].Error, "truncated")

	require.NotNil(t, got[2].Report)
	assert.Empty(t, got[2].Error)
	assert.Equal(t, "RET", got[2].Instructions[0].Text)
	assert.NotContains(t, out.String(), `"digest": ""`)
}

func TestRenderListing(t *testing.T) {
	stream, err := engine.Listing([]byte{0x01, 0x05, 0x02, 0x00, 0x01, 0x08}, decoder.Strict)
	require.NoError(t, err)

	want := strings.Join([]string{
		"0x0000  01 05     PUSH 5",
		"0x0002  02 00 01  PUSH16 256",
		"0x0005  08        RET",
	}, "\n")
	assert.Equal(t, want, renderListing(stream, false))
	assert.Empty(t, renderListing(nil, false))
}

func TestDisasmCommand(t *testing.T) {
	path := writeFile(t, "prog.hex", []byte("01 05 08"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"disasm", "--hex", "--color", "never", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "PUSH 5\nRET\n", out.String())
}

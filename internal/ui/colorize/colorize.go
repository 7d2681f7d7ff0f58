// Package colorize highlights disassembly listings for terminal output.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Disabled reports whether the environment asks for uncolored output.
func Disabled() bool {
	return os.Getenv("DISASSEMBLER_NO_COLOR") != "" || os.Getenv("NO_COLOR") != ""
}

// getAssemblyLexer returns an appropriate assembly lexer with fallbacks
func getAssemblyLexer() chroma.Lexer {
	// nasm tokenizes mnemonics, decimal and 0x literals and ';' comments
	candidates := []string{"nasm", "gas", "armasm"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getDisasmStyle returns the disassembly style with fallbacks
func getDisasmStyle() *chroma.Style {
	candidates := []string{"disasm-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Listing highlights a whole listing. The input is returned unchanged when
// colors are disabled or no lexer is available.
func Listing(code string) (string, error) {
	if Disabled() || code == "" {
		return code, nil
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return code, nil
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getDisasmStyle(), iterator); err != nil {
		return code, err
	}

	out := buf.String()
	// Lexers that ensure a trailing newline would otherwise grow the listing
	if !strings.HasSuffix(code, "\n") {
		out = trimTrailingNewline(out)
	}
	return out, nil
}

// Line highlights a single listing line, leaving it untouched on failure.
func Line(line string) string {
	out, err := Listing(line)
	if err != nil {
		return line
	}
	return out
}

// trimTrailingNewline drops the last newline even when it is followed by
// a reset sequence.
func trimTrailingNewline(s string) string {
	i := strings.LastIndexByte(s, '\n')
	if i < 0 {
		return s
	}
	if strings.TrimSpace(StripANSI(s[i+1:])) != "" {
		return s
	}
	return s[:i] + s[i+1:]
}

// StripANSI removes ANSI escape codes and returns the plain string
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}

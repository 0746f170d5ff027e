package bridge

import "strings"

// InterpreterRunFlag is cmd.exe's run-and-terminate flag.
const InterpreterRunFlag = "/c"

// EncodeArgs re-serializes the logical arguments into the argv handed
// to process creation.
//
// For a direct-native launch the interop layer re-assembles argv into a
// single Windows command line by joining with spaces, without quoting.
// Arguments containing characters significant to the native re-parse
// must therefore be pre-quoted so they survive intact. For an
// interpreter-wrapped launch the run flag and the target path are
// prepended, and every element is re-quoted because the interpreter
// performs a second round of parsing.
func EncodeArgs(kind LaunchKind, targetPath string, args []string) []string {
	switch kind {
	case LaunchInterpreterWrapped:
		out := make([]string, 0, len(args)+2)
		out = append(out, InterpreterRunFlag, quoteArg(targetPath))
		for _, a := range args {
			out = append(out, quoteArg(a))
		}
		return out
	default:
		out := make([]string, len(args))
		for i, a := range args {
			out[i] = quoteArg(a)
		}
		return out
	}
}

// quoteArg quotes a single argument per the Windows C runtime's
// documented command-line convention (the rule CommandLineToArgvW
// decodes by): wrap in double quotes when the argument is empty or
// contains whitespace or a quote; backslash runs preceding a quote are
// doubled and the quote itself backslash-escaped.
func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\v\"") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	slashes := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			slashes++
		case '"':
			b.WriteString(strings.Repeat(`\`, slashes*2+1))
			b.WriteByte('"')
			slashes = 0
		default:
			if slashes > 0 {
				b.WriteString(strings.Repeat(`\`, slashes))
				slashes = 0
			}
			b.WriteByte(s[i])
		}
	}
	// A trailing backslash run precedes the closing quote and must be
	// doubled so the quote stays a delimiter.
	b.WriteString(strings.Repeat(`\`, slashes*2))
	b.WriteByte('"')
	return b.String()
}

// splitCommandLine decodes a Windows command line back into arguments
// using the same convention quoteArg encodes for. It exists to state
// the encoder's round-trip law: splitCommandLine(join(encode(args)))
// must reproduce args exactly.
func splitCommandLine(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)

	i := 0
	for i < len(line) {
		c := line[i]

		if !inQuote && (c == ' ' || c == '\t') {
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
			i++
			continue
		}

		started = true
		switch c {
		case '\\':
			n := 0
			for i < len(line) && line[i] == '\\' {
				n++
				i++
			}
			if i < len(line) && line[i] == '"' {
				cur.WriteString(strings.Repeat(`\`, n/2))
				if n%2 == 1 {
					cur.WriteByte('"')
				} else {
					inQuote = !inQuote
				}
				i++
			} else {
				cur.WriteString(strings.Repeat(`\`, n))
			}
		case '"':
			inQuote = !inQuote
			i++
		default:
			cur.WriteByte(c)
			i++
		}
	}

	if started {
		args = append(args, cur.String())
	}
	return args
}

// Package gdb understands the text the debugger REPL prints. It is pure:
// no I/O, no state. The correlator feeds it scrollback windows and the
// reconciler feeds it completed replies. Because the REPL has no framed
// protocol, everything here is best-effort pattern matching; keeping it in
// one package lets the heuristics change without touching the correlator.
package gdb

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gdbtap/gdbtap/internal/domain"
)

var (
	promptRe = regexp.MustCompile(`^\(gdb\)\s*$`)
	valueRe  = regexp.MustCompile(`^\$\d+\s*=\s*(.+)$`)

	// "1  breakpoint  keep y  0xADDR  in main at test.c:10" and the
	// short form "2  breakpoint  keep n  main.c:15". Watchpoints and
	// other row types fall through unmatched.
	bpRowRe  = regexp.MustCompile(`^\s*(\d+)\s+breakpoint\s+\S+\s+([yn])\s+(.*)$`)
	bpAtRe   = regexp.MustCompile(`\bin\s+\S+\s+at\s+(\S+):(\d+)\s*$`)
	bpBareRe = regexp.MustCompile(`(\S+):(\d+)\s*$`)

	// "Breakpoint 3 at 0x1234: file main.c, line 10."
	bpCreatedRe = regexp.MustCompile(`^Breakpoint\s+(\d+)\s+at\b`)
)

// IsPrompt reports whether line is the REPL's idle prompt, possibly with
// trailing whitespace. A prompt line followed by typed input ("(gdb) print x")
// is an echo, not an idle prompt.
func IsPrompt(line string) bool {
	return promptRe.MatchString(strings.TrimRight(line, " \t\r"))
}

// isEcho reports whether line is the REPL echoing command back, either bare
// or appended to a prompt.
func isEcho(line, command string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == command {
		return true
	}
	if rest, ok := strings.CutPrefix(trimmed, "(gdb)"); ok {
		return strings.TrimSpace(rest) == command
	}
	return false
}

// ReplyBoundary scans a window of scrollback lines that appeared after a
// command was written and decides whether the command's reply is complete.
// The anchor is the next idle prompt: when the command's echo is visible the
// reply is everything between echo and prompt; when the REPL does not echo,
// any non-prompt lines before the first idle prompt are taken as the reply.
// Returns (nil, false) until a prompt terminating the reply is seen.
func ReplyBoundary(command string, window []string) ([]string, bool) {
	echoAt := -1
	for i, line := range window {
		if isEcho(line, command) {
			echoAt = i
			break
		}
	}

	// Find the first idle prompt after the echo (or anywhere, if no echo).
	for i := echoAt + 1; i < len(window); i++ {
		if !IsPrompt(window[i]) {
			continue
		}
		if echoAt >= 0 {
			return stripNoise(window[echoAt+1 : i]), true
		}
		// No echo seen: best effort, everything before this prompt.
		return stripNoise(window[:i]), true
	}
	return nil, false
}

// stripNoise drops prompt lines and trims blank lines from both ends of a
// recognized reply.
func stripNoise(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if IsPrompt(line) {
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && strings.TrimSpace(out[0]) == "" {
		out = out[1:]
	}
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return out
}

// ExtractValue pulls the result of an expression evaluation out of a reply.
// The REPL prints results as "$<n> = <value>"; when no such line exists the
// first non-empty, non-prompt line is returned as a fallback.
func ExtractValue(lines []string) (string, bool) {
	for _, line := range lines {
		if m := valueRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !IsPrompt(line) {
			return trimmed, true
		}
	}
	return "", false
}

// IsEmptyBreakpointTable reports whether a reply is the debugger's normal
// empty-state response. This is not an error.
func IsEmptyBreakpointTable(lines []string) bool {
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "no breakpoints or watchpoints") {
			return true
		}
	}
	return false
}

// ParseBreakpoints extracts breakpoint rows from an "info breakpoints" table.
// Rows that are not line breakpoints (watchpoints, catchpoints, the header)
// are skipped, not errors.
func ParseBreakpoints(lines []string) []domain.Breakpoint {
	var bps []domain.Breakpoint
	for _, line := range lines {
		row := bpRowRe.FindStringSubmatch(line)
		if row == nil {
			continue
		}
		id, err := strconv.Atoi(row[1])
		if err != nil {
			continue
		}
		loc := bpAtRe.FindStringSubmatch(row[3])
		if loc == nil {
			loc = bpBareRe.FindStringSubmatch(row[3])
		}
		if loc == nil {
			continue
		}
		lineNo, err := strconv.Atoi(loc[2])
		if err != nil || lineNo <= 0 {
			continue
		}
		bps = append(bps, domain.Breakpoint{
			ID:      id,
			File:    loc[1],
			Line:    lineNo,
			Enabled: row[2] == "y",
		})
	}
	return bps
}

// CreatedBreakpointID extracts the id from a "Breakpoint N at ..." reply
// printed after a break command. Returns 0 when the reply has no such line.
func CreatedBreakpointID(lines []string) int {
	for _, line := range lines {
		if m := bpCreatedRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			id, err := strconv.Atoi(m[1])
			if err == nil {
				return id
			}
		}
	}
	return 0
}

// replyErrorRes match reply lines the debugger prints when a command was
// understood but could not be carried out. Deliberately narrow: a legitimate
// value containing the word "undefined" must not trip them.
var replyErrorRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^no symbol\b`),
	regexp.MustCompile(`(?i)^no symbol table\b`),
	regexp.MustCompile(`(?i)^cannot access memory\b`),
	regexp.MustCompile(`(?i)^undefined command\b`),
	regexp.MustCompile(`(?i)^a syntax error\b`),
	regexp.MustCompile(`(?i)^invalid number\b`),
}

// ReplyError scans a completed reply for a failure message and, when one is
// found, wraps it as a typed error attributed to command. A clean reply
// returns nil.
func ReplyError(command string, lines []string) error {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, re := range replyErrorRes {
			if re.MatchString(trimmed) {
				return domain.NewRequestError(ClassifyError(trimmed), command, "%s", trimmed)
			}
		}
	}
	return nil
}

// ClassifyError maps reply text that signals a semantic failure onto the
// error taxonomy. Unmatched text classifies as a generic command failure.
func ClassifyError(text string) domain.ErrorKind {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "timed out"), strings.Contains(lower, "timeout"):
		return domain.KindTimeout
	case strings.Contains(lower, "not available"), strings.Contains(lower, "not active"),
		strings.Contains(lower, "no debug session"):
		return domain.KindNotAvailable
	case strings.Contains(lower, "no symbol"), strings.Contains(lower, "undefined"),
		strings.Contains(lower, "syntax error"):
		return domain.KindExpressionInvalid
	case strings.Contains(lower, "cannot access"), strings.Contains(lower, "access denied"):
		return domain.KindAccessDenied
	default:
		return domain.KindCommandFailed
	}
}

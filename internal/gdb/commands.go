package gdb

import (
	"fmt"
	"strings"
)

// denied are meta-commands that would kill or detach the REPL, or escape to a
// shell. They never reach the process.
var denied = map[string]struct{}{
	"quit":   {},
	"q":      {},
	"exit":   {},
	"kill":   {},
	"detach": {},
	"shell":  {},
}

// Denied reports whether command is on the destructive deny list. The check
// looks at the first word only, plus the "!" shell-escape prefix.
func Denied(command string) bool {
	trimmed := strings.TrimSpace(command)
	if strings.HasPrefix(trimmed, "!") {
		return true
	}
	first, _, _ := strings.Cut(trimmed, " ")
	_, ok := denied[strings.ToLower(first)]
	return ok
}

// Command string builders. Keeping these next to the parser means the full
// wire vocabulary lives in one place.

// InfoBreakpointsCommand lists the breakpoint table.
func InfoBreakpointsCommand() string {
	return "info breakpoints"
}

// BreakCommand sets a breakpoint at file:line.
func BreakCommand(file string, line int) string {
	return fmt.Sprintf("break %s:%d", file, line)
}

// DeleteCommand removes the breakpoint with the given id.
func DeleteCommand(id int) string {
	return fmt.Sprintf("delete %d", id)
}

// PrintCommand evaluates an expression.
func PrintCommand(expr string) string {
	return "print " + strings.TrimSpace(expr)
}

// PrintAddressCommand evaluates the address of an expression.
func PrintAddressCommand(expr string) string {
	return "print &" + strings.TrimSpace(expr)
}

// SetVariableCommand assigns a value to a variable in the debuggee.
func SetVariableCommand(name, value string) string {
	return fmt.Sprintf("set variable %s = %s", strings.TrimSpace(name), strings.TrimSpace(value))
}

// ExamineCommand reads count units of memory at address, formatted per the
// x/NFU idiom (e.g. x/8xb for eight hex bytes).
func ExamineCommand(count int, format, unit, address string) string {
	return fmt.Sprintf("x/%d%s%s %s", count, format, unit, strings.TrimSpace(address))
}

package cli

import "strings"

var (
	examineFormats = "xdutcsi"
	examineUnits   = "bhwg"
)

// validateExamineFlags centralizes x/NFU argument checks so the debugger
// never sees a malformed examine command.
func validateExamineFlags(globals *Globals, count int, format, unit string) error {
	if count <= 0 || count > 4096 {
		return outputErrorCommon(globals, "invalid_input", "count must be between 1 and 4096", "use -n to set how many units to read")
	}
	if len(format) != 1 || !strings.Contains(examineFormats, format) {
		return outputErrorCommon(globals, "invalid_input", "format must be one of x, d, u, t, c, s, i", "use -f to set the display format")
	}
	if len(unit) != 1 || !strings.Contains(examineUnits, unit) {
		return outputErrorCommon(globals, "invalid_input", "unit must be one of b, h, w, g", "use -u to set the unit size")
	}
	return nil
}

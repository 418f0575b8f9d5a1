package ui

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Enabled turns styling on. Commands switch it off for JSON logs and
// non-terminal output.
var Enabled = true

func style(code, s string) string {
	if !Enabled {
		return s
	}
	return code + s + ColorReset
}

func Bold(s string) string {
	return style(ColorBold, s)
}

func Success(s string) string {
	return style(ColorGreen, s)
}

func Warn(s string) string {
	return style(ColorYellow, s)
}

func Info(s string) string {
	return style(ColorDim+ColorYellow, s)
}

func Error(s string) string {
	return style(ColorRed, s)
}

// Status colors a document or row status for summary tables
func Status(s string) string {
	switch s {
	case "ok", "updated":
		return Success(s)
	case "missed", "skipped", "parse_error":
		return Warn(s)
	case "failed", "cancelled", "store_error":
		return Error(s)
	default:
		return s
	}
}

// Package diag carries the non-fatal findings produced while parsing structured
// input. None of them stop processing; callers show them and keep going.
package diag

import "fmt"

// Severity orders diagnostics for display.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a single finding about user input.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Warnf builds a warning diagnostic.
func Warnf(code, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds an error diagnostic.
func Errorf(code, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Code: code, Message: fmt.Sprintf(format, args...)}
}

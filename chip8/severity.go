package chip8

// Severity of a diagnostic.
type Severity int

//go:generate go tool stringer -linecomment -type=Severity
const (
	SEVERITY_WARNING = Severity(0) // warning
	SEVERITY_ERROR   = Severity(1) // error
)

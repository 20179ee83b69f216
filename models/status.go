package models

// Status is the evaluation outcome of a quality gate or one of its conditions.
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

func (s Status) String() string {
	return string(s)
}

// MapStatus normalises host-specific status strings to Status.
// Anything that is neither a pass nor a failure is a warning.
func MapStatus(raw string) Status {
	switch raw {
	case "OK", "ok", "PASS", "pass", "PASSED", "passed":
		return StatusPass
	case "ERROR", "error", "FAIL", "fail", "FAILED", "failed":
		return StatusFail
	default:
		return StatusWarn
	}
}

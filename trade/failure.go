package trade

import "fmt"

// FailureKind classifies everything that can go wrong while handling one
// trading command. Each kind maps to exactly one user-facing reply; no
// failure is retried or silently swallowed.
type FailureKind int

const (
	FailAuthorization FailureKind = iota
	FailParse
	FailConnectivity
	FailSizing
	FailSubmission
)

func (k FailureKind) String() string {
	switch k {
	case FailAuthorization:
		return "authorization"
	case FailParse:
		return "parse"
	case FailConnectivity:
		return "connectivity"
	case FailSizing:
		return "sizing"
	case FailSubmission:
		return "submission"
	default:
		return "unknown"
	}
}

// Failure is a terminal, user-reportable request outcome. It travels by
// return value; callers switch on Kind rather than unwinding the stack.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Message renders the single textual reply sent back over the chat
// channel for this failure.
func (f *Failure) Message() string {
	switch f.Kind {
	case FailAuthorization:
		return "⛔ Unauthorized"
	case FailParse:
		return "❌ Could not parse signal. Use format:\nBUY EURUSD 1.12345 SL 1.12000 TP 1.13000"
	default:
		return fmt.Sprintf("❌ Error: %v", f.Err)
	}
}

func fail(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

func failf(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Err: fmt.Errorf(format, args...)}
}

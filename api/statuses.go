package api

type Verdict string

const (
	Accepted              Verdict = "AC"
	PartiallyCorrect      Verdict = "PT"
	WrongAnswer           Verdict = "WA"
	PresentationError     Verdict = "PE"
	TimeLimitExceeded     Verdict = "TLE"
	MemoryLimitExceeded   Verdict = "MLE"
	IdlenessLimitExceeded Verdict = "ILE"
	RuntimeError          Verdict = "RE"
	CompilationError      Verdict = "CE"
	SecurityViolation     Verdict = "SV"
	InternalServerError   Verdict = "ISE"
)

// Masked verdicts shown when the contest type hides the real result.
const (
	Compiled Verdict = "compiled"
	Rejected Verdict = "RJ"
)

func (v Verdict) IsAccepted() bool {
	return v == Accepted
}

func (v Verdict) IsKnown() bool {
	switch v {
	case Accepted, PartiallyCorrect, WrongAnswer, PresentationError,
		TimeLimitExceeded, MemoryLimitExceeded, IdlenessLimitExceeded,
		RuntimeError, CompilationError, SecurityViolation, InternalServerError:
		return true
	}
	return false
}

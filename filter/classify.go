package filter

import (
	"github.com/effective-security/jwtfilter/codec"
	"github.com/effective-security/jwtfilter/config"
	"github.com/effective-security/jwtfilter/record"
)

// Outcome is the decision taken for a record
type Outcome int

// Outcomes
const (
	// Emit returns the transformed or annotated record
	Emit Outcome = iota + 1
	// PassThrough returns an unmodified copy of the input record
	PassThrough
	// Drop returns no record
	Drop
)

func (o Outcome) String() string {
	switch o {
	case Emit:
		return "emit"
	case PassThrough:
		return "pass_through"
	case Drop:
		return "drop"
	}
	return "unknown"
}

// Result is the outcome of processing a record
type Result struct {
	// Record is nil when the record is dropped
	Record  *record.Record
	Outcome Outcome
	// Valid reports the verification result on unpack
	Valid bool
	// Err is the failure that caused a non-transformed outcome
	Err error
}

// Classify maps a per-record failure to an outcome.
// The record is annotated with a false validity marker by the caller when
// the outcome is Emit.
func Classify(err error, verify config.Verify) Outcome {
	switch codec.KindOf(err) {
	case codec.KindDecoding, codec.KindVerification:
		switch verify {
		case config.VerifyMark:
			return Emit
		case config.VerifyDiscard:
			return Drop
		default:
			return PassThrough
		}
	default:
		// encoding failures, and anything unexpected
		return Drop
	}
}

func reasonOf(kind codec.Kind) string {
	switch kind {
	case codec.KindEncoding:
		return ReasonEncode
	case codec.KindVerification:
		return ReasonVerify
	default:
		return ReasonDecode
	}
}

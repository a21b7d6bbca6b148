package seisan

import (
	"errors"
)

// Kind classifies decode errors.
type Kind int

const (
	// UnrecognizedFormat means the source is not a SEISAN file.  This is not
	// usually a failure, the caller should try another format.
	UnrecognizedFormat Kind = iota + 1
	// TruncatedSource means a framed record is shorter than declared.
	TruncatedSource
	// InvalidHeader means the event header could not be parsed.
	InvalidHeader
	// MalformedChannelHeader means a channel header field could not be parsed.
	MalformedChannelHeader
	// TruncatedSamples means a sample block is shorter than declared.
	TruncatedSamples
)

func (k Kind) String() string {
	switch k {
	case UnrecognizedFormat:
		return "unrecognized format"
	case TruncatedSource:
		return "truncated source"
	case InvalidHeader:
		return "invalid header"
	case MalformedChannelHeader:
		return "malformed channel header"
	case TruncatedSamples:
		return "truncated samples"
	default:
		return "unknown"
	}
}

// Error is returned for all decode failures.  Every Error is terminal for the
// decode, there are no resynchronisation points in a SEISAN file.
type Error struct {
	Kind Kind
	Err  error
}

func (e Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e Error) Unwrap() error {
	return e.Err
}

// IsKind returns true if err is an Error of kind k.
func IsKind(err error, k Kind) bool {
	var e Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

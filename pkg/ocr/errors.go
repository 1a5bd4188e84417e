package ocr

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is through *Error.
var (
	ErrDecode               = errors.New("image could not be decoded")
	ErrInsufficientChannels = errors.New("image does not have enough channels to process")
	ErrOddWidth             = errors.New("image width must be even to divide into two equal columns")
	ErrAllocation           = errors.New("image buffer allocation failed")
	ErrTemplateFormat       = errors.New("malformed template definition")
)

// Kind classifies pipeline failures so callers can apply the per-image policy.
type Kind int

const (
	KindDecode Kind = iota + 1
	KindChannels
	KindOddWidth
	KindAllocation
	KindTemplate
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "DECODE_FAILURE"
	case KindChannels:
		return "INSUFFICIENT_CHANNELS"
	case KindOddWidth:
		return "ODD_WIDTH_LAYOUT"
	case KindAllocation:
		return "ALLOCATION_FAILURE"
	case KindTemplate:
		return "TEMPLATE_FORMAT"
	}
	return "UNKNOWN"
}

func (k Kind) sentinel() error {
	switch k {
	case KindDecode:
		return ErrDecode
	case KindChannels:
		return ErrInsufficientChannels
	case KindOddWidth:
		return ErrOddWidth
	case KindAllocation:
		return ErrAllocation
	case KindTemplate:
		return ErrTemplateFormat
	}
	return nil
}

// Error is a classified pipeline error. Path is the image or template file
// involved, when known.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: %s", e.Kind, e.Op)
	if e.Path != "" {
		s += " " + e.Path
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrOddWidth) and friends match on Kind even when Err
// carries a lower-level cause.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind Kind, op string, err error) *Error {
	if err == nil {
		err = kind.sentinel()
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// withPath returns err annotated with path if it is an *Error without one.
func withPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) && e.Path == "" {
		cp := *e
		cp.Path = path
		return &cp
	}
	return err
}

// KindOf returns the Kind of err, or 0 when err is not a pipeline error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsFatal reports whether err must stop the whole batch rather than just the
// current image.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAllocation)
}

// Package errors re-exports github.com/cockroachdb/errors for tasksheet.
//
// Use it the same way as the standard library errors package, plus
// wrapping and hints:
//
//	if err := fetch(); err != nil {
//	    return errors.Wrapf(err, "fetch %s", src)
//	}
//	return errors.WithHint(err, "check that the sheet is shared publicly")
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New       = crdb.New
	Newf      = crdb.Newf
	Wrap      = crdb.Wrap
	Wrapf     = crdb.Wrapf
	WithStack = crdb.WithStack
	Mark      = crdb.Mark
)

// User-facing messages and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	FlattenHints  = crdb.FlattenHints
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// Error inspection
var (
	Is        = crdb.Is
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors. Wrap them with Mark or Wrap to add context while
// keeping errors.Is working.
var (
	// ErrSourceUnreadable means the raw table could not be fetched or parsed.
	ErrSourceUnreadable = New("source unreadable")

	// ErrInvalidSource means the source identifier could not be understood.
	ErrInvalidSource = New("invalid source")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")
)

// Unreadable marks err as ErrSourceUnreadable and adds msg as context.
// A nil err yields nil.
func Unreadable(err error, msg string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrap(err, msg), ErrSourceUnreadable)
}

// IsUnreadable reports whether err is or wraps ErrSourceUnreadable.
func IsUnreadable(err error) bool {
	return err != nil && Is(err, ErrSourceUnreadable)
}

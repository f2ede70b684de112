// Package errors provides the error types for tz. It includes all of the stdlib's
// functions and types.
package errors

import (
	"github.com/gostdlib/base/context"
	"github.com/gostdlib/base/errors"
)

// Category represents the category of the error.
type Category uint32

func (c Category) Category() string {
	return c.String()
}

func (c Category) String() string {
	switch c {
	case CatUser:
		return "User"
	case CatInternal:
		return "Internal"
	}
	return "Unknown"
}

const (
	// CatUnknown represents an unknown category. This should not be used.
	CatUnknown Category = Category(0)
	// CatUser represents an error that is caused by bad user input, such as a
	// missing input file or a corrupt archive.
	CatUser Category = Category(1)
	// CatInternal represents an internal error.
	CatInternal Category = Category(2)
)

// Type represents the type of the error.
type Type uint16

func (t Type) Type() string {
	return t.String()
}

func (t Type) String() string {
	switch t {
	case TypeBug:
		return "Bug"
	case TypeParameter:
		return "Parameter"
	case TypeFS:
		return "FS"
	case TypeTimeout:
		return "TimeoutOrCancel"
	case TypeCodec:
		return "Codec"
	case TypeArchive:
		return "Archive"
	}
	return "Unknown"
}

const (
	// TypeUnknown represents an unknown type.
	TypeUnknown Type = Type(0)
	// TypeBug represents a bug in the calling code.
	TypeBug Type = Type(1)
	// TypeParameter represents an error with a parameter that didn't pass validation.
	TypeParameter Type = Type(2)
	// TypeTimeout represents a timeout error or cancelation.
	TypeTimeout Type = Type(4)
	// TypeFS represents an error with the file system.
	TypeFS Type = Type(5)

	// TypeCodec represents a failure to encode or decode pair data.
	TypeCodec Type = Type(1000)
	// TypeArchive represents a directory archive that could not be built or parsed.
	TypeArchive Type = Type(1001)
)

// Error is the error type for tz. Error implements github.com/gostdlib/base/errors.E .
type Error = errors.Error

// EOption is an optional argument for E().
type EOption = errors.EOption

// WithCallNum is used if you need to set the runtime.CallNum() in order to get the correct filename and line.
func WithCallNum(i int) EOption {
	return errors.WithCallNum(i)
}

// E creates a new Error with the given parameters.
func E(ctx context.Context, c errors.Category, t errors.Type, msg error, options ...errors.EOption) Error {
	// We are a wrapper, so the caller is one frame further up. A caller supplied
	// call number still wins because it is applied later.
	opts := make([]errors.EOption, 0, len(options)+1)
	opts = append(opts, WithCallNum(2))
	opts = append(opts, options...)

	return errors.E(ctx, c, t, msg, opts...)
}

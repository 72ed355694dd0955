package processor

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	ErrKindConfig ErrorKind = iota + 1
	ErrKindPath
	ErrKindDecode
	ErrKindEncode
	ErrKindWrite
)

var (
	ErrConfig = errors.New("configuration error")
	ErrPath   = errors.New("path error")
	ErrDecode = errors.New("decode error")
	ErrEncode = errors.New("encode error")
	ErrWrite  = errors.New("write error")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case ErrKindConfig:
		return ErrConfig
	case ErrKindPath:
		return ErrPath
	case ErrKindDecode:
		return ErrDecode
	case ErrKindEncode:
		return ErrEncode
	case ErrKindWrite:
		return ErrWrite
	default:
		return nil
	}
}

// Error carries the class of a failure along with the file it concerns.
// errors.Is matches it against ErrConfig, ErrPath, ErrDecode, ErrEncode and ErrWrite.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	prefix := e.Kind.sentinel().Error()
	if e.Path != "" {
		prefix += ": " + e.Path
	}
	if e.Err == nil {
		return prefix
	}
	return prefix + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func newError(kind ErrorKind, path string, err error) error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// ConfigError builds a configuration-class error.
func ConfigError(format string, args ...any) error {
	return &Error{Kind: ErrKindConfig, Err: fmt.Errorf(format, args...)}
}

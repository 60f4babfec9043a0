// Package errors implements the coded errors raised by the generator,
// tester and distribution packages.
//
// Every failure mode is registered once per module and code. A report row
// that could not be computed carries one of them as its reason, and Code
// recovers the module and code from it for logging.
package errors

import (
	"errors"
	"fmt"
	"sync"
)

const (
	// ModuleUnknown is reported by Code for errors that were never
	// registered.
	ModuleUnknown = "unknown"

	// CodeNone is never assigned to a registered error.
	CodeNone uint32 = 0
)

var registry = struct {
	sync.Mutex
	errors map[string]*moduleError
}{
	errors: make(map[string]*moduleError),
}

type moduleError struct {
	module string
	code   uint32
	msg    string
}

func (e *moduleError) Error() string {
	return e.msg
}

type detailError struct {
	err    error
	detail string
}

func (e *detailError) Error() string {
	return e.err.Error() + ": " + e.detail
}

func (e *detailError) Unwrap() error {
	return e.err
}

// New registers an error of the given module.
//
// It panics if the module already registered the code, or if the code is
// CodeNone.
func New(module string, code uint32, msg string) error {
	if code == CodeNone {
		panic(fmt.Sprintf("errors: %s: code %d is reserved", module, CodeNone))
	}

	key := fmt.Sprintf("%s/%d", module, code)

	registry.Lock()
	defer registry.Unlock()

	if prev, ok := registry.errors[key]; ok {
		panic(fmt.Sprintf("errors: %s already registered as %q", key, prev.msg))
	}
	e := &moduleError{
		module: module,
		code:   code,
		msg:    msg,
	}
	registry.errors[key] = e

	return e
}

// WithContext annotates err with a detail such as the offending parameter
// or the name of the test that failed. An empty detail returns err as is.
func WithContext(err error, detail string) error {
	if detail == "" {
		return err
	}
	return &detailError{
		err:    err,
		detail: detail,
	}
}

// Code returns the module and code of the registered error wrapped by err.
//
// Errors that were never registered report ModuleUnknown and CodeNone, a
// nil error reports an empty module and CodeNone.
func Code(err error) (string, uint32) {
	if err == nil {
		return "", CodeNone
	}

	var e *moduleError
	if !errors.As(err, &e) {
		return ModuleUnknown, CodeNone
	}
	return e.module, e.code
}

// Package rngerrors implements a registered, module-scoped error
// taxonomy for the entropy pool, modeled after this codebase's
// wire-friendly coded error pattern.
package rngerrors

import (
	stderrors "errors"
	"fmt"
	"sync"
)

// UnknownModule is the module name used when the module is unknown.
const UnknownModule = "unknown"

// CodeNoError is the reserved "no error" code.
const CodeNoError = 0

// Re-exports so this package can be used as a drop-in replacement for
// the standard errors package by callers that only deal in sentinels.
var (
	As     = stderrors.As
	Is     = stderrors.Is
	Unwrap = stderrors.Unwrap
)

var registeredErrors sync.Map

type codedError struct {
	module string
	code   uint32
	msg    string
}

func (e *codedError) Error() string {
	return e.msg
}

// New registers a new coded error. Module and code pair must be
// unique; registering the same pair twice panics.
func New(module string, code uint32, msg string) error {
	if code == CodeNoError {
		panic(fmt.Errorf("rngerrors: reserved 'no error' code: %d", CodeNoError))
	}

	e := &codedError{module: module, code: code, msg: msg}

	key := errorKey(module, code)
	if prev, isRegistered := registeredErrors.Load(key); isRegistered {
		panic(fmt.Errorf("rngerrors: already registered: %s (existing: %s)", key, prev))
	}
	registeredErrors.Store(key, e)

	return e
}

// Code returns the module and code for the given error. A nil err
// yields an empty module and CodeNoError; an err that is not a
// registered error yields UnknownModule and code 1.
func Code(err error) (string, uint32) {
	if err == nil {
		return "", CodeNoError
	}
	var ce *codedError
	if !As(err, &ce) {
		return UnknownModule, 1
	}
	return ce.module, ce.code
}

func errorKey(module string, code uint32) string {
	return fmt.Sprintf("%s-%d", module, code)
}

// Module is the name shared by every error registered in this file.
const Module = "rngpool"

// The registered taxonomy. Codes are stable across the process and
// serve as the wire-identifiable error kinds referenced by pool.Status.
var (
	// ErrNotFound is returned when persisted engine state does not
	// exist at the requested path.
	ErrNotFound = New(Module, 1, "rngerrors: state file not found")
	// ErrAuthFailure is returned when authenticated decryption of
	// persisted state fails (wrong key or tampered ciphertext).
	ErrAuthFailure = New(Module, 2, "rngerrors: authentication failed")
	// ErrInvalidKey is returned when a supplied encryption key is the
	// wrong length.
	ErrInvalidKey = New(Module, 3, "rngerrors: invalid key length")
	// ErrLowSampleEntropy is returned when a source's mean bit entropy
	// falls below the sample-level threshold.
	ErrLowSampleEntropy = New(Module, 4, "rngerrors: sample entropy below threshold")
	// ErrLowByteEntropy is returned when a slice's per-byte entropy
	// falls below the split-level threshold.
	ErrLowByteEntropy = New(Module, 5, "rngerrors: byte entropy below threshold")
	// ErrSeedLocked is returned when a mixer is fed more data after
	// GenerateSeed has finalized its seed and before that seed has been
	// copied out or the mixer reset.
	ErrSeedLocked = New(Module, 6, "rngerrors: seed locked")
	// ErrDeviceUnavailable is returned when a simulated capture
	// source cannot be started (already running, or stopped
	// concurrently).
	ErrDeviceUnavailable = New(Module, 7, "rngerrors: capture device unavailable")
	// ErrRngUninitialised is returned by operations that require an
	// initialized engine.
	ErrRngUninitialised = New(Module, 8, "rngerrors: engine not initialized")
)

// Package errors provides structured error types for the heimdall module.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The Error type carries the file path, lifecycle stage,
// and cause chain so a host can log and decide whether to keep polling.
//
// Use the convenience constructors:
//
//	err := errors.Poll(path, cause)
//	err := errors.MissingSymbol(heimdall.StageReload)
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors

// Package errors provides the structured error type surfaced by scod.
//
// Every failure raised by the resolution engine is an *AppError carrying a
// machine-readable code, the component or operation it concerns, the phase
// in which it happened and, for validation failures, the offending fields.
// The original cause stays reachable through errors.Is and errors.As.
package errors

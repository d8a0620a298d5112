// Package errs provides standardized error types for the EcoLocker order engine.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types that together form the engine's taxonomy:
//   - ObjectNotFoundError: an order, listing or locker is absent or not visible to the caller
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed input
//   - StateConflictError: a precondition on the current state of an aggregate was violated
//   - UnauthorizedError: the caller could not be identified
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// Callers classify errors with errors.Is against the sentinels, which keeps the
// transport layer free of knowledge about the concrete domain failures.
package errs

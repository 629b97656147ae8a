// Package errors provides the structured error handling used across preen.
// It extends Go's standard error handling with string error codes and
// context preservation while staying compatible with errors.Is/As.
package errors

// Code represents a specific error condition in preen.
// Codes are string-based for debuggability and natural log serialization.
type Code string

const (
	// Resource errors.

	// CodeNotFound indicates a requested file or directory does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig Code = "INVALID_CONFIGURATION"

	// CodeInvalidPattern indicates a patch rule pattern failed to compile.
	CodeInvalidPattern Code = "INVALID_PATTERN"

	// CodeUnsupportedVersion indicates the configuration declares a version
	// this build does not support.
	CodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"

	// Pipeline errors.

	// CodeSyncFailed indicates the staging sync stage failed.
	CodeSyncFailed Code = "SYNC_FAILED"

	// CodeTemplateFailed indicates the template application stage failed.
	CodeTemplateFailed Code = "TEMPLATE_FAILED"

	// CodePatchFailed indicates the patch stage failed.
	CodePatchFailed Code = "PATCH_FAILED"

	// CodeVCSFailed indicates a git operation failed.
	CodeVCSFailed Code = "VCS_FAILED"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown Code = "UNKNOWN"
)

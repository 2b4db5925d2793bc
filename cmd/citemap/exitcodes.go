package main

// Exit codes. Per-document extraction failures are reported in the
// summary and never change the exit code.
const (
	ExitSuccess     = 0 // Success, including runs with failed documents
	ExitError       = 1 // General error (invalid arguments, unwritable output)
	ExitConfigError = 2 // Configuration error (malformed global config)
	ExitDataError   = 3 // Data error (missing or malformed bibliography)
)

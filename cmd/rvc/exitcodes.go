package main

// Exit codes shared by every command.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no workspace, invalid config, run lock held)
	ExitDataError   = 3 // Data error (unreadable export, unknown collection, failed pairs)
)

package errors

import "os"

// OsExit is swapped out in tests.
var OsExit = os.Exit

// Exit terminates the process with exitCode.
func Exit(exitCode int) {
	OsExit(exitCode)
}

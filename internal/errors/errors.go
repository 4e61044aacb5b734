package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/storage/postgres"
)

// Exit codes returned by the CLI
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInvalidArgs = 2
	ExitPersistence = 3
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// ExitCode maps an error to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, habits.ErrPersistence):
		return ExitPersistence
	case stderrors.Is(err, habits.ErrNotFound),
		stderrors.Is(err, habits.ErrInvalidLevel),
		stderrors.Is(err, habits.ErrInvalidDate),
		stderrors.Is(err, habits.ErrInvalidHabit),
		stderrors.Is(err, habits.ErrInvalidSettings):
		return ExitInvalidArgs
	default:
		return ExitFailure
	}
}

// Hint returns a short suggestion for errors the user can act on
func Hint(err error) string {
	switch {
	case stderrors.Is(err, habits.ErrNotFound):
		return "run 'habitgrid list' to see habit ids"
	case stderrors.Is(err, habits.ErrInvalidLevel):
		return "levels are 0 (rest) to 3"
	case stderrors.Is(err, habits.ErrInvalidDate):
		return "dates use the YYYY-MM-DD format"
	case stderrors.Is(err, habits.ErrInvalidSettings):
		return "colors use the #rrggbb format"
	case stderrors.Is(err, postgres.ErrEmbeddedCredentials):
		return "store the connection string with 'habitgrid keyring set' instead"
	case stderrors.Is(err, fs.ErrPermission):
		return "check the permissions of the data directory"
	}
	return ""
}

// Report logs err, prints it with its hint to w and returns the exit code
// matching it. Callers exit with that code once their deferred cleanup ran.
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(w, Format(err))
	return ExitCode(err)
}

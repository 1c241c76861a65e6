package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())

	if isConfigError(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: set OPENAI_API_KEY or pass --config with an openai.api_key")
	}

	return reportedError{err}
}

// reportedError marks an error already written to stderr.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// Reported reports whether err was already shown to the user.
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

func isConfigError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "OPENAI_API_KEY")
}

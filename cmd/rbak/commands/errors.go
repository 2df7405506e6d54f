package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/thoreinstein/rbak/internal/errors"
)

// PrintError writes err and its suggestion to w. It returns the exit code
// the process should end with.
func PrintError(w io.Writer, err error) int {
	exitErr := errors.Classify(err)
	if exitErr == nil {
		return errors.ExitSuccess
	}

	fmt.Fprintf(w, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), exitErr.Error())
	if exitErr.Suggestion != "" {
		fmt.Fprintf(w, "%s %s\n", color.YellowString("Hint:"), exitErr.Suggestion)
	}
	return exitErr.Code
}

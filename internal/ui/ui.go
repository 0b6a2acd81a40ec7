package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

var (
	// Out receives every status line. Tests swap it for a buffer.
	Out io.Writer = os.Stdout

	bold   = color.New(color.Bold).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func PrintHeader(msg string) {
	fmt.Fprintf(Out, "\n%s\n", bold(msg))
}

func PrintSuccess(label, detail string) {
	fmt.Fprintf(Out, "  %s %-15s %s\n", green("✔"), label, green(detail))
}

func PrintError(label, detail string) {
	fmt.Fprintf(Out, "  %s %-15s %s\n", red("✘"), label, red(detail))
}

func PrintWarning(label, detail string) {
	fmt.Fprintf(Out, "  %s %-15s %s\n", yellow("!"), label, yellow(detail))
}

// RunSpinner executes the given action while showing a spinner.
// The spinner only renders when stdout is a terminal.
func RunSpinner(msg string, action func() error) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stdout))
	s.Suffix = " " + msg
	s.Start()
	defer s.Stop()
	return action()
}

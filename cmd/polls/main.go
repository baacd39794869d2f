// Command polls runs the polls web service and its admin commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/polls/internal/cli"
)

func main() {
	err := cli.NewRootCommand().ExecuteContext(context.Background())
	if err == nil {
		return
	}

	// ExitErrors were already reported through the output formatter.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}

// Command otioremap resolves the media frames an OpenTimelineIO edit plays.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/otioremap/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/walteh/datepatch/pkg/status"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the root command and returns the process exit code
func run(ctx context.Context, args []string, console, logs io.Writer) int {
	cmd := newRootCmd(console, logs)
	cmd.SetArgs(append([]string{}, args...))

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(logs, status.NewDefaultFormatter().FormatError(err))
		return 1
	}
	return 0
}

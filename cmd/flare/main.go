package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┬  ┌─┐┬─┐┌─┐
  ╠╣ │  ├─┤├┬┘├┤
  ╚  ┴─┘┴ ┴┴└─└─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "flare",
		Short: "Fine-grained reactive state for Go",
		Long: `Flare is a reactive signal runtime for Go.

State lives in signals, derived values in memos, and side effects in
effects that re-run automatically when their dependencies change.
The CLI ships supporting tools:

  • demo      walk through the runtime interactively
  • bench     measure propagation throughput
  • devtools  serve the runtime inspector
  • version   print build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		demoCmd(),
		benchCmd(),
		devtoolsCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Flare ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

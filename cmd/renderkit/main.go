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
  ┬─┐┌─┐┌┐┌┌┬┐┌─┐┬─┐┬┌─┬┌┬┐
  ├┬┘├┤ │││ ││├┤ ├┬┘├┴┐│ │
  ┴└─└─┘┘└┘─┴┘└─┘┴└─┴ ┴┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "renderkit",
		Short: "Server-side render orchestration for Go",
		Long: `Renderkit renders pages wrapped in nested layouts to markup,
with resolved metadata, preloaded server data, and collected scripts.

  • Layout composition with per-component opt-out
  • Metadata resolution, merging, and pluggable caching
  • Fail-soft server data loading
  • Script collection with dedup and priorities
  • Payload compression and fallback recovery`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		renderCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errorMsg("%s", err)
		os.Exit(1)
	}
}

// printBanner prints the ASCII art banner.
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

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}

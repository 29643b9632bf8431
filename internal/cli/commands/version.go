package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/leapstack-labs/leapcheck/internal/source"
	"github.com/spf13/cobra"
)

// NewVersionCommand prints the leapcheck version together with the Go
// runtime and the data source kinds compiled into the binary.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and supported data sources",
		Long:  `Print the leapcheck version, the Go runtime it was built with and the data source kinds it can read.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "leapcheck v%s\n", version)
			_, _ = fmt.Fprintln(w, "Rule-driven validation for tabular data")
			_, _ = fmt.Fprintf(w, "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			_, _ = fmt.Fprintf(w, "sources: %s\n", strings.Join(source.Kinds(), ", "))
		},
	}
}

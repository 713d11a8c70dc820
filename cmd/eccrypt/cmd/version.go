package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand new version cmd
func NewVersionCommand(cli *Cli) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "View version information.",
		Example: "eccrypt version",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := cli.version
			fmt.Fprintf(cmd.OutOrStdout(), "%s-%s %s\n", v.Version, v.CommitID, v.BuildTime)
		},
	}
}

func init() {
	AddCommand(NewVersionCommand)
}

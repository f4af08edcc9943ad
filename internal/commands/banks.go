package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBanksCommand(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List supported banks in detection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, name := range get().pipeline.Registry().SupportedBanks() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, name)
			}
			return nil
		},
	}
}

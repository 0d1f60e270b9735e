package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/prfill/internal/reconcile"
)

// branchCmd shows which ticket a branch name points at, without calling any API.
var branchCmd = &cobra.Command{
	Use:   "branch <name>...",
	Short: "Print the ticket id encoded in branch names",
	Long: `Branch prints the ticket id prfill would look up for each branch name.

The id is the first run of digits in the name; a '.digits' suffix is ignored,
so 'release/42.7' points at ticket 42.

Example:
  prfill branch feature/123-login chore/cleanup`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, branch := range args {
			id, found, err := reconcile.ExtractTicketID(branch)
			switch {
			case err != nil:
				return err
			case !found:
				fmt.Fprintf(out, "%s\t-\n", branch)
			default:
				fmt.Fprintf(out, "%s\t%d\n", branch, id)
			}
		}
		return nil
	},
}

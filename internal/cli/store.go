package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Read raw records from the persistence store",
}

var storeGetCmd = &cobra.Command{
	Use:   "get [collection] [key]",
	Short: "Print one record",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		app, stop := newApp(cmd)
		defer stop()

		rec, found, err := app.Store.Get(cmd.Context(), args[0], args[1])
		if err != nil {
			fail("Failed to read record", err)
		}
		if !found {
			fmt.Fprintf(os.Stderr, "%s/%s not found\n", args[0], args[1])
			os.Exit(1)
		}
		_ = printJSON(os.Stdout, rec)
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "Print every record of a collection",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, stop := newApp(cmd)
		defer stop()

		recs, err := app.Store.GetAll(cmd.Context(), args[0])
		if err != nil {
			fail("Failed to list records", err)
		}
		_ = printJSON(os.Stdout, recs)
	},
}

var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage and generative service health",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app, stop := newApp(cmd)
		defer stop()
		_ = printJSON(os.Stdout, app.Health(cmd.Context()))
	},
}

func init() {
	storeCmd.AddCommand(storeGetCmd, storeListCmd, storeStatusCmd)
	rootCmd.AddCommand(storeCmd)
}

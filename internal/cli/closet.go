package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var closetCmd = &cobra.Command{
	Use:   "closet",
	Short: "Inspect and manage saved looks",
}

var closetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved looks, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app, stop := newApp(cmd)
		defer stop()

		looks, err := app.Closet.List(cmd.Context())
		if err != nil {
			fail("Failed to list looks", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
		_, _ = fmt.Fprintln(w, "ID\tFOLDER\tSOURCE\tFAVORITE\tSAVED")
		for _, l := range looks {
			saved := time.UnixMilli(l.SavedAt).Format(time.RFC3339)
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", l.ID, l.Folder, l.Source, l.IsFavorite, saved)
		}
		_ = w.Flush()
	},
}

var closetMoveCmd = &cobra.Command{
	Use:   "move [id] [folder]",
	Short: "Move a look to another folder",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		app, stop := newApp(cmd)
		defer stop()
		if err := app.Closet.Move(cmd.Context(), args[0], args[1]); err != nil {
			fail("Failed to move look", err)
		}
	},
}

var closetFavoriteCmd = &cobra.Command{
	Use:   "favorite [id]",
	Short: "Toggle the favorite flag of a look",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, stop := newApp(cmd)
		defer stop()
		fav, err := app.Closet.ToggleFavorite(cmd.Context(), args[0])
		if err != nil {
			fail("Failed to toggle favorite", err)
		}
		fmt.Printf("%s favorite=%v\n", args[0], fav)
	},
}

var closetDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved look",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, stop := newApp(cmd)
		defer stop()
		if err := app.Closet.Delete(cmd.Context(), args[0]); err != nil {
			fail("Failed to delete look", err)
		}
	},
}

var closetClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved look",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app, stop := newApp(cmd)
		defer stop()
		if err := app.Closet.Clear(cmd.Context()); err != nil {
			fail("Failed to clear closet", err)
		}
	},
}

func init() {
	closetCmd.AddCommand(closetListCmd, closetMoveCmd, closetFavoriteCmd, closetDeleteCmd, closetClearCmd)
	rootCmd.AddCommand(closetCmd)
}

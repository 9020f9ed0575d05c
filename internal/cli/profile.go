package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	profileEmail string
	profileName  string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage user profiles",
}

var profileGetCmd = &cobra.Command{
	Use:   "get [uid]",
	Short: "Print a user profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, stop := newApp(cmd)
		defer stop()

		p, err := app.Profiles.Get(cmd.Context(), args[0])
		if err != nil {
			fail("Failed to read profile", err)
		}
		if p == nil {
			fmt.Fprintf(os.Stderr, "profile %s not found\n", args[0])
			os.Exit(1)
		}
		_ = printJSON(os.Stdout, p)
	},
}

var profileSyncCmd = &cobra.Command{
	Use:   "sync [uid]",
	Short: "Create a profile or refresh its email",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, stop := newApp(cmd)
		defer stop()
		if err := app.Profiles.Sync(cmd.Context(), args[0], profileEmail, profileName); err != nil {
			fail("Failed to sync profile", err)
		}
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update [uid] [json-patch]",
	Short: "Merge top-level fields into a profile",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		var patch map[string]any
		if err := json.Unmarshal([]byte(args[1]), &patch); err != nil {
			fail("Invalid patch", err)
		}

		app, stop := newApp(cmd)
		defer stop()
		if err := app.Profiles.Update(cmd.Context(), args[0], patch); err != nil {
			fail("Failed to update profile", err)
		}
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete [uid]",
	Short: "Delete a user profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, stop := newApp(cmd)
		defer stop()
		if err := app.Profiles.Delete(cmd.Context(), args[0]); err != nil {
			fail("Failed to delete profile", err)
		}
	},
}

func init() {
	profileSyncCmd.Flags().StringVar(&profileEmail, "email", "", "account email")
	profileSyncCmd.Flags().StringVar(&profileName, "name", "", "display name for new profiles")
	profileCmd.AddCommand(profileGetCmd, profileSyncCmd, profileUpdateCmd, profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}

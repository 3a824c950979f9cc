package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netlens/netlens/pkg/log"
	"github.com/netlens/netlens/pkg/manager"
)

// userCmd bootstraps accounts directly against the data directory, for
// first-run setup before the API has any admin to log in with.
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts offline",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		password, _ := cmd.Flags().GetString("password")
		isAdmin, _ := cmd.Flags().GetBool("admin")

		log.Init(log.Config{Level: log.WarnLevel})

		mgr, err := manager.NewManager(&manager.Config{DataDir: dataDir})
		if err != nil {
			return fmt.Errorf("failed to open data directory: %v", err)
		}
		defer mgr.Close()

		user, err := mgr.CreateUser(args[0], password, isAdmin)
		if err != nil {
			return fmt.Errorf("failed to create user: %v", err)
		}

		fmt.Printf("✓ User %s created (admin: %v)\n", user.Username, user.IsAdmin)
		return nil
	},
}

func init() {
	userAddCmd.Flags().String("data-dir", envOr("NETLENS_DATA_DIR", "/var/lib/netlens"), "data directory")
	userAddCmd.Flags().String("password", "", "initial password")
	userAddCmd.Flags().Bool("admin", false, "grant platform admin")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd)
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin users",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create or reset an admin user",
	Long: `Create an admin user, or reset the password of an existing one and
reactivate it.

Examples:
  blogctl admin create
  blogctl admin create --email me@example.com --password 'a long passphrase'`,
	Args: cobra.NoArgs,
	RunE: runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().String("email", "admin@example.com", "admin email address")
	adminCreateCmd.Flags().String("password", "password123", "admin password")

	adminCmd.AddCommand(adminCreateCmd)

	rootCmd.AddCommand(adminCmd)
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.services.Seed.CreateAdmin(context.Background(), email, password)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(user.ToDTO())
	}

	fmt.Printf("Admin user ready: %s (%s)\n", user.Email, user.ID)
	if !cmd.Flags().Changed("password") {
		fmt.Println("Warning: the default password is in use, change it before going live")
	}
	return nil
}

// ABOUTME: CLI commands for managing user accounts.
// ABOUTME: Creates accounts directly in storage, bypassing the HTTP API.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/velolab/velo/internal/auth"
	"github.com/velolab/velo/internal/models"
)

var (
	userPassword  string
	userStaff     bool
	userFirstName string
	userLastName  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create a user account",
	Long: `Create a user account directly in the local database.

EXAMPLES:

  velo user add coach@example.com --password s3cret --staff
  velo user add rider@example.com --password s3cret --first Jo --last Martin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]
		if userPassword == "" {
			return fmt.Errorf("--password is required")
		}

		hashed, err := auth.HashPassword(userPassword, cfg.BcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := models.NewUser(email, hashed).WithName(userFirstName, userLastName)
		if userStaff {
			user.AsStaff()
		}

		if err := db.CreateUser(user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		color.Green("✓ Created user %s (%s)", email, user.ID)
		if user.IsStaff {
			fmt.Println("Account has staff privileges.")
		}
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVarP(&userPassword, "password", "p", "", "account password (required)")
	userAddCmd.Flags().BoolVar(&userStaff, "staff", false, "grant staff privileges")
	userAddCmd.Flags().StringVar(&userFirstName, "first", "", "first name")
	userAddCmd.Flags().StringVar(&userLastName, "last", "", "last name")

	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"researchnest/internal/repository"
	"researchnest/internal/security"
	"researchnest/internal/service"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		// tokens are never issued here; the secret only satisfies the constructor
		authService := service.NewAuthService(repository.NewUserRepository(db), security.NewTokenManager("researchctl", 0), nil)
		user, err := authService.CreateAdmin(adminName, adminEmail, adminPassword)
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email address")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "Display name")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("password")
}

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/daybook/core/cmd/api/commands"
)

// @title Daybook API
// @version 1.0
// @description Notes, attendance and payroll tracking with offline-tolerant sync

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "daybook",
		Short: "Daybook API Server",
		Long:  `Daybook keeps notes, attendance marks, future tasks and payroll history, caching reads and keeping failed writes in a local fallback store.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}

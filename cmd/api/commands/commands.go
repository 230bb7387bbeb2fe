package commands

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/daybook/core/internal/adapters/repository"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/database"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/infrastructure/metrics"
	"github.com/daybook/core/internal/infrastructure/server"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Daybook API server",
		Long:  "Start the Daybook API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending database migrations before serving")
	return cmd
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	var steps int
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration("up", steps)
		},
	}
	upCmd.Flags().IntVar(&steps, "steps", 0, "Number of migrations to apply (0 applies all)")

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Revert migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration("down", steps)
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 0, "Number of migrations to revert (0 reverts all)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMigrationVersion()
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, versionCmd)
	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	var email, password, displayName string
	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || len(password) < 8 {
				return fmt.Errorf("email and a password of at least 8 characters are required")
			}
			return createUser(cmd.Context(), email, password, displayName)
		},
	}
	createUserCmd.Flags().StringVar(&email, "email", "", "User email (required)")
	createUserCmd.Flags().StringVar(&password, "password", "", "User password (required)")
	createUserCmd.Flags().StringVar(&displayName, "display-name", "", "Display name")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Daybook version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Daybook %s\n", Version)
			fmt.Printf("Build Date: %s\n", BuildDate)
			fmt.Printf("Git Commit: %s\n", GitCommit)
		},
	}
}

func runServer(ctx context.Context, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	backend, cleanup, err := openBackend(ctx, cfg, appLogger, m, migrate)
	if err != nil {
		appLogger.Errorw("Failed to open backend", "error", err)
		return err
	}
	defer cleanup()

	srv, err := server.New(cfg, backend, appLogger, m)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	appLogger.Infow("Starting Daybook API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"database", cfg.Database.Driver,
		"cache", cfg.Cache.Backend,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Errorw("Server failed", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("Graceful shutdown failed", "error", err)
		return err
	}
	appLogger.Infow("Server stopped")
	return nil
}

func openDatabase() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.InMemory() {
		return nil, fmt.Errorf("database driver is memory; nothing to migrate")
	}
	return database.New(cfg.Database)
}

func runMigration(direction string, steps int) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db)
	if err != nil {
		return err
	}
	defer migrator.Close()

	var changed bool
	switch {
	case direction == "up" && steps > 0:
		changed, err = migrator.Steps(steps)
	case direction == "up":
		changed, err = migrator.Up()
	case steps > 0:
		changed, err = migrator.Steps(-steps)
	default:
		changed, err = migrator.Down()
	}
	if err != nil {
		return err
	}

	if !changed {
		fmt.Println("No migrations to run")
		return nil
	}
	fmt.Printf("Migration %s completed successfully\n", direction)
	return nil
}

func showMigrationVersion() error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db)
	if err != nil {
		return err
	}
	defer migrator.Close()

	version, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
	return nil
}

func createUser(ctx context.Context, email, password, displayName string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashed),
		DisplayName:  displayName,
		CreatedAt:    time.Now(),
	}

	if err := repository.NewUserRepository(db.DB).Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("User created: %s (%s)", user.Email, user.ID)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/iliyamo/medisafe/internal/admin"
	"github.com/iliyamo/medisafe/internal/config"
	"github.com/iliyamo/medisafe/internal/database"
	"github.com/iliyamo/medisafe/internal/logging"
	"github.com/iliyamo/medisafe/internal/repository"
	"github.com/iliyamo/medisafe/internal/service"
	"github.com/iliyamo/medisafe/internal/validation"
)

var CLI struct {
	Migrate    admin.MigrateCmd    `cmd:"" help:"Apply pending database migrations."`
	CreateUser admin.CreateUserCmd `cmd:"" help:"Create a user account."`
	ListUsers  admin.ListUsersCmd  `cmd:"" help:"List user accounts."`
	DeleteUser admin.DeleteUserCmd `cmd:"" help:"Delete a user and all of their records."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("medisafe-admin"),
		kong.Description("Operator tasks for the MediSafe API database."),
		kong.UsageOnError(),
	)

	if err := run(kctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(kctx *kong.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	auth, err := service.NewAuthService(users, service.AuthConfig{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}, validation.New(), log, service.WithTimeout(cfg.DBTimeout))
	if err != nil {
		return err
	}

	return kctx.Run(&admin.Context{
		Ctx:   context.Background(),
		DB:    db,
		Users: users,
		Auth:  auth,
		Out:   os.Stdout,
	})
}

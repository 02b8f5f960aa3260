// Package admin implements the operator commands of medisafe-admin.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/iliyamo/medisafe/internal/database"
	"github.com/iliyamo/medisafe/internal/repository"
	"github.com/iliyamo/medisafe/internal/service"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// Context is handed to every command's Run method.
type Context struct {
	Ctx   context.Context
	DB    *database.DB
	Users *repository.UserRepo
	Auth  *service.AuthService
	Out   io.Writer
}

// MigrateCmd applies pending schema migrations.
type MigrateCmd struct{}

func (MigrateCmd) Run(c *Context) error {
	n, err := database.Migrate(c.Ctx, c.DB)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "applied %d migration(s)\n", n)
	return nil
}

// CreateUserCmd registers an account with the same rules as the API.
type CreateUserCmd struct {
	Username string `arg:"" help:"Login name."`
	Email    string `help:"Optional contact address."`
	Password string `help:"Password; prompted for when omitted." env:"MEDISAFE_PASSWORD"`
}

func (cmd CreateUserCmd) Run(c *Context) error {
	pw := cmd.Password
	if pw == "" {
		fmt.Fprint(c.Out, "Enter password: ")
		b, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(c.Out)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		pw = string(b)
	}
	in := service.RegisterInput{Username: cmd.Username, Password: pw}
	if e := strings.TrimSpace(cmd.Email); e != "" {
		in.Email = &e
	}
	u, _, err := c.Auth.Register(c.Ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "created user %q (id %d)\n", u.Username, u.ID)
	return nil
}

// ListUsersCmd prints every account.
type ListUsersCmd struct{}

func (ListUsersCmd) Run(c *Context) error {
	users, err := c.Users.List(c.Ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tCREATED")
	for _, u := range users {
		email := "-"
		if u.Email != nil {
			email = *u.Email
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, email, u.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

// DeleteUserCmd removes an account and, by cascade, all of its records.
type DeleteUserCmd struct {
	Username string `arg:"" help:"Login name."`
}

func (cmd DeleteUserCmd) Run(c *Context) error {
	u, err := c.Users.GetByUsername(c.Ctx, cmd.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("no user %q", cmd.Username)
	}
	if err != nil {
		return err
	}
	if err := c.Users.Delete(c.Ctx, u.ID); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "deleted user %q\n", u.Username)
	return nil
}

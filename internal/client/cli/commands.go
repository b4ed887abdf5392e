package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/calebglawson/cecil/internal/api"
	"github.com/calebglawson/cecil/internal/server/models"
)

func (a *App) login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Password")
	if err != nil {
		return err
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.backend.Login(callCtx, &api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	if err := a.tokens.Save(resp.AccessToken); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", username)
	return nil
}

func (a *App) logout() error {
	if err := a.tokens.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	me, err := a.backend.Me(callCtx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (id %d, role %s)\n", me.Username, me.ID, me.Role)
	return nil
}

func (a *App) passwd(ctx context.Context) error {
	old, err := GetPassword(a.out, "Current password")
	if err != nil {
		return err
	}
	next, err := GetPassword(a.out, "New password")
	if err != nil {
		return err
	}
	confirm, err := GetPassword(a.out, "Confirm new password")
	if err != nil {
		return err
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.backend.ChangePassword(callCtx, &api.ChangePasswordRequest{
		OldPassword: old, NewPassword: next, ConfirmPassword: confirm,
	}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

func (a *App) register(ctx context.Context) error {
	code, err := GetSimpleText(a.reader, "Invite code", a.out)
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Password")
	if err != nil {
		return err
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	u, err := a.backend.Register(callCtx, &api.RegisterRequest{
		Username: username, Password: password, InviteCode: code,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s (id %d)\n", u.Username, u.ID)
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected one id", ErrUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", ErrUsage, args[0])
	}
	return id, nil
}

func (a *App) invite(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: invite needs a subcommand", ErrUsage)
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("invite create", flag.ContinueOnError)
		fs.SetOutput(a.out)
		code := fs.String("code", "", "invite code; generated when empty")
		ttl := fs.Int("ttl", 0, "lifetime in minutes; server default when 0")
		if err := fs.Parse(args[1:]); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}

		created, err := a.backend.CreateInvite(callCtx, &api.CreateInviteRequest{Code: *code, TTLMinutes: *ttl})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Invite %d: %s\nExpires %s\n",
			created.Invite.ID, created.Code, created.Invite.ExpiresAt.Format(time.RFC3339))
		return nil

	case "list":
		list, err := a.backend.ListInvites(callCtx)
		if err != nil {
			return err
		}
		a.printInvites(list.Invites)
		return nil

	case "delete":
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		if err := a.backend.DeleteInvite(callCtx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Invite %d deleted\n", id)
		return nil

	default:
		return fmt.Errorf("%w: unknown invite subcommand %q", ErrUsage, args[0])
	}
}

func (a *App) users(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: users needs a subcommand", ErrUsage)
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	switch args[0] {
	case "list":
		list, err := a.backend.ListAuthUsers(callCtx)
		if err != nil {
			return err
		}
		a.printUsers(list.Users)
		return nil

	case "deactivate":
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		if err := a.backend.DeactivateUser(callCtx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "User %d deactivated\n", id)
		return nil

	default:
		return fmt.Errorf("%w: unknown users subcommand %q", ErrUsage, args[0])
	}
}

func (a *App) printInvites(invites []models.InviteCode) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED BY\tCREATED\tEXPIRES")
	for _, inv := range invites {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", inv.ID, inv.CreatedBy,
			inv.CreatedAt.Format(time.RFC3339), inv.ExpiresAt.Format(time.RFC3339))
	}
	_ = tw.Flush()
}

func (a *App) printUsers(users []models.InternalUser) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tLAST LOGIN")
	for _, u := range users {
		last := "-"
		if u.LastLogin != nil {
			last = u.LastLogin.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, last)
	}
	_ = tw.Flush()
}

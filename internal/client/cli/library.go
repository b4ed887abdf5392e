package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/calebglawson/cecil/internal/api"
	"github.com/calebglawson/cecil/internal/server/models"
)

// expectArgs checks that exactly n positional arguments follow a subcommand.
func expectArgs(args []string, n int, what string) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %s", ErrUsage, what)
	}
	return nil
}

func (a *App) account(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: account needs a subcommand", ErrUsage)
	}
	if err := expectArgs(args[1:], 1, "one account id"); err != nil {
		return err
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	var (
		p   *models.Profile
		err error
	)
	switch args[0] {
	case "show":
		p, err = a.backend.GetUser(callCtx, args[1])
	case "add":
		p, err = a.backend.AddUser(callCtx, args[1])
	default:
		return fmt.Errorf("%w: unknown account subcommand %q", ErrUsage, args[0])
	}
	if err != nil {
		return err
	}

	a.printProfiles([]models.Profile{*p})
	return nil
}

func (a *App) stats(ctx context.Context, args []string) error {
	if err := expectArgs(args, 2, "an account id and a watchlist"); err != nil {
		return err
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	st, err := a.backend.WatchlistStats(callCtx, &api.StatsRequest{AccountID: args[0], WatchlistID: args[1]})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RATIO\tVALUE")
	for _, row := range []struct {
		name  string
		value float64
	}{
		{"followers percent", st.FollowersPercent},
		{"followers completion", st.FollowersCompletion},
		{"friends percent", st.FriendsPercent},
		{"friends completion", st.FriendsCompletion},
		{"favorite percent", st.FavoritePercent},
		{"retweet percent", st.RetweetPercent},
	} {
		fmt.Fprintf(tw, "%s\t%.4f\n", row.name, row.value)
	}
	return tw.Flush()
}

// relations lists one page of followers or friends. Watchlist members on the
// page are shown with their screen name.
func (a *App) relations(ctx context.Context, cmd string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s needs an account id", ErrUsage, cmd)
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(a.out)
	watchlist := fs.String("w", "", "watchlist whose members are shown with their profile")
	page := fs.Int("p", 1, "page number")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	in := &api.RelationRequest{AccountID: args[0], Page: *page, WatchlistID: *watchlist}
	list := a.backend.Followers
	if cmd == "friends" {
		list = a.backend.Friends
	}
	p, err := list(callCtx, in)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER ID\tSCREEN NAME")
	for _, rel := range p.Items {
		name := "-"
		if rel.User != nil {
			name = rel.User.ScreenName
		}
		fmt.Fprintf(tw, "%s\t%s\n", rel.UserID, name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d of %d, %d total\n", *page, p.Pages, p.Total)
	return nil
}

func (a *App) watchlist(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: watchlist needs a subcommand", ErrUsage)
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		ids, err := a.backend.ListWatchlists(callCtx)
		if err != nil {
			return err
		}
		for _, id := range ids.Items {
			fmt.Fprintln(a.out, id)
		}
		return nil

	case "show":
		if err := expectArgs(rest, 1, "a watchlist"); err != nil {
			return err
		}
		info, err := a.backend.GetWatchlist(callCtx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s: %d members, %d watchwords\n", info.Name, info.WatchlistCount, info.WatchwordCount)
		return nil

	case "members":
		if err := expectArgs(rest, 1, "a watchlist"); err != nil {
			return err
		}
		members, err := a.backend.WatchlistMembers(callCtx, rest[0])
		if err != nil {
			return err
		}
		a.printProfiles(members.Items)
		return nil

	case "create":
		if err := expectArgs(rest, 1, "a watchlist"); err != nil {
			return err
		}
		if err := a.backend.CreateWatchlist(callCtx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Watchlist %s created\n", rest[0])
		return nil

	case "add", "remove":
		if err := expectArgs(rest, 2, "a watchlist and an account id"); err != nil {
			return err
		}
		in := &api.MemberRequest{WatchlistID: rest[0], AccountID: rest[1]}
		edit, verb := a.backend.AddMember, "added to"
		if sub == "remove" {
			edit, verb = a.backend.RemoveMember, "removed from"
		}
		if err := edit(callCtx, in); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s %s %s\n", in.AccountID, verb, in.WatchlistID)
		return nil

	default:
		return fmt.Errorf("%w: unknown watchlist subcommand %q", ErrUsage, sub)
	}
}

func (a *App) notes(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: notes needs a subcommand and an account id", ErrUsage)
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	sub, accountID, rest := args[0], args[1], args[2:]
	switch sub {
	case "list":
		fs := flag.NewFlagSet("notes list", flag.ContinueOnError)
		fs.SetOutput(a.out)
		page := fs.Int("p", 1, "page number")
		if err := fs.Parse(rest); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}

		p, err := a.backend.Notes(callCtx, &api.AnnotationRequest{AccountID: accountID, Page: *page})
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tTEXT")
		for _, n := range p.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", n.NoteID, n.CreatedAt.Format(time.RFC3339), n.Text)
		}
		return tw.Flush()

	case "add":
		text := strings.Join(rest, " ")
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: note text is empty", ErrUsage)
		}
		n, err := a.backend.AddNote(callCtx, &api.AnnotationRequest{AccountID: accountID, Text: text})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Note %s added\n", n.NoteID)
		return nil

	default:
		return fmt.Errorf("%w: unknown notes subcommand %q", ErrUsage, sub)
	}
}

func (a *App) printProfiles(profiles []models.Profile) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER ID\tSCREEN NAME\tNAME\tFOLLOWERS\tFRIENDS")
	for _, p := range profiles {
		screenName := p.ScreenName
		if screenName == "" {
			screenName = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", p.UserID, screenName, p.Name, p.FollowersCount, p.FriendsCount)
	}
	_ = tw.Flush()
}

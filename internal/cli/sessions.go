package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// ListSessions prints the stored session ids with their dialogue state.
func ListSessions(ctx context.Context, app *App, w io.Writer) error {
	ids, err := app.Sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATE\tKIND\tPENDING\tUPDATED")
	for _, id := range ids {
		sess, err := app.Sessions.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(tw, "%s\t?\t\t\t%v\n", id, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id, sess.State, orDash(string(sess.Kind)), orDash(sess.PendingField), sess.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

// InspectSession prints a session as indented JSON. Personal fields are masked unless raw is set.
func InspectSession(ctx context.Context, app *App, w io.Writer, id string, raw bool) error {
	store := app.Store
	if !raw {
		view, err := app.InspectStore()
		if err != nil {
			return err
		}
		store = view
	}
	sess, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", id, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sess)
}

// RemoveSession deletes a session.
func RemoveSession(ctx context.Context, app *App, w io.Writer, id string) error {
	if err := app.Sessions.Destroy(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	fmt.Fprintf(w, "Session '%s' deleted.\n", id)
	return nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

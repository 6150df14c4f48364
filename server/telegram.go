// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bvk/pacwatch/api"
	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/telegram"
	"github.com/dustin/go-humanize"
)

func (s *Server) AddTelegramCommand(ctx context.Context, name, purpose string, handler telegram.CmdFunc) error {
	if s.telegramClient != nil {
		return s.telegramClient.AddCommand(ctx, name, purpose, handler)
	}
	return nil // Ignored
}

func (s *Server) registerTelegramCommands(ctx context.Context) error {
	if s.telegramClient == nil {
		return nil
	}
	cmds := []struct {
		name, purpose string
		handler       telegram.CmdFunc
	}{
		{"status", "Prints the last cycle summary", s.statusTelegramCmd},
		{"recent", "Lists tracked expenditures over a window (eg: 7d, week)", s.recentTelegramCmd},
		{"alerts", "Lists configured spending alerts", s.alertsTelegramCmd},
		{"cycle", "Runs a fetch-and-publish cycle now", s.cycleTelegramCmd},
		{"pause", "Pauses publishing on a channel", s.pauseTelegramCmd},
		{"resume", "Resumes publishing on a channel", s.resumeTelegramCmd},
	}
	for _, c := range cmds {
		if err := s.AddTelegramCommand(ctx, c.name, c.purpose, c.handler); err != nil {
			return fmt.Errorf("could not add telegram command %q: %w", c.name, err)
		}
	}
	return nil
}

func (s *Server) statusTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	resp, err := s.doStatus(ctx, &api.StatusRequest{})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Tracked records: %d\n", resp.NumTracked)
	if !resp.NextCycleTime.IsZero() {
		fmt.Fprintf(stdout, "Next cycle: %s\n", resp.NextCycleTime.Format(time.RFC1123))
	}
	if last := resp.LastCycle; last != nil {
		fmt.Fprintf(stdout, "Cycle %d finished %s: fetched %d, new %d, posted %d, failed %d, skipped %d, pruned %d\n",
			last.CycleID, last.EndTime.Format(time.RFC1123), last.NumFetched, last.NumNew,
			last.NumPosted, last.NumFailed, last.NumSkipped, last.NumPruned)
		if len(last.LastError) != 0 {
			fmt.Fprintf(stdout, "Cycle error: %s\n", last.LastError)
		}
	}
	for _, ch := range resp.Channels {
		state := "enabled"
		if !ch.Enabled {
			state = "paused"
		}
		if ch.LastPostTime.IsZero() {
			fmt.Fprintf(stdout, "Channel %s: %s, no posts yet\n", ch.Name, state)
			continue
		}
		fmt.Fprintf(stdout, "Channel %s: %s, last post %s\n", ch.Name, state, ch.LastPostTime.Format(time.RFC1123))
	}
	return nil
}

func (s *Server) recentTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	req := new(api.RecentRequest)
	if len(args) != 0 {
		req.Window = args[0]
	}
	resp, err := s.doRecent(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Rows) == 0 {
		fmt.Fprintf(stdout, "No expenditures in the window.\n")
		return nil
	}

	// Keep the reply within the telegram message size; older rows are
	// elided first.
	const maxRows = 20
	rows := resp.Rows
	if len(rows) > maxRows {
		fmt.Fprintf(stdout, "Showing the latest %d of %d records.\n", maxRows, len(rows))
		rows = rows[len(rows)-maxRows:]
	}
	for _, v := range rows {
		r := v.Row
		fmt.Fprintf(stdout, "%s: %s spent $%s to %s %s\n",
			r.ReportDate.Format("2006-01-02"), r.PACName,
			humanize.Comma(r.Amount.Truncate(0).IntPart()), expend.Verb(r.Direction), r.Candidate)
	}
	return nil
}

func (s *Server) alertsTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	resp, err := s.doAlertList(ctx, &api.AlertListRequest{})
	if err != nil {
		return err
	}
	if len(resp.Alerts) == 0 {
		fmt.Fprintf(stdout, "No spending alerts are configured.\n")
		return nil
	}
	for _, a := range resp.Alerts {
		what := a.Candidate
		if len(a.PACName) != 0 {
			what = a.PACName
			if len(a.Candidate) != 0 {
				what = a.PACName + " on " + a.Candidate
			}
		}
		fmt.Fprintf(stdout, "%s: %s at $%s, currently $%s",
			a.UID, what, humanize.Comma(a.Threshold.Truncate(0).IntPart()),
			humanize.Comma(a.LastTotal.Truncate(0).IntPart()))
		if !a.FiredTime.IsZero() {
			fmt.Fprintf(stdout, ", fired %s", a.FiredTime.Format("2006-01-02"))
		}
		fmt.Fprintf(stdout, "\n")
	}
	return nil
}

func (s *Server) cycleTelegramCmd(ctx context.Context, args []string) error {
	stdout := cli.Stdout(ctx)

	rs, err := s.RunCycle(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Cycle %d: fetched %d, new %d, posted %d, failed %d, skipped %d, pruned %d\n",
		rs.CycleID, rs.NumFetched, rs.NumNew, rs.NumPosted, rs.NumFailed, rs.NumSkipped, rs.NumPruned)
	return nil
}

func (s *Server) pauseTelegramCmd(ctx context.Context, args []string) error {
	return s.setChannelDisabledCmd(ctx, args, true)
}

func (s *Server) resumeTelegramCmd(ctx context.Context, args []string) error {
	return s.setChannelDisabledCmd(ctx, args, false)
}

func (s *Server) setChannelDisabledCmd(ctx context.Context, args []string, disabled bool) error {
	stdout := cli.Stdout(ctx)

	if len(args) != 1 {
		var names []string
		for _, p := range s.posters {
			names = append(names, p.Name())
		}
		return fmt.Errorf("needs one channel name argument (configured: %v)", names)
	}
	name := args[0]
	found := false
	for _, p := range s.posters {
		if p.Name() == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("channel %q is not configured: %w", name, os.ErrNotExist)
	}
	if err := s.setChannelDisabled(ctx, name, disabled); err != nil {
		return err
	}
	if disabled {
		fmt.Fprintf(stdout, "Publishing on %s is paused.\n", name)
	} else {
		fmt.Fprintf(stdout, "Publishing on %s is resumed.\n", name)
	}
	return nil
}

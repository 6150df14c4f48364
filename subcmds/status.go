// Copyright (c) 2023 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bvk/pacwatch/api"
	"github.com/bvk/pacwatch/cli"
	"github.com/bvk/pacwatch/subcmds/cmdutil"
	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/process"
)

type Status struct {
	cmdutil.ClientFlags
}

func (c *Status) Synopsis() string {
	return "Status prints a summary of the running pacwatch daemon"
}

func (c *Status) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("status", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Status) run(ctx context.Context, args []string) error {
	resp, err := cmdutil.Post[api.StatusResponse](ctx, &c.ClientFlags, api.StatusPath, &api.StatusRequest{})
	if err != nil {
		return err
	}

	w := cli.Stdout(ctx)
	fmt.Fprintf(w, "Uptime: %s\n", time.Since(resp.StartTime).Round(time.Second))
	fmt.Fprintf(w, "Tracked records: %d\n", resp.NumTracked)
	fmt.Fprintf(w, "Cumulative window: %d days\n", resp.WindowDays)
	if !resp.NextCycleTime.IsZero() {
		fmt.Fprintf(w, "Next cycle: %s\n", resp.NextCycleTime.Format(time.RFC1123))
	}

	if rs := resp.LastCycle; rs != nil {
		fmt.Fprintf(w, "\nCycle %d finished %s: fetched %d, new %d, posted %d, failed %d, skipped %d, pruned %d\n",
			rs.CycleID, rs.EndTime.Format(time.RFC1123), rs.NumFetched, rs.NumNew,
			rs.NumPosted, rs.NumFailed, rs.NumSkipped, rs.NumPruned)
		if len(rs.LastError) != 0 {
			fmt.Fprintf(w, "Cycle error: %s\n", rs.LastError)
		}
	}

	if len(resp.Channels) != 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "CHANNEL\tSTATE\tLAST POST\t\n")
		for _, ch := range resp.Channels {
			state := "enabled"
			if !ch.Enabled {
				state = "paused"
			}
			lastPost := "never"
			if !ch.LastPostTime.IsZero() {
				lastPost = ch.LastPostTime.Format(time.RFC1123)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", ch.Name, state, lastPost)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	// Process details are best-effort; the daemon may be on another host.
	c.printDaemonInfo(ctx, w)
	return nil
}

func (c *Status) printDaemonInfo(ctx context.Context, w io.Writer) {
	u := c.AddressURL()
	u.Path = "/pid"
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return
	}
	resp, err := c.HttpClient().Do(r)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	pid, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return
	}
	fmt.Fprintf(w, "\nDaemon: pid %d", pid)
	if create, err := p.CreateTimeWithContext(ctx); err == nil {
		fmt.Fprintf(w, ", started %s", time.UnixMilli(create).Format(time.RFC1123))
	}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil {
		fmt.Fprintf(w, ", rss %s", humanize.IBytes(mem.RSS))
	}
	fmt.Fprintln(w)
}

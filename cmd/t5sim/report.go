package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/talgya/merchant-lanes/internal/agents"
	"github.com/talgya/merchant-lanes/internal/engine"
	"github.com/talgya/merchant-lanes/internal/ledger"
)

func printResults(w io.Writer, sim *engine.Simulation) {
	cal := sim.Calendar
	st := sim.Stats
	fmt.Fprintf(w, "\n=== Results: %d ships, %s to %s (seed %d) ===\n",
		st.Ships, cal.Date(0), cal.Date(sim.Now()), sim.Config.Seed)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SHIP\tCLASS\tROLE\tCAPTAIN\tBALANCE\tVOYAGES\tSALES\tLOCATION\tSTATE\tSTATUS")
	for _, s := range sim.Summaries() {
		status := "active"
		if s.Broke {
			status = "broke " + cal.Date(s.BrokeAt).String()
		} else if s.Bailouts > 0 {
			status = fmt.Sprintf("bailed out %s", humanize.Comma(int64(s.Bailouts)))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			s.Name, s.Class, s.Role, s.Captain, ledger.Cr(s.Balance),
			s.Voyages, s.Sales, s.Location, s.State, status)
	}
	tw.Flush()

	fmt.Fprintln(w, "\nCivilian leaderboard:")
	for i, s := range sim.Leaderboard() {
		fmt.Fprintf(w, "  %-5s %-12s %-22s %s\n", humanize.Ordinal(i+1), s.Name, s.Class.Name, ledger.Cr(s.Balance()))
	}

	if broke := sim.BrokeShips(); len(broke) > 0 {
		fmt.Fprintln(w, "\nOut of business:")
		for _, s := range broke {
			fmt.Fprintf(w, "  %s (%s) on %s: %s\n", s.Name, s.Class.Name, cal.Date(s.BrokeAt), s.BrokeReason)
		}
	}

	fmt.Fprintf(w, "\nCargo sales: %s lots, total profit %s\n", humanize.Comma(int64(st.CargoSales)), ledger.Cr(st.CargoProfit))
	fmt.Fprintf(w, "Voyages: %s, bailouts: %d, low passage deaths: %d, events: %s\n",
		humanize.Comma(int64(st.Voyages)), st.Bailouts, st.LowDeaths, humanize.Comma(int64(st.Events)))
	fmt.Fprintf(w, "Fleet cash: %s (%d active, %d broke)\n", ledger.Cr(st.TotalBalance), st.Active, st.Broke)
}

func printWorlds(w io.Writer, sim *engine.Simulation) {
	fmt.Fprintln(w, "\n=== Worlds ===")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORLD\tUWP\tARRIVALS\tSALES\tPROFIT")
	for _, ws := range sim.WorldReport() {
		uwp := ""
		if wd := sim.Worlds.Get(ws.Name); wd != nil {
			uwp = wd.UWP.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", ws.Name, uwp, ws.Arrivals, ws.Sales, ledger.Cr(ws.Profit))
	}
	tw.Flush()
}

func printLedger(w io.Writer, sim *engine.Simulation, s *agents.Starship) {
	acct := s.Account()
	fmt.Fprintf(w, "\n=== Ledger: %s (%s) ===\n", s.Name, acct.Name)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tAMOUNT\tBALANCE\tMEMO\t")
	for _, e := range acct.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", sim.Calendar.Date(e.Time), signed(e.Amount.IntPart()), ledger.Cr(e.BalanceAfter), e.Memo)
	}
	tw.Flush()

	if rej := acct.Rejections(); len(rej) > 0 {
		fmt.Fprintf(w, "Rejected debits: %d\n", len(rej))
		for _, r := range rej {
			fmt.Fprintf(w, "  %s %s (available %s) %s\n", sim.Calendar.Date(r.Time), ledger.Cr(r.Amount), ledger.Cr(r.Available), r.Memo)
		}
	}
}

func signed(n int64) string {
	if n < 0 {
		return "-Cr" + humanize.Comma(-n)
	}
	return "+Cr" + humanize.Comma(n)
}

func findShip(sim *engine.Simulation, name string) *agents.Starship {
	for _, s := range sim.Ships {
		if strings.EqualFold(s.Name, name) {
			return s
		}
	}
	return nil
}

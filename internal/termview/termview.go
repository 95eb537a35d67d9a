package termview

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/contester/api"
	"github.com/programme-lv/contester/internal/contest"
	"github.com/programme-lv/contester/internal/ranklist"
)

var (
	header = color.New(color.Bold)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	part   = color.New(color.FgYellow)
	faint  = color.New(color.Faint)
)

// Printer writes ranklists to a terminal.
type Printer struct {
	w         io.Writer
	StartedAt time.Time
}

func New(w io.Writer) *Printer { return &Printer{w: w, StartedAt: time.Now()} }

func (p *Printer) Ranklist(c *contest.Contest, rows []ranklist.Row) {
	title := c.Title
	if title == "" {
		title = fmt.Sprintf("contest %d", c.ID)
	}
	header.Fprintf(p.w, "== %s (%s) ==\n", title, c.Type)

	problems := c.Problems()
	cols := []string{"#", "competitor", summaryTitle(c)}
	for _, pid := range problems {
		cols = append(cols, fmt.Sprintf("P%d", pid))
	}
	header.Fprintln(p.w, strings.Join(pad(cols), " "))

	if len(rows) == 0 {
		faint.Fprintln(p.w, "(no standings)")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(p.w, "%-10s %-10s %-10s", fmt.Sprint(r.Rank), fmt.Sprint(r.CompetitorID), summary(c, r))
		for _, pid := range problems {
			fmt.Fprint(p.w, " ")
			p.cell(c, r.Results, pid)
		}
		fmt.Fprintln(p.w)
	}
}

func (p *Printer) Failures(name string, failures []string) {
	if len(failures) == 0 {
		good.Fprintf(p.w, "== %s: ok ==\n", name)
		return
	}
	bad.Fprintf(p.w, "== %s: %d failed ==\n", name, len(failures))
	for _, f := range failures {
		bad.Fprintf(p.w, "  %s\n", f)
	}
}

func (p *Printer) Done() {
	dur := time.Since(p.StartedAt).Round(time.Millisecond)
	fmt.Fprintf(p.w, "== Finished in %s ==\n", dur)
}

func (p *Printer) cell(c *contest.Contest, results map[int64]contest.ProblemResult, pid int64) {
	r, ok := results[pid]
	if !ok {
		faint.Fprintf(p.w, "%-10s", ".")
		return
	}

	var text string
	switch c.Type {
	case contest.TypeACM:
		if r.Accepted {
			text = fmt.Sprintf("+%d", r.Rejected)
			if r.Rejected == 0 {
				text = "+"
			}
		} else {
			text = fmt.Sprintf("-%d", r.Rejected)
		}
	default:
		text = fmt.Sprintf("%d %s", r.Score, r.Status)
	}

	out := bad
	switch {
	case r.Accepted:
		out = good
	case r.Status == api.PartiallyCorrect, r.Status == api.Compiled:
		out = part
	}
	out.Fprintf(p.w, "%-10s", text)
}

func summaryTitle(c *contest.Contest) string {
	if c.Type == contest.TypeACM {
		return "solved/pen"
	}
	return "score"
}

func summary(c *contest.Contest, r ranklist.Row) string {
	if c.Type == contest.TypeACM {
		return fmt.Sprintf("%d/%dm", r.Solved, r.Penalty/60)
	}
	return fmt.Sprint(r.Score)
}

func pad(cols []string) []string {
	res := make([]string, len(cols))
	for i, c := range cols {
		res[i] = fmt.Sprintf("%-10s", c)
	}
	return res
}

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Skryldev/flactranscode/domain/model"
	pkgerrors "github.com/Skryldev/flactranscode/pkg/errors"
)

func printSummary(w io.Writer, s *model.Summary) {
	fmt.Fprintf(w, "%d/%d transcodes succeeded in %s\n", s.Succeeded, s.Total, s.Elapsed.Round(10*time.Millisecond))
	for _, d := range s.Plan.Dirs {
		fmt.Fprintf(w, "  %-8s %s\n", d.Profile, d.Path)
	}
	if s.Extras > 0 {
		fmt.Fprintf(w, "copied %d extra file(s)\n", s.Extras)
	}
	if s.ExtrasFailed > 0 {
		fmt.Fprintf(w, "failed to copy %d extra file(s)\n", s.ExtrasFailed)
	}
}

func renderFailures(s *model.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Failed transcodes")
	tw.AppendHeader(table.Row{"File", "Profile", "Error"})
	for _, r := range s.Failed {
		tw.AppendRow(table.Row{r.Job.RelPath, r.Job.Profile.Label(), failureReason(r.Err)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, WidthMax: 80},
	})
	return tw.Render()
}

// failureReason condenses a job error to one line for the table
func failureReason(err error) string {
	te, ok := pkgerrors.As[*pkgerrors.TranscodeError](err)
	if !ok {
		return firstLine(err.Error())
	}
	reason := te.Message
	switch {
	case strings.TrimSpace(te.Stderr) != "":
		reason += ": " + firstLine(te.Stderr)
	case te.Cause != nil:
		reason += ": " + firstLine(te.Cause.Error())
	}
	return reason
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

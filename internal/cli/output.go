package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// printer renders command results as tables or indented JSON
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON}
}

// JSON writes v as indented JSON regardless of mode
func (p *printer) JSON(v any) error {
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

// Message prints a plain line, or {"message": ...} in JSON mode
func (p *printer) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.json {
		return p.JSON(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

func (p *printer) table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	writeRow(tw, header)
	for _, row := range rows {
		writeRow(tw, row)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cols []string) {
	for i, col := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)
}

// Sessions prints a session table
func (p *printer) Sessions(sessions []types.Session) error {
	if p.json {
		return p.JSON(sessions)
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.ID.String(),
			string(s.Status),
			strconv.Itoa(s.Version),
			port(s.AppPort),
			port(s.ControlPort),
			shortContainer(s.ContainerID),
			timestamp(s.CreatedOn),
		})
	}
	return p.table([]string{"ID", "STATUS", "VERSION", "APP PORT", "CONTROL PORT", "CONTAINER", "CREATED"}, rows)
}

// Session prints one session
func (p *printer) Session(s types.Session) error {
	if p.json {
		return p.JSON(s)
	}
	return p.Sessions([]types.Session{s})
}

// Apps prints an app table
func (p *printer) Apps(apps []types.App) error {
	if p.json {
		return p.JSON(apps)
	}
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		deployment := "-"
		if a.Deployed() {
			deployment = strconv.Itoa(*a.DeploymentPort)
		}
		rows = append(rows, []string{a.ID.String(), a.Name, deployment, timestamp(a.UpdatedOn), a.Description})
	}
	return p.table([]string{"ID", "NAME", "DEPLOYMENT", "UPDATED", "DESCRIPTION"}, rows)
}

// Notebooks prints a notebook table
func (p *printer) Notebooks(notebooks []types.Notebook) error {
	if p.json {
		return p.JSON(notebooks)
	}
	rows := make([][]string, 0, len(notebooks))
	for _, n := range notebooks {
		rows = append(rows, []string{n.ID.String(), n.Name, timestamp(n.UpdatedOn), n.Description})
	}
	return p.table([]string{"ID", "NAME", "UPDATED", "DESCRIPTION"}, rows)
}

// Files prints a file listing
func (p *printer) Files(entries []types.FileEntry) error {
	if p.json {
		return p.JSON(entries)
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		typ, size := "file", strconv.FormatInt(e.Size, 10)
		if e.IsDir {
			typ, size = "dir", "-"
		}
		rows = append(rows, []string{typ, size, e.Path})
	}
	return p.table([]string{"TYPE", "SIZE", "PATH"}, rows)
}

func port(p int) string {
	if p == 0 {
		return "-"
	}
	return strconv.Itoa(p)
}

func shortContainer(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	if id == "" {
		return "-"
	}
	return id
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

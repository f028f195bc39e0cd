package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Palette shared by styled output.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
	colourBorder  = lipgloss.Color("#45475A")
)

// printer renders command output, styled only when writing to a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(cmd *cobra.Command) *printer {
	w := cmd.OutOrStdout()
	return &printer{w: w, styled: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) style(c lipgloss.Color) lipgloss.Style {
	if !p.styled {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(c)
}

func (p *printer) title(s string) {
	fmt.Fprintln(p.w, p.style(colourPrimary).Bold(p.styled).Render(s))
}

func (p *printer) muted(s string) {
	fmt.Fprintln(p.w, p.style(colourMuted).Render(s))
}

func (p *printer) field(name, value string) {
	fmt.Fprintf(p.w, "%s %s\n", p.style(colourMuted).Render(name+":"), value)
}

// status colours a source status.
func (p *printer) status(s string) string {
	switch s {
	case "loaded":
		return p.style(colourSuccess).Render(s)
	case "skipped", "cancelled":
		return p.style(colourWarning).Render(s)
	case "failed":
		return p.style(colourError).Render(s)
	default:
		return s
	}
}

// table renders rows under headers.
func (p *printer) table(headers []string, rows [][]string) {
	t := table.New().Headers(headers...).Rows(rows...)

	if p.styled {
		header := lipgloss.NewStyle().Foreground(colourPrimary).Bold(true).Padding(0, 1)
		cell := lipgloss.NewStyle().Padding(0, 1)
		t = t.Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colourBorder)).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return header
				}
				return cell
			})
	} else {
		cell := lipgloss.NewStyle().PaddingRight(2)
		t = t.Border(lipgloss.HiddenBorder()).
			BorderTop(false).BorderBottom(false).BorderLeft(false).BorderRight(false).
			BorderHeader(false).BorderColumn(false).
			StyleFunc(func(_, _ int) lipgloss.Style { return cell })
	}

	fmt.Fprintln(p.w, t.Render())
}

// writeJSON encodes v as indented JSON.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

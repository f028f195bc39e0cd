package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

var sourcesJSON bool

// sourceJSON is the JSON shape of a source report.
type sourceJSON struct {
	Index  int    `json:"index"`
	Type   string `json:"type"`
	Label  string `json:"label"`
	Loader string `json:"loader,omitempty"`
	Status string `json:"status"`
	Rules  int    `json:"rules"`
	Error  string `json:"error,omitempty"`
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Load configured sources and report their status",
	Long: `Load every configured source and show how each one contributed.

A source that fails or has no matching loader is reported here and
does not stop the others from loading.`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if err := loadIndex(cmd.Context()); err != nil {
		return err
	}

	report := ingestService.Report()
	if report == nil {
		return fmt.Errorf("no load report available")
	}

	if sourcesJSON {
		out := make([]sourceJSON, 0, len(report.Sources))
		for _, s := range report.Sources {
			out = append(out, toSourceJSON(s))
		}
		return writeJSON(cmd, out)
	}

	p := newPrinter(cmd)
	rows := make([][]string, 0, len(report.Sources))
	for _, s := range report.Sources {
		j := toSourceJSON(s)
		rows = append(rows, []string{
			strconv.Itoa(j.Index),
			j.Label,
			p.status(j.Status),
			strconv.Itoa(j.Rules),
			orDash(j.Error),
		})
	}
	p.table([]string{"#", "SOURCE", "STATUS", "RULES", "ERROR"}, rows)
	p.muted(fmt.Sprintf("%d rule(s) from %d source(s): %d loaded, %d skipped, %d failed, %d cancelled",
		len(report.Rules), len(report.Sources),
		report.Count(domain.SourceLoaded), report.Count(domain.SourceSkipped),
		report.Count(domain.SourceFailed), report.Count(domain.SourceCancelled)))
	return nil
}

func toSourceJSON(s domain.SourceReport) sourceJSON {
	out := sourceJSON{
		Index:  s.Index,
		Type:   s.Descriptor.LoaderType,
		Label:  s.Descriptor.Label(),
		Loader: s.Loader,
		Status: string(s.Status),
		Rules:  s.Rules,
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return out
}

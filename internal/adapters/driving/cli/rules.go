package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

var (
	listLanguage string
	listTag      string
	listJSON     bool
	getJSON      bool
)

// ruleJSON is the JSON shape of rule metadata.
type ruleJSON struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Language    string   `json:"language,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Origin      string   `json:"origin,omitempty"`
}

func toRuleJSON(r domain.Rule) ruleJSON {
	return ruleJSON{
		ID:          r.ID,
		Description: r.Description,
		Language:    r.Language,
		Tags:        r.Tags,
		Origin:      r.Origin,
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed rules",
	Long: `List metadata for every loaded rule.

Filters match case-insensitively. When both --language and --tag are
given, a rule must match both.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var getCmd = &cobra.Command{
	Use:   "get <rule-id>",
	Short: "Show metadata for a rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var contentCmd = &cobra.Command{
	Use:   "content <rule-id>",
	Short: "Print the full text of a rule",
	Long: `Print the full text of a rule.

Content is read from the rule's source when requested, so edits made
after loading are reflected.`,
	Args: cobra.ExactArgs(1),
	RunE: runContent,
}

func init() {
	listCmd.Flags().StringVarP(&listLanguage, "language", "l", "", "only rules for this language")
	listCmd.Flags().StringVarP(&listTag, "tag", "t", "", "only rules with this tag")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	getCmd.Flags().BoolVar(&getJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(contentCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := loadIndex(ctx); err != nil {
		return err
	}

	var (
		rules []domain.Rule
		err   error
	)
	switch {
	case strings.TrimSpace(listLanguage) != "":
		rules, err = ruleService.ListByLanguage(ctx, listLanguage)
	case strings.TrimSpace(listTag) != "":
		rules, err = ruleService.ListByTag(ctx, listTag)
	default:
		rules, err = ruleService.ListMetadata(ctx)
	}
	if err != nil {
		return fmt.Errorf("listing rules: %w", err)
	}
	if strings.TrimSpace(listLanguage) != "" && strings.TrimSpace(listTag) != "" {
		rules = filterByTag(rules, listTag)
	}

	if listJSON {
		out := make([]ruleJSON, 0, len(rules))
		for _, r := range rules {
			out = append(out, toRuleJSON(r))
		}
		return writeJSON(cmd, out)
	}

	p := newPrinter(cmd)
	if len(rules) == 0 {
		p.muted("No rules found.")
		return nil
	}

	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{r.ID, orDash(r.Language), orDash(strings.Join(r.Tags, ", ")), r.Description})
	}
	p.table([]string{"ID", "LANGUAGE", "TAGS", "DESCRIPTION"}, rows)
	p.muted(fmt.Sprintf("%d rule(s)", len(rules)))
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := loadIndex(ctx); err != nil {
		return err
	}

	rule, err := ruleService.GetMetadata(ctx, args[0])
	if err != nil {
		return fmt.Errorf("rule %q: %w", args[0], err)
	}

	if getJSON {
		return writeJSON(cmd, toRuleJSON(*rule))
	}

	p := newPrinter(cmd)
	p.title(rule.ID)
	p.field("Description", rule.Description)
	p.field("Language", orDash(rule.Language))
	p.field("Tags", orDash(strings.Join(rule.Tags, ", ")))
	p.field("Origin", orDash(rule.Origin))
	if rule.Content != nil {
		p.field("Content", rule.Content.Kind()+" "+rule.Content.Location())
	}
	return nil
}

func runContent(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := loadIndex(ctx); err != nil {
		return err
	}

	content, err := ruleService.GetContent(ctx, args[0])
	if err != nil {
		return fmt.Errorf("rule %q content: %w", args[0], err)
	}

	cmd.Print(content)
	if !strings.HasSuffix(content, "\n") {
		cmd.Println()
	}
	return nil
}

func filterByTag(rules []domain.Rule, tag string) []domain.Rule {
	out := make([]domain.Rule, 0, len(rules))
	for _, r := range rules {
		if r.HasTag(tag) {
			out = append(out, r)
		}
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

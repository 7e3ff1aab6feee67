package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/bidsmap/bidsmap/pkg/catalog"
	"github.com/bidsmap/bidsmap/pkg/report"
	"github.com/bidsmap/bidsmap/pkg/resolve"
	"github.com/bidsmap/bidsmap/pkg/session"
	"github.com/bidsmap/bidsmap/pkg/snapshot"
)

var (
	checkDataformat string
	checkScope      string
	checkWorkers    int

	checkCmd = &cobra.Command{
		Use:   "check <catalog> [snapshot dumps...]",
		Short: "Lint a catalog and dry-run it against snapshot dumps",
		Long: `check loads a catalog document, failing on structural errors
(unknown base templates, inheritance cycles, patterns that do not
compile), then optionally resolves the given snapshot dumps against it
and prints the validation report. Dumps may be XML, JSON or YAML.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}
)

func init() {
	checkCmd.Flags().StringVar(&checkDataformat, "dataformat", "DICOM", "Catalog dataformat to resolve against")
	checkCmd.Flags().StringVar(&checkScope, "scope", "check", "Run-index scope for the dry run")
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0, "Resolution workers (0 = one per CPU)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cat, err := catalog.LoadFile(args[0])
	if err != nil {
		pterm.Error.Printfln("catalog failed to load: %v", err)
		return err
	}
	pterm.Success.Printfln("catalog %s loaded: %d dataformat(s)", args[0], len(cat.Dataformats))

	if len(args) == 1 {
		return nil
	}

	sess, err := session.New(cat)
	if err != nil {
		return err
	}

	items := make([]session.Item, 0, len(args)-1)
	for _, path := range args[1:] {
		snap, err := snapshot.LoadFile(path)
		if err != nil {
			pterm.Warning.Printfln("skipping %s: %v", path, err)
			continue
		}
		items = append(items, session.Item{
			Name:       filepath.Base(path),
			Dataformat: checkDataformat,
			Snapshot:   snap,
			Context:    resolve.Context{Scope: checkScope},
		})
	}

	results := sess.ResolveAll(items, checkWorkers)
	printResults(results)
	printSummary(sess.Report())

	return nil
}

func printResults(results []session.Result) {
	data := pterm.TableData{{"Item", "Category", "Rule", "Labels"}}
	for _, r := range results {
		switch {
		case r.Ignored:
			data = append(data, []string{r.Item, "(ignored)", "", ""})
		case r.Err != nil:
			data = append(data, []string{r.Item, "(error)", "", r.Err.Error()})
		default:
			rule := ""
			if r.Outcome.Rule != nil {
				rule = r.Outcome.Rule.ID
			}
			data = append(data, []string{r.Item, r.Outcome.Category, rule, formatLabels(r)})
		}
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatLabels(r session.Result) string {
	parts := make([]string, 0, r.Labels.Len())
	for _, key := range r.Labels.Keys() {
		parts = append(parts, key+"="+r.Labels.Value(key))
	}
	return strings.Join(parts, " ")
}

func printSummary(s report.Summary) {
	data := pterm.TableData{
		{"Items", strconv.Itoa(s.Items)},
		{"Matched", strconv.Itoa(s.Matched)},
		{"Ambiguous", strconv.Itoa(s.Ambiguous)},
		{"Unmatched", strconv.Itoa(s.Unmatched)},
		{"Unresolved references", strconv.Itoa(s.Unresolved)},
		{"Ignored", strconv.Itoa(s.Ignored)},
	}
	_ = pterm.DefaultTable.WithData(data).Render()

	if s.Clean() {
		pterm.Success.Println("catalog is clean for this input")
		return
	}
	for _, issue := range s.Issues {
		msg := fmt.Sprintf("%s: [%s] %s", issue.Item, issue.Code, issue.Message)
		if len(issue.ConflictingIDs) > 0 {
			msg += " (" + strings.Join(issue.ConflictingIDs, ", ") + ")"
		}
		pterm.Warning.Println(msg)
	}
}

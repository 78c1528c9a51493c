package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mediacore/internal/aggr"
	"github.com/roach88/mediacore/internal/msg"
	"github.com/roach88/mediacore/internal/types"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	RoundOptions
	Extra []string // name=value pairs
	Limit int      // items listed per group in text output
}

// CatalogResult is the output of the catalog command.
type CatalogResult struct {
	Type     string         `json:"type,omitempty"`
	Groups   []GroupResult  `json:"groups"`
	Failures []AddonFailure `json:"failures,omitempty"`
	TimedOut bool           `json:"timed_out,omitempty"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RoundOptions: RoundOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "catalog [type]",
		Short: "Aggregate catalogs from the configured addons",
		Long: `Fetch the manifests of the addons listed in the config, request every
catalog they declare (only those of [type] when given) and print one
group per catalog once all responses arrived.

Exit codes:
  0 - Round settled (individual catalogs may have failed)
  1 - Round did not settle within --timeout
  2 - Command error (bad config, storage unavailable, etc.)

Examples:
  mediacore catalog --config mediacore.yaml
  mediacore catalog movie --extra genre=Drama --limit 5
  mediacore catalog series --format json --metrics-addr :9090`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := ""
			if len(args) == 1 {
				typ = args[0]
			}
			return runCatalog(opts, typ, cmd)
		},
	}

	addRoundFlags(cmd, &opts.RoundOptions)
	cmd.Flags().StringArrayVar(&opts.Extra, "extra", nil, "extra catalog property name=value (repeatable)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "items listed per catalog in text output (0 lists none)")

	return cmd
}

func runCatalog(opts *CatalogOptions, typ string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	extra, err := parseExtra(opts.Extra)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --extra", err)
	}

	var req aggr.Request = aggr.AllCatalogs{Extra: extra}
	if typ != "" {
		req = aggr.AllCatalogsOfType{Type: typ, Extra: extra}
	}

	s, err := openSession(cmd.Context(), opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := runRound(cmd.Context(), s, &opts.RoundOptions, msg.NewLoadCatalogs(req))
	if err != nil {
		return WrapExitError(ExitFailure, "catalog round failed", err)
	}

	result := CatalogResult{
		Type:     typ,
		Groups:   make([]GroupResult, 0, len(r.rt.Catalogs.Groups)),
		Failures: r.failures,
		TimedOut: r.timedOut,
	}
	for _, g := range r.rt.Catalogs.Groups {
		gr := groupResult(g.Req, g.Content.State, len(g.Content.Value), g.Content.Err)
		gr.Metas = g.Content.Value
		result.Groups = append(result.Groups, gr)
	}

	if opts.Format == "json" {
		if err := out.Success(result); err != nil {
			return err
		}
	} else if err := out.Success(catalogText(result, opts.Limit)); err != nil {
		return err
	}

	if r.timedOut {
		return timeoutError(&opts.RoundOptions)
	}
	return nil
}

// parseExtra parses name=value pairs.
func parseExtra(pairs []string) ([]types.ExtraProp, error) {
	var extra []types.ExtraProp
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%q: expected name=value", p)
		}
		extra = append(extra, types.ExtraProp{Name: name, Value: value})
	}
	return extra, nil
}

func catalogText(r CatalogResult, limit int) string {
	var b strings.Builder
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "! %s: %s\n", f.URL, f.Error)
	}
	if len(r.Groups) == 0 {
		fmt.Fprintln(&b, "No catalogs.")
	}
	for _, g := range r.Groups {
		writeGroupLine(&b, g, "items")
		for i, m := range g.Metas {
			if i == limit {
				fmt.Fprintf(&b, "    ... %d more\n", len(g.Metas)-limit)
				break
			}
			fmt.Fprintf(&b, "    %s  %s\n", m.ID, m.Name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// writeGroupLine writes the status line of a group.
func writeGroupLine(b *strings.Builder, g GroupResult, noun string) {
	switch g.State {
	case aggr.Ready.String():
		fmt.Fprintf(b, "✓ %s: %d %s from %s\n", g.Path, g.Count, noun, g.Addon)
	case aggr.Failed.String():
		fmt.Fprintf(b, "✗ %s from %s: %s\n", g.Path, g.Addon, g.Error)
	default:
		fmt.Fprintf(b, "… %s from %s: %s\n", g.Path, g.Addon, g.State)
	}
}

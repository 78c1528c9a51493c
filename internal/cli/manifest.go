package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mediacore/internal/models"
	"github.com/roach88/mediacore/internal/transport"
	"github.com/roach88/mediacore/internal/types"
)

// NewManifestCommand creates the manifest command.
func NewManifestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <url>",
		Short: "Fetch and print an addon manifest",
		Long: `Fetch the manifest of the addon at <url> and print it.

URLs ending in /manifest.json use the HTTP transport; URLs ending in
/stremio/v1 use the legacy JSON-RPC transport.

Example:
  mediacore manifest https://v3-cinemeta.strem.io/manifest.json
  mediacore manifest https://v3-cinemeta.strem.io/manifest.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(rootOpts, args[0], cmd)
		},
	}
}

func runManifest(opts *RootOptions, url string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openSession(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	out.VerboseLog("fetching manifest from %s", url)
	m, err := transport.For(s.env, url).Manifest(cmd.Context())
	if err != nil {
		_ = out.Error(CodeFetch, err.Error(), map[string]string{"url": url})
		return WrapExitError(ExitFailure, "failed to fetch manifest", err)
	}
	if err := models.ValidateManifest(m); err != nil {
		out.VerboseLog("warning: %v", err)
	}

	if opts.Format == "json" {
		return out.Success(m)
	}
	return out.Success(manifestText(m))
}

// manifestText renders a manifest for humans.
func manifestText(m *types.Manifest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s)\n", m.Name, m.Version, m.ID)
	if m.Description != "" {
		fmt.Fprintf(&b, "  %s\n", m.Description)
	}
	fmt.Fprintf(&b, "  types: %s\n", strings.Join(m.Types, ", "))

	names := make([]string, len(m.Resources))
	for i, r := range m.Resources {
		names[i] = r.Name
	}
	fmt.Fprintf(&b, "  resources: %s\n", strings.Join(names, ", "))
	if len(m.IDPrefixes) > 0 {
		fmt.Fprintf(&b, "  id prefixes: %s\n", strings.Join(m.IDPrefixes, ", "))
	}

	if len(m.Catalogs) > 0 {
		fmt.Fprintln(&b, "  catalogs:")
		for _, c := range m.Catalogs {
			fmt.Fprintf(&b, "    %s/%s", c.Type, c.ID)
			if c.Name != "" {
				fmt.Fprintf(&b, " %q", c.Name)
			}
			fmt.Fprintln(&b)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

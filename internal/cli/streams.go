package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mediacore/internal/msg"
	"github.com/roach88/mediacore/internal/types"
)

// StreamsResult is the output of the streams command.
type StreamsResult struct {
	Type     string         `json:"type"`
	ID       string         `json:"id"`
	Groups   []GroupResult  `json:"groups"`
	Failures []AddonFailure `json:"failures,omitempty"`
	TimedOut bool           `json:"timed_out,omitempty"`
}

// NewStreamsCommand creates the streams command.
func NewStreamsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RoundOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "streams <type> <id>",
		Short: "Collect streams for a title from the configured addons",
		Long: `Ask every configured addon that serves streams for <type> and <id>
and print the streams each of them returned.

Examples:
  mediacore streams movie tt0111161 --config mediacore.yaml
  mediacore streams series tt0944947:1:1 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreams(opts, args[0], args[1], cmd)
		},
	}

	addRoundFlags(cmd, opts)

	return cmd
}

func runStreams(opts *RoundOptions, typ, id string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openSession(cmd.Context(), opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	ref := types.NewResourceRef(types.ResourceStream, typ, id)
	r, err := runRound(cmd.Context(), s, opts, msg.NewLoadStreams(ref))
	if err != nil {
		return WrapExitError(ExitFailure, "stream round failed", err)
	}

	result := StreamsResult{
		Type:     typ,
		ID:       id,
		Groups:   make([]GroupResult, 0, len(r.rt.Streams.Groups)),
		Failures: r.failures,
		TimedOut: r.timedOut,
	}
	for _, g := range r.rt.Streams.Groups {
		streams := g.Streams()
		gr := groupResult(g.Req, g.Content.State, len(streams), g.Content.Err)
		gr.Streams = streams
		result.Groups = append(result.Groups, gr)
	}

	if opts.Format == "json" {
		if err := out.Success(result); err != nil {
			return err
		}
	} else if err := out.Success(streamsText(result)); err != nil {
		return err
	}

	if r.timedOut {
		return timeoutError(opts)
	}
	return nil
}

func streamsText(r StreamsResult) string {
	var b strings.Builder
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "! %s: %s\n", f.URL, f.Error)
	}
	if len(r.Groups) == 0 {
		fmt.Fprintf(&b, "No addon serves streams for %s %s.\n", r.Type, r.ID)
	}
	for _, g := range r.Groups {
		writeGroupLine(&b, g, "streams")
		for _, st := range g.Streams {
			fmt.Fprintf(&b, "    %s\n", streamLabel(st))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// streamLabel describes a stream by its title and source.
func streamLabel(st types.Stream) string {
	title := st.Title
	if title == "" {
		title = st.Name
	}
	var source string
	switch {
	case st.URL != "":
		source = st.URL
	case st.InfoHash != "":
		source = "magnet:?xt=urn:btih:" + st.InfoHash
	case st.YtID != "":
		source = "youtube:" + st.YtID
	case st.ExternalURL != "":
		source = st.ExternalURL
	}
	switch {
	case title == "":
		return source
	case source == "":
		return title
	}
	return title + "  " + source
}

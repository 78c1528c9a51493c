package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// keyLister is implemented by storages that can enumerate their keys.
type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// StorageEntry is the output of storage get.
type StorageEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// NewStorageCommand creates the storage command and its subcommands.
func NewStorageCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Read and write the configured storage",
		Long: `Direct access to the key-value storage selected by the config
(storage.driver: sqlite, redis or memory). Values are JSON documents.

Examples:
  mediacore storage get profile --config mediacore.yaml
  mediacore storage set greeting '"hello"'
  mediacore storage delete greeting
  mediacore storage keys`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "get <key>",
		Short:         "Print the value stored under <key>",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStorageGet(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "set <key> <json>",
		Short:         "Store a JSON value under <key>",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStorageSet(rootOpts, args[0], args[1], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "delete <key>",
		Short:         "Remove <key>",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStorageDelete(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "keys",
		Short:         "List stored keys (sqlite only)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStorageKeys(rootOpts, cmd)
		},
	})

	return cmd
}

func runStorageGet(opts *RootOptions, key string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openSession(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	value, ok, err := s.storage.GetRaw(cmd.Context(), key)
	if err != nil {
		_ = out.Error(CodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read storage", err)
	}
	if !ok {
		_ = out.Error(CodeNotFound, fmt.Sprintf("key %q not found", key), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("key %q not found", key))
	}

	if opts.Format == "json" {
		return out.Success(StorageEntry{Key: key, Value: json.RawMessage(value)})
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(value), "", "  "); err != nil {
		// Not JSON; print as stored
		return out.Success(value)
	}
	return out.Success(pretty.String())
}

func runStorageSet(opts *RootOptions, key, value string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if !json.Valid([]byte(value)) {
		return NewExitError(ExitCommandError, fmt.Sprintf("value for %q is not valid JSON", key))
	}

	s, err := openSession(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.storage.SetRaw(cmd.Context(), key, &value); err != nil {
		_ = out.Error(CodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write storage", err)
	}
	out.VerboseLog("stored %d bytes under %q", len(value), key)

	if opts.Format == "json" {
		return out.Success(map[string]string{"key": key})
	}
	return out.Success(fmt.Sprintf("✓ %s", key))
}

func runStorageDelete(opts *RootOptions, key string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openSession(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.storage.SetRaw(cmd.Context(), key, nil); err != nil {
		_ = out.Error(CodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write storage", err)
	}

	if opts.Format == "json" {
		return out.Success(map[string]string{"key": key})
	}
	return out.Success(fmt.Sprintf("✓ deleted %s", key))
}

func runStorageKeys(opts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openSession(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	lister, ok := s.storage.(keyLister)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("storage driver %q cannot list keys", s.cfg.Storage.Driver))
	}
	keys, err := lister.Keys(cmd.Context())
	if err != nil {
		_ = out.Error(CodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list keys", err)
	}
	if keys == nil {
		keys = []string{}
	}

	if opts.Format == "json" {
		return out.Success(keys)
	}
	if len(keys) == 0 {
		return out.Success("No keys.")
	}
	return out.Success(strings.Join(keys, "\n"))
}

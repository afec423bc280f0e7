// ABOUTME: Sanitize command for masking secrets in JSON payloads
// ABOUTME: Reads JSON from an argument, file, or stdin and prints the masked form

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sinugotshifhiwa4/errsift/internal/sanitize"
)

func newSanitizeCmd() *cobra.Command {
	var (
		fileInput  string
		mask       string
		extraKeys  []string
		forLogging bool
	)

	cmd := &cobra.Command{
		Use:   "sanitize [json]",
		Short: "Mask sensitive values in a JSON payload",
		Long: `Sanitize a JSON payload: values under sensitive key names (password,
token, authorization, ...) are masked, URLs are reduced to their path,
and nested structures are walked recursively.

Reads the payload from the positional argument, --file, or stdin.

Examples:
  errsift sanitize '{"user":"amy","password":"hunter2"}'
  errsift sanitize --file payload.json
  cat payload.json | errsift sanitize`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(args, fileInput)
			if err != nil {
				return err
			}

			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("invalid JSON payload: %w", err)
			}

			s := sanitize.NewDefault()
			overrides := sanitize.Overrides{}
			if mask != "" {
				overrides.MaskValue = &mask
			}
			if len(extraKeys) > 0 {
				keys := append(s.Policy().SensitiveKeys, extraKeys...)
				overrides.SensitiveKeys = keys
			}
			s.Update(overrides)

			var out any
			if forLogging {
				out = s.ForLogging(v)
			} else {
				out = s.Sanitize(v)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVarP(&fileInput, "file", "f", "", "file containing the JSON payload")
	cmd.Flags().StringVar(&mask, "mask", "", "replacement for masked values (default: built-in mask)")
	cmd.Flags().StringSliceVar(&extraKeys, "keys", nil, "additional sensitive key names")
	cmd.Flags().BoolVar(&forLogging, "for-logging", false, "use the log-safe variant (failed nested values become placeholders)")

	return cmd
}

func readPayload(args []string, fileInput string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(args[0]), nil
	}
	if fileInput != "" {
		raw, err := os.ReadFile(fileInput)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		return raw, nil
	}
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no payload provided; use positional argument, --file, or stdin")
	}
	return raw, nil
}

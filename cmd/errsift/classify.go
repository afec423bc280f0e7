// ABOUTME: Classify command for one-shot and batch error normalization
// ABOUTME: Builds records from messages or JSON report lines and prints them

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sinugotshifhiwa4/errsift/internal/queue"
	"github.com/sinugotshifhiwa4/errsift/internal/record"
	"github.com/sinugotshifhiwa4/errsift/internal/sanitize"
	"github.com/sinugotshifhiwa4/errsift/internal/types"
)

func newClassifyCmd() *cobra.Command {
	var (
		status     int
		code       string
		source     string
		errContext string
		fileInput  string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "classify [message]",
		Short: "Classify error values into canonical records",
		Long: `Run errors through the normalization pipeline and print the resulting
records: cleaned message, category, and extracted details.

With a positional message, classifies a single error. Use --status to
shape it as an HTTP failure, or --code to shape it as a coded OS-style
error (ENOENT, EACCES, ...).

With --file (or a piped stdin), reads batch input: one JSON report
object per line, in the same shape the daemon accepts over NATS and
HTTP. Output is one record per line.

Examples:
  errsift classify "Error: connection refused"
  errsift classify --status 404 "resource missing"
  errsift classify --code ENOENT "no such file or directory"
  errsift classify --file reports.jsonl --json
  cat reports.jsonl | errsift classify`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			builder := record.NewBuilder(sanitize.NewDefault())

			if len(args) > 0 {
				return classifyOne(builder, args[0], status, code, source, errContext, outputJSON)
			}
			return classifyBatch(builder, fileInput, source, outputJSON)
		},
	}

	cmd.Flags().IntVar(&status, "status", 0, "HTTP status code to shape the error with")
	cmd.Flags().StringVar(&code, "code", "", "OS-style error code (ENOENT, EACCES, ...)")
	cmd.Flags().StringVar(&source, "source", "cli", "source label for records without one")
	cmd.Flags().StringVar(&errContext, "context", "", "context label (inferred when empty)")
	cmd.Flags().StringVarP(&fileInput, "file", "f", "", "file of JSON report objects, one per line")
	cmd.Flags().BoolVarP(&outputJSON, "json", "j", false, "output records as JSON")

	return cmd
}

func classifyOne(builder *record.Builder, message string, status int, code, source, errContext string, outputJSON bool) error {
	var v any
	switch {
	case status != 0:
		v = &types.HTTPError{
			Message:  message,
			Response: &types.HTTPResponse{Status: status},
		}
	case code != "":
		v = &types.CodedError{Code: code, Message: message}
	default:
		v = errors.New(message)
	}

	rec := builder.Build(v, source, errContext)

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	printRecord(rec)
	return nil
}

func classifyBatch(builder *record.Builder, fileInput, defaultSource string, outputJSON bool) error {
	var in io.Reader = os.Stdin
	if fileInput != "" {
		f, err := os.Open(fileInput)
		if err != nil {
			return fmt.Errorf("failed to open report file: %w", err)
		}
		defer f.Close()
		in = f
	}

	enc := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req queue.ReportRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			fmt.Fprintf(os.Stderr, "line %d: invalid report: %v\n", lineNo, err)
			continue
		}
		if req.Source == "" {
			req.Source = defaultSource
		}

		rec := builder.Build(req.ErrorValue(), req.Source, req.Context)

		if outputJSON {
			if err := enc.Encode(rec); err != nil {
				return err
			}
			continue
		}
		printRecordLine(rec)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read reports: %w", err)
	}
	if lineNo == 0 {
		return fmt.Errorf("no input; provide a message, --file, or piped stdin")
	}
	return nil
}

func printRecord(rec *types.ErrorRecord) {
	fmt.Printf("Category: %s\n", rec.Category)
	fmt.Printf("Context:  %s\n", rec.Context)
	fmt.Printf("Message:  %s\n", rec.Message)
	if rec.StatusCode != 0 {
		fmt.Printf("Status:   %d\n", rec.StatusCode)
	}
	if rec.URL != "" {
		fmt.Printf("URL:      %s\n", rec.URL)
	}
	if len(rec.Details) > 0 {
		out, err := json.MarshalIndent(rec.Details, "", "  ")
		if err == nil {
			fmt.Printf("Details:  %s\n", out)
		}
	}
}

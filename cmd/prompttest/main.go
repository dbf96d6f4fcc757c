package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"resume-match-api/internal/analyses"
	"resume-match-api/internal/bootstrap"
	"resume-match-api/internal/client"
	"resume-match-api/internal/shared/config"
)

type options struct {
	role       string
	resumePath string
	serverURL  string
	outPath    string
	provider   string
	model      string
}

func main() {
	if err := newRootCmd(os.Stdin).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "prompttest",
		Short:        "Run one resume analysis and print the record as JSON",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resumeText, err := readResume(opts.resumePath, stdin)
			if err != nil {
				return err
			}
			rec, err := analyze(cmd.Context(), opts, resumeText)
			if err != nil {
				return err
			}
			return writeRecord(cmd.OutOrStdout(), opts.outPath, rec)
		},
	}
	cmd.Flags().StringVar(&opts.role, "role", "", "Target job role")
	cmd.Flags().StringVar(&opts.resumePath, "resume", "", "Path to a plain-text resume, or - for stdin")
	cmd.Flags().StringVar(&opts.serverURL, "server", "", "Base URL of a running API; empty runs the analysis in-process")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Write JSON output to this file")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Override LLM_PROVIDER for in-process runs")
	cmd.Flags().StringVar(&opts.model, "model", "", "Override LLM_MODEL for in-process runs")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func readResume(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	return string(data), nil
}

func analyze(ctx context.Context, opts *options, resumeText string) (analyses.AnalysisRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(opts.serverURL) != "" {
		return client.New(opts.serverURL, client.WithTimeout(150*time.Second)).AnalyzeResume(ctx, opts.role, resumeText)
	}

	cfg := config.Load()
	if opts.provider != "" {
		cfg.LLMProvider = strings.ToLower(strings.TrimSpace(opts.provider))
		cfg.LLMModel = config.DefaultModel(cfg.LLMProvider)
		cfg = cfg.WithLLMAPIKey(config.APIKeyFor(cfg.LLMProvider))
	}
	if opts.model != "" {
		cfg.LLMModel = opts.model
	}
	gateway, err := bootstrap.NewGateway(ctx, cfg)
	if err != nil {
		return analyses.AnalysisRecord{}, fmt.Errorf("llm gateway: %w", err)
	}
	svc := &analyses.Service{Gateway: gateway, Provider: cfg.LLMProvider, Model: cfg.LLMModel}
	rec, err := svc.Analyze(ctx, opts.role, resumeText)
	var malformed *analyses.MalformedResponseError
	if errors.As(err, &malformed) {
		fmt.Fprintf(os.Stderr, "raw model output:\n%s\n", malformed.Raw)
	}
	return rec, err
}

func writeRecord(stdout io.Writer, outPath string, rec analyses.AnalysisRecord) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	_, err := stdout.Write(buf.Bytes())
	return err
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"docex/internal/config"
	"docex/internal/csvexport"
	"docex/internal/domain"
	"docex/internal/extract"
	"docex/internal/logger"
	"docex/internal/parser"
	_ "docex/internal/parser/claude"
	_ "docex/internal/parser/gemini"
	_ "docex/internal/parser/openai"
	"docex/internal/service"
	"docex/internal/validator"
	"docex/internal/xlsxexport"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docex",
		Short: "Extract structured fields from OCR'd invoices and purchase orders",
		Long: `docex turns the plain-text output of an OCR engine into a structured
document record: type, number, date, the two parties, line items, taxes
and totals.`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newExtractCmd(), newTokenCmd())
	return rootCmd
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file|-> [file...]",
		Short: "Extract fields from OCR text files",
		Long: `Extract fields from one or more OCR text files ("-" reads stdin).

Examples:
  docex extract invoice.txt
  tesseract scan.png - | docex extract -
  docex extract --format csv *.txt > extractions.csv
  docex extract --format xlsx --output batch.xlsx a.txt b.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			rulesOnly, _ := cmd.Flags().GetBool("rules-only")
			docType, _ := cmd.Flags().GetString("type")

			switch format {
			case "json", "csv", "xlsx":
			default:
				return fmt.Errorf("unknown format %q (want json, csv or xlsx)", format)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger.NewWithWriter(logger.Config{Format: "console", Level: cfg.Log.Level}, cmd.ErrOrStderr())
			if rulesOnly {
				cfg.Parser.Mode = string(domain.ParserModeRules)
			}

			svc, err := newCLIService(cfg)
			if err != nil {
				return err
			}

			if output == "" {
				return runExtract(cmd.Context(), svc, cmd.InOrStdin(), cmd.OutOrStdout(), args, docType, format)
			}
			return extractToFile(cmd.Context(), svc, cmd.InOrStdin(), output, args, docType, format)
		},
	}
	cmd.Flags().StringP("format", "f", "json", "Output format: json, csv or xlsx")
	cmd.Flags().StringP("output", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().StringP("type", "t", "", "Document type hint passed to LLM providers")
	cmd.Flags().Bool("rules-only", false, "Ignore configured LLM providers and use the rule engine only")
	return cmd
}

func newCLIService(cfg *config.Config) (service.ExtractionService, error) {
	rules := parser.NewRuleParser(extract.New(cfg.Extract.Options()))
	docParser, err := parser.Build(&cfg.Parser, rules)
	if err != nil {
		return nil, fmt.Errorf("building parser chain: %w", err)
	}
	return service.NewExtractionService(nil, docParser, nil,
		validator.NewEngine(validator.DefaultRegistry()),
		service.ExtractionServiceConfig{MaxTextBytes: cfg.Extract.MaxTextBytes},
	), nil
}

type fileResult struct {
	Source string `json:"source"`
	*service.ExtractResult
}

func runExtract(ctx context.Context, svc service.ExtractionService, stdin io.Reader, out io.Writer, paths []string, docType, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]fileResult, 0, len(paths))
	for _, p := range paths {
		text, err := readInput(stdin, p)
		if err != nil {
			return err
		}
		res, err := svc.Extract(ctx, &service.ExtractInput{
			Text:         text,
			DocumentType: docType,
			Source:       domain.ExtractionSourceCLI,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		results = append(results, fileResult{Source: p, ExtractResult: res})
	}

	switch format {
	case "csv":
		if _, err := out.Write(csvexport.BOM); err != nil {
			return err
		}
		w := csvexport.NewWriter(out)
		if err := w.WriteHeader(); err != nil {
			return err
		}
		exts, err := toExtractions(results)
		if err != nil {
			return err
		}
		if err := w.WriteExtractions(exts); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	case "xlsx":
		exts, err := toExtractions(results)
		if err != nil {
			return err
		}
		data, err := xlsxexport.Render(exts)
		if err != nil {
			return fmt.Errorf("rendering xlsx: %w", err)
		}
		_, err = out.Write(data)
		return err
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0].Document)
		}
		return enc.Encode(results)
	}
}

// extractToFile runs runExtract into path. The file is closed before
// returning so a failed flush surfaces as an error.
func extractToFile(ctx context.Context, svc service.ExtractionService, stdin io.Reader, path string, paths []string, docType, format string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := runExtract(ctx, svc, stdin, f, paths, docType, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), nil
}

// toExtractions wraps CLI results in completed extractions so they share the
// export column layout with the API.
func toExtractions(results []fileResult) ([]domain.Extraction, error) {
	now := time.Now().UTC()
	exts := make([]domain.Extraction, 0, len(results))
	for _, r := range results {
		data, err := json.Marshal(r.Document)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", r.Source, err)
		}
		completed := now
		exts = append(exts, domain.Extraction{
			ID:               uuid.New(),
			Source:           domain.ExtractionSourceCLI,
			DocumentType:     r.Document.DocumentType,
			Result:           data,
			Confidence:       r.Confidence,
			ParserModel:      r.ParserModel,
			Status:           domain.ExtractionStatusCompleted,
			ValidationStatus: r.ValidationStatus,
			CreatedAt:        now,
			CompletedAt:      &completed,
		})
	}
	return exts, nil
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a service token for the HTTP API",
		Long: `Mint an HS256 service token signed with DOCEX_JWT_SECRET.

Example:
  docex token --client ocr-pipeline --ttl 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _ := cmd.Flags().GetString("client")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			tok, err := service.NewAuthService(cfg.JWT).IssueToken(client, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", tok.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringP("client", "c", "", "Client name recorded in the token (required)")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to DOCEX_JWT_TOKEN_EXPIRY)")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

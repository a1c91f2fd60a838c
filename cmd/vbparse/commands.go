package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/vbtree/internal/chunker"
	"github.com/dgallion1/vbtree/internal/config"
	"github.com/dgallion1/vbtree/internal/parser"
	"github.com/dgallion1/vbtree/internal/pipeline"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	var (
		verbose bool
		level   slog.LevelVar
	)
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

	rootCmd := &cobra.Command{
		Use:   "vbparse",
		Short: "Extract the structure of Vietnamese legal documents",
		Long: `vbparse recovers the Part / Chapter / Section / Article / Clause / Point
hierarchy of Vietnamese legal documents and prints it as JSON.

Supported formats: HTML, DOCX, PDF, Markdown, plain text.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(parseCmd(log))
	rootCmd.AddCommand(linesCmd())
	rootCmd.AddCommand(profilesCmd())
	return rootCmd
}

func parseCmd(log *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a document and print its structure as JSON",
		Long: `Parse a document and print document_info, structure, metadata,
attachments and node statistics as JSON.

The document type selects the profile. Without --type it is inferred from
the title, which defaults to the file name.

Example:
  vbparse parse --type "Luật" luat-quan-ly-thue.html
  vbparse parse --title "Quyết định 12/QĐ-UBND" --chunks qd12.docx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docType, _ := cmd.Flags().GetString("type")
			title, _ := cmd.Flags().GetString("title")
			withChunks, _ := cmd.Flags().GetBool("chunks")
			chunkSize, _ := cmd.Flags().GetInt("chunk-size")
			overlap, _ := cmd.Flags().GetInt("overlap")
			guard, _ := cmd.Flags().GetBool("reference-guard")
			output, _ := cmd.Flags().GetString("output")
			compact, _ := cmd.Flags().GetBool("compact")

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if title == "" {
				base := filepath.Base(path)
				title = strings.TrimSuffix(base, filepath.Ext(base))
			}

			cfg := config.Defaults()
			cfg.ReferenceGuard = guard
			svc, err := pipeline.NewService(cfg, nil, log)
			if err != nil {
				return err
			}
			doc, err := svc.Parse(cmd.Context(), data, pipeline.Request{
				Filename: filepath.Base(path),
				Title:    title,
				DocType:  docType,
				Chunks:   withChunks,
				Chunking: chunker.Config{ChunkSize: chunkSize, ChunkOverlap: overlap},
			})
			if err != nil {
				return err
			}
			log.Info("parsed",
				"file", path,
				"profile", doc.Info.Profile,
				"doc_type", doc.Info.DocType,
				"nodes", doc.NodeCount(),
				"attachments", len(doc.Result.Attachments),
			)

			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			enc.SetEscapeHTML(false)
			if !compact {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			log.Info("wrote result", "output", output)
			return nil
		},
	}

	cmd.Flags().StringP("type", "t", "", "Document type, e.g. \"Luật\", \"Quyết định\", \"Kế hoạch\"")
	cmd.Flags().String("title", "", "Document title (defaults to the file name)")
	cmd.Flags().Bool("chunks", false, "Include article-level chunks for indexing")
	cmd.Flags().Int("chunk-size", 0, "Target chunk size in tokens (default 800)")
	cmd.Flags().Int("overlap", 0, "Overlap between split chunks in tokens (default 100)")
	cmd.Flags().Bool("reference-guard", true, "Reject header lines that cite other provisions")
	cmd.Flags().StringP("output", "o", "", "Write JSON to a file instead of stdout")
	cmd.Flags().Bool("compact", false, "Print JSON on one line")

	return cmd
}

func linesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lines FILE",
		Short: "Print the lines the classifier sees, with bold and anchor markers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := parser.ForFile(path, true)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			lines, err := src.Lines(f)
			if err != nil {
				return fmt.Errorf("extract lines from %s: %w", path, err)
			}
			return printLines(cmd.OutOrStdout(), lines)
		},
	}
	return cmd
}

func printLines(w io.Writer, lines []parser.Line) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for i, ln := range lines {
		bold := ""
		if ln.Bold {
			bold = "B"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, bold, ln.AnchorID, ln.Text)
	}
	return tw.Flush()
}

func profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List document types and the profile each one selects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DOC TYPE\tPROFILE\tLOOSE ARTICLES")
			for _, t := range parser.DocTypes() {
				p := parser.ForType(t)
				fmt.Fprintf(tw, "%s\t%s\t%t\n", t, p.Name, p.LooseArticles)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(w)
			for _, p := range parser.Profiles {
				kinds := make([]string, len(p.Kinds))
				for i, k := range p.Kinds {
					kinds[i] = k.String()
				}
				fmt.Fprintf(w, "%-13s %s\n", p.Name, strings.Join(kinds, " > "))
			}
			return nil
		},
	}
}

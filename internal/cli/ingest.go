package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docrag/internal/adapter/chunker"
	"docrag/internal/adapter/extractor"
	"docrag/internal/adapter/fs"
	"docrag/internal/domain"
	"docrag/internal/usecase"
)

var ingestCollection string

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Ingest documents into the store",
	Long: `Ingest documents into the vector store. Each argument may be a file,
a directory (walked recursively against the configured include patterns)
or a glob pattern.

Examples:
  docrag ingest ./docs                       # Ingest a directory
  docrag ingest report.pdf notes.md          # Ingest specific files
  docrag ingest "handbook/**/*.docx" -c hr   # Glob into a collection`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "", "collection label to store chunks under")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	paths, err := walker.Resolve(args)
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no matching files found")
	}

	files := make([]usecase.FileInput, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, usecase.FileInput{
			Filename: filepath.Base(p),
			Data:     data,
		})
	}

	if dir := filepath.Dir(cfg.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	emb, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	chk, err := chunker.NewWindowChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("invalid chunking config: %w", err)
	}

	ingestUC := usecase.NewIngestUseCase(
		st,
		extractor.New(),
		chk,
		emb,
		usecase.IngestLimits{
			MaxFiles:     cfg.Ingest.MaxFiles,
			MaxFileBytes: cfg.Ingest.MaxFileBytes,
		},
		log.Logger,
	)

	fmt.Printf("Ingesting %d files...\n", len(files))

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	var barMu sync.Mutex
	progress := func(processed, total int, filename string) {
		barMu.Lock()
		defer barMu.Unlock()
		bar.Set(processed)
	}

	result, err := ingestUC.Ingest(cmd.Context(), files, ingestCollection, progress)
	if err != nil {
		if result != nil {
			printOutcomes(result.Files)
		}
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Files processed: %d\n", len(result.Files))
	fmt.Printf("  Chunks added:    %d\n", result.AddedChunks)
	printOutcomes(result.Files)

	fmt.Printf("\nStore: %s\n", cfg.Store.Path)
	return nil
}

func printOutcomes(outcomes []domain.FileOutcome) {
	failed := 0
	for _, o := range outcomes {
		if o.Status == "failed" {
			failed++
		}
	}
	if failed == 0 {
		return
	}

	fmt.Printf("\nFailed files:\n")
	for _, o := range outcomes {
		if o.Status == "failed" {
			fmt.Printf("  - %s: %s\n", o.Filename, o.Error)
		}
	}
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"docrag/internal/adapter/retriever"
	"docrag/internal/domain"
	"docrag/internal/usecase"
)

var (
	queryText       string
	queryTopK       int
	queryCollection string
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a question over the ingested documents",
	Long: `Embed the question, retrieve the most similar stored chunks by cosine
similarity and print the answer with its sources. Without a configured
generator the answer is the retrieved context itself.

Examples:
  docrag query -q "what is the refund policy?"
  docrag query -q "deployment steps" -k 5 --json
  docrag query -q "holiday schedule" -c hr`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question to answer (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	queryCmd.Flags().StringVarP(&queryCollection, "collection", "c", "", "restrict retrieval to one collection")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	emb, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	gen, err := newGenerator(cfg)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	queryUC := usecase.NewQueryUseCase(
		retriever.NewCosineRetriever(st),
		emb,
		gen,
		usecase.QueryConfig{
			DefaultTopK:     cfg.Retrieve.TopK,
			MaxContextChars: cfg.Generation.MaxContextChars,
			MaxSourceChars:  cfg.Retrieve.MaxSourceChars,
		},
		log.Logger,
	)

	result, err := queryUC.Query(cmd.Context(), queryText, queryTopK, queryCollection)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptStore) {
			return fmt.Errorf("store is corrupt, run 'docrag clear' to reset it: %w", err)
		}
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for i, s := range result.Sources {
			fmt.Printf("--- [%d] %s#%d (score: %.4f) ---\n", i+1, s.Filename, s.ChunkIndex, s.Score)
			fmt.Println(s.Text)
		}
	}
	return nil
}

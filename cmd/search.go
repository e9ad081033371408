package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kakuhq/kaku/internal/retrieval"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find the passages of your writing closest to a query",
	Long:  `Embeds the query and ranks the chunks of your corpus by cosine similarity. With --context, prints the grounding text a chat turn would receive.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum number of results (default retrieval.top_k)")
	searchCmd.Flags().Bool("context", false, "print the formatted prompt context instead of a result list")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

type searchResultJSON struct {
	Rank       int     `json:"rank"`
	Similarity float64 `json:"similarity"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	ChunkIndex int     `json:"chunk_index"`
	Excerpt    string  `json:"excerpt"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	limit, _ := cmd.Flags().GetInt("limit")
	asContext, _ := cmd.Flags().GetBool("context")
	asJSON, _ := cmd.Flags().GetBool("json")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if limit <= 0 {
		limit = a.cfg.Retrieval.TopK
	}
	out := cmd.OutOrStdout()

	if asContext {
		text, err := a.retrieval.RelevantContext(cmd.Context(), localOwner, query, a.cfg.Retrieval.MaxContextTokens)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		fmt.Fprintln(out, text)
		return nil
	}

	results, err := a.retrieval.Search(cmd.Context(), localOwner, query, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No results found. Add writing samples with `kaku upload <path>`.")
		return nil
	}

	if asJSON {
		rows := make([]searchResultJSON, len(results))
		for i, r := range results {
			rows[i] = searchResultJSON{
				Rank:       i + 1,
				Similarity: r.Similarity,
				DocumentID: r.Chunk.DocumentID,
				Title:      r.Chunk.DocumentTitle,
				ChunkIndex: r.Chunk.Index,
				Excerpt:    truncate(r.Chunk.Content, 200),
			}
		}
		return writeJSON(out, rows)
	}

	printSearchResults(cmd, results)
	return nil
}

func printSearchResults(cmd *cobra.Command, results []retrieval.Result) {
	out := cmd.OutOrStdout()
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s (chunk %d, %.0f%%)\n", i+1, r.Chunk.DocumentTitle, r.Chunk.Index, r.Similarity*100)
		excerpt := strings.Join(strings.Fields(r.Chunk.Content), " ")
		fmt.Fprintf(out, "   %s\n\n", truncate(excerpt, 200))
	}
}

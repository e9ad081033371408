package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/kakuhq/kaku/internal/audit"
	"github.com/kakuhq/kaku/internal/corpus"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List and manage the writing samples in your corpus",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a document and its style metrics",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDocsDelete,
}

var docsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every document",
	Args:  cobra.NoArgs,
	RunE:  runDocsClear,
}

var docsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus totals",
	Args:  cobra.NoArgs,
	RunE:  runDocsStats,
}

var docsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent uploads, saved drafts and deletions",
	Args:  cobra.NoArgs,
	RunE:  runDocsHistory,
}

func init() {
	docsHistoryCmd.Flags().Int("limit", 20, "number of entries to show")
	docsHistoryCmd.Flags().Bool("json", false, "output as JSON")
	docsListCmd.Flags().Bool("json", false, "output as JSON")
	docsShowCmd.Flags().Bool("json", false, "output as JSON")
	docsStatsCmd.Flags().Bool("json", false, "output as JSON")
	docsClearCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	docsCmd.AddCommand(docsListCmd, docsShowCmd, docsDeleteCmd, docsClearCmd, docsStatsCmd, docsHistoryCmd)
	rootCmd.AddCommand(docsCmd)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runDocsList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.corpus.List(cmd.Context(), localOwner)
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), docs)
	}
	if len(docs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No documents yet. Add some with `kaku upload <path>`.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tWORDS\tFORMALITY\tUPLOADED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\t%s\n",
			d.ID, truncate(d.Title, 40), d.Metadata.FileType, d.Metadata.WordCount,
			d.Style.FormalityScore, d.Metadata.UploadedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.corpus.Get(cmd.Context(), localOwner, args[0])
	if errors.Is(err, corpus.ErrNotFound) {
		return fmt.Errorf("no document with id %s", args[0])
	}
	if err != nil {
		return err
	}
	for i := range doc.Chunks {
		doc.Chunks[i].Embedding = nil
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), doc)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", doc.Title)
	fmt.Fprintf(out, "  file:       %s (%s)\n", doc.Metadata.FileName, doc.Metadata.FileType)
	fmt.Fprintf(out, "  words:      %d\n", doc.Metadata.WordCount)
	fmt.Fprintf(out, "  chunks:     %d\n", len(doc.Chunks))
	fmt.Fprintf(out, "  formality:  %.1f\n", doc.Style.FormalityScore)
	fmt.Fprintf(out, "  sentences:  %.1f words on average\n", doc.Style.AverageSentenceLength)
	fmt.Fprintf(out, "  paragraphs: %.1f words on average\n\n", doc.Style.AverageParagraphLength)
	fmt.Fprintln(out, doc.Content)
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	for _, id := range args {
		if err := a.corpus.Delete(cmd.Context(), localOwner, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	}
	return nil
}

func runDocsClear(cmd *cobra.Command, args []string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		confirm := promptui.Prompt{
			Label:     "Delete every document in your corpus",
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.corpus.Clear(cmd.Context(), localOwner); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Corpus cleared.")
	return nil
}

func runDocsStats(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.corpus.Stats(cmd.Context(), localOwner)
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), st)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Documents:         %d\n", st.DocumentCount)
	fmt.Fprintf(out, "Words:             %d\n", st.WordCount)
	fmt.Fprintf(out, "Characters:        %d\n", st.CharacterCount)
	fmt.Fprintf(out, "Average formality: %.1f\n", st.AverageFormality)
	if st.LastUpdated != nil {
		fmt.Fprintf(out, "Last updated:      %s\n", st.LastUpdated.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func runDocsHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := a.audit.Query(cmd.Context(), audit.QueryFilter{Owner: localOwner, Limit: limit})
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No activity yet.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tSUMMARY")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), e.Action, truncate(e.Summary, 60))
	}
	return tw.Flush()
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kakuhq/kaku/internal/prompt"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the writing style measured from your corpus",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

func init() {
	profileCmd.Flags().Bool("json", false, "output as JSON")
	profileCmd.Flags().Bool("prompt", false, "print the system prompt the profile produces")
	profileCmd.Flags().String("style", string(prompt.StyleOriginal), "style preset used with --prompt")
	profileCmd.Flags().String("purpose", string(prompt.PurposeGeneral), "purpose preset used with --prompt")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.corpus.Profile(cmd.Context(), localOwner)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if asPrompt, _ := cmd.Flags().GetBool("prompt"); asPrompt {
		style, _ := cmd.Flags().GetString("style")
		purpose, _ := cmd.Flags().GetString("purpose")
		fmt.Fprintln(out, prompt.SystemPrompt(prompt.Options{
			Profile: p,
			Style:   prompt.ParseStyle(style),
			Purpose: prompt.ParsePurpose(purpose),
		}))
		return nil
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, p)
	}
	if !p.HasDocuments {
		fmt.Fprintln(out, "No documents yet. Add some with `kaku upload <path>`.")
		return nil
	}

	fmt.Fprintf(out, "Formality:          %.1f/10, %s\n", p.FormalityScore, prompt.FormalityLabel(p.FormalityScore))
	fmt.Fprintf(out, "Sentence length:    %.1f words, %s\n", p.AverageSentenceLength, prompt.SentenceLengthLabel(p.AverageSentenceLength))
	fmt.Fprintf(out, "Paragraph length:   %.1f words, %s\n", p.AverageParagraphLength, prompt.ParagraphLengthLabel(p.AverageParagraphLength))
	fmt.Fprintf(out, "Vocabulary:         %.2f diversity\n", p.VocabularyDiversity)
	if len(p.CommonComplexWords) > 0 {
		fmt.Fprintf(out, "Complex words:      %s\n", strings.Join(p.CommonComplexWords, ", "))
	}
	if len(p.CommonTransitions) > 0 {
		fmt.Fprintf(out, "Transitions:        %s\n", strings.Join(p.CommonTransitions, ", "))
	}
	if p.SampleText != "" {
		fmt.Fprintf(out, "\nSample:\n%s\n", p.SampleText)
	}
	return nil
}

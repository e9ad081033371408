package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/progress"
	"github.com/kakuhq/kaku/internal/walker"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Add writing samples to your corpus",
	Long: `Extracts text from the given files or directories (txt, md, rtf, docx,
pdf), measures its style, chunks and embeds it. Directories are searched
recursively using the include/exclude patterns from the config.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().Bool("dry-run", false, "list the files that would be uploaded")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var files []walker.FileInfo
	for _, root := range args {
		found, skipped, err := walker.Walk(walker.Config{
			Root:       root,
			Extensions: a.corpus.Extractor().Extensions(),
			Include:    a.cfg.Include,
			Exclude:    a.cfg.Exclude,
		})
		if err != nil {
			return err
		}
		for _, s := range skipped {
			fmt.Fprintf(os.Stderr, "skipping %s: %s\n", s.RelPath, s.Reason)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported files found (supported: %v)", a.corpus.Extractor().Extensions())
	}

	if dryRun {
		for _, f := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d bytes\n", f.Path, f.Size)
		}
		return nil
	}

	ctx := cmd.Context()

	reporter := progress.NewReporter(os.Stderr)
	reporter.Start(len(files))
	var uploaded int
	var failed []corpus.FileError
	for i, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			failed = append(failed, corpus.FileError{FileName: f.RelPath, Error: err.Error()})
			reporter.Update(i+1, f.RelPath)
			continue
		}
		res, err := a.corpus.Upload(ctx, localOwner, []corpus.File{{Name: filepath.Base(f.Path), Data: data}})
		if err != nil && !errors.Is(err, corpus.ErrNoDocumentsProcessed) {
			return err
		}
		uploaded += len(res.Documents)
		failed = append(failed, res.Failed...)
		reporter.Update(i+1, f.RelPath)
	}
	reporter.Finish(fmt.Sprintf("%d uploaded, %d failed", uploaded, len(failed)))

	for _, f := range failed {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", f.FileName, f.Error)
	}
	if uploaded == 0 {
		return corpus.ErrNoDocumentsProcessed
	}
	return nil
}

package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// CommandRunner runs an external program and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFExtractor delegates PDF text extraction to poppler's pdftotext.
type PDFExtractor struct {
	Runner CommandRunner
}

func (p *PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) < 5 || string(data[:5]) != "%PDF-" {
		return "", fmt.Errorf("%w: missing pdf header", ErrInvalidDocument)
	}

	tmp, err := os.CreateTemp("", "kaku-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	out, err := p.Runner.Run(ctx, "pdftotext", "-enc", "UTF-8", "-nopgbrk", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("running pdftotext: %w", err)
	}
	return string(out), nil
}

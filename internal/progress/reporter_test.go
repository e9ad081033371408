package progress

import (
	"bytes"
	"testing"
)

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLineReporter(&buf)
	r.Start(2)
	r.Update(1, "essay.md")
	r.Update(2, "letter.txt")
	r.Finish("2 uploaded, 0 failed")

	want := "Uploading 2 samples\n[1/2] essay.md\n[2/2] letter.txt\n2 uploaded, 0 failed\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestNewReporterUsesLinesInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter(&bytes.Buffer{}).(*LineReporter); !ok {
		t.Error("expected a LineReporter under CI")
	}
}

func TestTerminalReporter(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	var buf bytes.Buffer
	r := NewReporter(&buf)
	if _, ok := r.(*TerminalReporter); !ok {
		t.Fatal("expected a TerminalReporter outside CI")
	}
	r.Start(1)
	r.Update(1, "essay.md")
	r.Finish("done")
	if !bytes.Contains(buf.Bytes(), []byte("done")) {
		t.Errorf("summary missing from output %q", buf.String())
	}
}

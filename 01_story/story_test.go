package story

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"chapter-video-pipeline/config"
	"chapter-video-pipeline/types"
)

func testProcessor(t *testing.T) (*Processor, string) {
	t.Helper()
	inputDir := t.TempDir()
	cfg := &config.Config{}
	cfg.Directories.Input = inputDir
	cfg.Story.OutputFilenamePattern = "chapter%d_video.mp4"
	return New(cfg), inputDir
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"blank line separators", "A\n\nB\n\n\nC", []string{"A", "B", "C"}},
		{"single paragraph unchanged", "just one paragraph", []string{"just one paragraph"}},
		{"leading and trailing whitespace stripped", "  first  \n\n\tsecond\t\n", []string{"first", "second"}},
		{"whitespace-only paragraphs dropped", "A\n\n   \n\nB", []string{"A", "B"}},
		{"empty text", "", nil},
		{"only blank lines", "\n\n\n\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitParagraphs(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitParagraphs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Oil painting, ancient Tamil landscape.", "The army crossed the river.")
	want := "Oil painting, ancient Tamil landscape. Context: The army crossed the river."
	if got != want {
		t.Errorf("BuildPrompt = %q, want %q", got, want)
	}
}

func TestReadChapter(t *testing.T) {
	proc, inputDir := testProcessor(t)

	content := "First paragraph.\n\nSecond paragraph."
	if err := os.WriteFile(filepath.Join(inputDir, "chapter3.txt"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := proc.ReadChapter(3)
	if err != nil {
		t.Fatalf("ReadChapter failed: %v", err)
	}
	if got != content {
		t.Errorf("ReadChapter = %q, want %q", got, content)
	}
}

func TestReadChapterMissing(t *testing.T) {
	proc, _ := testProcessor(t)

	_, err := proc.ReadChapter(7)
	if !errors.Is(err, types.ErrChapterNotFound) {
		t.Errorf("Expected ErrChapterNotFound, got %v", err)
	}
}

func TestReadBasePrompt(t *testing.T) {
	proc, inputDir := testProcessor(t)

	if err := os.WriteFile(filepath.Join(inputDir, "chapter2_base_prompt.txt"), []byte("  style prompt \n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := proc.ReadBasePrompt(2)
	if err != nil {
		t.Fatalf("ReadBasePrompt failed: %v", err)
	}
	if got != "style prompt" {
		t.Errorf("Expected trimmed prompt 'style prompt', got %q", got)
	}
}

func TestReadBasePromptMissing(t *testing.T) {
	proc, _ := testProcessor(t)

	_, err := proc.ReadBasePrompt(2)
	if !errors.Is(err, types.ErrMissingBasePrompt) {
		t.Errorf("Expected ErrMissingBasePrompt, got %v", err)
	}
}

func TestReadBasePromptEmptyFile(t *testing.T) {
	proc, inputDir := testProcessor(t)

	if err := os.WriteFile(filepath.Join(inputDir, "chapter2_base_prompt.txt"), []byte("   \n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := proc.ReadBasePrompt(2)
	if !errors.Is(err, types.ErrMissingBasePrompt) {
		t.Errorf("Expected ErrMissingBasePrompt for empty file, got %v", err)
	}
}

func TestOutputFilename(t *testing.T) {
	proc, _ := testProcessor(t)

	if got := proc.OutputFilename(12); got != "chapter12_video.mp4" {
		t.Errorf("OutputFilename(12) = %q, want 'chapter12_video.mp4'", got)
	}
}

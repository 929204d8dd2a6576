package story

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"chapter-video-pipeline/config"
	"chapter-video-pipeline/types"
)

// Processor reads chapter text files and prepares them for generation.
type Processor struct {
	cfg *config.Config
}

// New creates a new Processor
func New(cfg *config.Config) *Processor {
	return &Processor{cfg: cfg}
}

var blankLine = regexp.MustCompile(`\n\s*\n`)

// SplitParagraphs splits chapter text on blank lines. Runs of blank lines
// collapse into one separator; whitespace-only paragraphs are dropped.
func SplitParagraphs(text string) []string {
	parts := blankLine.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// BuildPrompt joins the chapter's shared style prompt with one paragraph.
func BuildPrompt(basePrompt, paragraph string) string {
	return fmt.Sprintf("%s Context: %s", basePrompt, paragraph)
}

// ChapterPath returns the path of the chapter's text file.
func (p *Processor) ChapterPath(chapter int) string {
	return filepath.Join(p.cfg.Directories.Input, fmt.Sprintf("chapter%d.txt", chapter))
}

// BasePromptPath returns the path of the chapter's base prompt file.
func (p *Processor) BasePromptPath(chapter int) string {
	return filepath.Join(p.cfg.Directories.Input, fmt.Sprintf("chapter%d_base_prompt.txt", chapter))
}

// ReadChapter reads a chapter's full text.
func (p *Processor) ReadChapter(chapter int) (string, error) {
	path := p.ChapterPath(chapter)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: chapter %d at %s", types.ErrChapterNotFound, chapter, path)
		}
		return "", fmt.Errorf("read chapter %d: %w", chapter, err)
	}
	return string(data), nil
}

// ReadBasePrompt reads the chapter's base prompt, trimmed. A missing file is
// ErrMissingBasePrompt: fatal for image generation, irrelevant for audio.
func (p *Processor) ReadBasePrompt(chapter int) (string, error) {
	path := p.BasePromptPath(chapter)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: chapter %d at %s", types.ErrMissingBasePrompt, chapter, path)
		}
		return "", fmt.Errorf("read base prompt for chapter %d: %w", chapter, err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("%w: chapter %d file %s is empty", types.ErrMissingBasePrompt, chapter, path)
	}
	return prompt, nil
}

// OutputFilename returns the video filename for a chapter from the configured
// pattern, e.g. "chapter3_video.mp4".
func (p *Processor) OutputFilename(chapter int) string {
	return fmt.Sprintf(p.cfg.Story.OutputFilenamePattern, chapter)
}

package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"chapter-video-pipeline/01_story"
	"chapter-video-pipeline/config"
)

// Generator produces one illustration per paragraph via the OpenAI images
// API. Every prompt is prefixed with the chapter's base prompt so the whole
// chapter shares a visual style; a chapter without a base prompt file fails.
type Generator struct {
	cfg        *config.Config
	story      *story.Processor
	httpClient *http.Client
}

// New creates a new Generator
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		story:      story.New(cfg),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type imageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate creates the image for one paragraph of the given chapter and
// writes it to images/image_{index}.png. The chapter number is an explicit
// parameter; there is no per-instance chapter state to set first.
func (g *Generator) Generate(ctx context.Context, chapter int, text string, index int) (string, error) {
	basePrompt, err := g.story.ReadBasePrompt(chapter)
	if err != nil {
		return "", err
	}
	prompt := story.BuildPrompt(basePrompt, text)

	imageURL, err := g.requestImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("image %d: %w", index, err)
	}

	imagePath := filepath.Join(g.cfg.Directories.Images, fmt.Sprintf("image_%d.png", index))
	if err := g.downloadImage(ctx, imageURL, imagePath); err != nil {
		return "", fmt.Errorf("download image %d: %w", index, err)
	}
	return imagePath, nil
}

func (g *Generator) requestImage(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	body, err := json.Marshal(imageRequest{
		Model:   g.cfg.OpenAI.Model,
		Prompt:  prompt,
		Size:    g.cfg.OpenAI.Size,
		Quality: g.cfg.OpenAI.Quality,
		N:       1,
	})
	if err != nil {
		return "", err
	}

	url := g.cfg.OpenAI.BaseURL + "/v1/images/generations"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	var parsed imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai HTTP %d: %s", resp.StatusCode, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK || len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", fmt.Errorf("openai HTTP %d: no image URL in response", resp.StatusCode)
	}
	return parsed.Data[0].URL, nil
}

func (g *Generator) downloadImage(ctx context.Context, imageURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d fetching image", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(outFile, data, 0644)
}

// BatchGenerate creates images for every paragraph in order.
func (g *Generator) BatchGenerate(ctx context.Context, chapter int, paragraphs []string) ([]string, error) {
	log.Println("[images] 🎨 Generating visuals...")

	paths := make([]string, 0, len(paragraphs))
	for i, text := range paragraphs {
		log.Printf("[images] Paragraph %d/%d: generating image...", i+1, len(paragraphs))
		path, err := g.Generate(ctx, chapter, text, i)
		if err != nil {
			return nil, fmt.Errorf("paragraph %d image failed: %w", i, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Regenerate redoes a single paragraph's image, overwriting the old file.
func (g *Generator) Regenerate(ctx context.Context, chapter int, text string, index int) (string, error) {
	log.Printf("[images] 🎨 Regenerating image %d...", index)
	return g.Generate(ctx, chapter, text, index)
}

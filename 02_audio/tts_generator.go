package audio

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

	"chapter-video-pipeline/config"
)

// Generator turns paragraph text into narration audio via the ElevenLabs
// text-to-speech API. One MP3 file per paragraph, named scene{index}.mp3 so
// reruns overwrite in place.
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates a new Generator
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

type ttsErrorResponse struct {
	Detail struct {
		Message string `json:"message"`
	} `json:"detail"`
}

// Generate synthesizes one paragraph and writes the MP3 to the audio dir.
// Returns the path written.
func (g *Generator) Generate(ctx context.Context, text string, index int) (string, error) {
	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("ELEVENLABS_API_KEY not set")
	}

	body, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: g.cfg.ElevenLabs.Model,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", g.cfg.ElevenLabs.BaseURL, g.cfg.ElevenLabs.DefaultVoice)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr ttsErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Detail.Message != "" {
			return "", fmt.Errorf("elevenlabs HTTP %d: %s", resp.StatusCode, apiErr.Detail.Message)
		}
		return "", fmt.Errorf("elevenlabs HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read audio stream: %w", err)
	}

	audioPath := filepath.Join(g.cfg.Directories.Audio, fmt.Sprintf("scene%d.mp3", index))
	if err := os.WriteFile(audioPath, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", audioPath, err)
	}
	return audioPath, nil
}

// BatchGenerate synthesizes every paragraph in order. Any failure aborts the
// batch; files already written stay on disk and are overwritten on rerun.
func (g *Generator) BatchGenerate(ctx context.Context, paragraphs []string) ([]string, error) {
	log.Println("[audio] 🎙️  Generating audio narration...")

	paths := make([]string, 0, len(paragraphs))
	for i, text := range paragraphs {
		log.Printf("[audio] Paragraph %d/%d: generating audio...", i+1, len(paragraphs))
		path, err := g.Generate(ctx, text, i)
		if err != nil {
			return nil, fmt.Errorf("paragraph %d TTS failed: %w", i, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

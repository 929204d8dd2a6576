package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chapter-video-pipeline/config"
	"chapter-video-pipeline/types"
)

func testGenerator(t *testing.T, baseURL string) *Generator {
	t.Helper()
	cfg := &config.Config{}
	cfg.Directories.Input = t.TempDir()
	cfg.Directories.Images = t.TempDir()
	cfg.OpenAI.Model = "dall-e-3"
	cfg.OpenAI.Size = "1792x1024"
	cfg.OpenAI.Quality = "standard"
	cfg.OpenAI.BaseURL = baseURL
	return New(cfg)
}

func writeBasePrompt(t *testing.T, g *Generator, chapter int, prompt string) {
	t.Helper()
	path := filepath.Join(g.cfg.Directories.Input, fmt.Sprintf("chapter%d_base_prompt.txt", chapter))
	if err := os.WriteFile(path, []byte(prompt), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateWritesImageFile(t *testing.T) {
	fakePNG := []byte("\x89PNG-fake-bytes")
	var gotReq imageRequest

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": server.URL + "/generated.png"}},
		})
	})
	mux.HandleFunc("/generated.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(fakePNG)
	})

	t.Setenv("OPENAI_API_KEY", "test-key")
	g := testGenerator(t, server.URL)
	writeBasePrompt(t, g, 1, "Oil painting style.")

	path, err := g.Generate(context.Background(), 1, "The battle began.", 7)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if filepath.Base(path) != "image_7.png" {
		t.Errorf("Expected image_7.png, got %s", filepath.Base(path))
	}
	want := "Oil painting style. Context: The battle began."
	if gotReq.Prompt != want {
		t.Errorf("Prompt = %q, want %q", gotReq.Prompt, want)
	}
	if gotReq.Model != "dall-e-3" || gotReq.N != 1 {
		t.Errorf("Unexpected request: %+v", gotReq)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Read generated file: %v", err)
	}
	if string(data) != string(fakePNG) {
		t.Error("Written image does not match downloaded bytes")
	}
}

func TestGenerateMissingBasePrompt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	g := testGenerator(t, server.URL)

	_, err := g.Generate(context.Background(), 3, "text", 0)
	if !errors.Is(err, types.ErrMissingBasePrompt) {
		t.Fatalf("Expected ErrMissingBasePrompt, got %v", err)
	}
	if calls != 0 {
		t.Error("No API call may happen without a base prompt")
	}
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"content policy violation"}}`))
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	g := testGenerator(t, server.URL)
	writeBasePrompt(t, g, 1, "Style.")

	_, err := g.Generate(context.Background(), 1, "text", 0)
	if err == nil {
		t.Fatal("Expected error for HTTP 400")
	}
	if !strings.Contains(err.Error(), "content policy violation") {
		t.Errorf("Expected API message in error, got: %v", err)
	}
}

func TestGenerateNoURLInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	g := testGenerator(t, server.URL)
	writeBasePrompt(t, g, 1, "Style.")

	if _, err := g.Generate(context.Background(), 1, "text", 0); err == nil {
		t.Fatal("Expected error when response has no image URL")
	}
}

func TestBatchGenerateOrder(t *testing.T) {
	var prompts []string

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		var req imageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompts = append(prompts, req.Prompt)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": server.URL + "/img.png"}},
		})
	})
	mux.HandleFunc("/img.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png"))
	})

	t.Setenv("OPENAI_API_KEY", "test-key")
	g := testGenerator(t, server.URL)
	writeBasePrompt(t, g, 2, "Base.")

	paths, err := g.BatchGenerate(context.Background(), 2, []string{"first", "second"})
	if err != nil {
		t.Fatalf("BatchGenerate failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("Expected 2 paths, got %d", len(paths))
	}
	if filepath.Base(paths[0]) != "image_0.png" || filepath.Base(paths[1]) != "image_1.png" {
		t.Errorf("Unexpected filenames: %v", paths)
	}
	if prompts[0] != "Base. Context: first" || prompts[1] != "Base. Context: second" {
		t.Errorf("Prompts out of order or malformed: %v", prompts)
	}
}

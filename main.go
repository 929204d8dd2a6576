package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"chapter-video-pipeline/01_story"
	"chapter-video-pipeline/02_audio"
	"chapter-video-pipeline/03_images"
	"chapter-video-pipeline/05_render"
	"chapter-video-pipeline/06_upload"
	"chapter-video-pipeline/config"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env (local dev only — CI uses real env vars)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "generate":
		err = runGenerate(os.Args[2:])
	case "combine":
		err = runCombine(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Printf("❌ Pipeline failed: %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  chapter-video-pipeline generate -chapter N [-upload] [-config config.yaml]")
	fmt.Fprintln(os.Stderr, "  chapter-video-pipeline combine [-input DIR] [-output NAME] [-config config.yaml]")
}

// runGenerate turns one chapter's text into a narrated video:
// read → split paragraphs → TTS per paragraph → image per paragraph → render.
func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	chapter := fs.Int("chapter", 0, "chapter number to generate")
	doUpload := fs.Bool("upload", false, "upload the finished video to YouTube")
	configPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	if *chapter <= 0 {
		return fmt.Errorf("-chapter must be a positive chapter number")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	ctx := context.Background()
	log.Printf("🎬 Chapter video pipeline starting — chapter %d", *chapter)

	log.Println("\n━━━ STAGE 1: Story ━━━")
	proc := story.New(cfg)
	text, err := proc.ReadChapter(*chapter)
	if err != nil {
		return fmt.Errorf("stage 1 story: %w", err)
	}
	paragraphs := story.SplitParagraphs(text)
	if len(paragraphs) == 0 {
		return fmt.Errorf("stage 1 story: chapter %d has no paragraphs", *chapter)
	}
	log.Printf("[story] Chapter %d: %d paragraphs", *chapter, len(paragraphs))

	log.Println("\n━━━ STAGE 2: Audio ━━━")
	audioPaths, err := audio.New(cfg).BatchGenerate(ctx, paragraphs)
	if err != nil {
		return fmt.Errorf("stage 2 audio: %w", err)
	}

	log.Println("\n━━━ STAGE 3: Images ━━━")
	imagePaths, err := images.New(cfg).BatchGenerate(ctx, *chapter, paragraphs)
	if err != nil {
		return fmt.Errorf("stage 3 images: %w", err)
	}

	log.Println("\n━━━ STAGE 4: Render ━━━")
	outputName := proc.OutputFilename(*chapter)
	videoFile, err := render.New(cfg).CreateVideo(ctx, imagePaths, audioPaths, outputName)
	if err != nil {
		return fmt.Errorf("stage 4 render: %w", err)
	}
	log.Printf("✅ Video complete: %s", videoFile)

	if *doUpload {
		log.Println("\n━━━ STAGE 5: Upload ━━━")
		title := fmt.Sprintf("Chapter %d", *chapter)
		_, url, err := upload.New(cfg).Run(ctx, videoFile, title, "")
		if err != nil {
			return fmt.Errorf("stage 5 upload: %w", err)
		}
		log.Printf("✅ Published: %s", url)
	}
	return nil
}

// runCombine pairs existing audio/image files in a directory and encodes
// them into a single video.
func runCombine(args []string) error {
	fs := flag.NewFlagSet("combine", flag.ExitOnError)
	inputDir := fs.String("input", "", "directory of *.mp3/*.jpg pairs (default: configured media dir)")
	outputName := fs.String("output", "", "output video name or path")
	configPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	dir := *inputDir
	if dir == "" {
		dir = cfg.Directories.Media
	}

	videoFile, err := render.New(cfg).CombineAll(context.Background(), dir, *outputName)
	if err != nil {
		return err
	}
	log.Printf("✅ Video complete: %s", videoFile)
	return nil
}

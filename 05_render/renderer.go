package render

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"chapter-video-pipeline/04_media"
	"chapter-video-pipeline/config"
	"chapter-video-pipeline/types"

	"github.com/google/uuid"
)

// DefaultCombinedName is the output filename for the combine workflow when
// the caller does not supply one.
const DefaultCombinedName = "combined_video.mp4"

// Renderer builds per-pair clips and encodes them into one video. All ffmpeg
// invocations share the encoding profile from the config, read-only for the
// run.
type Renderer struct {
	cfg *config.Config
}

// New creates a new Renderer
func New(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// ProbeDuration returns a media file's duration in seconds as reported by
// ffprobe.
func ProbeDuration(path string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	var dur float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur); err != nil {
		return 0, fmt.Errorf("parse duration of %s: %w", path, err)
	}
	return dur, nil
}

// clipArgs builds the ffmpeg arguments that hold a still image for exactly
// the audio's duration with the audio as the clip's soundtrack.
func clipArgs(imagePath, audioPath string, durationSec float64, video config.VideoConfig, outFile string) []string {
	return []string{
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-t", fmt.Sprintf("%.3f", durationSec),
		"-r", fmt.Sprintf("%d", video.FPS),
		"-c:v", video.VideoCodec,
		"-preset", video.VideoPreset,
		"-crf", fmt.Sprintf("%d", video.VideoQuality),
		"-pix_fmt", video.PixelFormat,
		"-c:a", video.AudioCodec,
		"-b:a", video.AudioBitrate,
		outFile,
	}
}

// concatArgs builds the ffmpeg arguments for the final encode: the concat
// demuxer over the clip list, with the full encoding profile applied.
func concatArgs(listFile string, video config.VideoConfig, outFile string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-r", fmt.Sprintf("%d", video.FPS),
		"-c:v", video.VideoCodec,
		"-preset", video.VideoPreset,
		"-crf", fmt.Sprintf("%d", video.VideoQuality),
		"-pix_fmt", video.PixelFormat,
		"-c:a", video.AudioCodec,
		"-b:a", video.AudioBitrate,
		outFile,
	}
}

// concatListLines renders the concat demuxer list, one clip per line, in
// timeline order.
func concatListLines(timeline types.Timeline) []string {
	lines := make([]string, 0, len(timeline.Clips))
	for _, clip := range timeline.Clips {
		lines = append(lines, fmt.Sprintf("file '%s'", clip.Path))
	}
	return lines
}

// SynthesizeClip builds one clip at outFile from an image and an audio file.
// The clip's duration is the audio's duration as reported by ffprobe.
func (r *Renderer) SynthesizeClip(ctx context.Context, imagePath, audioPath, outFile string) (types.Clip, error) {
	dur, err := ProbeDuration(audioPath)
	if err != nil {
		return types.Clip{}, fmt.Errorf("decode audio: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", clipArgs(imagePath, audioPath, dur, r.cfg.Video, outFile)...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return types.Clip{}, fmt.Errorf("ffmpeg clip %s + %s: %w", filepath.Base(imagePath), filepath.Base(audioPath), err)
	}
	return types.Clip{Path: outFile, DurationSec: dur}, nil
}

// ResolveDestination maps an output name to the final path. A name containing
// a path separator is used verbatim (parent dirs created); a bare filename
// lands in the configured output directory.
func (r *Renderer) ResolveDestination(outputName string) (string, error) {
	if outputName == "" {
		outputName = DefaultCombinedName
	}
	var dest string
	if strings.ContainsRune(outputName, os.PathSeparator) || strings.ContainsRune(outputName, '/') {
		dest = outputName
	} else {
		dest = filepath.Join(r.cfg.Directories.Output, outputName)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dest, nil
}

// CreateVideo synthesizes one clip per image/audio pair, in order, and
// encodes the concatenated timeline to the resolved destination. The two
// lists must be the same length; a mismatch is an error rather than a silent
// truncation.
func (r *Renderer) CreateVideo(ctx context.Context, imagePaths, audioPaths []string, outputName string) (string, error) {
	if len(imagePaths) != len(audioPaths) {
		return "", fmt.Errorf("%w: %d images vs %d audio files", types.ErrLengthMismatch, len(imagePaths), len(audioPaths))
	}
	if len(imagePaths) == 0 {
		return "", types.ErrEmptyTimeline
	}

	log.Println("[render] 🎬 Creating video clips...")

	workDir := filepath.Join(r.cfg.Directories.Output, ".work", uuid.NewString()[:8])
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}

	timeline := types.Timeline{Clips: make([]types.Clip, 0, len(imagePaths))}
	for i := range imagePaths {
		log.Printf("[render] Clip %d/%d...", i+1, len(imagePaths))
		outFile := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", i))
		clip, err := r.SynthesizeClip(ctx, imagePaths[i], audioPaths[i], outFile)
		if err != nil {
			return "", fmt.Errorf("clip %d: %w", i, err)
		}
		timeline.Clips = append(timeline.Clips, clip)
	}

	dest, err := r.ResolveDestination(outputName)
	if err != nil {
		return "", err
	}

	log.Printf("[render] 💾 Encoding final video (%.1fs total)...", timeline.TotalSec())
	if err := r.encodeTimeline(ctx, timeline, workDir, dest); err != nil {
		return "", err
	}

	os.RemoveAll(workDir)
	log.Printf("[render] ✅ Final video ready: %s", dest)
	return dest, nil
}

// encodeTimeline writes the concat list and runs the final encode. The list
// preserves clip order exactly; nothing is reordered.
func (r *Renderer) encodeTimeline(ctx context.Context, timeline types.Timeline, workDir, dest string) error {
	if len(timeline.Clips) == 0 {
		return types.ErrEmptyTimeline
	}

	listFile := filepath.Join(workDir, "clips_concat.txt")
	lines := concatListLines(timeline)
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", concatArgs(listFile, r.cfg.Video, dest)...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg encode %s: %w", dest, err)
	}
	return nil
}

// CombineAll pairs the audio and image files found in inputDir and encodes
// them into one video. Zero pairs is fatal here: nothing is written.
func (r *Renderer) CombineAll(ctx context.Context, inputDir, outputName string) (string, error) {
	log.Println("[render] 🔍 Finding matching media files...")
	pairs, err := media.FindPairs(inputDir)
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", inputDir, err)
	}
	if len(pairs) == 0 {
		return "", fmt.Errorf("%w in %s", types.ErrNoMatchingMedia, inputDir)
	}
	log.Printf("[render] 📂 Found %d matching pairs", len(pairs))

	imagePaths := make([]string, len(pairs))
	audioPaths := make([]string, len(pairs))
	for i, p := range pairs {
		imagePaths[i] = p.Image
		audioPaths[i] = p.Audio
	}
	return r.CreateVideo(ctx, imagePaths, audioPaths, outputName)
}

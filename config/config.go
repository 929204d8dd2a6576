package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Directories DirectoriesConfig `yaml:"directories"`
	Video       VideoConfig       `yaml:"video"`
	ElevenLabs  ElevenLabsConfig  `yaml:"elevenlabs"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Story       StoryConfig       `yaml:"story"`
	Upload      UploadConfig      `yaml:"upload"`
}

type DirectoriesConfig struct {
	Input  string `yaml:"input"`
	Audio  string `yaml:"audio"`
	Images string `yaml:"images"`
	Output string `yaml:"output"`
	Media  string `yaml:"media"`
}

// VideoConfig is the encoding profile applied verbatim to every encode in a
// run. It is read-only after Load.
type VideoConfig struct {
	FPS          int    `yaml:"fps"`
	VideoCodec   string `yaml:"video_codec"`
	VideoPreset  string `yaml:"video_preset"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
	VideoQuality int    `yaml:"video_quality"` // CRF
	PixelFormat  string `yaml:"pixel_format"`
}

type ElevenLabsConfig struct {
	DefaultVoice string `yaml:"default_voice"`
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
}

type OpenAIConfig struct {
	Model   string `yaml:"model"`
	Size    string `yaml:"size"`
	Quality string `yaml:"quality"`
	BaseURL string `yaml:"base_url"`
}

type StoryConfig struct {
	OutputFilenamePattern string `yaml:"output_filename_pattern"`
}

type UploadConfig struct {
	Visibility      string `yaml:"visibility"`
	CategoryID      string `yaml:"category_id"`
	DefaultLanguage string `yaml:"default_language"`
	MadeForKids     bool   `yaml:"made_for_kids"`
}

// Load reads the YAML config file and returns a Config struct
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ElevenLabs.BaseURL == "" {
		c.ElevenLabs.BaseURL = "https://api.elevenlabs.io"
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com"
	}
	if c.Story.OutputFilenamePattern == "" {
		c.Story.OutputFilenamePattern = "chapter%d_video.mp4"
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = 24
	}
	if c.Video.VideoCodec == "" {
		c.Video.VideoCodec = "libx264"
	}
	if c.Video.VideoPreset == "" {
		c.Video.VideoPreset = "medium"
	}
	if c.Video.AudioCodec == "" {
		c.Video.AudioCodec = "aac"
	}
	if c.Video.AudioBitrate == "" {
		c.Video.AudioBitrate = "320k"
	}
	if c.Video.VideoQuality == 0 {
		c.Video.VideoQuality = 23
	}
	if c.Video.PixelFormat == "" {
		c.Video.PixelFormat = "yuv420p"
	}
}

// EnsureDirectories creates every configured directory that does not exist yet.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		c.Directories.Input,
		c.Directories.Audio,
		c.Directories.Images,
		c.Directories.Output,
		c.Directories.Media,
	} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

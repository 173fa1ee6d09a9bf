package config

import "fmt"

type Config struct {
	Whisper  WhisperConfig  `yaml:"whisper"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
	Paths    PathsConfig    `yaml:"paths"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type WhisperConfig struct {
	URL            string `yaml:"url"`
	Model          string `yaml:"model"`
	Prompt         string `yaml:"prompt"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type FFmpegConfig struct {
	Binary      string `yaml:"binary"`
	ProbeBinary string `yaml:"probe_binary"`
	SampleRate  int    `yaml:"sample_rate"`
	Loudnorm    bool   `yaml:"loudnorm"`
}

type PathsConfig struct {
	Uploads string `yaml:"uploads"`
	Temp    string `yaml:"temp"`
	Output  string `yaml:"output"`
	Watch   string `yaml:"watch"`
}

type PipelineConfig struct {
	QueueSize              int  `yaml:"queue_size"`
	AllowRemote            bool `yaml:"allow_remote"`
	MaxDownloadMB          int  `yaml:"max_download_mb"`
	DownloadTimeoutSeconds int  `yaml:"download_timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) Validate() error {
	if c.Whisper.URL == "" {
		return fmt.Errorf("whisper.url is required")
	}
	if c.Gemini.Model == "" {
		return fmt.Errorf("gemini.model is required")
	}
	if c.Paths.Uploads == "" {
		return fmt.Errorf("paths.uploads is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}

	if c.Whisper.Model == "" {
		c.Whisper.Model = "whisper-1"
	}
	if c.Whisper.TimeoutSeconds == 0 {
		c.Whisper.TimeoutSeconds = 600
	}
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.FFmpeg.ProbeBinary == "" {
		c.FFmpeg.ProbeBinary = "ffprobe"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Pipeline.QueueSize == 0 {
		c.Pipeline.QueueSize = 64
	}
	if c.Pipeline.MaxDownloadMB == 0 {
		c.Pipeline.MaxDownloadMB = 500
	}
	if c.Pipeline.DownloadTimeoutSeconds == 0 {
		c.Pipeline.DownloadTimeoutSeconds = 300
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

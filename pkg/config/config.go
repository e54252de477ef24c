package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath        = "config.yaml"
	defaultInferenceProvider = ProviderHuggingFace
	defaultInferenceModel    = "google/flan-t5-large"
	defaultGroqModel         = "llama-3.3-70b-versatile"
	defaultTTSProvider       = TTSGTranslate
	defaultLanguage          = "en"
	defaultElevenLabsVoice   = "JBFqnCBsd6RMkjVDRZzb"
	defaultElevenLabsModel   = "eleven_flash_v2_5"
	defaultStability         = 0.5
	defaultSimilarity        = 0.5
	defaultBucket            = "ai_videos"
	defaultFFmpegBin         = "ffmpeg"
	defaultResolution        = "1280x720"
	defaultBackground        = "0x071013"
	defaultFontFile          = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	defaultFontSize          = 36
	defaultServerAddr        = ":8080"
	defaultMaxConcurrent     = 2
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderGroq        = "groq"

	TTSGTranslate = "gtranslate"
	TTSElevenLabs = "elevenlabs"
	TTSStub       = "stub"
)

type Config struct {
	InferenceAPIKey    string
	GroqAPIKey         string
	ElevenLabsAPIKey   string
	StorageCredentials string
	StorageEndpoint    string
	StorageBucket      string
	DatabaseURL        string
	FFmpegBin          string
	GCPProject         string

	Inference  InferenceConfig  `yaml:"inference"`
	Groq       GroqConfig       `yaml:"groq"`
	TTS        TTSConfig        `yaml:"tts"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Video      VideoConfig      `yaml:"video"`
	Server     ServerConfig     `yaml:"server"`
}

type InferenceConfig struct {
	Provider string `yaml:"provider"` // "huggingface" or "groq"
	Model    string `yaml:"model"`
}

type GroqConfig struct {
	Model string `yaml:"model"`
}

type TTSConfig struct {
	Provider string `yaml:"provider"` // "gtranslate", "elevenlabs" or "stub"
	Language string `yaml:"language"`
}

type ElevenLabsConfig struct {
	VoiceID    string  `yaml:"voice_id"`
	Model      string  `yaml:"model"`
	Stability  float64 `yaml:"stability"`
	Similarity float64 `yaml:"similarity"`
}

type VideoConfig struct {
	OutputDir  string `yaml:"output_dir"`
	Resolution string `yaml:"resolution"`
	Background string `yaml:"background"`
	FontFile   string `yaml:"font_file"`
	FontSize   int    `yaml:"font_size"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// Load reads .env and the environment, overlays config.yaml, resolves sm://
// secret references through Secret Manager and validates the result. Missing
// required values abort startup.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		InferenceAPIKey:    os.Getenv("INFERENCE_API_KEY"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		ElevenLabsAPIKey:   os.Getenv("ELEVENLABS_API_KEY"),
		StorageCredentials: os.Getenv("STORAGE_CREDENTIALS"),
		StorageEndpoint:    os.Getenv("STORAGE_ENDPOINT"),
		StorageBucket:      getEnvOrDefault("STORAGE_BUCKET", defaultBucket),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FFmpegBin:          getEnvOrDefault("FFMPEG_BIN", defaultFFmpegBin),
		GCPProject:         os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}

	loadYAMLConfig(cfg)
	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := resolveSecrets(ctx, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FFprobeBin derives the ffprobe path from the configured ffmpeg binary.
func (c *Config) FFprobeBin() string {
	return strings.Replace(c.FFmpegBin, "ffmpeg", "ffprobe", 1)
}

func (c *Config) Validate() error {
	var missing []string

	if c.Inference.Provider == ProviderHuggingFace && c.InferenceAPIKey == "" {
		missing = append(missing, "INFERENCE_API_KEY")
	}
	if c.Inference.Provider == ProviderGroq && c.GroqAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if c.TTS.Provider == TTSElevenLabs && c.ElevenLabsAPIKey == "" {
		missing = append(missing, "ELEVENLABS_API_KEY")
	}
	if c.StorageCredentials == "" {
		missing = append(missing, "STORAGE_CREDENTIALS")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	switch c.Inference.Provider {
	case ProviderHuggingFace, ProviderGroq:
	default:
		return fmt.Errorf("unknown inference provider: %q", c.Inference.Provider)
	}

	switch c.TTS.Provider {
	case TTSGTranslate, TTSElevenLabs, TTSStub:
	default:
		return fmt.Errorf("unknown tts provider: %q", c.TTS.Provider)
	}

	return nil
}

func loadYAMLConfig(cfg *Config) {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		slog.Warn("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INFERENCE_PROVIDER"); v != "" {
		cfg.Inference.Provider = v
	}
	if v := os.Getenv("INFERENCE_MODEL"); v != "" {
		cfg.Inference.Model = v
	}
	if v := os.Getenv("TTS_PROVIDER"); v != "" {
		cfg.TTS.Provider = v
	}
}

func applyDefaults(cfg *Config) {
	applyInferenceDefaults(cfg)
	applyTTSDefaults(cfg)
	applyVideoDefaults(cfg)
	applyServerDefaults(cfg)
}

func applyInferenceDefaults(cfg *Config) {
	if cfg.Inference.Provider == "" {
		cfg.Inference.Provider = defaultInferenceProvider
	}
	if cfg.Inference.Model == "" {
		cfg.Inference.Model = defaultInferenceModel
	}
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
}

func applyTTSDefaults(cfg *Config) {
	if cfg.TTS.Provider == "" {
		cfg.TTS.Provider = defaultTTSProvider
	}
	if cfg.TTS.Language == "" {
		cfg.TTS.Language = defaultLanguage
	}
	if cfg.ElevenLabs.VoiceID == "" {
		cfg.ElevenLabs.VoiceID = defaultElevenLabsVoice
	}
	if cfg.ElevenLabs.Model == "" {
		cfg.ElevenLabs.Model = defaultElevenLabsModel
	}
	if cfg.ElevenLabs.Stability == 0 {
		cfg.ElevenLabs.Stability = defaultStability
	}
	if cfg.ElevenLabs.Similarity == 0 {
		cfg.ElevenLabs.Similarity = defaultSimilarity
	}
}

func applyVideoDefaults(cfg *Config) {
	if cfg.Video.OutputDir == "" {
		cfg.Video.OutputDir = os.TempDir()
	}
	if cfg.Video.Resolution == "" {
		cfg.Video.Resolution = defaultResolution
	}
	if cfg.Video.Background == "" {
		cfg.Video.Background = defaultBackground
	}
	if cfg.Video.FontFile == "" {
		cfg.Video.FontFile = defaultFontFile
	}
	if cfg.Video.FontSize == 0 {
		cfg.Video.FontSize = defaultFontSize
	}
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
	if cfg.Server.MaxConcurrent == 0 {
		cfg.Server.MaxConcurrent = defaultMaxConcurrent
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

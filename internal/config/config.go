// Package config reads the emoticon runtime configuration from
// environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/emoticon-ai/emoticon/internal/gesture"
)

// Defaults applied when an environment variable is unset or invalid.
const (
	DefaultAddr     = "127.0.0.1:8741"
	DefaultDBName   = "emoticon.db"
	DefaultMaxFaces = 2
)

// Config is the assembled runtime configuration.
type Config struct {
	Addr      string
	DBPath    string
	StaticDir string

	CameraID        int
	MaxFaces        int
	MotionThreshold float64

	CooldownWindow time.Duration
	Threshold      float64
	FrameSkip      int
	BodyRules      bool

	OpenAIKey   string
	OpenAIModel string
}

// Load assembles the configuration from the environment.
func Load() Config {
	return Config{
		Addr:            envString("EMOTICON_ADDR", DefaultAddr),
		DBPath:          envString("EMOTICON_DB_PATH", defaultDBPath()),
		StaticDir:       os.Getenv("EMOTICON_STATIC_DIR"),
		CameraID:        envInt("EMOTICON_CAMERA_ID", 0),
		MaxFaces:        envInt("EMOTICON_MAX_FACES", DefaultMaxFaces),
		MotionThreshold: envFloat("EMOTICON_MOTION_THRESHOLD", 1.0),
		CooldownWindow:  envSeconds("EMOTICON_COOLDOWN_SECONDS", gesture.DefaultCooldown),
		Threshold:       envFloat("EMOTICON_SIGNIFICANCE_THRESHOLD", gesture.DefaultSignificanceThreshold),
		FrameSkip:       envInt("EMOTICON_FRAME_SKIP", 0),
		BodyRules:       envBool("EMOTICON_BODY_RULES", false),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     os.Getenv("EMOTICON_OPENAI_MODEL"),
	}
}

// defaultDBPath places the database next to the user's other app data,
// falling back to the working directory.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDBName
	}
	return home + "/.emoticon/" + DefaultDBName
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs * float64(time.Second))
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

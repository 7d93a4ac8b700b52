// Package config loads driveguard configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything a monitoring session and its dashboard need.
type Config struct {
	// Identity
	DriverID string

	// Dashboard
	HTTPPort string

	// Capture
	CameraDevice int
	FrameWidth   int
	FrameHeight  int

	// Landmark provider
	LandmarkURL    string
	LandmarkWSURL  string // non-empty selects the streaming client
	LandmarkAPIKey string

	// Coaching text provider
	GeminiAPIKey string

	// Audio delivery
	TTSAPIKey string
	TTSVoice  string

	// Persistence
	ProfileDir string

	LogLevel string
}

// Load reads configuration from .env (if present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// No .env is fine; fall through to the process environment.
		log.Println("no .env file found, using system environment variables")
	}

	return &Config{
		DriverID:       getEnv("DRIVER_ID", "default"),
		HTTPPort:       getEnv("HTTP_PORT", "8090"),
		CameraDevice:   getEnvInt("CAMERA_DEVICE", 0),
		FrameWidth:     getEnvInt("FRAME_WIDTH", 640),
		FrameHeight:    getEnvInt("FRAME_HEIGHT", 480),
		LandmarkURL:    getEnv("LANDMARK_URL", "http://localhost:5000/detect"),
		LandmarkWSURL:  getEnv("LANDMARK_WS_URL", ""),
		LandmarkAPIKey: getEnv("LANDMARK_API_KEY", ""),
		GeminiAPIKey:   getEnv("GOOGLE_API_KEY", ""),
		TTSAPIKey:      getEnv("ELEVENLABS_API_KEY", ""),
		TTSVoice:       getEnv("ELEVENLABS_VOICE_ID", ""),
		ProfileDir:     getEnv("PROFILE_DIR", defaultProfileDir()),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func defaultProfileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".driveguard/profiles"
	}
	return home + "/.driveguard/profiles"
}

func getEnv(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal
		}
	}
	return defaultVal
}

package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Enrollment  EnrollmentConfig  `yaml:"enrollment"`
	Workbook    WorkbookConfig    `yaml:"workbook"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Camera      CameraConfig      `yaml:"camera"`
	Web         WebConfig         `yaml:"web"`
	LogLevel    string            `yaml:"log_level"`
}

type EnrollmentConfig struct {
	KnownFacesDir string `yaml:"known_faces_dir"` // <dir>/<person>/<photos>
	CachePath     string `yaml:"cache_path"`      // empty disables the encoding cache
	MaxImageSize  int    `yaml:"max_image_size"`
}

type WorkbookConfig struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"`
}

type RecognitionConfig struct {
	ModelsDir string  `yaml:"models_dir"` // dlib model files for go-face
	Tolerance float64 `yaml:"tolerance"`
	CNN       bool    `yaml:"cnn"` // use the CNN face detector instead of HOG
}

type CameraConfig struct {
	Device int     `yaml:"device"`
	Scale  float64 `yaml:"scale"`
}

type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// envString returns the environment variable or the default when unset or empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a non-negative integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean (1, true, yes, ...).
func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

// Defaults returns the configuration embedded in defaults.yaml.
func Defaults() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return cfg
}

func Load() *Config {
	d := Defaults()

	cfg := &Config{
		Enrollment: EnrollmentConfig{
			KnownFacesDir: envString("ATTENDANCE_KNOWN_FACES_DIR", d.Enrollment.KnownFacesDir),
			CachePath:     envString("ATTENDANCE_CACHE", d.Enrollment.CachePath),
			MaxImageSize:  envInt("ATTENDANCE_MAX_IMAGE_SIZE", d.Enrollment.MaxImageSize),
		},
		Workbook: WorkbookConfig{
			Path:  envString("ATTENDANCE_WORKBOOK", d.Workbook.Path),
			Sheet: envString("ATTENDANCE_SHEET", d.Workbook.Sheet),
		},
		Recognition: RecognitionConfig{
			ModelsDir: envString("ATTENDANCE_MODELS_DIR", d.Recognition.ModelsDir),
			Tolerance: envFloat("ATTENDANCE_TOLERANCE", d.Recognition.Tolerance),
			CNN:       envBool("ATTENDANCE_CNN", d.Recognition.CNN),
		},
		Camera: CameraConfig{
			Device: envInt("ATTENDANCE_CAMERA", d.Camera.Device),
			Scale:  envFloat("ATTENDANCE_SCALE", d.Camera.Scale),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", d.Web.Host),
			Port: envInt("WEB_PORT", d.Web.Port),
		},
		LogLevel: envString("ATTENDANCE_LOG_LEVEL", d.LogLevel),
	}

	// A scale above 1 would upscale frames, which only slows detection down.
	if cfg.Camera.Scale > 1 {
		cfg.Camera.Scale = d.Camera.Scale
	}

	return cfg
}

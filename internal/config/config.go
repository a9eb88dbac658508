package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/fmuoria/CV-Assessment-agent/internal/llm"
	"github.com/fmuoria/CV-Assessment-agent/internal/models"
)

// Config holds application configuration
type Config struct {
	Port string `json:"port"`

	LLMProvider         string `json:"llm_provider"`
	LLMModel            string `json:"llm_model"`
	GeminiAPIKey        string `json:"gemini_api_key"`
	OpenAIAPIKey        string `json:"openai_api_key"`
	GoogleCloudProject  string `json:"google_cloud_project"`
	GoogleCloudLocation string `json:"google_cloud_location"`

	GoogleCredentialsPath string `json:"google_credentials_path"`
	GmailCredentialsPath  string `json:"gmail_credentials_path"`
	GmailTokenPath        string `json:"gmail_token_path"`

	UploadsDir  string `json:"uploads_dir"`
	KeepUploads bool   `json:"keep_uploads"`
	MaxUploadMB int    `json:"max_upload_mb"`

	SessionSecret     string `json:"session_secret"`
	SessionTTLMinutes int    `json:"session_ttl_minutes"`

	AutomationWebhookURL string `json:"automation_webhook_url"`
	SandboxTimeoutMS     int    `json:"sandbox_timeout_ms"`

	Temperature        float32 `json:"temperature"`
	TopK               int32   `json:"top_k"`
	TopP               float32 `json:"top_p"`
	QuizMaxTokens      int32   `json:"quiz_max_tokens"`
	ChallengeMaxTokens int32   `json:"challenge_max_tokens"`

	Verbose bool `json:"verbose"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Port:                "8080",
		LLMProvider:         llm.ProviderGemini,
		GoogleCloudLocation: "us-central1",
		GmailTokenPath:      "token.json",
		UploadsDir:          "uploads",
		MaxUploadMB:         10,
		SessionSecret:       "change-me-in-production",
		SessionTTLMinutes:   120,
		SandboxTimeoutMS:    2000,
		Temperature:         0.7,
		TopK:                40,
		TopP:                0.95,
		QuizMaxTokens:       8192,
		ChallengeMaxTokens:  4096,
	}
}

// GetConfigPath returns the path to the configuration file
// On Windows: %APPDATA%/CVAssessmentAgent/config.json
// On Unix: ~/.config/CVAssessmentAgent/config.json
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		// Windows
		configDir = filepath.Join(os.Getenv("APPDATA"), "CVAssessmentAgent")
	} else {
		// Unix-like systems
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "CVAssessmentAgent")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load reads .env, the config file at the default path, then environment overrides
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFrom loads configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides fields with the environment variables that are set
func (c *Config) ApplyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.LLMProvider, "LLM_PROVIDER")
	setString(&c.LLMModel, "LLM_MODEL")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.GoogleCloudProject, "GOOGLE_CLOUD_PROJECT")
	setString(&c.GoogleCloudLocation, "GOOGLE_CLOUD_LOCATION")
	setString(&c.GoogleCredentialsPath, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&c.GmailCredentialsPath, "GMAIL_CREDENTIALS_PATH")
	setString(&c.UploadsDir, "UPLOADS_DIR")
	setString(&c.SessionSecret, "SESSION_SECRET")
	setString(&c.AutomationWebhookURL, "AUTOMATION_WEBHOOK_URL")
	setInt(&c.MaxUploadMB, "MAX_UPLOAD_MB")
	setInt(&c.SessionTTLMinutes, "SESSION_TTL_MINUTES")
	setInt(&c.SandboxTimeoutMS, "SANDBOX_TIMEOUT_MS")

	if v := os.Getenv("VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Verbose = b
		} else {
			log.Printf("Ignoring VERBOSE=%q: %v", v, err)
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = n
}

// Save saves the configuration to the default config path
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "", llm.ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("gemini_api_key is required for the gemini provider")
		}
	case llm.ProviderVertexAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("google_cloud_project is required")
		}
		if c.GoogleCloudLocation == "" {
			return fmt.Errorf("google_cloud_location is required")
		}
	case llm.ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai_api_key is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown llm_provider %q", c.LLMProvider)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive")
	}

	if c.GoogleCredentialsPath != "" {
		if _, err := os.Stat(c.GoogleCredentialsPath); err != nil {
			return fmt.Errorf("google credentials file not found: %w", err)
		}
	}

	if c.GmailCredentialsPath != "" {
		if _, err := os.Stat(c.GmailCredentialsPath); err != nil {
			return fmt.Errorf("gmail credentials file not found: %w", err)
		}
	}

	return nil
}

// ApplyToEnv applies configuration values to environment variables
func (c *Config) ApplyToEnv() {
	if c.GoogleCloudProject != "" {
		os.Setenv("GOOGLE_CLOUD_PROJECT", c.GoogleCloudProject)
	}
	if c.GoogleCloudLocation != "" {
		os.Setenv("GOOGLE_CLOUD_LOCATION", c.GoogleCloudLocation)
	}
	if c.GoogleCredentialsPath != "" {
		os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", c.GoogleCredentialsPath)
	}
}

// LLMSettings selects the generation back-end
func (c *Config) LLMSettings() llm.Settings {
	s := llm.Settings{
		Provider:  c.LLMProvider,
		Model:     c.LLMModel,
		ProjectID: c.GoogleCloudProject,
		Location:  c.GoogleCloudLocation,
	}
	switch c.LLMProvider {
	case llm.ProviderOpenAI:
		s.APIKey = c.OpenAIAPIKey
	default:
		s.APIKey = c.GeminiAPIKey
	}
	return s
}

// GenerationOptions returns the sampling settings of each variant
func (c *Config) GenerationOptions() map[models.Variant]llm.Options {
	base := llm.Options{Temperature: c.Temperature, TopK: c.TopK, TopP: c.TopP}

	quiz, challenge := base, base
	quiz.MaxOutputTokens = c.QuizMaxTokens
	challenge.MaxOutputTokens = c.ChallengeMaxTokens

	return map[models.Variant]llm.Options{
		models.VariantQuiz:      quiz,
		models.VariantChallenge: challenge,
	}
}

// MaxUploadBytes is the upload size limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// SessionTTL is how long an idle wizard session is kept
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// SandboxTimeout bounds one challenge code run
func (c *Config) SandboxTimeout() time.Duration {
	return time.Duration(c.SandboxTimeoutMS) * time.Millisecond
}

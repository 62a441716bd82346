package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	LLM struct {
		Model          string  `mapstructure:"model"`
		EmbeddingModel string  `mapstructure:"embeddingModel"`
		Temperature    float32 `mapstructure:"temperature"`
		APIKeyFile     string  `mapstructure:"apiKeyFile"`
	} `mapstructure:"llm"`
	RAG struct {
		ChunkSize      int `mapstructure:"chunkSize"`
		ChunkOverlap   int `mapstructure:"chunkOverlap"`
		TopK           int `mapstructure:"topK"`
		EmbedBatchSize int `mapstructure:"embedBatchSize"`
	} `mapstructure:"rag"`
	Data struct {
		ReviewsDir string `mapstructure:"reviewsDir"`
	} `mapstructure:"data"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}

// ResolveAPIKey returns the Gemini credential: secrets file first,
// GEMINI_API_KEY environment variable second. Empty means chat/RAG stays
// disabled while the static catalog and itinerary views keep working.
func (c *Config) ResolveAPIKey() string {
	if c.LLM.APIKeyFile != "" {
		if raw, err := os.ReadFile(c.LLM.APIKeyFile); err == nil {
			if key := strings.TrimSpace(string(raw)); key != "" {
				return key
			}
		}
	}
	return strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
}

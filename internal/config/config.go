package config

import (
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Assets      AssetsConfig
	Chunking    ChunkingConfig
	Embedding   EmbeddingConfig
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	Retrieval   RetrievalConfig
	Generator   GeneratorConfig
	Employees   EmployeesConfig
}

type AppConfig struct {
	Name string
	Env  string
}

type AssetsConfig struct {
	Path      string
	Documents []string
}

type ChunkingConfig struct {
	ChunkSize int `mapstructure:"chunk_size"`
	Overlap   int `mapstructure:"overlap"`
}

type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

type VectorStoreConfig struct {
	Provider string
	Milvus   MilvusConfig
}

type MilvusConfig struct {
	Address    string
	Username   string
	Password   string
	Collection string
	Database   string
	TLS        bool
	VectorSize int `mapstructure:"vector_size"`
}

type RetrievalConfig struct {
	TopK          int     `mapstructure:"top_k"`
	MinSimilarity float64 `mapstructure:"min_similarity"`
}

type GeneratorConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type EmployeesConfig struct {
	CSVPath string `mapstructure:"csv_path"`
}

var AppSettings *Config

// LoadConfig reads configuration from defaults, config file and environment.
func LoadConfig() error {
	viper.SetDefault("app.name", "FenmoAI Offer Letter Generator")
	viper.SetDefault("app.env", "development")

	viper.SetDefault("assets.path", "./assets")
	viper.SetDefault("assets.documents", []string{
		"HR Leave Policy.pdf",
		"HR Travel Policy.pdf",
		"HR Offer Letter.pdf",
	})

	viper.SetDefault("chunking.chunk_size", 1000)
	viper.SetDefault("chunking.overlap", 200)

	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-3-small")

	viper.SetDefault("vector_store.provider", "memory")
	viper.SetDefault("vector_store.milvus.address", "localhost:19530")
	viper.SetDefault("vector_store.milvus.collection", "fenmoai_documents")
	viper.SetDefault("vector_store.milvus.database", "default")
	viper.SetDefault("vector_store.milvus.tls", false)
	viper.SetDefault("vector_store.milvus.vector_size", 1536)

	viper.SetDefault("retrieval.top_k", 5)
	viper.SetDefault("retrieval.min_similarity", 0.05)

	viper.SetDefault("generator.model", "gpt-4o-mini")
	viper.SetDefault("generator.max_tokens", 2048)
	viper.SetDefault("generator.temperature", 0.7)

	viper.SetDefault("employees.csv_path", "./assets/Employee_List.csv")

	viper.SetEnvPrefix("FENMOAI")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus env cover the common case.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	// Secrets come from the environment only.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		viper.Set("embedding.api_key", key)
		viper.Set("generator.api_key", key)
	}
	if addr := os.Getenv("MILVUS_ADDRESS"); addr != "" {
		viper.Set("vector_store.provider", "milvus")
		viper.Set("vector_store.milvus.address", addr)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return err
	}

	AppSettings = config
	return nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *Config {
	return AppSettings
}

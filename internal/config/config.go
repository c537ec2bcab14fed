package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	AzureOpenAIAPIKey     string
	AzureOpenAIEndpoint   string
	AzureOpenAIAPIVersion string
	AzureOpenAIModel      string

	OllamaURL        string
	OllamaJudgeModel string
	OllamaEmbedModel string

	QdrantURL        string
	QdrantCollection string

	RAGTopK           int
	RAGFusionRRFK     int
	HistoryTokenLimit int
	TokenizerEncoding string

	TelemetryCSVPath string

	// Optional telemetry mirrors; empty disables them.
	PostgresDSN string
	NATSURL     string
	NATSSubject string

	EvalRequestsPerSecond float64
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		AzureOpenAIAPIKey:     mustEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIEndpoint:   mustEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIAPIVersion: mustEnv("AZURE_OPENAI_API_VERSION", "2024-12-01-preview"),
		AzureOpenAIModel:      mustEnv("AZURE_OPENAI_MODEL", "o4-mini"),

		OllamaURL:        mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaJudgeModel: mustEnv("OLLAMA_JUDGE_MODEL", "gemma3"),
		OllamaEmbedModel: mustEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),

		QdrantURL:        mustEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: mustEnv("QDRANT_COLLECTION", "horizon_lore"),

		RAGTopK:           mustEnvInt("RAG_TOP_K", 3),
		RAGFusionRRFK:     mustEnvInt("RAG_FUSION_RRF_K", 60),
		HistoryTokenLimit: mustEnvInt("HISTORY_TOKEN_LIMIT", 500),
		TokenizerEncoding: mustEnv("TOKENIZER_ENCODING", "o200k_base"),

		TelemetryCSVPath: mustEnv("TELEMETRY_CSV_PATH", "./data/telemetry.csv"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),
		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "telemetry.turns"),

		EvalRequestsPerSecond: mustEnvFloat("EVAL_REQUESTS_PER_SECOND", 0),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
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

func mustEnvFloat(key string, fallback float64) float64 {
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

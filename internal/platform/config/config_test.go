package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets all RISK_ environment variables for a clean test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "RISK_") {
			// Setenv first so the original value is restored after the test.
			t.Setenv(key, "")
			_ = os.Unsetenv(key)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != time.Minute {
		t.Errorf("Server.RequestTimeout = %v, want 1m", cfg.Server.RequestTimeout)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"*"}) {
		t.Errorf("Server.CORSOrigins = %v, want [*]", cfg.Server.CORSOrigins)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("Database.MaxConns = %d, want 10", cfg.Database.MaxConns)
	}
	if cfg.Cache.URL != "redis://localhost:6379" {
		t.Errorf("Cache.URL = %q, want redis://localhost:6379", cfg.Cache.URL)
	}
	if cfg.Progress.Backend != BackendSQLite {
		t.Errorf("Progress.Backend = %q, want sqlite", cfg.Progress.Backend)
	}
	if cfg.Progress.RedisTTL != 30*24*time.Hour {
		t.Errorf("Progress.RedisTTL = %v, want 720h", cfg.Progress.RedisTTL)
	}
	if cfg.AI.TokenBudget != 50000 {
		t.Errorf("AI.TokenBudget = %d, want 50000", cfg.AI.TokenBudget)
	}
	if cfg.AI.Ollama.Enabled || cfg.AI.Ollama.URL != "http://localhost:11434" {
		t.Errorf("AI.Ollama = %+v, want disabled at http://localhost:11434", cfg.AI.Ollama)
	}
	if cfg.Delivery.URL != "" {
		t.Errorf("Delivery.URL = %q, want empty", cfg.Delivery.URL)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv("RISK_SERVER_PORT", "9090")
	t.Setenv("RISK_SERVER_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RISK_PROGRESS_BACKEND", "Redis")
	t.Setenv("RISK_PROGRESS_REDIS_TTL", "2h")
	t.Setenv("RISK_AI_GOOGLE_API_KEY", "AIza-test")
	t.Setenv("RISK_AI_GOOGLE_MODEL", "gemini-2.5-pro")
	t.Setenv("RISK_AI_BUDGET_WINDOW", "1h")
	t.Setenv("RISK_DELIVERY_URL", "https://mail.example/send")
	t.Setenv("RISK_QUESTION_BANK_DIR", "/etc/risk/banks")
	t.Setenv("RISK_EXECUTIVE_CLASSIFIER", "absolute")
	t.Setenv("RISK_NFP_DENOMINATOR", "visible_only")
	t.Setenv("RISK_LOG_FORMAT", "TEXT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	if cfg.Progress.Backend != BackendRedis {
		t.Errorf("Progress.Backend = %q, want redis", cfg.Progress.Backend)
	}
	if cfg.Progress.RedisTTL != 2*time.Hour {
		t.Errorf("Progress.RedisTTL = %v, want 2h", cfg.Progress.RedisTTL)
	}
	if cfg.AI.Google.APIKey != "AIza-test" || cfg.AI.Google.Model != "gemini-2.5-pro" {
		t.Errorf("AI.Google = %+v", cfg.AI.Google)
	}
	if cfg.AI.BudgetWindow != time.Hour {
		t.Errorf("AI.BudgetWindow = %v, want 1h", cfg.AI.BudgetWindow)
	}
	if cfg.QuestionBank.Executive.Classifier != "absolute" || cfg.QuestionBank.NFP.Denominator != "visible_only" {
		t.Errorf("QuestionBank = %+v", cfg.QuestionBank)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want text", cfg.Log.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestEnvDuration(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want time.Duration
	}{
		{"unset", "", 5 * time.Second},
		{"valid", "90s", 90 * time.Second},
		{"invalid", "soon", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RISK_TEST_DURATION", tt.val)
			if got := envDuration("RISK_TEST_DURATION", 5*time.Second); got != tt.want {
				t.Errorf("envDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventsEnabledParsing(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want bool
	}{
		{"true", "true", true},
		{"TRUE", "TRUE", true},
		{"1", "1", true},
		{"false", "false", false},
		{"empty", "", false},
		{"invalid", "notabool", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.val != "" {
				t.Setenv("RISK_EVENTS_ENABLED", tt.val)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Events.Enabled != tt.want {
				t.Errorf("Events.Enabled = %v, want %v", cfg.Events.Enabled, tt.want)
			}
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "RISK_SERVER_PORT"},
		{"backend", func(c *Config) { c.Progress.Backend = "mongo" }, "RISK_PROGRESS_BACKEND"},
		{"sqlite path", func(c *Config) { c.SQLite.Path = "" }, "RISK_SQLITE_PATH"},
		{"postgres url", func(c *Config) {
			c.Progress.Backend = BackendPostgres
			c.Database.URL = ""
		}, "RISK_DATABASE_URL"},
		{"events need database", func(c *Config) {
			c.Events.Enabled = true
			c.Database.URL = ""
		}, "RISK_EVENTS_ENABLED"},
		{"delivery url", func(c *Config) { c.Delivery.URL = "mailto:ops@example.com" }, "RISK_DELIVERY_URL"},
		{"classifier", func(c *Config) { c.QuestionBank.NFP.Classifier = "weighted" }, "RISK_NFP_CLASSIFIER"},
		{"denominator", func(c *Config) { c.QuestionBank.Executive.Denominator = "answered" }, "RISK_EXECUTIVE_DENOMINATOR"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "RISK_LOG_LEVEL"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "RISK_LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want it to mention %s", err, tt.want)
			}
		})
	}
}

func TestHasAIProvider(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		want   bool
	}{
		{"none", "", "", false},
		{"Google", "RISK_AI_GOOGLE_API_KEY", "AIza-test", true},
		{"OpenAI", "RISK_AI_OPENAI_API_KEY", "sk-test", true},
		{"DeepSeek", "RISK_AI_DEEPSEEK_API_KEY", "sk-ds-test", true},
		{"Anthropic", "RISK_AI_ANTHROPIC_API_KEY", "sk-ant-test", true},
		{"OpenRouter", "RISK_AI_OPENROUTER_API_KEY", "sk-or-test", true},
		{"Ollama", "RISK_AI_OLLAMA_ENABLED", "true", true},
		{"Ollama URL alone", "RISK_AI_OLLAMA_URL", "http://gpu-box:11434", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.envKey != "" {
				t.Setenv(tt.envKey, tt.envVal)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.HasAIProvider() != tt.want {
				t.Errorf("HasAIProvider() = %v, want %v", cfg.HasAIProvider(), tt.want)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "127.0.0.1", Port: 8081}}
	if got := cfg.Addr(); got != "127.0.0.1:8081" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8081", got)
	}
}

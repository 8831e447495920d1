package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/augur/data/predictions.db"
	}
	if cfg.Sources.TimeoutSeconds == 0 {
		cfg.Sources.TimeoutSeconds = 10
	}
	if cfg.Sources.PerFetcherLimit == 0 {
		cfg.Sources.PerFetcherLimit = 20
	}
	if cfg.Sources.News.BaseURL == "" {
		cfg.Sources.News.BaseURL = "https://newsapi.org/v2"
	}
	if cfg.Sources.RSS.Feeds == nil {
		cfg.Sources.RSS.Feeds = []string{
			"https://feeds.reuters.com/reuters/businessNews",
			"https://feeds.bloomberg.com/markets/news.rss",
		}
	}
	if cfg.Aggregate.MaxSources == 0 {
		cfg.Aggregate.MaxSources = 12
	}
	if cfg.Aggregate.MinTitleLength == 0 {
		cfg.Aggregate.MinTitleLength = 15
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama3.1:8b"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 60
	}
}

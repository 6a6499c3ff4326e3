package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://127.0.0.1:0",
			ReleaseFeedURL: "http://127.0.0.1:0/rss/crates",
			UserAgent:      "cratuity-test/1.0",
			HTTPTimeout:    5 * time.Second,
		},
		Search: SearchConfig{
			ItemsPerPage: 5,
			BatchFactor:  10,
			DefaultSort:  "relevance",
		},
		UI: UIConfig{
			TickInterval:  10 * time.Millisecond,
			PollTimeout:   50 * time.Millisecond,
			ToastDuration: 2500 * time.Millisecond,
			Colors:        defaultConfig().UI.Colors,
		},
		Logging: LoggingConfig{Level: "off"},
		Opener:  OpenerConfig{Command: "true"},
	}
}

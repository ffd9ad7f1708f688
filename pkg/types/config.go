// Package types provides configuration types for the journal backend.
package types

import "time"

// AnalyticsConfig holds tunables for the analytics and strategy-insight engines
type AnalyticsConfig struct {
	MinimumTradesForInsights     int     `json:"minimumTradesForInsights" mapstructure:"minimum_trades_for_insights"`
	MinimumTradesForPatterns     int     `json:"minimumTradesForPatterns" mapstructure:"minimum_trades_for_patterns"`
	ConfidenceThreshold          float64 `json:"confidenceThreshold" mapstructure:"confidence_threshold"`                    // 0-100
	PatternSignificanceThreshold float64 `json:"patternSignificanceThreshold" mapstructure:"pattern_significance_threshold"` // 0-1
	CorrelationThreshold         float64 `json:"correlationThreshold" mapstructure:"correlation_threshold"`                  // 0-1
}

// DefaultAnalyticsConfig returns the default analytics tunables
func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		MinimumTradesForInsights:     20,
		MinimumTradesForPatterns:     20,
		ConfidenceThreshold:          70,
		PatternSignificanceThreshold: 0.3,
		CorrelationThreshold:         0.5,
	}
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `json:"host" mapstructure:"host"`
	Port           int           `json:"port" mapstructure:"port"`
	WebSocketPath  string        `json:"websocketPath" mapstructure:"websocket_path"`
	ReadTimeout    time.Duration `json:"readTimeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `json:"writeTimeout" mapstructure:"write_timeout"`
	EnableMetrics  bool          `json:"enableMetrics" mapstructure:"enable_metrics"`
	MaxConnections int           `json:"maxConnections" mapstructure:"max_connections"`
}

// DefaultServerConfig returns sensible server defaults
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:           "localhost",
		Port:           8090,
		WebSocketPath:  "/ws",
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		EnableMetrics:  true,
		MaxConnections: 256,
	}
}

// StoreConfig represents journal store configuration
type StoreConfig struct {
	DataDir string `json:"dataDir" mapstructure:"data_dir"`
}

package conf

import "time"

// Bootstrap is the top-level configuration scanned from the config file.
type Bootstrap struct {
	Server     *Server     `json:"server"`
	Data       *Data       `json:"data"`
	Moderation *Moderation `json:"moderation"`
	Worker     *Worker     `json:"worker"`
}

// Server holds transport configuration.
type Server struct {
	HTTP HTTPServer `json:"http"`
}

// HTTPServer holds the HTTP listener configuration.
type HTTPServer struct {
	Network string `json:"network"`
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

// Data holds database and cache configuration.
type Data struct {
	Database Database `json:"database"`
	Redis    Redis    `json:"redis"`
}

// Database holds Postgres configuration.
type Database struct {
	Driver     string `json:"driver"`
	Source     string `json:"source"`
	Migrations string `json:"migrations"`
	Pool       Pool   `json:"pool"`
}

// Pool holds connection pool settings. Lifetime values are minutes.
type Pool struct {
	MaxOpenConns    int32 `json:"max_open_conns"`
	MinIdleConns    int32 `json:"min_idle_conns"`
	MaxConnLifetime int   `json:"max_conn_lifetime"`
	MaxConnIdleTime int   `json:"max_conn_idle_time"`
}

// Redis holds Redis connection configuration.
type Redis struct {
	Network      string `json:"network"`
	Addr         string `json:"addr"`
	ReadTimeout  string `json:"read_timeout"`
	WriteTimeout string `json:"write_timeout"`
}

// Moderation holds the provider endpoints. Primary is tried first, the
// fallback receives the same request shape when the primary fails.
type Moderation struct {
	Primary  Provider `json:"primary"`
	Fallback Provider `json:"fallback"`
}

// Provider is a single moderation provider endpoint.
type Provider struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Timeout string `json:"timeout"`
}

// Worker holds executor pool and reprocessor configuration.
type Worker struct {
	Concurrency   int    `json:"concurrency"`
	MaxAttempts   int    `json:"max_attempts"`
	PollInterval  string `json:"poll_interval"`
	SweepInterval string `json:"sweep_interval"`
}

// ParseDuration parses s, falling back to def when s is empty or invalid.
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

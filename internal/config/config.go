// Package config provides configuration structures and loading for goapriori.
package config

// Config represents the complete application configuration.
type Config struct {
	Source  DatabaseConfig       `yaml:"source" mapstructure:"source"`
	Mining  MiningConfig         `yaml:"mining" mapstructure:"mining"`
	Jobs    map[string]JobConfig `yaml:"jobs" mapstructure:"jobs"`
	Load    LoadConfig           `yaml:"load" mapstructure:"load"`
	Output  OutputConfig         `yaml:"output" mapstructure:"output"`
	Metrics MetricsConfig        `yaml:"metrics" mapstructure:"metrics"`
	Logging LoggingConfig        `yaml:"logging" mapstructure:"logging"`
}

// Supported source drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported count engines.
const (
	EngineSQL  = "sql"
	EngineGorm = "gorm"
)

// DatabaseConfig represents the connection to the database holding the dataset.
type DatabaseConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"` // mysql, postgres, sqlite
	Path               string `yaml:"path" mapstructure:"path"`     // sqlite only
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// MiningConfig holds the thresholds and count engine settings.
type MiningConfig struct {
	Support    float64 `yaml:"support" mapstructure:"support"`
	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`
	CacheSize  int     `yaml:"cache_size" mapstructure:"cache_size"` // 0 disables the count cache
	Engine     string  `yaml:"engine" mapstructure:"engine"`         // sql or gorm
}

// JobConfig names one mining job: a table and the categorical columns to mine.
type JobConfig struct {
	Table      string        `yaml:"table" mapstructure:"table"`
	Categories []string      `yaml:"categories" mapstructure:"categories"`
	Mining     *MiningConfig `yaml:"mining,omitempty" mapstructure:"mining"`
}

// LoadConfig represents CSV import settings.
type LoadConfig struct {
	BatchSize      int  `yaml:"batch_size" mapstructure:"batch_size"`
	SkipIncomplete bool `yaml:"skip_incomplete" mapstructure:"skip_incomplete"`
}

// OutputConfig controls how mining results are rendered.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // table or json
	File   string `yaml:"file" mapstructure:"file"`     // empty means stdout
	Color  bool   `yaml:"color" mapstructure:"color"`
}

// MetricsConfig represents Prometheus textfile export settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: DatabaseConfig{
			Driver:             DriverMySQL,
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Mining: MiningConfig{
			Support:    0.07,
			Confidence: 0.5,
			CacheSize:  4096,
			Engine:     EngineSQL,
		},
		Load: LoadConfig{
			BatchSize:      500,
			SkipIncomplete: true,
		},
		Output: OutputConfig{
			Format: "table",
			Color:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// GetJobMining returns the mining config for a job by name, falling back to global if not set.
func (c *Config) GetJobMining(jobName string) MiningConfig {
	job, err := c.GetJob(jobName)
	if err != nil {
		return c.Mining
	}
	return job.GetJobMining(c.Mining)
}

// GetJobMining returns the mining config for a job, falling back to global if not set.
func (jc *JobConfig) GetJobMining(global MiningConfig) MiningConfig {
	if jc.Mining == nil {
		return global
	}

	// Merge job-specific with global defaults
	result := global
	if jc.Mining.Support > 0 {
		result.Support = jc.Mining.Support
	}
	if jc.Mining.Confidence > 0 {
		result.Confidence = jc.Mining.Confidence
	}
	if jc.Mining.CacheSize > 0 {
		result.CacheSize = jc.Mining.CacheSize
	}
	if jc.Mining.Engine != "" {
		result.Engine = jc.Mining.Engine
	}
	return result
}

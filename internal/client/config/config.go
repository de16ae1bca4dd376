package config

import (
	"os"

	"github.com/dmitrijs2005/tubeboost/internal/common"
)

// Config holds runtime settings for the tubeboost terminal client.
//
// Fields:
//   - APIURL: backend base URL, before normalization by client.ResolveBaseURL.
//   - Origin: URL the client is served from; an https origin upgrades APIURL.
//   - DBPath: SQLite file holding the session and device cookie.
//   - LogLevel, LogBackend: see logging.New.
type Config struct {
	APIURL     string `json:"api_url" yaml:"api_url"`
	Origin     string `json:"origin" yaml:"origin"`
	DBPath     string `json:"db_path" yaml:"db_path"`
	LogLevel   string `json:"log_level" yaml:"log_level"`
	LogBackend string `json:"log_backend" yaml:"log_backend"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = common.DefaultAPIURL
	c.Origin = ""
	c.DBPath = "tubeboost.db"
	c.LogLevel = "info"
	c.LogBackend = "slog"
}

// LoadConfig builds the configuration from the process arguments and
// environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.LookupEnv)
}

// Load applies defaults, then the config file named by -c/-config, then the
// environment, then flags. Later sources take precedence over earlier ones.
func Load(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg, lookupEnv)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

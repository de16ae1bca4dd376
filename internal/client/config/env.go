package config

const (
	EnvAPIURL = "API_URL"
	EnvOrigin = "CLIENT_ORIGIN"
)

// parseEnv overlays cfg with non-empty environment values.
func parseEnv(cfg *Config, lookupEnv func(string) (string, bool)) {
	if lookupEnv == nil {
		return
	}
	if v, ok := lookupEnv(EnvAPIURL); ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := lookupEnv(EnvOrigin); ok && v != "" {
		cfg.Origin = v
	}
}

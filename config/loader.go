package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	configReloadSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "router_monitor",
		Name:      "config_last_reload_successful",
		Help:      "Router monitor config loaded successfully.",
	})

	configReloadSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "router_monitor",
		Name:      "config_last_reload_success_timestamp_seconds",
		Help:      "Timestamp of the last successful configuration reload.",
	})
)

func init() {
	prometheus.MustRegister(configReloadSuccess)
	prometheus.MustRegister(configReloadSeconds)
}

// Environment variables that override backend credentials from the config file.
const (
	EnvToken    = "ISP_API_TOKEN"
	EnvUsername = "ISP_API_USERNAME"
	EnvPassword = "ISP_API_PASSWORD"
	EnvURL      = "ISP_API_URL"
)

type SafeConfig struct {
	sync.RWMutex
	configFile string
	envFile    string
	c          *Config
}

func (sc *SafeConfig) Get() *Config {
	sc.RLock()
	defer sc.RUnlock()
	return sc.c
}

// New creates a SafeConfig. envFile is an optional dotenv file whose values take
// precedence over the process environment.
func New(configFile string, envFile string) *SafeConfig {
	c := DefaultConfig()
	return &SafeConfig{
		c:          &c,
		configFile: configFile,
		envFile:    envFile,
	}
}

func (sc *SafeConfig) LoadConfig() (err error) {
	c := &Config{}
	defer func() {
		if err != nil {
			configReloadSuccess.Set(0)
		} else {
			configReloadSuccess.Set(1)
			configReloadSeconds.SetToCurrentTime()
		}
	}()

	yamlReader, err := os.Open(sc.configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	defer yamlReader.Close()
	decoder := yaml.NewDecoder(yamlReader, yaml.DisallowUnknownField())

	err = decoder.Decode(c)
	if err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	env, err := sc.environment()
	if err != nil {
		return err
	}
	ApplyEnv(c, env)

	err = c.Validate()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	sc.Lock()
	sc.c = c
	defer sc.Unlock()

	return nil
}

func (sc *SafeConfig) environment() (map[string]string, error) {
	env := map[string]string{}
	for _, key := range []string{EnvToken, EnvUsername, EnvPassword, EnvURL} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	if sc.envFile == "" {
		return env, nil
	}

	values, err := godotenv.Read(sc.envFile)
	if err != nil {
		if os.IsNotExist(err) {
			return env, nil
		}
		return nil, fmt.Errorf("error reading env file: %w", err)
	}
	for k, v := range values {
		env[k] = v
	}
	return env, nil
}

// ApplyEnv overrides backend settings with non-empty environment values.
func ApplyEnv(c *Config, env map[string]string) {
	if v := env[EnvURL]; v != "" {
		c.Backend.URL = v
	}
	if v := env[EnvToken]; v != "" {
		c.Backend.Token = v
	}
	if v := env[EnvUsername]; v != "" {
		c.Backend.Username = v
	}
	if v := env[EnvPassword]; v != "" {
		c.Backend.Password = v
	}
}

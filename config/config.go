package config

import (
	"errors"
	"time"
)

type Config struct {
	Listen      string  `yaml:"listen"`
	MetricsPath string  `yaml:"metrics_path"`
	RouterID    string  `yaml:"router_id"`
	Mock        bool    `yaml:"mock"`
	Backend     Backend `yaml:"backend"`
	Polling     Polling `yaml:"polling"`
}

func DefaultConfig() Config {
	return Config{
		Listen:      ":9778",
		MetricsPath: "/metrics",
		Backend:     DefaultBackend(),
		Polling:     DefaultPolling(),
	}
}

func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	*c = DefaultConfig()

	type plain Config
	if err := unmarshal((*plain)(c)); err != nil {
		return err
	}

	return nil
}

func (c *Config) Validate() error {
	if !c.Mock && c.Backend.URL == "" {
		return errors.New("backend.url is required")
	}
	if c.Polling.ResourcesInterval <= 0 || c.Polling.TrafficInterval <= 0 {
		return errors.New("polling intervals must be positive")
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend.timeout must be positive")
	}
	return nil
}

type Backend struct {
	URL                string  `yaml:"url"`
	Token              string  `yaml:"token"`
	Username           string  `yaml:"username"`
	Password           string  `yaml:"password"`
	LoginPath          string  `yaml:"login_path"`
	Timeout            float64 `yaml:"timeout"`
	InsecureSkipVerify bool    `yaml:"insecure_skip_verify"`
}

func DefaultBackend() Backend {
	return Backend{
		LoginPath: "/auth/login",
		Timeout:   10,
	}
}

func (b *Backend) UnmarshalYAML(unmarshal func(interface{}) error) error {
	*b = DefaultBackend()

	type plain Backend
	if err := unmarshal((*plain)(b)); err != nil {
		return err
	}

	return nil
}

func (b Backend) RequestTimeout() time.Duration {
	return seconds(b.Timeout)
}

// Polling intervals are in seconds.
type Polling struct {
	ResourcesInterval float64 `yaml:"resources_interval"`
	TrafficInterval   float64 `yaml:"traffic_interval"`
}

func DefaultPolling() Polling {
	return Polling{
		ResourcesInterval: 30,
		TrafficInterval:   3,
	}
}

func (p *Polling) UnmarshalYAML(unmarshal func(interface{}) error) error {
	*p = DefaultPolling()

	type plain Polling
	if err := unmarshal((*plain)(p)); err != nil {
		return err
	}

	return nil
}

func (p Polling) Resources() time.Duration {
	return seconds(p.ResourcesInterval)
}

func (p Polling) Traffic() time.Duration {
	return seconds(p.TrafficInterval)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

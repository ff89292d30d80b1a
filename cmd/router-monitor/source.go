//go:build !dev

package main

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/weperezh01/router-telemetry/api"
	"github.com/weperezh01/router-telemetry/cache"
	"github.com/weperezh01/router-telemetry/config"
	"github.com/weperezh01/router-telemetry/monitor"
)

func newSource(cfg *config.Config, auth *cache.Cache, log zerolog.Logger) (monitor.Source, error) {
	if cfg.Mock {
		return nil, errors.New("mock telemetry is only available in builds with the dev tag")
	}
	return api.New(cfg.Backend, auth, log), nil
}

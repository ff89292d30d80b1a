//go:build dev

package main

import (
	"github.com/rs/zerolog"
	"github.com/weperezh01/router-telemetry/api"
	"github.com/weperezh01/router-telemetry/cache"
	"github.com/weperezh01/router-telemetry/config"
	"github.com/weperezh01/router-telemetry/mock"
	"github.com/weperezh01/router-telemetry/monitor"
)

func newSource(cfg *config.Config, auth *cache.Cache, log zerolog.Logger) (monitor.Source, error) {
	if cfg.Mock {
		log.Warn().Msg("serving synthetic telemetry from the mock generator")
		return mock.NewSource(), nil
	}
	return api.New(cfg.Backend, auth, log), nil
}

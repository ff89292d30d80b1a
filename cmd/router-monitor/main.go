package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	"github.com/rs/zerolog"
	"github.com/weperezh01/router-telemetry/cache"
	"github.com/weperezh01/router-telemetry/collector"
	"github.com/weperezh01/router-telemetry/config"
	"github.com/weperezh01/router-telemetry/display"
	"github.com/weperezh01/router-telemetry/model"
	"github.com/weperezh01/router-telemetry/monitor"
	"github.com/weperezh01/router-telemetry/poller"
)

var (
	sc        *config.SafeConfig
	authCache = cache.New()
	log       zerolog.Logger
	current   = &screen{}
)

// screen holds the monitor of the router screen currently loaded. A config reload
// loads a new screen, like navigating away and back.
type screen struct {
	mu sync.Mutex
	m  *monitor.Monitor
}

func (s *screen) get() *monitor.Monitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m
}

func (s *screen) replace(m *monitor.Monitor, timeout time.Duration) {
	s.mu.Lock()
	old := s.m
	s.m = m
	s.mu.Unlock()

	wasFocused := old == nil || old.Focused()
	if old != nil {
		old.OnScreenBlurred()
	}
	if wasFocused {
		focus(m, timeout)
	}
}

func focus(m *monitor.Monitor, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := m.OnScreenFocused(ctx); err != nil {
		log.Error().Err(err).Msg("could not start polling")
	}
}

func main() {
	// parse command line args
	configFile := flag.String("config.file", "router-monitor.yml", "path to the config file")
	envFile := flag.String("env.file", ".env", "optional dotenv file with backend credentials")
	routerID := flag.String("router", "", "router id, overrides router_id from the config")
	debug := flag.Bool("debug", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Print("router-monitor"))
		return
	}

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
	log.Info().Str("version", version.Version).Str("revision", version.Revision).Msg("starting router-monitor")

	// inital config load
	sc = config.New(*configFile, *envFile)
	err := sc.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}

	cfg := sc.Get()
	m, err := newMonitor(cfg, *routerID)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating monitor")
	}
	current.replace(m, cfg.Backend.RequestTimeout())

	// setup config reload
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	reloadRequest := make(chan chan error)
	go func() {
		for {
			var err error
			select {
			case <-hup:
				log.Debug().Msg("config reload triggered by SIGHUP")
				err = reload(*routerID)
			case reloadResult := <-reloadRequest:
				log.Debug().Msg("config reload triggered by API")
				err = reload(*routerID)
				reloadResult <- err
			}
			if err != nil {
				log.Error().Err(err).Msg("error reloading config")
			} else {
				log.Info().Msg("reloaded config file")
			}
		}
	}()

	// SIGUSR1 toggles screen visibility
	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	go func() {
		for range usr1 {
			m := current.get()
			if m.Focused() {
				m.OnScreenBlurred()
			} else {
				focus(m, sc.Get().Backend.RequestTimeout())
			}
		}
	}()

	router := mux.NewRouter()
	router.Handle(cfg.MetricsPath, promhttp.Handler())
	router.HandleFunc("/router/metrics", handleRouterMetrics).Methods(http.MethodGet)
	router.HandleFunc("/view", handleView).Methods(http.MethodGet)
	router.HandleFunc("/-/focus", handleFocus).Methods(http.MethodPost)
	router.HandleFunc("/-/blur", handleBlur).Methods(http.MethodPost)
	router.HandleFunc("/-/reload", func(w http.ResponseWriter, r *http.Request) {
		reloadResult := make(chan error)
		reloadRequest <- reloadResult
		err := <-reloadResult
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to reload config: %s", err), http.StatusInternalServerError)
		}
	}).Methods(http.MethodPost)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info().Msg("shutting down")
		current.get().OnScreenBlurred()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Info().Str("listen", cfg.Listen).Str("metrics_path", cfg.MetricsPath).Msg("starting http server")

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("error starting http server")
	}
}

func newMonitor(cfg *config.Config, routerFlag string) (*monitor.Monitor, error) {
	id := cfg.RouterID
	if routerFlag != "" {
		id = routerFlag
	}
	if id == "" {
		return nil, errors.New("no router id, set router_id or -router")
	}

	source, err := newSource(cfg, authCache, log)
	if err != nil {
		return nil, err
	}

	return monitor.New(model.ID(id), source, monitor.Options{
		ResourcesInterval: cfg.Polling.Resources(),
		TrafficInterval:   cfg.Polling.Traffic(),
		RequestTimeout:    cfg.Backend.RequestTimeout(),
		Logger:            log,
	}), nil
}

func reload(routerFlag string) error {
	if err := sc.LoadConfig(); err != nil {
		return err
	}
	cfg := sc.Get()
	m, err := newMonitor(cfg, routerFlag)
	if err != nil {
		return err
	}
	current.replace(m, cfg.Backend.RequestTimeout())
	return nil
}

func handleView(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(display.Build(current.get()))
	if err != nil {
		log.Error().Err(err).Msg("error encoding view")
	}
}

func handleFocus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), sc.Get().Backend.RequestTimeout())
	defer cancel()
	if err := current.get().OnScreenFocused(ctx); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleBlur(w http.ResponseWriter, r *http.Request) {
	current.get().OnScreenBlurred()
	w.WriteHeader(http.StatusNoContent)
}

func handleRouterMetrics(w http.ResponseWriter, r *http.Request) {
	m := current.get()
	registry := prometheus.NewRegistry()
	monitorRegistry := prometheus.WrapRegistererWithPrefix("router_monitor_", registry)

	if snap, ok := m.Snapshot(); ok {
		collector.AddMetricsRouter(prometheus.WrapRegistererWithPrefix("router_", monitorRegistry), snap, m.Rows())
	}
	collector.AddMetricsPoll(monitorRegistry, map[string]poller.PollState{
		"resources": m.ResourceState(),
		"traffic":   m.TrafficState(),
	})

	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	h.ServeHTTP(w, r)
}

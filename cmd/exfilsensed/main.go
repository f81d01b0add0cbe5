package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sri5hat/aptdetection/internal/config"
	"github.com/sri5hat/aptdetection/internal/feed"
	"github.com/sri5hat/aptdetection/internal/handler"
	"github.com/sri5hat/aptdetection/internal/hub"
	"github.com/sri5hat/aptdetection/internal/logger"
	"github.com/sri5hat/aptdetection/internal/narrative"
	"github.com/sri5hat/aptdetection/internal/report"
	"github.com/sri5hat/aptdetection/internal/scoring"
	"github.com/sri5hat/aptdetection/internal/sink"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file (default: search ./config, .)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "exfilsensed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		OutFile: cfg.Logging.File,
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting exfilsensed", zap.String("addr", cfg.Server.Addr))
	if cfg.Ingest.Token == "" {
		log.Warn("no ingestion token configured, POST /api/alerts/ingest will refuse requests")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eventHub := hub.New(log)
	generator := feed.NewGenerator(feed.Config{
		Interval:      cfg.Feed.Interval,
		ScenarioEvery: cfg.Feed.ScenarioEvery,
		ResetEvery:    cfg.Feed.ResetEvery,
	}, eventHub, log)
	defer generator.Stop()

	var narrator narrative.Narrator = narrative.Disabled{}
	if cfg.Narrative.URL != "" {
		client, err := narrative.NewClient(narrative.ClientConfig{
			URL:     cfg.Narrative.URL,
			Timeout: cfg.Narrative.Timeout,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to build narrative client: %w", err)
		}
		narrator = client
		log.Info("narrative service enabled", zap.String("url", cfg.Narrative.URL))
	}

	sinks, err := buildSinks(ctx, cfg, log)
	if err != nil {
		return err
	}
	subs := sink.Attach(eventHub, sinks, log)
	defer func() {
		for _, sub := range subs {
			eventHub.Unsubscribe(sub)
		}
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				log.Warn("failed to close sink", zap.String("sink", s.Name()), zap.Error(err))
			}
		}
	}()

	weights := scoring.Weights{
		RuleBased:            cfg.Scoring.RuleBasedWeight,
		AnomalyDetection:     cfg.Scoring.AnomalyDetectionWeight,
		SupervisedClassifier: cfg.Scoring.SupervisedClassifierWeight,
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.Deps{
		Log:         log,
		Hub:         eventHub,
		Feed:        generator,
		IngestToken: cfg.Ingest.Token,
		Weights:     weights,
		Narrator:    narrator,
		Reports:     report.NewBuilder(narrator, log),
	})

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout stays at the configured value (0 by default) so
		// long-lived SSE connections are not cut off mid stream.
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("exfilsensed stopped")
	return nil
}

func buildSinks(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]sink.Sink, error) {
	var sinks []sink.Sink

	if cfg.Sinks.File.Enabled {
		fs, err := sink.NewFileSink(cfg.Sinks.File.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file sink: %w", err)
		}
		log.Info("file sink enabled", zap.String("path", cfg.Sinks.File.Path))
		sinks = append(sinks, fs)
	}

	if cfg.Sinks.HTTP.Enabled {
		hs, err := sink.NewHTTPSink(sink.HTTPSinkConfig{
			URL:     cfg.Sinks.HTTP.URL,
			Timeout: cfg.Sinks.HTTP.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build http sink: %w", err)
		}
		log.Info("http sink enabled", zap.String("url", cfg.Sinks.HTTP.URL))
		sinks = append(sinks, hs)
	}

	if cfg.Sinks.Redis.Enabled {
		rs, err := sink.NewRedisSink(ctx, sink.RedisSinkConfig{
			Addr:     cfg.Sinks.Redis.Addr,
			Password: cfg.Sinks.Redis.Password,
			DB:       cfg.Sinks.Redis.DB,
			Channel:  cfg.Sinks.Redis.Channel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis sink: %w", err)
		}
		log.Info("redis sink enabled", zap.String("addr", cfg.Sinks.Redis.Addr))
		sinks = append(sinks, rs)
	}

	return sinks, nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai/gemini"
	"github.com/spigell/interview-coach/internal/coach"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/metrics"
	"github.com/spigell/interview-coach/internal/secrets"
)

const (
	backendHTTP   = "http"
	backendGemini = "gemini"

	geminiKeyEnv = "GEMINI_API_KEY"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a mock interview",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("job-role", "r", "", "job role to interview for")
	runCmd.Flags().StringP("resume", "f", "", "path to the resume PDF")
	runCmd.Flags().StringP("backend", "b", "", "interview backend: http or gemini")

	viper.BindPFlag("job-role", runCmd.Flags().Lookup("job-role"))
	viper.BindPFlag("resume", runCmd.Flags().Lookup("resume"))
	viper.BindPFlag("backend", runCmd.Flags().Lookup("backend"))
}

// run is the main command for the cli.
func run(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		File:  viper.GetString("log-file"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the interview-coach", zap.String("version", version), zap.String("backend", config.Backend))

	recorder := metrics.NewPrometheusRecorder()
	if config.MetricsListen != "" {
		shutdown := serveMetrics(config.MetricsListen, recorder, logger)
		defer shutdown()
	}

	backend, err := newBackend(ctx, config, logger)
	if err != nil {
		logger.Fatal(
			"building interview backend",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or gemini.api-key-file for the gemini backend"),
		)
	}

	s := &session{
		controller:    interview.NewController(metrics.Instrument(backend, recorder), logger),
		term:          promptTerminal{},
		out:           os.Stdout,
		logger:        logger,
		jobRole:       config.JobRole,
		resumePath:    config.Resume,
		transcriptDir: config.TranscriptDir,
	}

	if err := s.run(ctx); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "interview closed"))
}

func newBackend(ctx context.Context, config *Config, log *zap.Logger) (interview.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(config.Backend)) {
	case "", backendHTTP:
		client := coach.New(log, config.HTTP.APIURL, config.HTTP.Timeout)
		if ua := strings.TrimSpace(config.HTTP.UserAgent); ua != "" {
			client.UserAgent = ua
		}
		return client, nil

	case backendGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: config.Gemini.APIKeyFile,
			Env:  geminiKeyEnv,
		})
		if err != nil {
			return nil, err
		}

		genLogger := logger.WithAIFields(log, backendGemini, config.Gemini.Model).
			With(zap.Int("ai_retry_attempts", config.Gemini.MaxRetries))

		generator, err := gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, config.Gemini.MaxRetries, genLogger)
		if err != nil {
			return nil, err
		}

		c := gemini.NewCoach(generator, log)
		if config.Gemini.MaxLogLength > 0 {
			c.MaxLogLength = config.Gemini.MaxLogLength
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", config.Backend)
	}
}

func serveMetrics(addr string, recorder *metrics.PrometheusRecorder, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/meenmo/moschedule/cmd/schedgen/internal/appconfig"
	"github.com/meenmo/moschedule/holidays"
	"github.com/meenmo/moschedule/metrics"
	genconfig "github.com/meenmo/moschedule/schedule/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app holds what every subcommand needs once the config is loaded.
type app struct {
	configPath string

	cfg       *appconfig.Config
	logger    *zap.Logger
	promReg   *prometheus.Registry
	metrics   *metrics.Metrics
	calendars *holidays.Registry

	stdin          io.Reader
	stdout, stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "schedgen",
		Short:         "Business-day adjusted periodic schedule generator",
		Long:          "Generate coupon-style date schedules on holiday calendars, roll dates, or serve both over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (default: search ./schedgen.yaml, ~/.schedgen, /etc/schedgen)")

	rootCmd.AddCommand(a.generateCmd(), a.rollCmd(), a.calendarsCmd(), a.serveCmd())
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) setup() error {
	cfg, err := appconfig.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Log.File != "" {
		a.logger = initFileLogger(cfg.Log.File, cfg.Log.Level)
	} else {
		a.logger = initLogger(a.stderr, cfg.Log.Level)
	}

	genconfig.SetConfig(cfg.GeneratorSettings())

	a.promReg = prometheus.NewRegistry()
	a.promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.promReg)
	a.calendars = holidays.NewRegistry(a.logger, a.metrics)

	for _, path := range cfg.Calendar.HolidayFiles {
		src, err := holidays.LoadFile(path)
		if err != nil {
			return err
		}
		a.calendars.Register(src.Name(), src)
	}
	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return ec
}

func parseLevel(level string) zapcore.Level {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	return zapLevel
}

// initLogger logs JSON to w.
func initLogger(w io.Writer, level string) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(w),
		parseLevel(level),
	)
	return zap.New(core)
}

func initFileLogger(logFile string, level string) *zap.Logger {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(logWriter),
		parseLevel(level),
	)
	return zap.New(core)
}

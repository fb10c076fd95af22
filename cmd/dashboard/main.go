package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/delaneyj/slotparty/component"
	"github.com/delaneyj/slotparty/config"
	"github.com/delaneyj/slotparty/dashboard"
	"github.com/delaneyj/slotparty/dom"
	"github.com/delaneyj/slotparty/logging"
	"github.com/delaneyj/slotparty/loop"
	"github.com/delaneyj/slotparty/metrics"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

const (
	configKey   = "config"
	mountKey    = "mount"
	intervalKey = "interval"
	viewKey     = "view"
	forKey      = "for"
	dumpKey     = "dump"
	logLevelKey = "log-level"
	noColorKey  = "no-color"
	sourceKey   = "source"
)

func main() {
	cmd := &cli.Command{
		Name:  "dashboard",
		Usage: "Run the system dashboard against an in-memory document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configKey,
				Aliases: []string{"c"},
				Usage:   "TOML config file",
			},
			&cli.StringFlag{
				Name:  mountKey,
				Usage: "id of the element the dashboard mounts into",
			},
			&cli.DurationFlag{
				Name:  intervalKey,
				Usage: "metrics polling interval",
			},
			&cli.StringFlag{
				Name:  viewKey,
				Usage: "initial view (system, docker, network, processes, logs, settings)",
			},
			&cli.DurationFlag{
				Name:  forKey,
				Usage: "stop after this long; zero runs until interrupted",
			},
			&cli.BoolFlag{
				Name:  dumpKey,
				Usage: "print the document as HTML on exit",
			},
			&cli.StringFlag{
				Name:  logLevelKey,
				Usage: "trace, debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  sourceKey,
				Usage: "metrics source: system or process",
			},
			&cli.BoolFlag{
				Name:  noColorKey,
				Usage: "disable colored log output",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("dashboard failed")
	}
}

func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String(configKey))
	if err != nil {
		return cfg, err
	}
	if cmd.IsSet(mountKey) {
		cfg.Mount = cmd.String(mountKey)
	}
	if cmd.IsSet(intervalKey) {
		cfg.Interval = cmd.Duration(intervalKey)
	}
	if cmd.IsSet(viewKey) {
		cfg.InitialView = cmd.String(viewKey)
	}
	if cmd.IsSet(logLevelKey) {
		cfg.LogLevel = cmd.String(logLevelKey)
	}
	if cmd.IsSet(sourceKey) {
		cfg.Source = cmd.String(sourceKey)
	}
	if cmd.IsSet(noColorKey) {
		cfg.NoColor = cmd.Bool(noColorKey)
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{App: "dashboard", Level: cfg.LogLevel, NoColor: cfg.NoColor})
	if err != nil {
		return err
	}
	view, err := dashboard.ParseView(cfg.InitialView)
	if err != nil {
		return err
	}

	doc := dom.NewDocument()
	app := dom.NewElement("div")
	app.SetAttr("id", cfg.Mount)
	dom.Append(doc.Body(), app)
	target := doc.GetElementByID(cfg.Mount)

	q := loop.New()
	defer q.Close()
	sched := component.NewScheduler(q, component.WithLogger(logger))

	var src metrics.Source = metrics.NewSystemSource(cfg.DiskPath)
	if cfg.Source == "process" {
		src = metrics.NewProcessSource(cfg.DiskPath)
	}
	def := dashboard.New(dashboard.Options{
		Source:       src,
		Submit:       q,
		Interval:     cfg.Interval,
		FetchTimeout: cfg.FetchTimeout,
		Log:          &logger,
	})
	root, err := component.Mount(sched, def, component.Options{
		Target: target,
		Props:  component.Props{"view": view},
	})
	if err != nil {
		return err
	}
	root.Instance().On(dashboard.EventViewChange, func(detail any) {
		logger.Info().Stringer("view", detail.(dashboard.View)).Msg("view changed")
	})
	logger.Info().
		Str("mount", cfg.Mount).
		Stringer("view", view).
		Dur("interval", cfg.Interval).
		Msg("dashboard mounted")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d := cmd.Duration(forKey); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	runErr := q.Run(ctx)
	var dumpErr error
	if cmd.Bool(dumpKey) {
		if dumpErr = dom.Render(os.Stdout, doc.Root()); dumpErr == nil {
			_, dumpErr = fmt.Fprintln(os.Stdout)
		}
	}
	root.Destroy()
	if runErr != nil {
		return fmt.Errorf("error while running dashboard: %w", runErr)
	}
	if dumpErr != nil {
		return fmt.Errorf("error while dumping document: %w", dumpErr)
	}

	logger.Info().
		Dur("uptime", time.Since(start)).
		Int("flushes", sched.Flushes()).
		Msg("dashboard stopped")
	return nil
}

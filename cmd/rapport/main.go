package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/rapport/internal/catalog"
	"github.com/alexanderramin/rapport/internal/cli"
	"github.com/alexanderramin/rapport/internal/config"
	"github.com/alexanderramin/rapport/internal/db"
	"github.com/alexanderramin/rapport/internal/notify"
	"github.com/alexanderramin/rapport/internal/repository"
	"github.com/alexanderramin/rapport/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.FriendlyError(err))
		os.Exit(1)
	}
}

func run() error {
	configFile := configFlag(os.Args[1:])

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	// Open database
	database, err := db.OpenDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	cat, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		return err
	}

	uow := db.NewSQLiteUnitOfWork(database)

	// One local clock for services and views, so outreach due days agree.
	clock := time.Now
	opts := []service.Option{
		service.WithClock(clock),
		service.WithLogger(logger),
		service.WithStrictGate(cfg.Progression.StrictGate),
	}
	if cfg.Log.UseCases {
		opts = append(opts, service.WithObserver(service.NewSlogUseCaseObserver(logger)))
	}

	app := &cli.App{
		Catalog:  cat,
		Logger:   logger,
		HTTPAddr: cfg.HTTP.Addr,
		Now:      clock,
	}

	if cfg.RedisEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		pub, err := notify.NewRedisPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
		cancel()
		if err != nil {
			logger.Warn("event publishing disabled", "error", err)
		} else {
			defer pub.Close()
			opts = append(opts, service.WithPublisher(pub))
			app.Events = pub
		}
	}

	app.Progression = service.NewProgressionService(cat,
		repository.NewSQLiteRelationshipRepo(database),
		repository.NewSQLitePathInstanceRepo(database),
		uow, opts...)
	app.Outreach = service.NewOutreachService(cat, repository.NewSQLiteOutreachRepo(database), uow, opts...)
	app.Interactions = service.NewInteractionService(repository.NewSQLiteInteractionRepo(database), uow, opts...)

	// Detect interactive terminal for pickers and the timeline viewer.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.rapport/config.yaml)")
	return rootCmd.Execute()
}

// configFlag reads --config ahead of cobra, since the config decides how
// the command tree is wired.
func configFlag(args []string) string {
	fs := pflag.NewFlagSet("rapport", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}

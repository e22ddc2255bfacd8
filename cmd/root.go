package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/bookreel/internal/config"
	"github.com/lepinkainen/bookreel/internal/fileutil"
	"github.com/lepinkainen/bookreel/internal/recommend"
	"github.com/lepinkainen/bookreel/internal/server"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

var (
	newApp           = buildApp
	stdout io.Writer = os.Stdout
)

// CLI represents the complete command structure for the bookreel application
type CLI struct {
	Config   string `short:"c" help:"Path to config file (defaults to ./config.yaml when present)" type:"path"`
	LogLevel string `help:"Log level: debug, info, warn or error"`

	// Cache flags
	SingleFlight bool `help:"Share one catalog fetch between concurrent identical lookups"`

	// Datastore flags
	Datastore   bool   `help:"Log every recommendation response to the datastore"`
	DatastoreDB string `help:"Path to the SQLite recommendation log"`

	Serve     ServeCmd     `cmd:"" help:"Run the HTTP API"`
	Search    SearchCmd    `cmd:"" help:"Search books or movies"`
	Recommend RecommendCmd `cmd:"" help:"Print recommendations for an item id as JSON"`
}

// ServeCmd runs the HTTP server
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

// SearchCmd searches one catalog
type SearchCmd struct {
	Query string `arg:"" help:"Search text"`
	Type  string `short:"t" help:"Media type to search" default:"book" enum:"book,movie"`

	Output    string `short:"o" help:"Write the JSON to this file instead of stdout" type:"path"`
	Overwrite bool   `help:"Overwrite an existing output file"`
}

// RecommendCmd prints recommendations for one item
type RecommendCmd struct {
	ItemID string `arg:"" name:"item-id" help:"Item id, e.g. book-works-OL893415W or movie-438631"`

	Output    string `short:"o" help:"Write the JSON to this file instead of stdout" type:"path"`
	Overwrite bool   `help:"Overwrite an existing output file"`
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("bookreel"),
		kong.Description("Cross-media book and movie recommendations."),
		kong.UsageOnError(),
	)

	cfg, err := loadConfig(&cli)
	if err != nil {
		initLogging(slog.LevelInfo)
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	initLogging(level)

	if err := ctx.Run(cfg); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(cli *CLI) (*config.Config, error) {
	if err := config.Init(cli.Config); err != nil {
		return nil, err
	}
	updateGlobalConfig(cli)
	return config.Load()
}

// updateGlobalConfig lets explicit flags win over the config file and environment.
func updateGlobalConfig(cli *CLI) {
	if cli.LogLevel != "" {
		viper.Set("log.level", cli.LogLevel)
	}
	if cli.SingleFlight {
		viper.Set("cache.single_flight", true)
	}
	if cli.Datastore {
		viper.Set("datastore.enabled", true)
	}
	if cli.DatastoreDB != "" {
		viper.Set("datastore.dbfile", cli.DatastoreDB)
	}
	if cli.Serve.Addr != "" {
		viper.Set("server.addr", cli.Serve.Addr)
	}
}

// Run methods for each command

func (s *ServeCmd) Run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.svc, a.cache, server.Config{
		Addr:            cfg.Server.Addr,
		RateLimit:       cfg.Server.RateLimit,
		RequestTimeout:  cfg.Server.RequestTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	return srv.ListenAndServe(ctx)
}

func (s *SearchCmd) Run(cfg *config.Config) error {
	typ, err := recommend.ParseType(s.Type)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.svc.Search(ctx, s.Query, typ)
	if err != nil {
		return err
	}
	return writeOutput(server.SearchResponse{Results: results}, s.Output, s.Overwrite)
}

func (r *RecommendCmd) Run(cfg *config.Config) error {
	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.svc.GetRecommendations(ctx, r.ItemID)
	if err != nil {
		return fmt.Errorf("recommendations for %s: %w", r.ItemID, err)
	}
	return writeOutput(resp, r.Output, r.Overwrite)
}

// writeOutput prints v as JSON, or writes it to path when one is given.
func writeOutput(v any, path string, overwrite bool) error {
	if path != "" {
		written, err := fileutil.WriteJSONFile(v, path, overwrite)
		if err != nil {
			return err
		}
		if !written {
			return fmt.Errorf("%s already exists (use --overwrite)", path)
		}
		return nil
	}

	data, err := fileutil.MarshalJSON(v)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

// initLogging installs humanlog on stderr so stdout stays clean JSON.
func initLogging(level slog.Level) {
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

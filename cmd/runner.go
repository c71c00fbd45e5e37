package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playgraph/internal/repositories"
	"github.com/desertthunder/playgraph/internal/services"
	"github.com/desertthunder/playgraph/internal/shared"
	"github.com/desertthunder/playgraph/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	fixedConfig bool
	source      services.CatalogSource
	cache       tasks.CatalogCache
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A Config passed here is used as is; otherwise the root command loads it from --config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Source     services.CatalogSource
	Cache      tasks.CatalogCache
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	fixed := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		fixedConfig: fixed,
		source:      opts.Source,
		cache:       opts.Cache,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistCommand, viewCommand, layoutCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by the root --config flag and applies its log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")
	if r.fixedConfig {
		return ctx, nil
	}

	config, err := shared.LoadConfigOrDefault(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config

	if err := shared.ApplyLogLevel(r.logger, config.Log.Level); err != nil {
		r.logger.Warn("ignoring log level", "error", err)
	}
	return ctx, nil
}

// catalogSource returns the injected source or builds a Spotify client from the credentials in config.
//
// Without a stored user token the client uses the client credentials flow.
func (r *Runner) catalogSource(ctx context.Context) (services.CatalogSource, error) {
	if r.source != nil {
		return r.source, nil
	}

	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	svc, err := services.NewSpotifyService(creds.Map(),
		services.WithRateLimit(creds.RequestsPerSecond),
		services.WithServiceLogger(r.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}
	svc.SetTokenRefreshCallback(r.persistToken)

	if err := svc.Authenticate(ctx, creds.Map()); err != nil {
		return nil, err
	}
	r.source = svc
	return svc, nil
}

// persistToken writes refreshed user tokens back to the config file when one exists.
func (r *Runner) persistToken(token *oauth2.Token) {
	if token.AccessToken == r.config.Credentials.Spotify.AccessToken {
		return
	}
	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		r.logger.Warn("ignoring refreshed token", "error", err)
		return
	}
	if _, err := os.Stat(r.configPath); err != nil {
		return
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refreshed token", "error", err)
		return
	}
	r.logger.Debug("saved refreshed Spotify token", "path", r.configPath)
}

// catalogCache returns the injected cache or opens the configured database. The returned func releases it.
func (r *Runner) catalogCache() (tasks.CatalogCache, func(), error) {
	if r.cache != nil {
		return r.cache, func() {}, nil
	}
	repo, closeDB, err := r.openRepository()
	if err != nil {
		return nil, nil, err
	}
	return repo, closeDB, nil
}

func (r *Runner) openRepository() (*repositories.CatalogRepository, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return repositories.NewCatalogRepository(db), func() { db.Close() }, nil
}

// engine wires a catalog engine. With useCache false the database is never opened.
func (r *Runner) engine(ctx context.Context, useCache bool) (*tasks.CatalogEngine, func(), error) {
	source, err := r.catalogSource(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !useCache {
		return tasks.NewCatalogEngine(source, nil, r.logger), func() {}, nil
	}

	cache, release, err := r.catalogCache()
	if err != nil {
		r.logger.Warn("catalog cache unavailable", "error", err)
		return tasks.NewCatalogEngine(source, nil, r.logger), func() {}, nil
	}
	return tasks.NewCatalogEngine(source, cache, r.logger), release, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

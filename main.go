/* main.go
 * The entry point. Runs the HTTP api, the Discord bot, or both, and has a command to create the first admin.
 * Every flag can also be set from the environment or a .env file.
 * Usage: go run . serve --bot=true
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bolao-bot/api/api"
	"bolao-bot/api/shared"
	"bolao-bot/bot"
	"bolao-bot/web"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMongoURI = "mongodb://localhost:27017/"
	defaultDBName   = "bolao_brasileirao"
	defaultTimezone = "America/Sao_Paulo"
)

func main() {
	envErr := godotenv.Load()

	app := newApp()
	app.Before = func(c *cli.Context) error {
		if err := setupLogging(c.String("log-level"), c.Bool("pretty")); err != nil {
			return err
		}
		if envErr != nil {
			log.Warn().Err(envErr).Msg("no .env file loaded, using the environment only")
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("bolao-bot failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bolao-bot",
		Usage: "office football pool: score predictions, rank bettors",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mongo-uri", Value: defaultMongoURI, EnvVars: []string{"MONGO_URI"}, Usage: "mongo connection string"},
			&cli.StringFlag{Name: "mongo-db", Value: defaultDBName, EnvVars: []string{"MONGO_DB"}, Usage: "database name"},
			&cli.StringFlag{Name: "timezone", Value: defaultTimezone, EnvVars: []string{"TIMEZONE"}, Usage: "timezone deadlines are typed and shown in"},
			&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
			&cli.BoolFlag{Name: "pretty", EnvVars: []string{"LOG_PRETTY"}, Usage: "human readable logs instead of JSON"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			botCommand(),
			createAdminCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP api, and the Discord bot alongside it when --bot is true",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", EnvVars: []string{"HTTP_ADDR"}},
			&cli.StringFlag{Name: "secret-key", EnvVars: []string{"SECRET_KEY"}, Required: true, Usage: "key signing login tokens"},
			&cli.DurationFlag{Name: "token-ttl", Value: 24 * time.Hour, EnvVars: []string{"TOKEN_TTL"}},
			&cli.StringFlag{Name: "bot", Value: "false", EnvVars: []string{"BOT_ENABLED"}, Usage: "true or false"},
			&cli.StringFlag{Name: "discord-token", EnvVars: []string{"DISCORD_TOKEN"}},
		},
		Action: func(c *cli.Context) error {
			runBot, err := convertStrToBool(c.String("bot"))
			if err != nil {
				return fmt.Errorf("invalid --bot value %q: %w", c.String("bot"), err)
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			apiPtr, err := openAPI(ctx, c)
			if err != nil {
				return err
			}
			defer closeAPI(apiPtr)

			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			apiPtr.Metrics = api.NewMetrics(registry)

			var b *bot.Bot
			if runBot {
				if b, err = bot.NewBot(c.String("discord-token"), apiPtr); err != nil {
					return err
				}
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return web.Start(ctx, web.Config{
					Addr:      c.String("addr"),
					API:       apiPtr,
					SecretKey: c.String("secret-key"),
					TokenTTL:  c.Duration("token-ttl"),
					Registry:  registry,
				})
			})
			if b != nil {
				g.Go(func() error { return b.Run(ctx) })
			}
			return g.Wait()
		},
	}
}

func botCommand() *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "run only the Discord bot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "discord-token", EnvVars: []string{"DISCORD_TOKEN"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			apiPtr, err := openAPI(ctx, c)
			if err != nil {
				return err
			}
			defer closeAPI(apiPtr)

			b, err := bot.NewBot(c.String("discord-token"), apiPtr)
			if err != nil {
				return err
			}
			return b.Run(ctx)
		},
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "create an admin user, or promote an existing one",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", EnvVars: []string{"ADMIN_PASSWORD"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			apiPtr, err := openAPI(c.Context, c)
			if err != nil {
				return err
			}
			defer closeAPI(apiPtr)

			req := shared.NewRequest(shared.User{})
			user, err := apiPtr.CreateAdmin(c.Context, req, c.String("name"), c.String("username"), c.String("password"))
			if err != nil {
				return err
			}
			for _, m := range req.Messages {
				log.Info().Str("kind", m.Level).Msg(m.Text)
			}
			log.Info().Str("username", user.Username).Str("id", user.UserID).Msg("admin ready")
			return nil
		},
	}
}

// openAPI connects to mongo with the global flags
func openAPI(ctx context.Context, c *cli.Context) (*api.API, error) {
	loc, err := loadLocation(c.String("timezone"))
	if err != nil {
		return nil, err
	}
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	apiPtr, err := api.NewAPI(connectCtx, c.String("mongo-db"), c.String("mongo-uri"), loc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API: %w", err)
	}
	return apiPtr, nil
}

func closeAPI(apiPtr *api.API) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiPtr.Close(ctx); err != nil {
		log.Error().Err(err).Msg("failed to close mongo connection")
	}
}

// setupLogging configures the global zerolog logger. Loggers taken from a context without one fall back to it
func setupLogging(level string, pretty bool) error {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
	return nil
}

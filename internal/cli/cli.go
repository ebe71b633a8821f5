// Package cli implements the railops command line: duty timelines, live
// status, service boards and unit contacts over a fixture or PostgreSQL.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/railops/railops/internal/database"
	"github.com/railops/railops/internal/engine"
	"github.com/railops/railops/internal/opclock"
)

// NewApp builds the railops CLI. Output goes to out, logs to stderr.
func NewApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "railops",
		Usage:  "inspect duty timelines and live state",
		Writer: out,
		// Errors are returned from Run; main decides how to exit.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "fixture",
				Usage:   "YAML roster file; PostgreSQL (DATABASE_URL / DB_*) is used when unset",
				EnvVars: []string{"ROSTER_FIXTURE"},
			},
			&cli.StringFlag{
				Name:    "tz",
				Usage:   "time zone of the host clock",
				Value:   "Europe/Madrid",
				EnvVars: []string{"TZ"},
			},
			&cli.StringFlag{
				Name:  "at",
				Usage: "evaluate at HH:MM instead of the current time",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print JSON instead of tables",
			},
			&cli.BoolFlag{
				Name:    "debug",
				EnvVars: []string{"RAILOPS_DEBUG"},
			},
		},
		Commands: []*cli.Command{
			timelineCommand(),
			statusCommand(),
			boardCommand(),
			tripCommand(),
			contactCommand(),
		},
	}
}

// session is the engine plus the resolved evaluation minute of one command.
type session struct {
	svc   *engine.Service
	now   int
	out   io.Writer
	json  bool
	close func()
}

func openSession(c *cli.Context) (*session, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().
		Level(zerolog.WarnLevel)
	if c.Bool("debug") {
		logger = logger.Level(zerolog.DebugLevel)
	}

	loc, err := time.LoadLocation(c.String("tz"))
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("invalid --tz %q: %v", c.String("tz"), err), 2)
	}

	store, closeStore, err := engine.OpenStore(c.Context, c.String("fixture"), database.ConfigFromEnv())
	if err != nil {
		return nil, err
	}

	svc := engine.NewService(engine.ServiceConfig{
		Duties:   store,
		Trips:    store,
		Units:    store,
		Logger:   logger,
		Location: loc,
	})

	now := svc.NowMinutes()
	if at := c.String("at"); at != "" {
		m, ok := opclock.Parse(at)
		if !ok {
			closeStore()
			return nil, cli.Exit(fmt.Sprintf("invalid --at %q: want HH:MM", at), 2)
		}
		now = m
	}

	return &session{
		svc:   svc,
		now:   now,
		out:   c.App.Writer,
		json:  c.Bool("json"),
		close: closeStore,
	}, nil
}

func (s *session) printJSON(v interface{}) error {
	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withSession opens a session for the duration of action.
func withSession(action func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		defer s.close()
		return action(c, s)
	}
}

func requireArg(c *cli.Context, name string) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(fmt.Sprintf("usage: railops %s <%s>", c.Command.Name, name), 2)
	}
	return c.Args().First(), nil
}

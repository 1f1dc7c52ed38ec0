package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/prime/backoffice/client"
	"github.com/prime/backoffice/config"
)

// EnvToken holds the access token when --token is not given.
const EnvToken = "AGENCY_TOKEN"

var errNoToken = errors.New("no token: pass --token or set " + EnvToken)

// app is the state shared by all commands.
type app struct {
	configPath string
	baseURL    string
	token      string
	verbose    bool

	now    func() time.Time
	client *client.Client
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{now: time.Now}
	return a.rootCmd(out)
}

func (a *app) rootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "agencyctl",
		Short:         "Back-office metrics from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.baseURL, "base-url", "", "back-office API root (overrides config)")
	flags.StringVar(&a.token, "token", "", "access token (default $"+EnvToken+")")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log every request")

	root.AddCommand(
		a.loginCmd(),
		a.clientsCmd(),
		a.attendanceCmd(),
		a.performanceCmd(),
		a.exportCmd(),
	)
	return root
}

// init loads configuration and builds the client.
func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if a.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
	log.Logger = logger

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	baseURL := cfg.API.BaseURL
	if a.baseURL != "" {
		baseURL = a.baseURL
	}
	a.client = client.New(baseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLocation(loc),
		client.WithLogger(logger),
	)

	if a.token == "" {
		a.token = os.Getenv(EnvToken)
	}
	return nil
}

func (a *app) requireToken() (string, error) {
	if a.token == "" {
		return "", errNoToken
	}
	return a.token, nil
}

// today is now on the agency's wall clock.
func (a *app) today() time.Time {
	return a.now().In(a.client.Location())
}

// parseDay reads a YYYY-MM-DD flag as midnight in the agency's zone, or
// returns def when the flag is empty.
func (a *app) parseDay(flag, value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	d, err := client.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return d.In(a.client.Location()), nil
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Package main provides the daylight calculator entry point and CLI interface.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devskill-org/daylight/daylight"
	"github.com/devskill-org/daylight/form"
	"github.com/devskill-org/daylight/sun"
	"github.com/devskill-org/daylight/zones"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// errReported is returned by commands that already printed their error.
var errReported = errors.New("error reported")

func report(cmd *cobra.Command, msg any) error {
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
	return errReported
}

type globalFlags struct {
	configFile string
	envFile    string
	logLevel   string
	logFormat  string
}

// setup loads configuration and builds the logger shared by all commands.
func (g *globalFlags) setup(stderr io.Writer) (*daylight.Config, *slog.Logger, error) {
	config, err := daylight.LoadConfig(g.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	lookup, err := daylight.DotEnv(g.envFile)
	if err != nil {
		return nil, nil, err
	}
	if err := config.ApplyEnv(lookup); err != nil {
		return nil, nil, err
	}
	if g.logLevel != "" {
		config.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		config.LogFormat = g.logFormat
	}
	if err := config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := daylight.NewLogger(stderr, config.LogLevel, config.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return config, logger, nil
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "daylight",
		Short:         "Sunrise, sunset and day length for a place and date",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&g.configFile, "config", "", "Configuration file path (.json, .yaml)")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "Environment file with DAYLIGHT_* overrides")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: text, json")

	root.AddCommand(newCalcCmd(g), newZonesCmd(g), newServeCmd(g))
	return root
}

func newCalcCmd(g *globalFlags) *cobra.Command {
	var (
		sub     form.Submission
		engine  string
		asJSON  bool
		latDMS  string
		longDMS string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate sunrise, sunset and day length",
		Example: `  daylight calc --date 20/3/2024 --lat 19:25:42 --ns N --long 99:8:0 --ew W --zone America/Mexico_City --dst No
  daylight calc --date 1/7/2024 --lat-deg 40 --lat-min 42 --long-deg 74 --ew W --zone auto`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := g.setup(cmd.ErrOrStderr())
			if err != nil {
				return report(cmd, err)
			}
			if engine != "" {
				config.Engine = engine
			}
			if latDMS != "" {
				sub.LatDegrees, sub.LatMinutes, sub.LatSeconds = splitDMS(latDMS)
			}
			if longDMS != "" {
				sub.LongDegrees, sub.LongMinutes, sub.LongSeconds = splitDMS(longDMS)
			}

			service, err := daylight.NewService(config)
			if err != nil {
				return report(cmd, err)
			}

			ctx := daylight.WithLogger(cmd.Context(), logger)
			result, err := service.Calculate(ctx, sub)
			if err != nil {
				var verr *form.ValidationError
				if errors.As(err, &verr) {
					return report(cmd, verr.Message)
				}
				return report(cmd, daylight.ErrComputation)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&sub.Date, "date", "", "Date as dd/mm/yyyy")
	f.StringVar(&latDMS, "lat", "", "Latitude as D:M:S (overrides --lat-deg/--lat-min/--lat-sec)")
	f.StringVar(&sub.LatDegrees, "lat-deg", "", "Latitude degrees")
	f.StringVar(&sub.LatMinutes, "lat-min", "0", "Latitude minutes")
	f.StringVar(&sub.LatSeconds, "lat-sec", "0", "Latitude seconds")
	f.StringVar(&sub.LatHemisphere, "ns", "N", "Latitude hemisphere: N or S")
	f.StringVar(&longDMS, "long", "", "Longitude as D:M:S (overrides --long-deg/--long-min/--long-sec)")
	f.StringVar(&sub.LongDegrees, "long-deg", "", "Longitude degrees")
	f.StringVar(&sub.LongMinutes, "long-min", "0", "Longitude minutes")
	f.StringVar(&sub.LongSeconds, "long-sec", "0", "Longitude seconds")
	f.StringVar(&sub.LongHemisphere, "ew", "E", "Longitude hemisphere: E or W")
	f.StringVar(&sub.TimeZone, "zone", "", "Time zone identifier, label or \"auto\" (default from configuration)")
	f.StringVar(&sub.DaylightSavings, "dst", "Yes", "Observe daylight savings time: Yes or No")
	f.StringVar(&engine, "engine", "", "Solar engine: "+strings.Join(sun.EngineNames(), ", "))
	f.BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

// splitDMS splits "D:M:S" into its parts; missing parts are "0".
func splitDMS(s string) (string, string, string) {
	parts := strings.SplitN(s, ":", 3)
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return parts[0], parts[1], parts[2]
}

func newZonesCmd(g *globalFlags) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List selectable time zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, _, err := g.setup(cmd.ErrOrStderr())
			if err != nil {
				return report(cmd, err)
			}

			list, err := zones.List(config.ZoneInfoDir)
			if err != nil {
				return report(cmd, err)
			}

			def := zones.StripLabel(config.DefaultTimeZone)
			for _, z := range list {
				if filter != "" && !strings.Contains(strings.ToLower(z.Label()), strings.ToLower(filter)) {
					continue
				}
				marker := " "
				if z.ID == def {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, z.Label())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Only list zones whose label contains this text")
	return cmd
}

func newServeCmd(g *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculation form and API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := g.setup(cmd.ErrOrStderr())
			if err != nil {
				return report(cmd, err)
			}
			if cmd.Flags().Changed("port") {
				config.Port = port
			}
			if config.Port <= 0 {
				return report(cmd, fmt.Sprintf("serve requires a port greater than 0, got: %d", config.Port))
			}

			service, err := daylight.NewService(config)
			if err != nil {
				return report(cmd, err)
			}

			logger.Info("starting daylight",
				"port", config.Port,
				"engine", config.Engine,
				"default_time_zone", config.DefaultTimeZone)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := daylight.NewWebServer(service, logger).Run(ctx); err != nil {
				logger.Error("web server failed", "error", err)
				return err
			}
			logger.Info("daylight stopped")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides configuration)")
	return cmd
}

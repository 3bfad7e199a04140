package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"finance-dashboard/internal/dashboard"
	"finance-dashboard/internal/logger"
	"finance-dashboard/internal/store"
	"finance-dashboard/internal/termview"
	"finance-dashboard/internal/trace"
	"finance-dashboard/internal/web"
)

// flushTraces drains buffered spans before exit.
var flushTraces = trace.Shutdown

func main() {
	os.Exit(run(newRootCmd(), os.Args[1:]))
}

// run executes the command tree and flushes spans whether or not the command
// failed.
func run(rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if ferr := flushTraces(ctx); ferr != nil {
		fmt.Fprintf(os.Stderr, "Failed to shut down tracer: %v\n", ferr)
	}

	if err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "S&P 500 finance dashboard",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			viper.SetEnvPrefix("DASHBOARD")
			viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			viper.AutomaticEnv()
			return initializeSystem()
		},
	}

	rootCmd.PersistentFlags().String("config", "config.yaml", "path to YAML config (optional)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(newServeCmd(), newShowCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard page and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx, viper.GetString("config"))
			if err != nil {
				return err
			}
			if addr := viper.GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}

			renderer, err := buildRenderer(ctx, cfg)
			if err != nil {
				return err
			}
			return web.NewServer(renderer).ListenAndServe(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = viper.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [ticker]",
		Short: "Render the dashboard for one ticker in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, viper.GetString("config"))
			if err != nil {
				return err
			}

			p := dashboard.Params{}
			if len(args) == 1 {
				p.Ticker = strings.ToUpper(strings.TrimSpace(args[0]))
			}
			if p.Start, err = parseDateFlag(viper.GetString("start")); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			if p.End, err = parseDateFlag(viper.GetString("end")); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}

			renderer, err := buildRenderer(ctx, cfg)
			if err != nil {
				return err
			}

			view, renderErr := renderer.Render(ctx, p)
			if viper.GetBool("json") {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(view); err != nil {
					return err
				}
			} else {
				maxBars := viper.GetInt("bars")
				if maxBars == 0 {
					maxBars = cfg.Terminal.MaxBars
				}
				err := termview.Render(cmd.OutOrStdout(), view, termview.Options{
					MaxBars: maxBars,
					Color:   viper.GetBool("color"),
				})
				if err != nil {
					return err
				}
			}
			if renderErr != nil {
				logger.ErrorWithErr(ctx, "Dashboard render failed", renderErr, "ticker", p.Ticker)
				return renderErr
			}
			return nil
		},
	}
	cmd.Flags().String("start", "", "start date YYYY-MM-DD (default from config)")
	cmd.Flags().String("end", "", "end date YYYY-MM-DD, exclusive (default from config)")
	cmd.Flags().Int("bars", 0, "number of most recent bars to print (default from config)")
	cmd.Flags().Bool("color", true, "colored table output")
	cmd.Flags().Bool("json", false, "print the view as JSON")
	for _, name := range []string{"start", "end", "bars", "color", "json"} {
		_ = viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(store.DateLayout, s)
	if err != nil {
		return time.Time{}, errors.New("expected YYYY-MM-DD")
	}
	return t, nil
}

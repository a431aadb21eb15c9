package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vitalvas/assetroute/config"
	"github.com/vitalvas/assetroute/mux"
	"github.com/vitalvas/assetroute/resolve"
)

// attempt is a single file route resolution made while matching a path.
type attempt struct {
	Route       string               `json:"route"`
	Matched     bool                 `json:"matched"`
	File        string               `json:"file,omitempty"`
	Reason      string               `json:"reason"`
	Diagnostics *resolve.Diagnostics `json:"diagnostics,omitempty"`
}

type resolveReport struct {
	Path     string    `json:"path"`
	Cleaned  string    `json:"cleaned,omitempty"`
	Route    string    `json:"route,omitempty"`
	Args     []string  `json:"args,omitempty"`
	Attempts []attempt `json:"attempts"`
}

func newResolveCmd(configPath *string) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "resolve PATH...",
		Short: "Show how request paths resolve against the configured routes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			var attempts []attempt
			opts := routerOptions{
				debugAll: true,
				observe: func(_ *http.Request, route *mux.Route, res resolve.Resolution) {
					a := attempt{
						Matched:     res.Matched,
						File:        res.Path,
						Reason:      res.Reason.String(),
						Diagnostics: res.Debug,
					}
					if route != nil {
						a.Route = route.GetPrivatePath()
					}
					attempts = append(attempts, a)
				},
			}

			logger := slog.New(slog.DiscardHandler)
			router, err := buildRouter(cfg, logger, prometheus.NewRegistry(), opts)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			for _, p := range args {
				req, err := http.NewRequestWithContext(cmd.Context(), method, p, nil)
				if err != nil {
					return err
				}

				attempts = nil

				report := resolveReport{Path: p}
				if cleaned := router.Normalize(req); cleaned != req {
					req = cleaned
					report.Cleaned = req.URL.Path
				}

				var match mux.RouteMatch
				if router.Match(req, &match) {
					report.Route = match.Route.GetPrivatePath()
					report.Args = match.Args
				}
				report.Attempts = attempts
				if report.Attempts == nil {
					report.Attempts = []attempt{}
				}

				if err := enc.Encode(report); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "request method")

	return cmd
}

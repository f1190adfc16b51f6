package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/LdDl/osmlinks"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "osmlinks",
		Short: "Validation of highway links in OSM data",
		Long: `osmlinks loads highways from *.osm / *.pbf file and flags link ways (ramps, connectors)
which are too long or whose class does not match roads they connect.
Optional check of 'access' tag on motorways and footways is available too.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("osmlinks v%s (%s)\n", version, commit)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print default configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := osmlinks.DefaultConfiguration().Marshal()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	})

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Run checks over OSM file",
		RunE:  runCheck,
	}
	checkCmd.Flags().String("file", "my_graph.osm.pbf", "Filename of *.osm.pbf / *.osm file")
	checkCmd.Flags().String("config", "", "Filename of YAML configuration. Defaults are used when empty")
	checkCmd.Flags().String("checks", "link,access", "Set of checks to run (separated by commas). Expected values: link / access")
	checkCmd.Flags().String("out", "flags.csv", "Filename of 'Comma-Separated Values' (CSV) formatted file for flags. Empty value disables CSV output")
	checkCmd.Flags().String("geojson", "", "Filename of GeoJSON file for flags")
	checkCmd.Flags().String("registry", "", "Directory of persistent flagged ways registry. Ways registered there are not evaluated again")
	checkCmd.Flags().String("pg-dsn", os.Getenv("OSMLINKS_PG_DSN"), "PostgreSQL DSN for storing flags (env OSMLINKS_PG_DSN)")
	checkCmd.Flags().Int("workers", 0, "Number of workers. Number of CPUs is used when zero")
	checkCmd.Flags().Bool("report-unresolved", false, "Report links without connection or without link equivalent at both ends")
	checkCmd.Flags().String("metrics-addr", "", "Address to serve expvar metrics on /debug/vars while checking (e.g. ':8080'). Disabled when empty")
	checkCmd.Flags().Int("verbose", 1, "Verbosity level: 0 - errors only, 1 - progress, 2 - every way")
	rootCmd.AddCommand(checkCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	fname, _ := cmd.Flags().GetString("file")
	cfgName, _ := cmd.Flags().GetString("config")
	checksStr, _ := cmd.Flags().GetString("checks")
	out, _ := cmd.Flags().GetString("out")
	geojsonName, _ := cmd.Flags().GetString("geojson")
	registryDir, _ := cmd.Flags().GetString("registry")
	pgDSN, _ := cmd.Flags().GetString("pg-dsn")
	workers, _ := cmd.Flags().GetInt("workers")
	reportUnresolved, _ := cmd.Flags().GetBool("report-unresolved")
	verbose, _ := cmd.Flags().GetInt("verbose")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	stdr.SetVerbosity(verbose)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		server, err := serveMetrics(metricsAddr, logger)
		if err != nil {
			return err
		}
		defer server.Close()
	}

	cfg := osmlinks.DefaultConfiguration()
	if cfgName != "" {
		var err error
		cfg, err = osmlinks.LoadConfiguration(cfgName)
		if err != nil {
			return err
		}
	}

	st := time.Now()
	graph, err := osmlinks.LoadGraph(fname, osmlinks.WithLoaderLogger(logger.WithName("loader")))
	if err != nil {
		return errors.Wrap(err, "Can't load graph")
	}
	logger.V(1).Info("Graph loaded", "edges", graph.NumEdges(), "nodes", graph.NumNodes(), "elapsed", time.Since(st).String())

	checks, err := prepareChecks(graph, cfg, checksStr, logger)
	if err != nil {
		return err
	}

	runID := uuid.New()
	reporter, err := prepareReporter(ctx, out, geojsonName, pgDSN)
	if err != nil {
		return err
	}

	options := []func(*osmlinks.Checker){
		osmlinks.WithChecks(checks...),
		osmlinks.WithRunID(runID),
		osmlinks.WithReportUnresolved(reportUnresolved),
		osmlinks.WithCheckerLogger(logger.WithName("checker")),
	}
	if workers > 0 {
		options = append(options, osmlinks.WithWorkers(workers))
	}
	if registryDir != "" {
		registry, err := osmlinks.OpenBadgerFlaggedSet(registryDir, runID)
		if err != nil {
			reporter.Close()
			return err
		}
		defer registry.Close()
		options = append(options, osmlinks.WithFlaggedSet(registry))
	}

	summary, runErr := osmlinks.NewChecker(graph, reporter, options...).Run(ctx)
	closeErr := reporter.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}
	logger.Info("Checks done",
		"run", summary.RunID.String(),
		"candidates", summary.Candidates,
		"evaluated", summary.Evaluated,
		"skipped", summary.Skipped,
		"flagged", summary.Flagged,
		"unresolved", summary.Unresolved,
		"reported", summary.Reported,
		"elapsed", summary.Duration.String(),
	)
	return nil
}

func prepareChecks(graph *osmlinks.Graph, cfg *osmlinks.Configuration, checksStr string, logger logr.Logger) ([]osmlinks.Check, error) {
	checks := []osmlinks.Check{}
	for _, name := range strings.Split(checksStr, ",") {
		switch strings.TrimSpace(name) {
		case "link":
			engine, err := osmlinks.NewLinkEngineFromConfiguration(graph, cfg, osmlinks.WithLogger(logger.WithName("link")))
			if err != nil {
				return nil, err
			}
			checks = append(checks, osmlinks.NewLinkCheck(engine))
		case "access":
			check, err := osmlinks.NewAccessCheck(graph, cfg, osmlinks.WithAccessLogger(logger.WithName("access")))
			if err != nil {
				return nil, err
			}
			checks = append(checks, check)
		case "":
		default:
			return nil, fmt.Errorf("Unknown check '%s'", name)
		}
	}
	if len(checks) == 0 {
		return nil, fmt.Errorf("No checks selected")
	}
	return checks, nil
}

func prepareReporter(ctx context.Context, out, geojsonName, pgDSN string) (osmlinks.Reporter, error) {
	reporters := []osmlinks.Reporter{}
	closeAll := func() {
		for _, reporter := range reporters {
			reporter.Close()
		}
	}
	if out != "" {
		reporter, err := osmlinks.NewCSVReporter(out)
		if err != nil {
			return nil, errors.Wrap(err, "Can't prepare CSV output")
		}
		reporters = append(reporters, reporter)
	}
	if geojsonName != "" {
		reporters = append(reporters, osmlinks.NewGeoJSONReporter(geojsonName))
	}
	if pgDSN != "" {
		reporter, err := osmlinks.NewPostgresReporter(ctx, pgDSN)
		if err != nil {
			closeAll()
			return nil, errors.Wrap(err, "Can't prepare PostgreSQL output")
		}
		reporters = append(reporters, reporter)
	}
	if len(reporters) == 0 {
		return nil, fmt.Errorf("No output selected: provide at least one of --out, --geojson or --pg-dsn")
	}
	return osmlinks.NewMultiReporter(reporters...), nil
}

// serveMetrics exposes expvar counters on /debug/vars in background
func serveMetrics(addr string, logger logr.Logger) (*http.Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "Can't listen for metrics")
	}
	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	server := &http.Server{Addr: listener.Addr().String(), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error(err, "Metrics server stopped")
		}
	}()
	logger.V(1).Info("Serving metrics", "addr", server.Addr)
	return server, nil
}

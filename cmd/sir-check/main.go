package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"sir/pkg/check"
	"sir/pkg/config"
	"sir/pkg/db"
	"sir/pkg/history"
	"sir/pkg/logger"
	"sir/pkg/schema"
	"sir/pkg/solr"
	"sir/pkg/version"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}

	fs := flag.NewFlagSet("sir-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	solrURI := fs.String("solr", cfg.SolrURI, "solr base URI (env SIR_SOLR_URI)")
	dbURI := fs.String("db", cfg.DatabaseURI, "database URI; checked for connectivity when set (env SIR_DB_URI)")
	cores := fs.String("cores", strings.Join(cfg.Cores, ","), "comma separated cores to check; default all known cores (env SIR_CORES)")
	timeout := fs.Duration("timeout", cfg.HTTPTimeout, "HTTP timeout (env SIR_HTTP_TIMEOUT)")
	historyPath := fs.String("history", cfg.HistoryPath, "record outcomes in this sqlite file (env SIR_HISTORY_DB)")
	debug := fs.Bool("debug", cfg.Debug, "enable debug logging (env SIR_DEBUG)")
	ping := fs.Bool("ping", true, "ping each core before checking its version")
	showVersion := fs.Bool("v", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	cfg.SolrURI = strings.TrimRight(*solrURI, "/")
	cfg.DatabaseURI = *dbURI
	cfg.Cores = config.SplitList(*cores)
	cfg.HTTPTimeout = *timeout
	cfg.HistoryPath = *historyPath
	cfg.Debug = *debug
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}

	log := logger.New(stderr, cfg.Debug)
	registry := schema.Default(cfg.SchemaVersions)
	targets := cfg.Cores
	if len(targets) == 0 {
		targets = registry.Cores()
	}
	if err := registry.Validate(targets); err != nil {
		log.Error("%v", err)
		return 2
	}

	if cfg.DatabaseURI != "" {
		if err := checkDatabase(ctx, cfg.DatabaseURI, cfg.Debug); err != nil {
			log.Error("database: %v", err)
			return 1
		}
		log.Info("database reachable")
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	checker := check.New(cfg, registry, check.WithHTTPClient(client), check.WithLogger(log))

	var results []check.Result
	reachable := targets
	if *ping {
		reachable = nil
		for _, core := range targets {
			if _, err := solr.ConnectWithLogger(ctx, client, cfg.SolrURI, core, log); err != nil {
				expected, _ := registry.Version(core)
				results = append(results, check.Result{Core: core, Expected: expected, Err: err})
				continue
			}
			reachable = append(reachable, core)
		}
	}
	rep, _ := checker.CheckVersions(ctx, reachable)
	results = append(results, rep.Results...)
	rep = check.Report{Results: results}

	if cfg.HistoryPath != "" {
		if err := record(ctx, cfg.HistoryPath, rep); err != nil {
			log.Warn("history: %v", err)
		}
	}

	printReport(stdout, rep)
	if err := rep.Err(); err != nil {
		var mm *check.VersionMismatchError
		if errors.As(err, &mm) {
			log.Error("schema version mismatch; refusing to continue")
		}
		return 1
	}
	return 0
}

func checkDatabase(ctx context.Context, uri string, debug bool) error {
	opts := []db.Option{db.WithPing()}
	if debug {
		opts = append(opts, db.WithSQLLogging())
	}
	f, err := db.NewSessionFactory(uri, opts...)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Ping(ctx)
}

func record(ctx context.Context, path string, rep check.Report) error {
	st, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()
	for _, r := range rep.Results {
		e := history.Entry{Core: r.Core, Expected: r.Expected, Actual: r.Actual, OK: r.OK()}
		if r.Err != nil {
			e.Detail = r.Err.Error()
		}
		if err := st.Record(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func printReport(w io.Writer, rep check.Report) {
	for _, r := range rep.Results {
		if r.OK() {
			fmt.Fprintf(w, "ok    %s %1.1f\n", r.Core, r.Actual)
			continue
		}
		fmt.Fprintf(w, "FAIL  %s %v\n", r.Core, r.Err)
	}
	fmt.Fprintf(w, "%d checked, %d failed\n", len(rep.Results), len(rep.Failed()))
}

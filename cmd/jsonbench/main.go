// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Jsonbench runs a benchmark over a set of inputs and charts the
// results.
//
// Usage:
//
//	jsonbench [flags] benchmark -i input
//	jsonbench [flags] -i input.csv|db:id
//	jsonbench -db driver:dsn -sessions|-delete id
//
// The benchmark is run once per input file as "benchmark file". The
// first line of its standard output that begins with '{' must be a
// JSON object of measurements; each such object becomes one row of
// the results table. If input is a directory, the benchmark is run on
// each file in it. If input names a .csv file saved by an earlier run,
// no benchmark is run and the table is loaded instead.
//
// The raw table is written to the -o file. Jsonbench then derives
// gh_avg_time_min_cut = gh_time_min_cut / n_nodes and draws these
// charts into the -plots directory:
//
//	gh_avg_time_min_cut.png
//	gh_time.png
//	min_k_cut_value_time.png
//	min_k_cut_map_time_total.png
//
// Most flags take their default from an environment variable, which
// may also be set in a .env file in the current directory:
//
//	-i         JSONBENCH_INPUT
//	-o         JSONBENCH_OUTPUT
//	-plots     JSONBENCH_PLOTS
//	-dpi       JSONBENCH_DPI
//	-timeout   JSONBENCH_TIMEOUT
//	-db        JSONBENCH_DB
//	-gcs       JSONBENCH_GCS
//
// The -db flag archives each freshly built table into a SQL database,
// given as driver:dsn. The drivers are sqlite3, mysql and libsql.
// An archived table can be charted again with -i db:<id>. The
// -sessions flag lists the archived tables and -delete removes one.
// The -gcs flag copies the table and the charts to gs://bucket/prefix.
//
// The log level is taken from $LOG_LEVEL, or set to debug by -v.
//
// The exit status is 2 for a usage error and 1 if the input is
// invalid, the table cannot be written, or (with -strict) a derived
// column cannot be computed. Failed runs and failed charts are logged
// but do not change the exit status.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kmincut/jsonbench/benchjson"
	"github.com/kmincut/jsonbench/internal/hostinfo"
	"github.com/kmincut/jsonbench/internal/logging"
	"github.com/kmincut/jsonbench/internal/pipeline"
	"github.com/kmincut/jsonbench/storage/db"
	"github.com/kmincut/jsonbench/storage/gcs"
	"go.uber.org/zap"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/kmincut/jsonbench/storage/db/sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

var exit = os.Exit // replaced during testing

func main() {
	if err := jsonbench(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var ue *usageError
		if errors.As(err, &ue) {
			if ue.msg != "" {
				fmt.Fprintf(os.Stderr, "jsonbench: %s\n", ue.msg)
			}
			exit(2)
			return
		}
		fmt.Fprintf(os.Stderr, "jsonbench: %v\n", err)
		exit(1)
	}
}

// A usageError is a command line the tool cannot act on. The usage
// message has already been printed.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	if e.msg == "" {
		return "usage error"
	}
	return e.msg
}

func jsonbench(stdout, stderr io.Writer, args []string) error {
	// A missing .env file is fine; a malformed one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	fs := flag.NewFlagSet("jsonbench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jsonbench [flags] benchmark -i input\n")
		fmt.Fprintf(stderr, "       jsonbench [flags] -i input.csv|db:id\n")
		fmt.Fprintf(stderr, "       jsonbench -db driver:dsn -sessions|-delete id\n\n")
		fs.PrintDefaults()
	}

	var input, output string
	fs.StringVar(&input, "i", StringEnv("JSONBENCH_INPUT", ""), "benchmark input `file`, directory, saved .csv table, or db:<session>")
	fs.StringVar(&input, "input", StringEnv("JSONBENCH_INPUT", ""), "long form of -i")
	fs.StringVar(&output, "o", StringEnv("JSONBENCH_OUTPUT", "out.csv"), "write the results table to `file`")
	fs.StringVar(&output, "output", StringEnv("JSONBENCH_OUTPUT", "out.csv"), "long form of -o")
	var (
		flagPlots   = fs.String("plots", StringEnv("JSONBENCH_PLOTS", "plots"), "write charts to `dir`")
		flagDPI     = fs.Int("dpi", IntEnv("JSONBENCH_DPI", 500), "chart resolution in dots per inch")
		flagTimeout = fs.Duration("timeout", DurationEnv("JSONBENCH_TIMEOUT", 0), "stop each run after `d` (0 means no limit)")
		flagStrict  = fs.Bool("strict", false, "fail if a derived column cannot be computed")
		flagDB      = fs.String("db", StringEnv("JSONBENCH_DB", ""), "archive results to `driver:dsn`")
		flagGCS     = fs.String("gcs", StringEnv("JSONBENCH_GCS", ""), "publish results to gs://bucket/prefix")
		flagHTML    = fs.Bool("html", false, "write an index.html next to the charts")
		flagQuiet   = fs.Bool("q", false, "do not print the results table")
		flagVerbose = fs.Bool("v", false, "log debug output")

		flagSessions = fs.Bool("sessions", false, "list the sessions in the -db archive and exit")
		flagDelete   = fs.Int64("delete", 0, "delete session `id` from the -db archive and exit")
	)

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &usageError{}
	}
	usage := func(msg string) error {
		fmt.Fprintf(stderr, "jsonbench: %s\n", msg)
		fs.Usage()
		return &usageError{}
	}
	if len(positional) > 1 {
		return usage("too many arguments")
	}
	if *flagSessions || *flagDelete != 0 {
		if *flagDB == "" {
			return usage("-sessions and -delete need -db")
		}
		if *flagSessions && *flagDelete != 0 {
			return usage("-sessions and -delete are exclusive")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return manageSessions(ctx, stdout, *flagDB, *flagSessions, *flagDelete)
	}
	if input == "" {
		return usage("no input given")
	}
	var executable string
	if len(positional) == 1 {
		executable = positional[0]
	} else if !strings.HasSuffix(input, benchjson.TableExt) && !strings.HasPrefix(input, benchjson.SessionPrefix) {
		return usage("no benchmark given")
	}
	if *flagDPI <= 0 {
		return usage("-dpi must be positive")
	}
	if strings.HasPrefix(input, benchjson.SessionPrefix) && *flagDB == "" {
		return usage("a db: input needs -db")
	}

	// Nothing is created, not even the archive, for an input that
	// cannot be used.
	in, err := benchjson.Resolve(input)
	if err != nil {
		return err
	}

	log, err := logging.New(stderr, *flagVerbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	host := hostinfo.Collect()
	log.Debugf("host: %s", host)

	cfg := &pipeline.Config{
		Executable: executable,
		Input:      input,
		Output:     output,
		Timeout:    *flagTimeout,
		PlotDir:    *flagPlots,
		DPI:        *flagDPI,
		Strict:     *flagStrict,
		HTML:       *flagHTML,
		Log:        log,
		Host:       host,
	}
	if !*flagQuiet {
		cfg.Stdout = stdout
	}
	if *flagDB != "" {
		archive, err := openArchive(*flagDB)
		switch {
		case err != nil && in.Kind == benchjson.Session:
			return err
		case err != nil:
			// The archive is optional; the table and charts still
			// get written.
			log.Errorw("cannot open archive", "db", *flagDB, "error", err)
		default:
			defer archive.Close()
			cfg.Archive = archive
		}
	}
	if *flagGCS != "" {
		p, err := newPublisher(ctx, *flagGCS)
		if err != nil {
			log.Errorw("cannot publish", "gcs", *flagGCS, "error", err)
		} else {
			cfg.Publisher = p
		}
	}

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	logSummary(log, res)
	return nil
}

// parseInterspersed parses args, allowing flags after positional
// arguments, and returns the positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		if args[0] == "--" {
			return append(positional, args[1:]...), nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// openArchive opens a driver:dsn archive database.
func openArchive(spec string) (*db.DB, error) {
	driver, dsn, ok := strings.Cut(spec, ":")
	if !ok || driver == "" || dsn == "" {
		return nil, fmt.Errorf("invalid -db %q: want driver:dsn", spec)
	}
	return db.OpenSQL(driver, dsn)
}

func newPublisher(ctx context.Context, u string) (*gcs.Publisher, error) {
	bucket, prefix, err := gcs.ParseURL(u)
	if err != nil {
		return nil, err
	}
	opts, err := gcs.DefaultOptions(ctx)
	if err != nil {
		return nil, err
	}
	fs, err := gcs.NewFS(ctx, bucket, opts...)
	if err != nil {
		return nil, err
	}
	return &gcs.Publisher{FS: fs, Prefix: prefix}, nil
}

func logSummary(log *zap.SugaredLogger, res *pipeline.Result) {
	failedCharts := 0
	for _, o := range res.Charts {
		if o.Err != nil {
			failedCharts++
		}
	}
	log.Infow("done",
		"rows", res.Dataset.Len(),
		"failed runs", len(res.Failed),
		"charts", len(res.Charts)-failedCharts,
		"failed charts", failedCharts)
}

// StringEnv returns the value of the environment variable key, or def
// if it is not set.
func StringEnv(key string, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

// IntEnv is like StringEnv for integers. An unparsable value yields
// def.
func IntEnv(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

// DurationEnv is like StringEnv for time.ParseDuration values.
func DurationEnv(key string, def time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/neckchi/tripsync/internal/database"
	"github.com/neckchi/tripsync/internal/dependencies"
	"github.com/neckchi/tripsync/internal/exceptions"
	"github.com/neckchi/tripsync/internal/files"
	ftpclient "github.com/neckchi/tripsync/internal/ftp"
	"github.com/neckchi/tripsync/internal/frame"
	"github.com/neckchi/tripsync/internal/logging"
	"github.com/neckchi/tripsync/internal/reconcile"
	"github.com/neckchi/tripsync/internal/schema"
	log "github.com/sirupsen/logrus"
)

const usage = `usage: tripsync [flags] <command> [command flags]

commands:
  refresh     download new archives, move them to the archive dir and extract them (-force)
  download    download the archives listed in the index file (-force)
  move        move downloaded archives to the archive dir
  extract     extract csv members of archived zips into the data dir
  list        list trip and station csv files
  reconcile   rewrite trip file headers onto canonical column names
  columns     list the distinct header columns across trip files
  values      list the distinct values of one column
  usertype    map a user type value to its code
  head        print the first lines of a file
  frame       project a reconciled trip file onto the keep-list into the staged dir
  template    relabel a trip file with the header template into the csv dir
  db          check the database login
  ftp         check the ftp login
`

var errUsage = errors.New("invalid usage")

// newDependencies is swapped for dependencies.Build in tests, each run needs its own wiring.
var newDependencies = dependencies.NewDependencies

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	for _, d := range exceptions.Summary() {
		log.WithFields(log.Fields{"count": d.Count, "severity": d.Severity}).Info(d.Message)
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			log.Error(err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("tripsync", flag.ContinueOnError)
	global.SetOutput(stdout)
	global.Usage = func() {
		fmt.Fprint(stdout, usage)
		global.PrintDefaults()
	}
	base := global.String("base", "", "base directory (overrides config base_dir)")
	configFile := global.String("config", "tripsync.yaml", "YAML config file")
	envFile := global.String("env", ".env", "env file with credential paths and redis settings")
	level := global.String("log-level", "info", "log level")
	if err := global.Parse(args); err != nil {
		return errUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return errUsage
	}
	if _, err := logging.Setup(*level, ""); err != nil {
		return err
	}

	deps, err := newDependencies(ctx, dependencies.Options{
		EnvFile:    *envFile,
		ConfigFile: *configFile,
		BaseDir:    *base,
	})
	if err != nil {
		return err
	}
	defer deps.Close()

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "refresh":
		force, err := parseForce("refresh", rest, stdout)
		if err != nil {
			return err
		}
		return deps.Acquirer.Refresh(ctx, force)
	case "download":
		force, err := parseForce("download", rest, stdout)
		if err != nil {
			return err
		}
		written, err := deps.Acquirer.Download(ctx, force)
		printLines(stdout, written)
		return err
	case "move":
		moved, err := deps.Acquirer.MoveZips()
		printLines(stdout, moved)
		return err
	case "extract":
		extracted, err := deps.Acquirer.Extract()
		printLines(stdout, extracted)
		return err
	case "list":
		return runList(deps, rest, stdout)
	case "reconcile":
		return runReconcile(deps, rest, stdout)
	case "columns":
		return runColumns(deps, rest, stdout)
	case "values":
		return runValues(deps, rest, stdout)
	case "usertype":
		return runUserType(rest, stdout)
	case "head":
		return runHead(rest, stdout)
	case "frame":
		return runFrame(deps, rest, stdout)
	case "template":
		return runTemplate(deps, rest, stdout)
	case "db":
		return runDB(ctx, deps, stdout)
	case "ftp":
		return runFTP(ctx, deps, stdout)
	default:
		fmt.Fprintf(stdout, "unknown command %q\n", cmd)
		global.Usage()
		return errUsage
	}
}

func newFlagSet(name string, stdout io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stdout)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// parseForce reads the -force flag shared by download and refresh.
func parseForce(name string, args []string, stdout io.Writer) (bool, error) {
	fs := newFlagSet(name, stdout)
	force := fs.Bool("force", false, "download archives the ledger has already seen")
	if err := parse(fs, args); err != nil {
		return false, err
	}
	return *force, nil
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

func tripFiles(deps *dependencies.Dependencies, src string) ([]string, error) {
	if src == "" {
		src = deps.Paths.Data
	}
	return files.ListTripFiles(src)
}

func runList(deps *dependencies.Dependencies, args []string, stdout io.Writer) error {
	fs := newFlagSet("list", stdout)
	src := fs.String("src", "", "directory to search (default data dir)")
	if err := parse(fs, args); err != nil {
		return err
	}
	dir := *src
	if dir == "" {
		dir = deps.Paths.Data
	}
	listing, err := files.ListFiles(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "trip files (%d):\n", len(listing.Trip))
	printLines(stdout, listing.Trip)
	fmt.Fprintf(stdout, "station files (%d):\n", len(listing.Station))
	printLines(stdout, listing.Station)
	return nil
}

func runReconcile(deps *dependencies.Dependencies, args []string, stdout io.Writer) error {
	fs := newFlagSet("reconcile", stdout)
	src := fs.String("src", "", "directory with trip files (default data dir)")
	dest := fs.String("dest", "", "output directory (default clean dir)")
	if err := parse(fs, args); err != nil {
		return err
	}
	trips, err := tripFiles(deps, *src)
	if err != nil {
		return err
	}
	out := *dest
	if out == "" {
		out = deps.Paths.Clean
	}
	changes, err := deps.Reconciler.ConsistCols(trips, out)
	for _, c := range changes {
		fmt.Fprintf(stdout, "%s\n  %s\n  %s\n", c.Dest, c.Before, c.After)
		if len(c.Unmatched) > 0 {
			fmt.Fprintf(stdout, "  unmatched: %s\n", strings.Join(c.Unmatched, ", "))
		}
	}
	return err
}

func runColumns(deps *dependencies.Dependencies, args []string, stdout io.Writer) error {
	fs := newFlagSet("columns", stdout)
	src := fs.String("src", "", "directory with trip files (default data dir)")
	if err := parse(fs, args); err != nil {
		return err
	}
	trips, err := tripFiles(deps, *src)
	if err != nil {
		return err
	}
	cols, err := reconcile.FindTripColumns(trips)
	if err != nil {
		return err
	}
	printLines(stdout, cols)
	return nil
}

func runValues(deps *dependencies.Dependencies, args []string, stdout io.Writer) error {
	fs := newFlagSet("values", stdout)
	src := fs.String("src", "", "directory with trip files (default clean dir)")
	column := fs.String("column", schema.ColUserType, "column name")
	if err := parse(fs, args); err != nil {
		return err
	}
	dir := *src
	if dir == "" {
		dir = deps.Paths.Clean
	}
	trips, err := files.ListTripFiles(dir)
	if err != nil {
		return err
	}
	values, err := reconcile.UniqueValues(trips, *column)
	if err != nil {
		return err
	}
	printLines(stdout, values)
	return nil
}

func runUserType(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(stdout, "usage: tripsync usertype VALUE...")
		return errUsage
	}
	for _, v := range args {
		code, ok := schema.UserTypeCode(v)
		if !ok {
			code = "?"
		}
		fmt.Fprintf(stdout, "%s\t%s\n", v, code)
	}
	return nil
}

func runHead(args []string, stdout io.Writer) error {
	fs := newFlagSet("head", stdout)
	file := fs.String("file", "", "file to print")
	n := fs.Int("n", 20, "number of lines")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return errUsage
	}
	lines, err := files.Head(*file, *n)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintf(stdout, "'%s'\n", l)
	}
	return nil
}

// writeFrame writes to out, "-" meaning stdout. An empty out writes dir/<base name of src>.
func writeFrame(f *frame.Frame, out, dir, src string, stdout io.Writer) error {
	switch out {
	case "-":
		return f.Write(stdout)
	case "":
		out = filepath.Join(dir, filepath.Base(src))
	}
	if err := f.WriteCSV(out); err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}

func runFrame(deps *dependencies.Dependencies, args []string, stdout io.Writer) error {
	fs := newFlagSet("frame", stdout)
	file := fs.String("file", "", "reconciled trip file")
	out := fs.String("out", "", "output csv, - for stdout (default staged dir)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return errUsage
	}
	f, err := frame.OpenDataFrame(*file, deps.Config.KeepColumns())
	if err != nil {
		return err
	}
	return writeFrame(f, *out, deps.Paths.Staged, *file, stdout)
}

func runTemplate(deps *dependencies.Dependencies, args []string, stdout io.Writer) error {
	fs := newFlagSet("template", stdout)
	file := fs.String("file", "", "trip file whose columns follow the template order")
	header := fs.String("header", "", "header template (default from config)")
	out := fs.String("out", "", "output csv, - for stdout (default csv dir)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return errUsage
	}
	h := *header
	if h == "" {
		h = deps.Paths.HeaderFile
	}
	f, err := frame.ReadTripFrame(h, *file)
	if err != nil {
		return err
	}
	return writeFrame(f, *out, deps.Paths.CSV, *file, stdout)
}

func runDB(ctx context.Context, deps *dependencies.Dependencies, stdout io.Writer) error {
	settings, err := deps.DatabaseSettings()
	if err != nil {
		return err
	}
	db, err := database.Connect(ctx, settings)
	if err != nil {
		return err
	}
	defer db.Close()
	fmt.Fprintf(stdout, "connected to %s as %s\n", settings.Driver, settings.Credentials)
	return nil
}

func runFTP(ctx context.Context, deps *dependencies.Dependencies, stdout io.Writer) error {
	settings, err := deps.FTPSettings()
	if err != nil {
		return err
	}
	conn, err := ftpclient.Connect(ctx, settings)
	if err != nil {
		return err
	}
	defer conn.Quit()
	dir, err := conn.CurrentDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "connected to %s, working directory %s\n", settings.Credentials, dir)
	return nil
}

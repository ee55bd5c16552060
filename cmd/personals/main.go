package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"personals/internal"
	"personals/internal/config"
	"personals/internal/connectors"
	"personals/internal/connectors/htmlexport"
	sheetsconnector "personals/internal/connectors/sheets"
	"personals/internal/connectors/workbook"
	"personals/internal/content"
	"personals/internal/logging"
	"personals/internal/metrics"
	"personals/internal/pipeline"
	"personals/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	switch cmd {
	case "sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dryRun := fs.Bool("test", false, "process without writing the personals file")
		_ = fs.Parse(os.Args[2:])

		svc, closeFn := makeService(ctx, cfg, log, !*dryRun)
		defer closeFn()
		rep, err := svc.Run(ctx, content.RunOptions{DryRun: *dryRun})
		if err != nil {
			closeFn()
			must(err)
		}
		printReport(rep, cfg.SampleSize)
	case "validate":
		svc, closeFn := makeService(ctx, cfg, log, false)
		defer closeFn()
		rep, err := svc.ValidateStructure(ctx)
		printStructure(rep)
		if err != nil {
			closeFn()
			must(err)
		}
		fmt.Println("spreadsheet structure is valid")
	case "row":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		row := fs.Int("row", 0, "mirror sheet row number")
		_ = fs.Parse(os.Args[2:])
		if *row == 0 {
			must(internal.NewError(internal.CodeMissingConfig, "--row is required"))
		}

		svc, closeFn := makeService(ctx, cfg, log, true)
		defer closeFn()
		rep, err := svc.SyncRow(ctx, *row)
		if err != nil {
			closeFn()
			must(err)
		}
		if !rep.Approved {
			fmt.Printf("row %d is not approved, nothing written\n", *row)
			return
		}
		action := "added"
		if rep.Replaced {
			action = "replaced"
		}
		fmt.Printf("row %d %s id=%s title=%q\n", *row, action, rep.Record.ID, rep.Record.Title)
	case "check":
		records, err := storage.NewPersonalsStore(cfg.OutputPath).Load()
		must(err)
		rep := pipeline.CheckIDs(records)
		printIDReport(rep, records, cfg.SampleSize)
		if len(rep.Duplicates) > 0 {
			must(internal.NewError(internal.CodeValidation, "%d duplicate ids found", len(rep.Duplicates)))
		}
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(internal.NewError(internal.CodeMissingConfig, "--out is required"))
		}
		records, err := storage.NewPersonalsStore(cfg.OutputPath).Load()
		must(err)
		must(pipeline.ExportRecordsToXLSX(records, *out))
		fmt.Printf("exported %d records to %s\n", len(records), *out)
	case "history":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "number of runs to show")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("HISTORY_DB_PATH", cfg.HistoryDBPath))
		db, err := storage.Open(cfg.HistoryDBPath)
		must(err)
		defer db.Close()
		runs, err := db.ListRuns(*limit)
		must(err)
		printHistory(runs)
	case "watch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		interval := fs.Int("interval", cfg.WatchIntervalSecs, "seconds between runs")
		export := fs.String("export", cfg.WatchExportPath, "optional xlsx written after each run")
		cycles := fs.Int("cycles", 0, "stop after this many runs (0 runs until interrupted)")
		_ = fs.Parse(os.Args[2:])

		svc, closeFn := makeService(ctx, cfg, log, true)
		defer closeFn()
		w := content.NewWatcher(svc, time.Duration(*interval)*time.Second, *export, log)
		w.MaxCycles = *cycles
		if err := w.Run(ctx); err != nil {
			closeFn()
			must(err)
		}
	default:
		usage()
		os.Exit(1)
	}
}

// makeService builds the sync service. History is opened only for commands
// that record runs.
func makeService(ctx context.Context, cfg config.Config, log zerolog.Logger, withHistory bool) (*content.SyncService, func()) {
	source, err := makeSource(ctx, cfg, log)
	must(err)

	var db *storage.DB
	if withHistory && strings.TrimSpace(cfg.HistoryDBPath) != "" {
		db, err = storage.Open(cfg.HistoryDBPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.HistoryDBPath).Msg("run history disabled")
			db = nil
		}
	}
	closeFn := func() {
		if db != nil {
			_ = db.Close()
			db = nil
		}
	}

	svc, err := content.NewSyncService(cfg, source, storage.NewPersonalsStore(cfg.OutputPath), db, metrics.New(cfg.MetricsTextfile), log)
	if err != nil {
		closeFn()
		must(err)
	}
	return svc, closeFn
}

func makeSource(ctx context.Context, cfg config.Config, log zerolog.Logger) (connectors.TableSource, error) {
	if err := cfg.RequireSource(); err != nil {
		return nil, err
	}
	switch cfg.Source {
	case config.SourceXLSX:
		return workbook.NewConnector(cfg.XLSXPath), nil
	case config.SourceHTML:
		return htmlexport.NewConnector(cfg.HTMLDir), nil
	default:
		return sheetsconnector.NewConnector(ctx, cfg, log)
	}
}

func printReport(rep content.Report, sampleSize int) {
	fmt.Printf("spreadsheet: %s\n", rep.SpreadsheetTitle)
	fmt.Printf("mirror rows=%d submission rows=%d matched=%d unmatched=%d skipped=%d invalid=%d\n",
		rep.MirrorRows, rep.SubmissionRows, rep.Matched, len(rep.Unmatched), rep.Skipped, len(rep.Problems))
	for _, p := range rep.Problems {
		fmt.Printf("  invalid: %s\n", p)
	}

	if rep.DryRun {
		fmt.Printf("dry run: %d records would be written\n", len(rep.Records))
		n := sampleSize
		if n > len(rep.Records) {
			n = len(rep.Records)
		}
		for i := 0; i < n; i++ {
			r := rep.Records[i]
			fmt.Printf("  [%d] id=%s title=%q date=%s categories=%s locations=%s\n",
				i+1, r.ID, r.Title, r.DatePosted, strings.Join(r.Categories, ","), strings.Join(r.Locations, ","))
		}
		return
	}

	if rep.Merge != nil {
		fmt.Printf("saved %d records (added=%d updated=%d removed=%d)\n",
			len(rep.Records), len(rep.Merge.Added), len(rep.Merge.Updated), len(rep.Merge.Removed))
	}
}

func printStructure(rep pipeline.StructureReport) {
	if rep.SpreadsheetTitle != "" {
		fmt.Printf("spreadsheet: %s\n", rep.SpreadsheetTitle)
	}
	for _, t := range rep.Tables {
		fmt.Printf("%s\n", t.Table)
		fmt.Printf("  headers: %s\n", strings.Join(t.Headers, " | "))
		fmt.Printf("  required found: %s\n", listOrDash(t.FoundRequired))
		fmt.Printf("  required missing: %s\n", listOrDash(t.MissingRequired))
		fmt.Printf("  optional found: %s\n", listOrDash(t.FoundOptional))
		fmt.Printf("  optional missing: %s\n", listOrDash(t.MissingOptional))
	}
}

func printIDReport(rep pipeline.IDReport, records []internal.PersonalRecord, sampleSize int) {
	fmt.Printf("records=%d generated=%d explicit=%d empty=%d\n", rep.Total, rep.Generated, len(rep.Explicit), rep.Empty)
	for _, id := range rep.Explicit {
		fmt.Printf("  explicit id: %s\n", id)
	}
	for _, d := range rep.Duplicates {
		fmt.Printf("  duplicate id %s used by: %s\n", d.ID, strings.Join(d.Titles, " | "))
	}
	for _, c := range rep.Conflicts {
		fmt.Printf("  %q on %s published under: %s\n", c.Title, c.DatePosted, strings.Join(c.IDs, ", "))
	}

	n := sampleSize
	if n > len(records) {
		n = len(records)
	}
	for i := 0; i < n; i++ {
		fmt.Printf("  link: %s  %s\n", pipeline.DeepLink(records[i].ID), records[i].Title)
	}
	if rep.OK() {
		fmt.Println("all ids are unique")
	}
}

func printHistory(runs []internal.RunRow) {
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return
	}
	for _, r := range runs {
		code := r.ErrorCode
		if code == "" {
			code = "-"
		}
		fmt.Printf("%s  %-5s %-9s %-18s records=%d trace=%s\n",
			r.CreatedAt, r.Mode, r.Status, code, r.Counts["records"], r.TraceID)
	}
}

func listOrDash(v []string) string {
	if len(v) == 0 {
		return "-"
	}
	return strings.Join(v, ", ")
}

func usage() {
	fmt.Println("usage: personals <command>")
	fmt.Println("commands:")
	fmt.Println("  sync [--test]")
	fmt.Println("  validate")
	fmt.Println("  row --row=N")
	fmt.Println("  check")
	fmt.Println("  export:xlsx --out=./out/personals.xlsx")
	fmt.Println("  history [--limit=20]")
	fmt.Println("  watch [--interval=900] [--export=path.xlsx] [--cycles=0]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	fmt.Fprintf(os.Stderr, "error code: %s\n", internal.CodeOf(err))
	os.Exit(1)
}

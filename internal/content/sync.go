package content

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"personals/internal"
	"personals/internal/config"
	"personals/internal/connectors"
	"personals/internal/metrics"
	"personals/internal/pipeline"
	"personals/internal/storage"
)

type RunOptions struct {
	// DryRun stops before the persisted file is read or written.
	DryRun bool
}

// Report summarizes one sync run.
type Report struct {
	TraceID          string
	DryRun           bool
	SpreadsheetTitle string
	Structure        pipeline.StructureReport
	MirrorRows       int
	SubmissionRows   int
	Matched          int
	Unmatched        []pipeline.Unmatched
	Skipped          int
	Problems         []string
	Warnings         []string
	Records          []internal.PersonalRecord
	Merge            *pipeline.MergeResult
	Timings          map[string]float64
}

func (r Report) Counts() map[string]int {
	counts := map[string]int{
		"mirror_rows":     r.MirrorRows,
		"submission_rows": r.SubmissionRows,
		"matched":         r.Matched,
		"unmatched":       len(r.Unmatched),
		"skipped":         r.Skipped,
		"invalid":         len(r.Problems),
		"records":         len(r.Records),
	}
	if r.Merge != nil {
		counts["added"] = len(r.Merge.Added)
		counts["updated"] = len(r.Merge.Updated)
		counts["removed"] = len(r.Merge.Removed)
	}
	return counts
}

// RowReport is the result of processing a single mirror row.
type RowReport struct {
	TraceID   string
	RowNumber int
	Approved  bool
	Replaced  bool
	Record    *internal.PersonalRecord
	Warnings  []string
}

type SyncService struct {
	source      connectors.TableSource
	store       *storage.PersonalsStore
	history     *storage.DB
	metrics     metrics.RecorderInterface
	log         zerolog.Logger
	mirror      connectors.Range
	submissions connectors.Range
	strategy    pipeline.Strategy
	builder     pipeline.RecordBuilder
}

// NewSyncService wires a run. history may be nil.
func NewSyncService(cfg config.Config, source connectors.TableSource, store *storage.PersonalsStore, history *storage.DB, rec metrics.RecorderInterface, log zerolog.Logger) (*SyncService, error) {
	mirror, err := connectors.ParseRange(cfg.MirrorRange)
	if err != nil {
		return nil, internal.WrapError(internal.CodeMissingConfig, err, "MIRROR_RANGE")
	}
	submissions, err := connectors.ParseRange(cfg.SubmissionsRange)
	if err != nil {
		return nil, internal.WrapError(internal.CodeMissingConfig, err, "SUBMISSIONS_RANGE")
	}
	strategy, err := pipeline.ParseStrategy(cfg.MatchStrategy)
	if err != nil {
		return nil, internal.WrapError(internal.CodeMissingConfig, err, "MATCH_STRATEGY")
	}
	policy, err := pipeline.ParseIDPolicy(cfg.IDPolicy)
	if err != nil {
		return nil, internal.WrapError(internal.CodeMissingConfig, err, "ID_POLICY")
	}
	if rec == nil {
		rec = metrics.New("")
	}

	return &SyncService{
		source:      source,
		store:       store,
		history:     history,
		metrics:     rec,
		log:         log,
		mirror:      mirror,
		submissions: submissions,
		strategy:    strategy,
		builder:     pipeline.RecordBuilder{Policy: policy, Location: cfg.Location()},
	}, nil
}

// SetClock overrides the run clock used for synthesized IDs and fallback dates.
func (s *SyncService) SetClock(now func() time.Time) {
	s.builder.Now = now
}

// ValidateStructure fetches both header rows and checks the columns the
// configured strategy needs.
func (s *SyncService) ValidateStructure(ctx context.Context) (pipeline.StructureReport, error) {
	return s.validateStructure(ctx, s.strategy)
}

func (s *SyncService) validateStructure(ctx context.Context, strategy pipeline.Strategy) (pipeline.StructureReport, error) {
	var report pipeline.StructureReport

	title, err := s.source.Title(ctx)
	if err != nil {
		return report, err
	}
	report.SpreadsheetTitle = title
	s.log.Info().Str("spreadsheet", title).Msg("connected to spreadsheet")

	tables := []struct {
		name  string
		rng   connectors.Range
		specs []pipeline.ColumnSpec
	}{
		{pipeline.TableMirror, s.mirror, pipeline.MirrorColumns(strategy)},
		{pipeline.TableSubmissions, s.submissions, pipeline.SubmissionColumns(strategy)},
	}
	for _, t := range tables {
		rows, err := s.source.Values(ctx, t.rng.HeaderRange())
		if err != nil {
			return report, err
		}
		var headers []string
		if len(rows) > 0 {
			headers = rows[0]
		}
		check := pipeline.CheckStructure(t.name, headers, t.specs)
		report.Tables = append(report.Tables, check)

		if len(check.MissingOptional) > 0 {
			s.log.Warn().Str("table", t.name).Strs("fields", check.MissingOptional).Msg("optional columns not found")
		}
		if !check.OK() {
			s.log.Error().Str("table", t.name).Strs("fields", check.MissingRequired).Msg("required columns not found")
		} else {
			s.log.Info().Str("table", t.name).Strs("fields", check.FoundRequired).Msg("required columns found")
		}
	}

	return report, report.Err()
}

type tables struct {
	mirror      []pipeline.MirrorRow
	submissions []pipeline.SubmissionRow
}

func (s *SyncService) fetch(ctx context.Context, strategy pipeline.Strategy) (tables, error) {
	var out tables

	mirrorValues, err := s.source.Values(ctx, s.mirror)
	if err != nil {
		return out, err
	}
	submissionValues, err := s.source.Values(ctx, s.submissions)
	if err != nil {
		return out, err
	}

	if out.mirror, _, err = pipeline.ParseMirror(mirrorValues, s.mirror.HeaderRange().FromRow, strategy); err != nil {
		return out, err
	}
	if out.submissions, _, err = pipeline.ParseSubmissions(submissionValues, s.submissions.HeaderRange().FromRow, strategy); err != nil {
		return out, err
	}
	s.log.Info().Int("mirror_rows", len(out.mirror)).Int("submission_rows", len(out.submissions)).Msg("fetched tables")
	return out, nil
}

// Run executes the full pipeline. Unless DryRun is set, the persisted file
// is replaced with the fresh batch.
func (s *SyncService) Run(ctx context.Context, opts RunOptions) (Report, error) {
	rep := Report{TraceID: uuid.NewString(), DryRun: opts.DryRun, Timings: map[string]float64{}}
	log := s.log.With().Str("trace_id", rep.TraceID).Logger()

	mode := internal.ModeSync
	if opts.DryRun {
		mode = internal.ModeDryRun
	}
	started := time.Now()
	if !opts.DryRun {
		s.startRun(log, rep.TraceID, mode)
	}

	err := s.run(ctx, log, opts, &rep)
	rep.Timings["total_ms"] = msSince(started)

	if !opts.DryRun {
		s.finishRun(log, rep.TraceID, mode, err, rep.Timings, rep.Counts(), time.Since(started))
	}
	if err != nil {
		log.Error().Err(err).Str("code", string(internal.CodeOf(err))).Msg("sync failed")
		return rep, err
	}
	log.Info().Int("records", len(rep.Records)).Bool("dry_run", opts.DryRun).Msg("sync complete")
	return rep, nil
}

func (s *SyncService) run(ctx context.Context, log zerolog.Logger, opts RunOptions, rep *Report) error {
	stage := time.Now()
	structure, err := s.ValidateStructure(ctx)
	rep.Structure = structure
	rep.SpreadsheetTitle = structure.SpreadsheetTitle
	if err != nil {
		return err
	}

	data, err := s.fetch(ctx, s.strategy)
	if err != nil {
		return err
	}
	rep.MirrorRows = len(data.mirror)
	rep.SubmissionRows = len(data.submissions)
	rep.Timings["fetch_ms"] = msSince(stage)

	stage = time.Now()
	matched := pipeline.Match(data.mirror, data.submissions, s.strategy)
	rep.Matched = len(matched.Entries)
	rep.Unmatched = matched.Unmatched
	for _, u := range matched.Unmatched {
		log.Warn().Int("mirror_row", u.RowNumber).Str("reason", u.Reason).Msg("mirror row not matched")
	}
	log.Info().Int("matched", rep.Matched).Int("unmatched", len(rep.Unmatched)).Msg("matched mirror rows")

	processed := pipeline.Process(matched.Entries)
	rep.Skipped = processed.Skipped
	rep.Problems = processed.Problems
	if len(processed.Problems) > 0 {
		log.Warn().Strs("problems", processed.Problems).Int("count", len(processed.Problems)).Msg("entries excluded by validation")
	}

	built, warnings := s.builder.Build(processed.Valid)
	rep.Warnings = warnings
	for _, w := range warnings {
		log.Warn().Msg(w)
	}
	rep.Timings["process_ms"] = msSince(stage)

	if opts.DryRun {
		rep.Records = make([]internal.PersonalRecord, 0, len(built))
		for _, b := range built {
			rep.Records = append(rep.Records, b.Record)
		}
		log.Info().Int("records", len(rep.Records)).Msg("dry run, persisted file left untouched")
		return nil
	}

	stage = time.Now()
	existing, err := s.store.Load()
	if err != nil {
		return err
	}
	merged := pipeline.Merge(built, existing)
	if err := s.store.Save(merged.Records); err != nil {
		return err
	}
	rep.Merge = &merged
	rep.Records = merged.Records
	rep.Timings["persist_ms"] = msSince(stage)

	log.Info().
		Str("path", s.store.Path()).
		Int("previous", len(existing)).
		Int("added", len(merged.Added)).
		Int("updated", len(merged.Updated)).
		Int("removed", len(merged.Removed)).
		Msg("saved personals")
	return nil
}

// SyncRow processes one mirror row by title and upserts it into the
// persisted file. Unapproved rows are reported without error.
func (s *SyncService) SyncRow(ctx context.Context, rowNumber int) (RowReport, error) {
	rep := RowReport{TraceID: uuid.NewString(), RowNumber: rowNumber}
	log := s.log.With().Str("trace_id", rep.TraceID).Int("mirror_row", rowNumber).Logger()

	started := time.Now()
	timings := map[string]float64{}
	s.startRun(log, rep.TraceID, internal.ModeRow)

	err := s.syncRow(ctx, log, &rep)
	timings["total_ms"] = msSince(started)

	counts := map[string]int{"records": 0}
	if rep.Record != nil {
		counts["records"] = 1
	}
	s.finishRun(log, rep.TraceID, internal.ModeRow, err, timings, counts, time.Since(started))
	if err != nil {
		log.Error().Err(err).Str("code", string(internal.CodeOf(err))).Msg("row sync failed")
	}
	return rep, err
}

func (s *SyncService) syncRow(ctx context.Context, log zerolog.Logger, rep *RowReport) error {
	if rep.RowNumber < 2 {
		return internal.NewError(internal.CodeValidation, "row must be a data row (2 or greater), got %d", rep.RowNumber)
	}
	if _, err := s.validateStructure(ctx, pipeline.StrategyTitle); err != nil {
		return err
	}
	data, err := s.fetch(ctx, pipeline.StrategyTitle)
	if err != nil {
		return err
	}

	var row *pipeline.MirrorRow
	for i := range data.mirror {
		if data.mirror[i].RowNumber == rep.RowNumber {
			row = &data.mirror[i]
			break
		}
	}
	if row == nil {
		return internal.NewError(internal.CodeValidation, "row %d not found in %s tab", rep.RowNumber, pipeline.TableMirror)
	}
	if !pipeline.IsApproved(row.Approved) {
		log.Info().Str("approved", row.Approved).Msg("row is not approved, nothing to do")
		return nil
	}
	rep.Approved = true

	matched := pipeline.Match([]pipeline.MirrorRow{*row}, data.submissions, pipeline.StrategyTitle)
	if len(matched.Unmatched) > 0 {
		return internal.NewError(internal.CodeValidation, "mirror row %d: %s", rep.RowNumber, matched.Unmatched[0].Reason)
	}
	processed := pipeline.Process(matched.Entries)
	if len(processed.Problems) > 0 {
		return internal.NewError(internal.CodeValidation, "%s", processed.Problems[0])
	}

	built, warnings := s.builder.Build(processed.Valid)
	rep.Warnings = warnings
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	existing, err := s.store.Load()
	if err != nil {
		return err
	}
	records, replaced := pipeline.Upsert(existing, built[0])
	if err := s.store.Save(records); err != nil {
		return err
	}
	rep.Replaced = replaced
	for i := range records {
		if records[i].Title == built[0].Record.Title {
			rep.Record = &records[i]
			break
		}
	}
	log.Info().Str("id", rep.Record.ID).Bool("replaced", replaced).Msg("row saved")
	return nil
}

func (s *SyncService) startRun(log zerolog.Logger, traceID string, mode internal.RunMode) {
	if s.history == nil {
		return
	}
	if err := s.history.InsertRun(traceID, mode); err != nil {
		log.Warn().Err(err).Msg("failed to record run start")
	}
}

func (s *SyncService) finishRun(log zerolog.Logger, traceID string, mode internal.RunMode, runErr error, timings map[string]float64, counts map[string]int, took time.Duration) {
	status := internal.RunSucceeded
	if runErr != nil {
		status = internal.RunFailed
	}

	s.metrics.ObserveRun(mode, status, counts, took)
	if err := s.metrics.Flush(); err != nil {
		log.Warn().Err(err).Msg("failed to write metrics textfile")
	}

	if s.history == nil {
		return
	}
	if err := s.history.FinishRun(traceID, status, internal.CodeOf(runErr), timings, counts); err != nil {
		log.Warn().Err(err).Msg("failed to record run result")
		return
	}
	if status == internal.RunSucceeded {
		if err := s.history.SetMetadata(storage.MetaLastSuccess, time.Now().UTC().Format(time.RFC3339)); err != nil {
			log.Warn().Err(err).Msg("failed to record last success")
		}
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

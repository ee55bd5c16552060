package internal

// PersonalRecord is one approved personal as published to the site.
type PersonalRecord struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Personal   string   `json:"personal"`
	Contact    string   `json:"contact"`
	DatePosted string   `json:"date_posted"`
	Categories []string `json:"categories"`
	Locations  []string `json:"locations"`
}

type RunMode string

const (
	ModeSync    RunMode = "sync"
	ModeDryRun  RunMode = "test"
	ModeRow     RunMode = "row"
	ModeUnknown RunMode = "unknown"
)

type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

type RunRow struct {
	ID         int
	TraceID    string
	Mode       string
	Status     string
	ErrorCode  string
	Counts     map[string]int
	Timings    map[string]float64
	CreatedAt  string
	FinishedAt string
}

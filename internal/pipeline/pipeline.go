// Package pipeline orchestrates the full rebuild: catalog cache, feed
// reconciliation, and the rule-table rewrite.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/acadex/transferrules/internal/catalog"
	"github.com/acadex/transferrules/internal/config"
	"github.com/acadex/transferrules/internal/conflict"
	"github.com/acadex/transferrules/internal/database"
	"github.com/acadex/transferrules/internal/feed"
	"github.com/acadex/transferrules/internal/rules"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error

	counts database.WriteCounts
}

// Result holds the results of a full rebuild.
type Result struct {
	RunID     string
	Steps     []StepResult
	Rules     int
	Sources   int
	Dests     int
	Anomalies int
}

// Failed reports whether any step ended in error.
func (r *Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Pipeline runs the 3-step rule rebuild.
type Pipeline struct {
	cfg      *config.Config
	db       *database.DB
	progress bool
}

// New creates a pipeline over an open database.
func New(cfg *config.Config, db *database.DB, progress bool) *Pipeline {
	return &Pipeline{cfg: cfg, db: db, progress: progress}
}

// Run executes the rebuild. Anomalies are recovered locally; only a
// missing input or a failed write aborts a step.
func (p *Pipeline) Run() *Result {
	r := &Result{RunID: uuid.NewString()}

	log.Println("Step 1/3: Building catalog cache...")
	cache, institutions, step := p.buildCache()
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	log.Println("Step 2/3: Reconciling transfer-rule feed...")
	clog, err := conflict.New(p.cfg.Output.ConflictLog)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Reconcile", Err: err})
		return r
	}
	defer clog.Close()

	ruleSet, step := p.reconcile(cache, institutions, clog)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	log.Println("Step 3/3: Writing rule tables...")
	step = p.write(ruleSet, r.RunID)
	r.Steps = append(r.Steps, step)

	r.Anomalies = clog.Anomalies()
	if step.Err == nil {
		counts := step.counts
		r.Rules, r.Sources, r.Dests = counts.Rules, counts.SourceCourses, counts.DestinationCourses
	}
	return r
}

func (p *Pipeline) buildCache() (*catalog.Index, map[string]bool, StepResult) {
	courses, err := p.db.GetAllCourses()
	if err != nil {
		return nil, nil, StepResult{Name: "Catalog", Err: fmt.Errorf("loading catalog: %w", err)}
	}
	if len(courses) == 0 {
		return nil, nil, StepResult{Name: "Catalog",
			Err: errors.New("catalog is empty; run 'transferrules load' first")}
	}

	institutions, err := p.db.GetInstitutionCodes()
	if err != nil {
		return nil, nil, StepResult{Name: "Catalog", Err: fmt.Errorf("loading institutions: %w", err)}
	}
	if len(institutions) == 0 {
		return nil, nil, StepResult{Name: "Catalog",
			Err: errors.New("institutions table is empty; run 'transferrules load' first")}
	}

	cache := catalog.Load(courses)
	return cache, institutions, StepResult{
		Name:    "Catalog",
		Summary: fmt.Sprintf("Indexed %d offerings of %d courses, %d institutions", len(courses), cache.Len(), len(institutions)),
	}
}

func (p *Pipeline) reconcile(cache *catalog.Index, institutions map[string]bool, clog *conflict.Log) ([]rules.Rule, StepResult) {
	path := p.cfg.QueryPath(p.cfg.Queries.Rules)
	f, err := os.Open(path)
	if err != nil {
		return nil, StepResult{Name: "Reconcile", Err: fmt.Errorf("opening feed: %w", err)}
	}
	defer f.Close()

	reader, err := feed.NewReader(f, p.cfg.IgnoreInstitutions, clog)
	if err != nil {
		return nil, StepResult{Name: "Reconcile", Err: err}
	}

	reconciler := rules.NewReconciler(cache, institutions, clog)
	start := time.Now()
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		var rowErr *feed.RowError
		if errors.As(err, &rowErr) {
			clog.Report("Malformed row: %s. Row skipped.", rowErr)
			continue
		}
		if err != nil {
			return nil, StepResult{Name: "Reconcile", Err: fmt.Errorf("reading feed: %w", err)}
		}

		reconciler.Consume(rec)
		if p.progress && reader.Counts.Rows%1000 == 0 {
			log.Printf("line %d (%.0f rows/s)", reader.Counts.Rows,
				float64(reader.Counts.Rows)/time.Since(start).Seconds())
		}
	}

	ruleSet := reconciler.Finalize()
	return ruleSet, StepResult{
		Name: "Reconcile",
		Summary: fmt.Sprintf("%d rows: %d contributed, %d ineligible, %d ignored, %d malformed; %d rules",
			reader.Counts.Rows, reconciler.Consumed(), reader.Counts.Ineligible,
			reader.Counts.Ignored, reader.Counts.Malformed, len(ruleSet)),
	}
}

func (p *Pipeline) write(ruleSet []rules.Rule, runID string) StepResult {
	counts, err := p.db.ReplaceRules(ruleSet)
	if err != nil {
		return StepResult{Name: "Write", Err: err}
	}

	path := p.cfg.QueryPath(p.cfg.Queries.Rules)
	fileDate := ""
	if info, statErr := os.Stat(path); statErr == nil {
		fileDate = info.ModTime().Format("2006-01-02")
	}
	if err := p.db.StampUpdate(database.UpdateStamp{
		TableName:  "transfer_rules",
		UpdateDate: fileDate,
		FileName:   path,
		RunID:      runID,
	}); err != nil {
		return StepResult{Name: "Write", Err: fmt.Errorf("stamping update: %w", err)}
	}

	return StepResult{
		Name: "Write",
		Summary: fmt.Sprintf("Inserted %d rules, %d source courses, %d destination courses",
			counts.Rules, counts.SourceCourses, counts.DestinationCourses),
		counts: counts,
	}
}

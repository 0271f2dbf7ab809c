// Package scan implements the scan cursor (§4.G): it drives the merge
// planner, the event-row merge queue, and the polygon engine together,
// applying the query's temporal rectangle and any remaining row predicate
// before handing each task's output rows to the caller.
package scan

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xtdb-labs/xtdb/internal/eventptr"
	"github.com/xtdb-labs/xtdb/internal/liveindex"
	"github.com/xtdb-labs/xtdb/internal/mergeplan"
	"github.com/xtdb-labs/xtdb/internal/polygon"
	"github.com/xtdb-labs/xtdb/internal/segment"
	"github.com/xtdb-labs/xtdb/internal/temporal"
	"github.com/xtdb-labs/xtdb/internal/types"
	"github.com/xtdb-labs/xtdb/internal/xerrors"
)

var tracer = otel.Tracer("github.com/xtdb-labs/xtdb/scan")

// Output column names for the four temporal coordinates §4.G's row
// consumer writes alongside the projected document columns.
const (
	ColValidFrom  = "_valid_from"
	ColValidTo    = "_valid_to"
	ColSystemFrom = "_system_from"
	ColSystemTo   = "_system_to"
)

// Row is one output relation row: projected column name to value, plus the
// four temporal columns.
type Row map[string]types.Value

// RowFilter applies the query's remaining (non-iid) row predicates to a
// Row; returning false drops it from the batch §4.G step 5 describes.
type RowFilter func(Row) bool

// Config parameterizes a Cursor.
type Config struct {
	Sources   []*segment.Data
	Live      *liveindex.Snapshot
	Predicate mergeplan.Predicate
	Rectangle temporal.Rectangle
	Project   []string // empty means every document column
	RowFilter RowFilter
	Logger    *slog.Logger // nil means slog.Default()
}

// Cursor is a lazy, pull-based iterator over merge tasks (§5: "one owning
// thread per cursor"). Next returns one task's output batch per call;
// Close releases the merge plan (and, were a buffer pool wired in here,
// every page this cursor pinned — see internal/bufferpool).
type Cursor struct {
	cfg    Config
	tasks  []mergeplan.Task
	cursor int
	closed bool
	log    *slog.Logger
}

// Open plans the scan (§4.F) and returns a ready cursor.
func Open(cfg Config) *Cursor {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	tasks := mergeplan.Plan(cfg.Sources, cfg.Live, cfg.Predicate)
	log.Debug("scan: planned", "tasks", len(tasks), "sources", len(cfg.Sources))
	return &Cursor{cfg: cfg, tasks: tasks, log: log}
}

// Next produces the next task's output batch, or (nil, false, nil) once
// the merge-tasks iterator is exhausted (§4.G termination condition).
func (c *Cursor) Next(ctx context.Context) ([]Row, bool, error) {
	if c.closed {
		return nil, false, xerrors.InvalidArgument("scan: cursor already closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, false, xerrors.Timeout("scan: next", err)
	}
	if c.cursor >= len(c.tasks) {
		return nil, false, nil
	}
	task := c.tasks[c.cursor]
	c.cursor++

	_, span := tracer.Start(ctx, "scan.task", trace.WithAttributes(
		attribute.Int("scan.segments", len(task.Segments)),
		attribute.Bool("scan.live", task.Live != nil),
	))
	rows, err := runTask(task, c.cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		c.log.Warn("scan: task failed", "error", err)
		return nil, false, err
	}
	span.SetAttributes(attribute.Int("scan.rows", len(rows)))
	span.End()
	c.log.Debug("scan: task done", "rows", len(rows))
	return rows, true, nil
}

// Close releases the cursor's resources. A closed cursor's Next always
// errors (§5: "closing releases all pinned pages... no partial results").
func (c *Cursor) Close() {
	c.closed = true
	c.tasks = nil
}

func runTask(task mergeplan.Task, cfg Config) ([]Row, error) {
	sources := make([]eventptr.RowSource, 0, len(task.Segments)+1)
	for _, seg := range task.Segments {
		if seg.Node == nil {
			continue
		}
		page := seg.Data.PageAt(seg.Node.DataPageIdx)
		if page == nil {
			return nil, xerrors.Runtime("scan: open page", fmt.Errorf("missing data page %d", seg.Node.DataPageIdx))
		}
		sources = append(sources, page)
	}
	if task.Live != nil {
		sources = append(sources, task.Live)
	}

	queue := eventptr.NewQueue(sources)
	engine := polygon.NewEngine()

	var out []Row
	for {
		ev, ok := queue.Next()
		if !ok {
			break
		}
		rects := engine.Process(ev, cfg.Rectangle.SystemFromLo, cfg.Rectangle.SystemFromHi)
		for _, rect := range rects {
			if !cfg.Rectangle.IntersectsValidTime(rect.ValidFrom, rect.ValidTo) {
				continue
			}
			if rect.ValidFrom >= rect.ValidTo || rect.SystemFrom >= rect.SystemTo {
				continue // degenerate window
			}
			row := buildRow(rect, cfg.Project)
			if cfg.RowFilter != nil && !cfg.RowFilter(row) {
				continue
			}
			out = append(out, row)
		}
	}
	return out, nil
}

func buildRow(rect polygon.Rectangle, project []string) Row {
	row := make(Row, len(rect.Doc)+4)
	if len(project) == 0 {
		for k, v := range rect.Doc {
			row[k] = v
		}
	} else {
		for _, col := range project {
			if v, ok := rect.Doc[col]; ok {
				row[col] = v
			}
		}
	}
	row[ColValidFrom] = rect.ValidFrom
	row[ColValidTo] = rect.ValidTo
	row[ColSystemFrom] = rect.SystemFrom
	row[ColSystemTo] = rect.SystemTo
	return row
}

// Package compact implements §4.H's fan-in-4 segment compactor: selecting
// groups of same-level segments, merging them leaf by leaf through the same
// planner/merge-queue/polygon machinery a scan cursor uses, and annotating
// every copied row with the recency it needs for a future branch-recency
// trie split.
package compact

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/xtdb-labs/xtdb/internal/eventptr"
	"github.com/xtdb-labs/xtdb/internal/mergeplan"
	"github.com/xtdb-labs/xtdb/internal/polygon"
	"github.com/xtdb-labs/xtdb/internal/segment"
	"github.com/xtdb-labs/xtdb/internal/trie"
	"github.com/xtdb-labs/xtdb/internal/types"
	"github.com/xtdb-labs/xtdb/internal/xerrors"
)

var tracer = otel.Tracer("github.com/xtdb-labs/xtdb/compact")

// DefaultPageSize is the output rows-per-leaf target §4.H's "Output" step
// names. The current trie always materializes exactly one page per leaf
// path (see internal/segment.PathDepth); Config accepts a page size and the
// Compactor stores it, but no output page is split by it: a leaf with more
// rows than this still becomes a single page — see DESIGN.md.
const DefaultPageSize = 256

// DefaultFanIn is the number of same-level segments one compaction group
// merges, per §4.H.
const DefaultFanIn = 4

// Source is one input segment to a compaction job: its registry identity
// plus its already-opened trie and pages.
type Source struct {
	Meta segment.Meta
	Data *segment.Data
}

// Config parameterizes a Compactor.
type Config struct {
	FanIn    int // 0 means DefaultFanIn
	PageSize int // 0 means DefaultPageSize
	Logger   *slog.Logger
}

// Result is one compaction group's output: the new segment's identity and
// data, plus the inputs that become GC-eligible once it is published
// (§4.H: "once the new segment is published, the inputs become eligible
// for garbage collection").
type Result struct {
	Name   segment.Name
	Data   *segment.Data
	Inputs []segment.Meta
}

// Compactor runs one table's compaction groups. Only one job may run per
// table at a time (§5: "at most one compactor"); Compactor itself holds no
// mutable state across calls and leaves that serialization to the caller.
type Compactor struct {
	fanIn    int
	pageSize int
	log      *slog.Logger
}

// New returns a ready Compactor, applying DefaultFanIn/DefaultPageSize
// where cfg leaves them zero.
func New(cfg Config) *Compactor {
	fanIn := cfg.FanIn
	if fanIn <= 0 {
		fanIn = DefaultFanIn
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Compactor{fanIn: fanIn, pageSize: pageSize, log: log}
}

// SelectGroups groups a table's registered segments by level and chunks
// each level, ascending by next_row, into fan-in-sized batches (§4.H
// selection step). A level with fewer than fanIn segments left over
// contributes no group this round.
func (c *Compactor) SelectGroups(reg *segment.Registry) map[int][][]segment.Meta {
	out := make(map[int][][]segment.Meta)
	seen := make(map[int]bool)
	for _, m := range reg.All() {
		seen[m.Name.Level] = true
	}
	for lvl := range seen {
		metas := reg.Level(lvl)
		for i := 0; i+c.fanIn <= len(metas); i += c.fanIn {
			out[lvl] = append(out[lvl], metas[i:i+c.fanIn])
		}
	}
	return out
}

// CompactGroup merges exactly one fan-in group of same-level sources into a
// single L+1 output (§4.H "Merge"/"Output"). group must be ordered
// ascending by next_row; the caller is responsible for resolving each
// Meta's Payload into an opened Source before calling this (the compactor
// itself has no object-store dependency).
func (c *Compactor) CompactGroup(ctx context.Context, group []Source) (*Result, error) {
	if len(group) == 0 {
		return nil, xerrors.InvalidArgument("compact: empty group")
	}

	ctx, span := tracer.Start(ctx, "compact.group", trace.WithAttributes(
		attribute.Int("compact.level_in", group[0].Meta.Name.Level),
		attribute.Int("compact.fan_in", len(group)),
	))
	var retErr error
	defer func() {
		if retErr != nil {
			span.RecordError(retErr)
			span.SetStatus(codes.Error, retErr.Error())
		}
		span.End()
	}()

	metas := make([]segment.Meta, len(group))
	sources := make([]*segment.Data, len(group))
	last := group[0].Meta.Name
	for i, s := range group {
		metas[i] = s.Meta
		sources[i] = s.Data
		if s.Meta.Name.NextRow > last.NextRow {
			last = s.Meta.Name
		}
	}

	tasks := mergeplan.Plan(sources, nil, mergeplan.Predicate{})
	c.log.Debug("compact: planned merge", "level", group[0].Meta.Name.Level, "tasks", len(tasks))

	merged, err := c.mergeTasks(ctx, tasks, sources)
	if err != nil {
		retErr = xerrors.Runtime("compact: merge tasks", err)
		return nil, retErr
	}

	data := segment.BuildCompactedData(merged)
	outName := segment.Name{Level: group[0].Meta.Name.Level + 1, FirstRow: group[0].Meta.Name.FirstRow, NextRow: last.NextRow}
	span.SetAttributes(
		attribute.Int("compact.level_out", outName.Level),
		attribute.Int64("compact.next_row", outName.NextRow),
		attribute.Int("compact.output_pages", len(data.Pages)),
	)
	c.log.Debug("compact: group published", "name", outName.Format(), "pages", len(data.Pages))

	return &Result{Name: outName, Data: data, Inputs: metas}, nil
}

// mergeTasks runs one merge per leaf task concurrently, bounded by the
// compactor's fan-in (§4.H: "for each leaf task, seed a merge queue").
func (c *Compactor) mergeTasks(ctx context.Context, tasks []mergeplan.Task, sources []*segment.Data) ([]segment.RecencyLeafGroup, error) {
	out := make([]segment.RecencyLeafGroup, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanIn)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rg, err := mergeTask(task, sources)
			if err != nil {
				return err
			}
			out[i] = rg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	nonEmpty := out[:0]
	for _, rg := range out {
		if len(rg.Events) > 0 {
			nonEmpty = append(nonEmpty, rg)
		}
	}
	return nonEmpty, nil
}

// mergeTask drains one leaf task's merge queue through a fresh polygon
// engine, copying every row in (iid asc, system_from desc) order and
// annotating it with its resolved recency (§4.H "Merge"). Unlike a scan
// cursor, compaction runs the full system-time range and keeps every row
// regardless of op — puts, deletes, and erases all survive a compaction,
// since a future query may still need their history.
func mergeTask(task mergeplan.Task, sources []*segment.Data) (segment.RecencyLeafGroup, error) {
	rs := make([]eventptr.RowSource, 0, len(task.Segments)+1)
	for i, seg := range task.Segments {
		if seg.Node == nil {
			continue
		}
		page := sources[i].PageAt(seg.Node.DataPageIdx)
		if page == nil {
			return segment.RecencyLeafGroup{}, fmt.Errorf("missing data page %d", seg.Node.DataPageIdx)
		}
		rs = append(rs, page)
	}
	if task.Live != nil {
		rs = append(rs, task.Live)
	}

	queue := eventptr.NewQueue(rs)
	engine := polygon.NewEngine()

	out := segment.RecencyLeafGroup{Path: append(trie.Path(nil), task.Path...)}
	for {
		ev, ok := queue.Next()
		if !ok {
			break
		}
		recency, ok := engine.Recency(ev, 0, types.MaxMicros)
		if !ok {
			recency = ev.SystemFrom
		}
		out.Events = append(out.Events, segment.RecencyEvent{Event: ev, Recency: recency})
	}
	return out, nil
}

// CompactAll repeatedly selects and runs groups until no group of fanIn
// segments remains at any level (§4.H: "compactAll repeatedly selects-and-
// runs until no group of four remains at any level"). open resolves a Meta
// to an opened Source; write persists a completed Result's data/meta files
// (the only externally visible side effect — object-store writes are
// outside this package's scope). CompactAll itself updates reg: the new
// segment is added and its inputs removed once write succeeds, so a
// repeated SelectGroups call never reselects an already-compacted input and
// the loop is guaranteed to terminate.
func (c *Compactor) CompactAll(ctx context.Context, reg *segment.Registry, open func(segment.Meta) (Source, error), write func(*Result) error) error {
	for {
		groups := c.SelectGroups(reg)
		if len(groups) == 0 {
			return nil
		}
		ran := false
		for _, levelGroups := range groups {
			for _, metas := range levelGroups {
				sources := make([]Source, len(metas))
				for i, m := range metas {
					s, err := open(m)
					if err != nil {
						c.log.Error("compact: job aborted", "stage", "open", "error", err)
						return xerrors.Storage("compact: open input", err)
					}
					sources[i] = s
				}
				result, err := c.CompactGroup(ctx, sources)
				if err != nil {
					c.log.Error("compact: job aborted", "stage", "merge", "error", err)
					return err
				}
				if err := write(result); err != nil {
					c.log.Error("compact: job aborted", "stage", "write", "error", err)
					return xerrors.Runtime("compact: write output", err)
				}
				reg.Add(segment.Meta{Name: result.Name, Payload: result.Data})
				for _, m := range result.Inputs {
					reg.Remove(m)
				}
				ran = true
			}
		}
		if !ran {
			return nil
		}
	}
}

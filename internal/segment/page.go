// Page wraps an Arrow record batch as a segment data page (§4.B: "Data
// pages are Arrow record batches"). The five fixed columns (iid,
// system_from, op, valid_from, valid_to) are always present; document
// columns are appended per the put payload's own column set.
package segment

import (
	"fmt"

	"github.com/apache/arrow/go/arrow"
	"github.com/apache/arrow/go/arrow/array"
	"github.com/apache/arrow/go/arrow/memory"

	"github.com/xtdb-labs/xtdb/internal/types"
)

// Fixed column names every data page carries.
const (
	ColIid        = "_iid"
	ColSystemFrom = "_system_from"
	ColOp         = "_op"
	ColValidFrom  = "_valid_from"
	ColValidTo    = "_valid_to"

	// ColRecency is the extra column compaction attaches to every copied row
	// (§4.H): the polygon engine's resolved sys_to for that row, ∞ encoded
	// as types.MaxMicros. Only pages built by BuildCompactedData carry it.
	ColRecency = "_recency"
)

// fixedFields is the schema prefix shared by every page. recency appends
// the compaction-only _recency column right after the five base columns.
func fixedFields(recency bool) []arrow.Field {
	fields := []arrow.Field{
		{Name: ColIid, Type: &arrow.FixedSizeBinaryType{ByteWidth: 16}},
		{Name: ColSystemFrom, Type: arrow.PrimitiveTypes.Int64},
		{Name: ColOp, Type: arrow.PrimitiveTypes.Uint8},
		{Name: ColValidFrom, Type: arrow.PrimitiveTypes.Int64},
		{Name: ColValidTo, Type: arrow.PrimitiveTypes.Int64},
	}
	if recency {
		fields = append(fields, arrow.Field{Name: ColRecency, Type: arrow.PrimitiveTypes.Int64})
	}
	return fields
}

// DocColumnType is the minimal type lattice document columns unify over.
// Full type unification is the query planner's job (§1 out of scope); the
// storage core only needs enough of a lattice to lay out a column.
type DocColumnType uint8

const (
	DocInt64 DocColumnType = iota
	DocFloat64
	DocString
	DocBool
)

func (t DocColumnType) arrowType() arrow.DataType {
	switch t {
	case DocInt64:
		return arrow.PrimitiveTypes.Int64
	case DocFloat64:
		return arrow.PrimitiveTypes.Float64
	case DocString:
		return arrow.BinaryTypes.String
	case DocBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// inferDocType picks a column's DocColumnType from a sample value.
func inferDocType(v types.Value) DocColumnType {
	switch v.(type) {
	case int, int32, int64:
		return DocInt64
	case float32, float64:
		return DocFloat64
	case bool:
		return DocBool
	default:
		return DocString
	}
}

// Builder accumulates Events into an Arrow record batch page.
type Builder struct {
	mem      memory.Allocator
	docCols  []string
	docType  map[string]DocColumnType
	schema   *arrow.Schema
	rb       *array.RecordBuilder
	rows     int
	recency  bool
	docStart int
}

// NewBuilder creates a page builder. docCols fixes the document column
// order and types, inferred from the events the caller is about to append.
func NewBuilder(docCols []string, docType map[string]DocColumnType) *Builder {
	return newBuilder(docCols, docType, false)
}

// NewBuilderWithRecency creates a page builder whose schema additionally
// carries the _recency column compaction output pages need (§4.H); use
// AppendWithRecency to populate it.
func NewBuilderWithRecency(docCols []string, docType map[string]DocColumnType) *Builder {
	return newBuilder(docCols, docType, true)
}

func newBuilder(docCols []string, docType map[string]DocColumnType, recency bool) *Builder {
	fields := append(fixedFields(recency), make([]arrow.Field, 0, len(docCols))...)
	for _, c := range docCols {
		fields = append(fields, arrow.Field{Name: c, Type: docType[c].arrowType(), Nullable: true})
	}
	schema := arrow.NewSchema(fields, nil)
	mem := memory.NewGoAllocator()
	docStart := 5
	if recency {
		docStart = 6
	}
	return &Builder{
		mem:      mem,
		docCols:  docCols,
		docType:  docType,
		schema:   schema,
		rb:       array.NewRecordBuilder(mem, schema),
		recency:  recency,
		docStart: docStart,
	}
}

// Append adds one event row.
func (b *Builder) Append(e types.Event) error {
	return b.appendRow(e, 0)
}

// AppendWithRecency adds one event row plus its resolved _recency value; it
// returns an error if the builder was not created with NewBuilderWithRecency.
func (b *Builder) AppendWithRecency(e types.Event, recency types.Micros) error {
	if !b.recency {
		return fmt.Errorf("segment: builder has no _recency column")
	}
	return b.appendRow(e, recency)
}

func (b *Builder) appendRow(e types.Event, recency types.Micros) error {
	b.rb.Field(0).(*array.FixedSizeBinaryBuilder).Append(e.Iid[:])
	b.rb.Field(1).(*array.Int64Builder).Append(int64(e.SystemFrom))
	b.rb.Field(2).(*array.Uint8Builder).Append(uint8(e.Op))
	b.rb.Field(3).(*array.Int64Builder).Append(int64(e.ValidFrom))
	b.rb.Field(4).(*array.Int64Builder).Append(int64(e.ValidTo))
	if b.recency {
		b.rb.Field(5).(*array.Int64Builder).Append(int64(recency))
	}

	for i, col := range b.docCols {
		fb := b.rb.Field(b.docStart + i)
		v, ok := e.Doc[col]
		if !ok || v == nil {
			fb.AppendNull()
			continue
		}
		if err := appendDocValue(fb, b.docType[col], v); err != nil {
			return fmt.Errorf("segment: column %q: %w", col, err)
		}
	}
	b.rows++
	return nil
}

func appendDocValue(fb array.Builder, t DocColumnType, v types.Value) error {
	switch t {
	case DocInt64:
		n, ok := asInt64(v)
		if !ok {
			return fmt.Errorf("expected int-like value, got %T", v)
		}
		fb.(*array.Int64Builder).Append(n)
	case DocFloat64:
		f, ok := asFloat64(v)
		if !ok {
			return fmt.Errorf("expected float-like value, got %T", v)
		}
		fb.(*array.Float64Builder).Append(f)
	case DocBool:
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool value, got %T", v)
		}
		fb.(*array.BooleanBuilder).Append(bv)
	default:
		fb.(*array.StringBuilder).Append(fmt.Sprint(v))
	}
	return nil
}

func asInt64(v types.Value) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func asFloat64(v types.Value) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Rows reports how many rows have been appended so far.
func (b *Builder) Rows() int { return b.rows }

// NewRecord finalizes the builder into an immutable Arrow record. The
// builder must not be reused afterwards.
func (b *Builder) NewRecord() arrow.Record {
	return b.rb.NewRecord()
}

// Schema returns the page's Arrow schema.
func (b *Builder) Schema() *arrow.Schema { return b.schema }

// Page is a read-only view over a data page's Arrow record.
type Page struct {
	Record     arrow.Record
	docCols    []string
	docStart   int
	hasRecency bool
}

// NewPage wraps a record with the document column names it carries (every
// field after the fixed prefix, which is five columns, or six when the
// record carries a compaction _recency column).
func NewPage(rec arrow.Record) *Page {
	schema := rec.Schema()
	docStart := 5
	hasRecency := schema.NumFields() > 5 && schema.Field(5).Name == ColRecency
	if hasRecency {
		docStart = 6
	}
	docCols := make([]string, 0, schema.NumFields()-docStart)
	for i := docStart; i < schema.NumFields(); i++ {
		docCols = append(docCols, schema.Field(i).Name)
	}
	return &Page{Record: rec, docCols: docCols, docStart: docStart, hasRecency: hasRecency}
}

// NumRows reports the page's row count.
func (p *Page) NumRows() int { return int(p.Record.NumRows()) }

// Iid returns the iid of row i.
func (p *Page) Iid(i int) types.Iid {
	col := p.Record.Column(0).(*array.FixedSizeBinary)
	var out types.Iid
	copy(out[:], col.Value(i))
	return out
}

// SystemFrom returns row i's system_from.
func (p *Page) SystemFrom(i int) types.Micros {
	return types.Micros(p.Record.Column(1).(*array.Int64).Value(i))
}

// Op returns row i's operation tag.
func (p *Page) Op(i int) types.Op {
	return types.Op(p.Record.Column(2).(*array.Uint8).Value(i))
}

// ValidFrom returns row i's valid_from.
func (p *Page) ValidFrom(i int) types.Micros {
	return types.Micros(p.Record.Column(3).(*array.Int64).Value(i))
}

// ValidTo returns row i's valid_to.
func (p *Page) ValidTo(i int) types.Micros {
	return types.Micros(p.Record.Column(4).(*array.Int64).Value(i))
}

// Doc reconstructs row i's document from the page's document columns.
func (p *Page) Doc(i int) types.Doc {
	if len(p.docCols) == 0 {
		return nil
	}
	doc := make(types.Doc, len(p.docCols))
	for ci, name := range p.docCols {
		col := p.Record.Column(p.docStart + ci)
		if col.IsNull(i) {
			continue
		}
		doc[name] = readArrowValue(col, i)
	}
	return doc
}

// HasRecency reports whether this page was produced by compaction and
// therefore carries a _recency column (§4.H).
func (p *Page) HasRecency() bool { return p.hasRecency }

// Recency returns row i's _recency column value. Only valid when
// HasRecency reports true.
func (p *Page) Recency(i int) types.Micros {
	return types.Micros(p.Record.Column(5).(*array.Int64).Value(i))
}

func readArrowValue(col arrow.Array, i int) types.Value {
	switch c := col.(type) {
	case *array.Int64:
		return c.Value(i)
	case *array.Float64:
		return c.Value(i)
	case *array.Boolean:
		return c.Value(i)
	case *array.String:
		return c.Value(i)
	default:
		return nil
	}
}

// Event reconstructs the full Event for row i.
func (p *Page) Event(i int) types.Event {
	return types.Event{
		Iid:        p.Iid(i),
		SystemFrom: p.SystemFrom(i),
		Op:         p.Op(i),
		Doc:        p.Doc(i),
		ValidFrom:  p.ValidFrom(i),
		ValidTo:    p.ValidTo(i),
	}
}

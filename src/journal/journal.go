// Package journal records a simulation's event stream to a file so a run can
// be inspected or replayed later.
//
// A journal is a header record followed by one record per event. Records are
// protobuf Struct messages framed by DefaultCoder.
package journal

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danmuck/procsim/src/rendezvous"
	"github.com/danmuck/procsim/src/sim"
	logs "github.com/danmuck/smplog"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	recordHeader = "header"
	recordEvent  = "event"

	// rawSuffix marks a base64 copy of a text field that is not valid UTF-8.
	rawSuffix = "_b64"
)

var ErrNoHeader = errors.New("journal does not start with a header record")

// Header identifies the run and carries what is needed to rebuild it.
type Header struct {
	RunID     string
	Processes int
	Slots     int
	Policy    rendezvous.Policy
	StartedAt time.Time
}

func NewHeader(cfg sim.Config) Header {
	return Header{
		RunID:     uuid.NewString(),
		Processes: cfg.Processes,
		Slots:     cfg.Slots(),
		Policy:    cfg.Policy,
		StartedAt: time.Now().UTC(),
	}
}

// Config returns a non-interactive simulation config matching the header.
func (h Header) Config() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Processes = h.Processes
	cfg.ChannelSlots = h.Slots
	cfg.Policy = h.Policy
	cfg.Prompt = sim.PromptNever
	return cfg
}

func (h Header) record() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"record":     recordHeader,
		"run_id":     h.RunID,
		"processes":  h.Processes,
		"slots":      h.Slots,
		"policy":     string(h.Policy),
		"started_at": h.StartedAt.Format(time.RFC3339Nano),
	})
}

func headerFromRecord(rec *structpb.Struct) (Header, error) {
	f := rec.GetFields()
	if f["record"].GetStringValue() != recordHeader {
		return Header{}, ErrNoHeader
	}
	started, err := time.Parse(time.RFC3339Nano, f["started_at"].GetStringValue())
	if err != nil {
		return Header{}, fmt.Errorf("header started_at: %w", err)
	}
	return Header{
		RunID:     f["run_id"].GetStringValue(),
		Processes: int(f["processes"].GetNumberValue()),
		Slots:     int(f["slots"].GetNumberValue()),
		Policy:    rendezvous.Policy(f["policy"].GetStringValue()),
		StartedAt: started,
	}, nil
}

func eventRecord(e sim.Event) (*structpb.Struct, error) {
	fields := map[string]any{
		"record":  recordEvent,
		"seq":     e.Seq,
		"kind":    string(e.Kind),
		"turn":    e.Turn,
		"process": e.Process,
		"peer":    e.Peer,
		"value":   e.Value,
		"pending": e.Pending,
	}
	putText(fields, "line", e.Line)
	putText(fields, "reason", e.Reason)
	return structpb.NewStruct(fields)
}

// putText stores s under key. Input lines are raw bytes, so anything that
// proto strings cannot hold is kept as base64 next to a sanitized copy.
func putText(fields map[string]any, key, s string) {
	if utf8.ValidString(s) {
		fields[key] = s
		return
	}
	fields[key] = strings.ToValidUTF8(s, string(utf8.RuneError))
	fields[key+rawSuffix] = base64.StdEncoding.EncodeToString([]byte(s))
}

func getText(f map[string]*structpb.Value, key string) (string, error) {
	raw, ok := f[key+rawSuffix]
	if !ok {
		return f[key].GetStringValue(), nil
	}
	b, err := base64.StdEncoding.DecodeString(raw.GetStringValue())
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", key, err)
	}
	return string(b), nil
}

func eventFromRecord(rec *structpb.Struct) (sim.Event, error) {
	f := rec.GetFields()
	if kind := f["record"].GetStringValue(); kind != recordEvent {
		return sim.Event{}, fmt.Errorf("unexpected %q record", kind)
	}
	line, err := getText(f, "line")
	if err != nil {
		return sim.Event{}, err
	}
	reason, err := getText(f, "reason")
	if err != nil {
		return sim.Event{}, err
	}
	return sim.Event{
		Seq:     int(f["seq"].GetNumberValue()),
		Kind:    sim.EventKind(f["kind"].GetStringValue()),
		Turn:    int(f["turn"].GetNumberValue()),
		Process: int(f["process"].GetNumberValue()),
		Peer:    int(f["peer"].GetNumberValue()),
		Value:   int(f["value"].GetNumberValue()),
		Line:    line,
		Reason:  reason,
		Pending: int(f["pending"].GetNumberValue()),
	}, nil
}

// Writer is a sim.Observer that appends every event to w. The first write
// failure is kept and later events are dropped.
type Writer struct {
	w     io.Writer
	coder Coder
	count int
	err   error
}

// NewWriter writes h to w and returns a Writer ready to observe events.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	jw := &Writer{w: w, coder: DefaultCoder{}}
	rec, err := h.record()
	if err != nil {
		return nil, fmt.Errorf("build header: %w", err)
	}
	if err := jw.write(rec); err != nil {
		return nil, err
	}
	return jw, nil
}

func (w *Writer) Observe(e sim.Event) {
	if w.err != nil {
		return
	}
	rec, err := eventRecord(e)
	if err != nil {
		w.err = fmt.Errorf("build event %d: %w", e.Seq, err)
		logs.Warnf("journal: %v; further events dropped", w.err)
		return
	}
	if err := w.write(rec); err != nil {
		w.err = err
		logs.Warnf("journal: %v; further events dropped", err)
		return
	}
	w.count++
}

func (w *Writer) write(rec *structpb.Struct) error {
	data, err := w.coder.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Count is the number of events written.
func (w *Writer) Count() int { return w.count }

func (w *Writer) Err() error { return w.err }

type Reader struct {
	r      io.Reader
	coder  Coder
	header *Header
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, coder: DefaultCoder{}}
}

// Header reads the header record on first use.
func (r *Reader) Header() (Header, error) {
	if r.header != nil {
		return *r.header, nil
	}
	rec, err := r.coder.Decode(r.r)
	if errors.Is(err, io.EOF) {
		return Header{}, ErrNoHeader
	}
	if err != nil {
		return Header{}, err
	}
	h, err := headerFromRecord(rec)
	if err != nil {
		return Header{}, err
	}
	r.header = &h
	return h, nil
}

// Next returns the next event, or io.EOF after the last one.
func (r *Reader) Next() (sim.Event, error) {
	if _, err := r.Header(); err != nil {
		return sim.Event{}, err
	}
	rec, err := r.coder.Decode(r.r)
	if err != nil {
		return sim.Event{}, err
	}
	return eventFromRecord(rec)
}

func ReadAll(r io.Reader) (Header, []sim.Event, error) {
	jr := NewReader(r)
	h, err := jr.Header()
	if err != nil {
		return Header{}, nil, err
	}
	var events []sim.Event
	for {
		e, err := jr.Next()
		if errors.Is(err, io.EOF) {
			return h, events, nil
		}
		if err != nil {
			return h, events, fmt.Errorf("read event %d: %w", len(events), err)
		}
		events = append(events, e)
	}
}

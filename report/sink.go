package report

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/nvr-ai/go-camoxai/controller"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Sink persists decision outcomes.
type Sink interface {
	Write(name string, o *controller.Outcome) error
}

// DirSink writes JSON artifacts into a directory:
//
//	<dir>/<base>.json           weak area record
//	<dir>/<base>_findings.json  finding records
//	<dir>/<base>_message.txt    explanation text
//
// where base is the image name without its extension.
type DirSink struct {
	Dir string
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create report dir %s", dir)
	}
	return &DirSink{Dir: dir}, nil
}

// Write implements Sink.
func (s *DirSink) Write(name string, o *controller.Outcome) error {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	r := FromOutcome(name, o)

	if err := s.writeJSON(base+".json", r.WeakAreas); err != nil {
		return err
	}
	if err := s.writeJSON(base+"_findings.json", r.Findings); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, base+"_message.txt")
	if err := os.WriteFile(path, []byte(r.Message+"\n"), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// WriteStats writes the per-image stats of a batch to <dir>/stats.json.
func (s *DirSink) WriteStats(stats []StatsRecord) error {
	if stats == nil {
		stats = []StatsRecord{}
	}
	return s.writeJSON("stats.json", stats)
}

func (s *DirSink) writeJSON(file string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", file)
	}
	path := filepath.Join(s.Dir, file)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// MemorySink keeps reports in memory. It is safe for concurrent use.
type MemorySink struct {
	mu      sync.Mutex
	reports map[string]Report
	order   []string
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{reports: map[string]Report{}}
}

// Write implements Sink.
func (s *MemorySink) Write(name string, o *controller.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[name]; !ok {
		s.order = append(s.order, name)
	}
	s.reports[name] = FromOutcome(name, o)
	return nil
}

// Get returns the report written under name.
func (s *MemorySink) Get(name string) (Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[name]
	return r, ok
}

// Names returns the written names in first-write order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

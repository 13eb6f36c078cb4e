package logging

import (
	"sync"

	"go.uber.org/zap/zapcore"

	"github.com/surfacegen/genapi/internal/errors"
)

// Collector is a zapcore.Core that turns coded log entries back into
// diagnostics, so the CLI can summarize the warnings of a run. Entries
// without a "code" field are ignored.
type Collector struct {
	mu     *sync.Mutex
	list   *errors.DiagnosticList
	fields []zapcore.Field
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{mu: &sync.Mutex{}, list: &errors.DiagnosticList{}}
}

// Diagnostics returns a copy of everything collected so far
func (c *Collector) Diagnostics() errors.DiagnosticList {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(errors.DiagnosticList, len(*c.list))
	copy(out, *c.list)
	return out
}

// Reset drops collected diagnostics
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.list = (*c.list)[:0]
}

// Enabled implements zapcore.Core
func (c *Collector) Enabled(level zapcore.Level) bool {
	return level >= zapcore.WarnLevel
}

// With implements zapcore.Core
func (c *Collector) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &Collector{mu: c.mu, list: c.list, fields: merged}
}

// Check implements zapcore.Core
func (c *Collector) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

// Write implements zapcore.Core
func (c *Collector) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	code, _ := enc.Fields["code"].(string)
	if code == "" {
		return nil
	}
	d := &errors.Diagnostic{
		Code:     errors.Code(code),
		Severity: errors.SeverityWarning,
		Message:  entry.Message,
	}
	if entry.Level >= zapcore.ErrorLevel {
		d.Severity = errors.SeverityError
	}
	d.Type, _ = enc.Fields["type"].(string)
	d.Definition, _ = enc.Fields["definition"].(string)
	d.File, _ = enc.Fields["file"].(string)

	c.mu.Lock()
	defer c.mu.Unlock()
	*c.list = append(*c.list, d)
	return nil
}

// Sync implements zapcore.Core
func (c *Collector) Sync() error { return nil }

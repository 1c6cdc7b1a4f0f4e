// Package testutil holds shared test doubles.
package testutil

import (
	"sync"

	"github.com/Happy-Ferret/addons-code-manager/internal/logging"
)

// DummyLogger is a no-op logging.Logger that records messages so tests can
// assert on them when they care.
type DummyLogger struct {
	mu       sync.Mutex
	Messages []string
}

var _ logging.Logger = (*DummyLogger)(nil)

func (d *DummyLogger) record(msg string) {
	d.mu.Lock()
	d.Messages = append(d.Messages, msg)
	d.mu.Unlock()
}

func (d *DummyLogger) Debug(msg string, fields ...logging.Field) { d.record(msg) }
func (d *DummyLogger) Info(msg string, fields ...logging.Field)  { d.record(msg) }
func (d *DummyLogger) Warn(msg string, fields ...logging.Field)  { d.record(msg) }
func (d *DummyLogger) Error(msg string, fields ...logging.Field) { d.record(msg) }

func (d *DummyLogger) With(fields ...logging.Field) logging.Logger { return d }

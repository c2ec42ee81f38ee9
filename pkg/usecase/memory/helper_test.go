package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/repository"
	"github.com/alfred-assistant/alfred/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

// mockDocument keeps the document in memory and counts calls
type mockDocument struct {
	data     []byte
	reads    int
	writes   int
	readErr  error
	writeErr error
}

func (m *mockDocument) Read(ctx context.Context) ([]byte, error) {
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.data == nil {
		return nil, goerr.Wrap(repository.ErrDocumentNotFound, "empty mock")
	}
	return m.data, nil
}

func (m *mockDocument) Write(ctx context.Context, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *mockDocument) Name() string {
	return "mock"
}

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

// clock returns a controllable time source starting at baseTime
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newUseCase(t *testing.T, doc *mockDocument, opts ...memory.Option) (*memory.UseCase, *clock) {
	t.Helper()
	c := &clock{now: baseTime}
	opts = append([]memory.Option{memory.WithClock(c.Now)}, opts...)
	return memory.New(doc, opts...), c
}

// mustMessage takes a (msg, err) pair: mustMessage(t)(uc.RememberFreeform(ctx, text))
func mustMessage(t *testing.T) func(*model.Message, error) *model.Message {
	return func(msg *model.Message, err error) *model.Message {
		t.Helper()
		gt.NoError(t, err)
		gt.V(t, msg).NotNil()
		return msg
	}
}

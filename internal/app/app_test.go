package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"wsconsole/internal/dom"
	"wsconsole/internal/eventloop"
	"wsconsole/internal/model"
	"wsconsole/internal/transport/ws"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) Send(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) frames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeDisplay struct {
	texts []string
}

func (d *fakeDisplay) SetText(text string) {
	d.texts = append(d.texts, text)
}

// syncBuffer is a log sink that can be read while the loop writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) records(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func newLoop(t *testing.T) *eventloop.Loop {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	l := eventloop.New()
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l
}

func flush(t *testing.T, l *eventloop.Loop) {
	t.Helper()
	require.NoError(t, l.Do(context.Background(), func() {}))
}

func newForm(t *testing.T, l *eventloop.Loop) (*dom.Document, *dom.Form) {
	t.Helper()
	doc := dom.NewDocument(l)
	form, err := doc.NewForm(CommandFormID, CommandField)
	require.NoError(t, err)
	return doc, form
}

func TestSubmitterSendsFieldValue(t *testing.T) {
	l := newLoop(t)
	doc, form := newForm(t, l)
	sender := &fakeSender{}
	NewCommandSubmitter(sender, CommandField, zerolog.Nop()).Bind(form.OnSubmit)

	for _, s := range []string{"restart", "", "  spaced  ", "<script>"} {
		require.NoError(t, form.SetField(CommandField, s))
		form.Submit()
		flush(t, l)
	}

	require.Equal(t, []string{"restart", "", "  spaced  ", "<script>"}, sender.frames())
	require.Zero(t, doc.Navigations())
}

func TestSubmitterSwallowsSendFailure(t *testing.T) {
	l := newLoop(t)
	doc, form := newForm(t, l)
	var logs syncBuffer
	sender := &fakeSender{err: ws.ErrInvalidState}
	NewCommandSubmitter(sender, CommandField, zerolog.New(&logs)).Bind(form.OnSubmit)

	require.NoError(t, form.SetField(CommandField, "stop"))
	require.NotPanics(t, func() {
		form.Submit()
		flush(t, l)
	})

	require.Empty(t, sender.frames())
	require.Zero(t, doc.Navigations())
	recs := logs.records(t)
	require.Len(t, recs, 1)
	require.Equal(t, "warn", recs[0]["level"])
}

func TestStatusEchoLastWriteWins(t *testing.T) {
	display := &fakeDisplay{}
	echo := NewStatusEcho(display, zerolog.Nop())

	echo.OnMessage(model.MessageEvent{Data: "m1"})
	echo.OnMessage(model.MessageEvent{Data: "m2 & <b>"})

	require.Equal(t, []string{"m1", "m2 & <b>"}, display.texts)
}

func TestStatusEchoLifecycleLogging(t *testing.T) {
	tests := []struct {
		name  string
		fire  func(*StatusEcho)
		event string
		level string
	}{
		{"open", func(s *StatusEcho) { s.OnOpen(model.OpenEvent{URL: "ws://h/ws"}) }, "open", "info"},
		{"error", func(s *StatusEcho) { s.OnError(model.ErrorEvent{Err: errors.New("boom")}) }, "error", "error"},
		{"close", func(s *StatusEcho) { s.OnClose(model.CloseEvent{Code: 1000, WasClean: true}) }, "close", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs syncBuffer
			display := &fakeDisplay{}
			tt.fire(NewStatusEcho(display, zerolog.New(&logs)))

			recs := logs.records(t)
			require.Len(t, recs, 1)
			require.Equal(t, tt.event, recs[0]["event"])
			require.Equal(t, tt.level, recs[0]["level"])
			require.Contains(t, recs[0], "detail")
			require.Empty(t, display.texts)
		})
	}
}

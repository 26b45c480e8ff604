package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"resumeEditor/internal/editor"
	"resumeEditor/internal/resume"
	"resumeEditor/internal/syncer"
)

type call struct {
	kind  string
	title string
}

type memAPI struct {
	mu    sync.Mutex
	calls []call
}

func (m *memAPI) record(kind, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{kind: kind, title: title})
}

func (m *memAPI) snapshot() []call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]call(nil), m.calls...)
}

func (m *memAPI) UpdateResumeFull(_ context.Context, id string, u resume.FullUpdate) (*resume.Resume, error) {
	m.record("full", u.Title)
	return &resume.Resume{ID: id, Title: u.Title}, nil
}

func (m *memAPI) UpdateResumeMetadata(_ context.Context, id string, u resume.MetadataUpdate) (*resume.Resume, error) {
	title := ""
	if u.Title != nil {
		title = *u.Title
	}
	m.record("metadata", title)
	return &resume.Resume{ID: id, Title: title}, nil
}

func (m *memAPI) ReplaceSections(_ context.Context, id string, _ []resume.Section) (*resume.Resume, error) {
	m.record("sections", "")
	return &resume.Resume{ID: id}, nil
}

func newTestSession(api *memAPI, out io.Writer) *session {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newSession(editor.New(editor.WithLogger(logger)), api, out,
		[]syncer.AutoSaveOption{syncer.WithSaveDelay(time.Hour), syncer.WithSaveLogger(logger)},
		[]syncer.RemoteOption{syncer.WithSyncLogger(logger)},
	)
}

func TestSessionQueuesOfflineEditsAndFlushes(t *testing.T) {
	api := &memAPI{}
	var out bytes.Buffer
	s := newTestSession(api, &out)
	s.remote.SetOnline(false)

	input := strings.Join([]string{
		"# rename twice, the second one is a no-op",
		`{"type":"updateTitle","payload":{"title":"Staff Engineer"}}`,
		`{"type":"updateTitle","payload":{"title":"Staff Engineer"}}`,
		"",
		"undo",
		"redo",
		"bogus",
		"online",
	}, "\n")

	r := resume.NewResume("u1", "Engineer")
	r.ID = "r1"
	if err := s.run(context.Background(), r, strings.NewReader(input)); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := api.snapshot()
	want := []call{
		{"metadata", "Staff Engineer"},
		{"full", "Staff Engineer"},
		{"full", "Staff Engineer"},
		{"full", "Staff Engineer"},
	}
	if len(got) != len(want) {
		t.Fatalf("calls = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	text := out.String()
	for _, fragment := range []string{
		"no change",
		`Undo: Rename resume to "Staff Engineer"`,
		`Redo: Rename resume to "Staff Engineer"`,
		`unknown command "bogus"`,
		"online, 0 queued",
	} {
		if !strings.Contains(text, fragment) {
			t.Errorf("output missing %q:\n%s", fragment, text)
		}
	}
	if st := s.ed.Status(); st.HasUnsavedChanges || st.Error != "" {
		t.Fatalf("status = %+v", st)
	}
}

func TestSessionWithoutEditsDoesNotSave(t *testing.T) {
	api := &memAPI{}
	var out bytes.Buffer
	s := newTestSession(api, &out)

	r := resume.NewResume("u1", "Engineer")
	r.ID = "r1"
	if err := s.run(context.Background(), r, strings.NewReader("status\nundo\n")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls := api.snapshot(); len(calls) != 0 {
		t.Fatalf("calls = %+v", calls)
	}
	if !strings.Contains(out.String(), "nothing to undo") {
		t.Fatalf("output = %s", out.String())
	}
}

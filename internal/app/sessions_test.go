package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
	"github.com/Happy-Ferret/addons-code-manager/internal/app"
	"github.com/Happy-Ferret/addons-code-manager/internal/compare"
	"github.com/Happy-Ferret/addons-code-manager/internal/testutil"
	"github.com/Happy-Ferret/addons-code-manager/internal/versions"
)

// stubClient serves a one-file head version for every compare request.
type stubClient struct{}

func (stubClient) GetDiff(ctx context.Context, req api.DiffRequest) (*api.VersionWithDiffPayload, error) {
	selected := req.Path
	if selected == "" {
		selected = "manifest.json"
	}
	p := &api.VersionWithDiffPayload{}
	p.ID = req.HeadVersionID
	p.File.Entries = map[string]api.FileEntryPayload{
		"manifest.json": {Filename: "manifest.json", Path: "manifest.json", MimeCategory: "text"},
		"background.js": {Filename: "background.js", Path: "background.js", MimeCategory: "text"},
	}
	p.File.SelectedFile = selected
	p.File.Diff = &api.DiffPayload{Path: selected, Mode: "M"}
	return p, nil
}

func (stubClient) GetVersion(ctx context.Context, req api.VersionRequest) (*api.VersionPayload, error) {
	return &api.VersionPayload{ID: req.VersionID}, nil
}

func (stubClient) Close() error { return nil }

func testParams() compare.Params {
	return compare.Params{Lang: "en-US", AddonID: 9999, BaseVersionID: 1, HeadVersionID: 2}
}

func TestManagerCreateAndGet(t *testing.T) {
	m := app.NewManager(stubClient{}, &testutil.DummyLogger{})

	s, err := m.Create(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == "" {
		t.Fatal("session has no id")
	}

	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get: %v, %v", got, err)
	}

	// The initial mount already ran.
	if phase := s.Controller().Phase(); phase != compare.PhaseReady {
		t.Fatalf("got phase %v, want ready", phase)
	}
	if _, status := s.Controller().State().DiffMap(testParams().Key()); status != versions.DiffAvailable {
		t.Fatalf("got diff status %v, want available", status)
	}
}

func TestManagerGetUnknownSession(t *testing.T) {
	m := app.NewManager(stubClient{}, &testutil.DummyLogger{})
	if _, err := m.Get("nope"); err != app.ErrSessionNotFound {
		t.Fatalf("got %v, want ErrSessionNotFound", err)
	}
}

func TestManagerRemove(t *testing.T) {
	m := app.NewManager(stubClient{}, &testutil.DummyLogger{})
	s, _ := m.Create(context.Background(), testParams())

	if err := m.Remove(s.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := m.Get(s.ID); err != app.ErrSessionNotFound {
		t.Fatalf("got %v after remove, want ErrSessionNotFound", err)
	}
	if err := m.Remove(s.ID); err != app.ErrSessionNotFound {
		t.Fatalf("double remove: got %v, want ErrSessionNotFound", err)
	}
}

func TestSessionRecordsRedirect(t *testing.T) {
	m := app.NewManager(stubClient{}, &testutil.DummyLogger{})

	s, err := m.Create(context.Background(), compare.Params{
		Lang: "es", AddonID: 123456, BaseVersionID: 2, HeadVersionID: 1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got := s.RedirectTo(); got != "/es/compare/123456/versions/1...2/" {
		t.Fatalf("got redirect %q", got)
	}
	if phase := s.Controller().Phase(); phase != compare.PhaseRedirecting {
		t.Fatalf("got phase %v, want redirecting", phase)
	}
}

func TestSessionSubscribeReceivesEvents(t *testing.T) {
	m := app.NewManager(stubClient{}, &testutil.DummyLogger{})
	s, _ := m.Create(context.Background(), testParams())

	ch, cancel := s.Subscribe()
	defer cancel()

	s.Controller().OnSelectFile(context.Background(), "background.js")

	select {
	case ev := <-ch:
		if ev.Type != compare.EventSelected || ev.Path != "background.js" {
			t.Fatalf("got event %+v, want selected background.js", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestSessionUnsubscribeClosesChannel(t *testing.T) {
	m := app.NewManager(stubClient{}, &testutil.DummyLogger{})
	s, _ := m.Create(context.Background(), testParams())

	ch, cancel := s.Subscribe()
	cancel()
	// A second cancel is harmless.
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("channel still open after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	s.Controller().OnSelectFile(context.Background(), "background.js")
}

func TestManagerCloseRemovesAllSessions(t *testing.T) {
	m := app.NewManager(stubClient{}, &testutil.DummyLogger{})
	a, _ := m.Create(context.Background(), testParams())

	second := testParams()
	second.HeadVersionID = 3
	b, _ := m.Create(context.Background(), second)

	m.Close()
	if _, err := m.Get(a.ID); err != app.ErrSessionNotFound {
		t.Fatalf("session %s survived Close", a.ID)
	}
	if _, err := m.Get(b.ID); err != app.ErrSessionNotFound {
		t.Fatalf("session %s survived Close", b.ID)
	}
}

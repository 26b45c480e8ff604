package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumeEditor/internal/api"
	"resumeEditor/internal/database"
	"resumeEditor/internal/editor"
	"resumeEditor/internal/resume"
	"resumeEditor/internal/share"
	"resumeEditor/internal/syncer"
)

type tokens map[string]string

func (t tokens) ValidateUser(token string) (string, error) {
	if id, ok := t[token]; ok {
		return id, nil
	}
	return "", errors.New("unknown token")
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}

	shares := share.NewService(database.NewShareStore(db), "https://cv.example.com", share.WithLogger(discard))
	router := api.NewRouter(discard)
	api.RegisterRoutes(router, api.Deps{
		Resumes: database.NewResumeStore(db),
		Shares:  shares,
		Auth:    tokens{"tok": "u1"},
		LinkURL: shares.LinkURL,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		sqlDB.Close()
	})
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, WithToken("tok"))
	ctx := context.Background()

	created, err := c.CreateResume(ctx, "Client CV")
	if err != nil {
		t.Fatal(err)
	}

	full := created.FullUpdate()
	full.Title = "Full"
	full.Sections = append(full.Sections, resume.Section{ID: "langs", Type: resume.SectionLanguages, Title: "Languages", Data: resume.Languages{}, Visible: true})
	if _, err := c.UpdateResumeFull(ctx, created.ID, full); err != nil {
		t.Fatal(err)
	}

	template := "modern"
	if _, err := c.UpdateResumeMetadata(ctx, created.ID, resume.MetadataUpdate{TemplateID: &template}); err != nil {
		t.Fatal(err)
	}

	detail, err := c.GetResume(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Title != "Full" || detail.TemplateID != "modern" || len(detail.Sections) != 3 || detail.Sections[2].ID != "langs" {
		t.Fatalf("detail = %+v", detail.Resume)
	}

	replaced, err := c.ReplaceSections(ctx, created.ID, detail.Sections[2:])
	if err != nil {
		t.Fatal(err)
	}
	if len(replaced.Sections) != 1 || replaced.Sections[0].Order != 0 {
		t.Fatalf("sections = %+v", replaced.Sections)
	}

	list, err := c.ListResumes(ctx, resume.ListQuery{Search: "full"})
	if err != nil || len(list.Resumes) != 1 {
		t.Fatalf("list = %+v, %v", list, err)
	}

	link, err := c.CreateShareLink(ctx, created.ID, resume.ShareOptions{})
	if err != nil {
		t.Fatal(err)
	}
	view, err := New(srv.URL).ResolvePublic(ctx, link.Slug, "")
	if err != nil {
		t.Fatal(err)
	}
	if view.ShareLink.ViewCount != 1 || len(view.Resume.Sections) != 1 {
		t.Fatalf("view = %+v", view)
	}
	if _, err := c.DeactivateShareLink(ctx, link.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ResolvePublic(ctx, link.Slug, ""); !errors.Is(err, share.ErrInactive) {
		t.Fatalf("resolve inactive err = %v", err)
	}

	if err := c.DeleteResume(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	_, err = c.GetResume(ctx, created.ID)
	if !errors.Is(err, ErrNotFound) || !syncer.Terminal(err) {
		t.Fatalf("get deleted err = %v", err)
	}
}

func TestClientMapsTransientAndAuthFailures(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	if _, err := New(srv.URL, WithToken("wrong")).GetResume(ctx, "x"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad token err = %v", err)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer broken.Close()
	_, err := New(broken.URL).UpdateResumeFull(ctx, "r1", resume.FullUpdate{})
	if !errors.Is(err, ErrTransient) || syncer.Terminal(err) {
		t.Fatalf("502 err = %v", err)
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	if _, err := New(closed.URL).ReplaceSections(ctx, "r1", nil); !errors.Is(err, ErrTransient) {
		t.Fatalf("connection refused err = %v", err)
	}
}

func TestClientSurfacesSlugExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"success":false,"error":"SLUG_EXHAUSTED","message":"could not allocate a unique share slug"}`)
	}))
	defer srv.Close()

	links := syncer.NewShareLinks(New(srv.URL), nil, discard)
	_, err := links.Create(context.Background(), "r1", resume.ShareOptions{})
	if !errors.Is(err, share.ErrSlugExhausted) {
		t.Fatalf("err = %v", err)
	}
	if !links.State("r1").SlugExhausted {
		t.Fatal("slug exhaustion must be reported distinctly")
	}
}

func TestAutoSaveOverHTTP(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, WithToken("tok"))
	ctx := context.Background()

	created, err := c.CreateResume(ctx, "Draft")
	if err != nil {
		t.Fatal(err)
	}

	ed := editor.New()
	saver := syncer.NewAutoSave(ed, c, syncer.WithSaveLogger(discard))
	ed.Use(saver)
	defer saver.Stop()

	ed.Dispatch(editor.SetResume{Resume: created})
	ed.Dispatch(editor.UpdateTitle{Title: "Saved over HTTP"})
	ed.Dispatch(editor.ApplyTheme{Name: "ocean"})
	if err := saver.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if st := ed.Status(); st.HasUnsavedChanges || st.Error != "" {
		t.Fatalf("status = %+v", st)
	}

	detail, err := c.GetResume(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	ocean, _ := resume.ThemePreset("ocean")
	if detail.Title != "Saved over HTTP" || detail.StyleConfig.PrimaryColor != ocean.PrimaryColor {
		t.Fatalf("persisted = %+v", detail.Resume)
	}
}

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumeEditor/internal/resume"
	"resumeEditor/internal/share"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedResume(t *testing.T, store *ResumeStore, owner, title string) *resume.Resume {
	t.Helper()
	r := resume.NewResume(owner, title)
	created, err := store.Create(context.Background(), r)
	if err != nil {
		t.Fatalf("create resume: %v", err)
	}
	return created
}

func TestResumeStoreCreateAndGet(t *testing.T) {
	store := NewResumeStore(newTestDB(t))
	created := seedResume(t, store, "u1", "Backend CV")

	detail, err := store.Get(context.Background(), "u1", created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Title != "Backend CV" || len(detail.Sections) != 2 {
		t.Fatalf("detail = %+v", detail.Resume)
	}
	if detail.Sections[0].Type != resume.SectionPersonalInfo || detail.Sections[1].Order != 1 {
		t.Fatalf("sections out of order: %+v", detail.Sections)
	}
	info, ok := detail.Sections[0].Data.(resume.PersonalInfo)
	if !ok || info.FullName != "Your Name" {
		t.Fatalf("payload = %#v", detail.Sections[0].Data)
	}
	if detail.StyleConfig.FontFamily != resume.DefaultStyle().FontFamily {
		t.Fatalf("style = %+v", detail.StyleConfig)
	}

	if _, err := store.Get(context.Background(), "someone-else", created.ID); !errors.Is(err, resume.ErrNotFound) {
		t.Fatalf("foreign get err = %v", err)
	}
}

func TestResumeStoreListPaginatesAndSearches(t *testing.T) {
	store := NewResumeStore(newTestDB(t))
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		store.now = func() time.Time { return at }
		seedResume(t, store, "u1", fmt.Sprintf("Resume %d", i))
	}
	seedResume(t, store, "u2", "Resume other")

	list, err := store.List(context.Background(), "u1", resume.ListQuery{Page: 2, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if list.Pagination.Total != 5 || list.Pagination.TotalPages != 3 {
		t.Fatalf("pagination = %+v", list.Pagination)
	}
	if len(list.Resumes) != 2 || list.Resumes[0].Title != "Resume 2" || list.Resumes[1].Title != "Resume 1" {
		t.Fatalf("page 2 = %v", titles(list.Resumes))
	}

	list, err = store.List(context.Background(), "u1", resume.ListQuery{Search: "resume 3", SortBy: resume.SortTitle, SortOrder: "asc"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Resumes) != 1 || list.Resumes[0].Title != "Resume 3" {
		t.Fatalf("search = %v", titles(list.Resumes))
	}
}

func titles(rs []resume.Resume) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func TestResumeStoreUpdateFullReplacesSections(t *testing.T) {
	store := NewResumeStore(newTestDB(t))
	created := seedResume(t, store, "u1", "CV")

	style := resume.DefaultStyle()
	style.PrimaryColor = "#112233"
	updated, err := store.UpdateFull(context.Background(), "u1", created.ID, resume.FullUpdate{
		Title:       "Renamed",
		TemplateID:  "modern",
		StyleConfig: style,
		Sections: []resume.Section{
			{ID: "b", Type: resume.SectionSkills, Title: "Skills", Data: resume.Skills{}, Visible: true},
			{ID: "a", Type: resume.SectionSummary, Title: "Summary", Data: resume.Summary{Content: "hi"}, Visible: false},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Renamed" || updated.StyleConfig.PrimaryColor != "#112233" {
		t.Fatalf("updated = %+v", updated)
	}
	if len(updated.Sections) != 2 || updated.Sections[0].ID != "b" || updated.Sections[1].Order != 1 {
		t.Fatalf("sections = %+v", updated.Sections)
	}
	if updated.Sections[1].Visible {
		t.Fatal("visibility flag lost")
	}
	if sum := updated.Sections[1].Data.(resume.Summary); sum.Content != "hi" {
		t.Fatalf("summary = %+v", sum)
	}

	_, err = store.UpdateFull(context.Background(), "u1", created.ID, resume.FullUpdate{
		Sections: []resume.Section{{ID: "x", Type: resume.SectionCustom}, {ID: "x", Type: resume.SectionCustom}},
	})
	if !errors.Is(err, resume.ErrInvalid) {
		t.Fatalf("duplicate ids err = %v", err)
	}
}

func TestResumeStoreUpdateMetadataPartial(t *testing.T) {
	store := NewResumeStore(newTestDB(t))
	created := seedResume(t, store, "u1", "CV")

	public := true
	updated, err := store.UpdateMetadata(context.Background(), "u1", created.ID, resume.MetadataUpdate{IsPublic: &public})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.IsPublic || updated.Title != "CV" || len(updated.Sections) != 2 {
		t.Fatalf("updated = %+v", updated)
	}

	title := "x"
	if _, err := store.UpdateMetadata(context.Background(), "u2", created.ID, resume.MetadataUpdate{Title: &title}); !errors.Is(err, resume.ErrNotFound) {
		t.Fatalf("foreign patch err = %v", err)
	}
}

func TestResumeStoreReplaceSectionsAndDeleteCascade(t *testing.T) {
	db := newTestDB(t)
	store := NewResumeStore(db)
	shares := NewShareStore(db)
	ctx := context.Background()
	created := seedResume(t, store, "u1", "CV")

	updated, err := store.ReplaceSections(ctx, "u1", created.ID, []resume.Section{
		{ID: "only", Type: resume.SectionInterests, Title: "Interests", Data: resume.Interests{Items: []string{"go"}}, Order: 7, Visible: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Sections) != 1 || updated.Sections[0].Order != 0 {
		t.Fatalf("sections = %+v", updated.Sections)
	}

	link := &resume.ShareLink{ResumeID: created.ID, Slug: "abcdefgh", IsActive: true, CreatedAt: time.Now()}
	if err := shares.CreateShareLink(ctx, link); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, "u1", created.ID); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "u1", created.ID); !errors.Is(err, resume.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	var sections, links int64
	db.Model(&Section{}).Where("resume_id = ?", created.ID).Count(&sections)
	db.Model(&ShareLink{}).Where("resume_id = ?", created.ID).Count(&links)
	if sections != 0 || links != 0 {
		t.Fatalf("orphans left: %d sections, %d links", sections, links)
	}
}

func TestShareStoreSlugUniqueness(t *testing.T) {
	db := newTestDB(t)
	store := NewResumeStore(db)
	shares := NewShareStore(db)
	ctx := context.Background()
	created := seedResume(t, store, "u1", "CV")

	first := &resume.ShareLink{ResumeID: created.ID, Slug: "dupslug1", IsActive: true, CreatedAt: time.Now()}
	if err := shares.CreateShareLink(ctx, first); err != nil {
		t.Fatal(err)
	}
	if first.ID == "" {
		t.Fatal("store must assign an id")
	}
	exists, err := shares.SlugExists(ctx, "dupslug1")
	if err != nil || !exists {
		t.Fatalf("SlugExists = %v, %v", exists, err)
	}
	second := &resume.ShareLink{ResumeID: created.ID, Slug: "dupslug1", IsActive: true, CreatedAt: time.Now()}
	if err := shares.CreateShareLink(ctx, second); !errors.Is(err, share.ErrSlugTaken) {
		t.Fatalf("duplicate slug err = %v", err)
	}
}

func TestShareStoreRecordViewAndDeactivate(t *testing.T) {
	db := newTestDB(t)
	store := NewResumeStore(db)
	shares := NewShareStore(db)
	ctx := context.Background()
	created := seedResume(t, store, "u1", "CV")

	link := &resume.ShareLink{ResumeID: created.ID, Slug: "viewslug", IsActive: true, CreatedAt: time.Now()}
	if err := shares.CreateShareLink(ctx, link); err != nil {
		t.Fatal(err)
	}
	at := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	for want := int64(1); want <= 3; want++ {
		viewed, err := shares.RecordView(ctx, link.ID, at)
		if err != nil {
			t.Fatal(err)
		}
		if viewed.ViewCount != want {
			t.Fatalf("view count = %d, want %d", viewed.ViewCount, want)
		}
	}

	if _, err := shares.DeactivateShareLink(ctx, "u2", link.ID); !errors.Is(err, share.ErrNotFound) {
		t.Fatalf("foreign deactivate err = %v", err)
	}
	off, err := shares.DeactivateShareLink(ctx, "u1", link.ID)
	if err != nil || off.IsActive {
		t.Fatalf("deactivate = %+v, %v", off, err)
	}
	found, err := shares.FindBySlug(ctx, "viewslug")
	if err != nil || found.IsActive || found.ViewCount != 3 {
		t.Fatalf("found = %+v, %v", found, err)
	}
	if _, err := shares.FindBySlug(ctx, "missing!"); !errors.Is(err, share.ErrNotFound) {
		t.Fatalf("missing slug err = %v", err)
	}
}

func TestShareServiceOverStore(t *testing.T) {
	db := newTestDB(t)
	store := NewResumeStore(db)
	created := seedResume(t, store, "u1", "CV")
	svc := share.NewService(NewShareStore(db), "https://cv.example.com")
	ctx := context.Background()

	link, err := svc.Create(ctx, "u1", created.ID, resume.ShareOptions{})
	if err != nil {
		t.Fatal(err)
	}
	view, err := svc.Resolve(ctx, link.Slug, "")
	if err != nil {
		t.Fatal(err)
	}
	if view.ShareLink.ViewCount != 1 || view.Resume.UserID != "" || len(view.Resume.Sections) != 2 {
		t.Fatalf("view = %+v", view)
	}
}

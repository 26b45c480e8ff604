package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"resumeEditor/internal/resume"
	"resumeEditor/internal/share"
)

type fakeShareAPI struct {
	links     []resume.ShareLink
	createErr error
	n         int
	now       func() time.Time
}

func (f *fakeShareAPI) CreateShareLink(_ context.Context, resumeID string, opts resume.ShareOptions) (*resume.ShareLink, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.n++
	link := resume.ShareLink{
		ID:        fmt.Sprintf("sh%d", f.n),
		ResumeID:  resumeID,
		Slug:      fmt.Sprintf("slug%04d", f.n),
		IsActive:  true,
		CreatedAt: f.now(),
	}
	if opts.ExpiresInDays != nil {
		exp := f.now().Add(time.Duration(*opts.ExpiresInDays) * 24 * time.Hour)
		link.ExpiresAt = &exp
	}
	f.links = append(f.links, link)
	return &link, nil
}

func (f *fakeShareAPI) ListShareLinks(_ context.Context, resumeID string) ([]resume.ShareLink, error) {
	var out []resume.ShareLink
	for _, l := range f.links {
		if l.ResumeID == resumeID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeShareAPI) DeactivateShareLink(_ context.Context, shareID string) (*resume.ShareLink, error) {
	for i := range f.links {
		if f.links[i].ID == shareID {
			f.links[i].IsActive = false
			l := f.links[i]
			return &l, nil
		}
	}
	return nil, share.ErrNotFound
}

func TestShareLinksLifecycle(t *testing.T) {
	clock := newFakeClock()
	api := &fakeShareAPI{now: clock.Now}
	links := NewShareLinks(api, clock, discard)
	ctx := context.Background()

	if st := links.State("r1"); st.Status != StatusIdle {
		t.Fatalf("initial status = %s", st.Status)
	}
	if got := links.LinkState("r1"); got != LinkNone {
		t.Fatalf("link state = %s, want no-link", got)
	}

	link, err := links.Create(ctx, "r1", resume.ShareOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := links.LinkState("r1"); got != LinkActive {
		t.Fatalf("link state = %s, want active", got)
	}

	if err := links.Deactivate(ctx, "r1", link.ID); err != nil {
		t.Fatal(err)
	}
	if err := links.Deactivate(ctx, "r1", link.ID); err != nil {
		t.Fatalf("deactivate twice: %v", err)
	}
	st := links.State("r1")
	if st.Status != StatusSucceeded || len(st.Links) != 1 || st.Links[0].IsActive {
		t.Fatalf("state after deactivate: %+v", st)
	}
	if got := links.LinkState("r1"); got != LinkInactive {
		t.Fatalf("link state = %s, want inactive", got)
	}
}

func TestShareLinksExpiryReadsAsInactive(t *testing.T) {
	clock := newFakeClock()
	api := &fakeShareAPI{now: clock.Now}
	links := NewShareLinks(api, clock, discard)

	days := 1
	if _, err := links.Create(context.Background(), "r1", resume.ShareOptions{ExpiresInDays: &days}); err != nil {
		t.Fatal(err)
	}
	clock.Advance(48 * time.Hour)
	if got := links.LinkState("r1"); got != LinkInactive {
		t.Fatalf("link state = %s, want inactive", got)
	}
	if !links.State("r1").Links[0].IsActive {
		t.Fatal("stored flag must stay active")
	}
}

func TestShareLinksSurfaceSlugExhaustion(t *testing.T) {
	clock := newFakeClock()
	api := &fakeShareAPI{now: clock.Now, createErr: fmt.Errorf("create share link: %w", share.ErrSlugExhausted)}
	links := NewShareLinks(api, clock, discard)

	_, err := links.Create(context.Background(), "r1", resume.ShareOptions{})
	if !errors.Is(err, share.ErrSlugExhausted) {
		t.Fatalf("err = %v", err)
	}
	st := links.State("r1")
	if st.Status != StatusFailed || !st.SlugExhausted || st.Error == "" {
		t.Fatalf("state = %+v", st)
	}

	api.createErr = errOffline
	links.Create(context.Background(), "r1", resume.ShareOptions{})
	if st := links.State("r1"); st.SlugExhausted {
		t.Fatal("network failure must not be reported as slug exhaustion")
	}
}

func TestShareLinksLoad(t *testing.T) {
	clock := newFakeClock()
	api := &fakeShareAPI{now: clock.Now}
	api.CreateShareLink(context.Background(), "r1", resume.ShareOptions{})
	api.CreateShareLink(context.Background(), "r2", resume.ShareOptions{})

	links := NewShareLinks(api, clock, discard)
	if err := links.Load(context.Background(), "r1"); err != nil {
		t.Fatal(err)
	}
	st := links.State("r1")
	if st.Status != StatusSucceeded || len(st.Links) != 1 || st.Links[0].ResumeID != "r1" {
		t.Fatalf("state = %+v", st)
	}
}

package editor

import (
	"math/rand"
	"reflect"
	"strconv"
	"testing"

	"resumeEditor/internal/resume"
)

func fixtureResume(ids ...string) *resume.Resume {
	sections := make([]resume.Section, len(ids))
	for i, id := range ids {
		sections[i] = resume.Section{
			ID:       id,
			ResumeID: "r1",
			Type:     resume.SectionCustom,
			Title:    id,
			Data:     resume.Custom{Content: id},
			Order:    i,
			Visible:  true,
		}
	}
	return &resume.Resume{
		ID:          "r1",
		UserID:      "u1",
		Title:       "CV",
		TemplateID:  "modern",
		StyleConfig: resume.DefaultStyle(),
		Sections:    sections,
	}
}

func loaded(ids ...string) DocumentState {
	d, _ := ReduceDocument(DocumentState{}, SetResume{Resume: fixtureResume(ids...)})
	return d
}

func sectionIDs(d DocumentState) []string {
	out := make([]string, len(d.Resume.Sections))
	for i, s := range d.Resume.Sections {
		out[i] = s.ID
	}
	return out
}

func assertDenseOrder(t *testing.T, d DocumentState) {
	t.Helper()
	for i, s := range d.Resume.Sections {
		if s.Order != i {
			t.Fatalf("section %s at index %d has order %d", s.ID, i, s.Order)
		}
	}
}

func TestReorderUsesSpliceSemantics(t *testing.T) {
	cases := []struct {
		from, to int
		want     []string
	}{
		{2, 0, []string{"C", "A", "B", "D", "E"}},
		{0, 2, []string{"B", "C", "A", "D", "E"}},
		{0, 4, []string{"B", "C", "D", "E", "A"}},
		{4, 1, []string{"A", "E", "B", "C", "D"}},
		{1, 3, []string{"A", "C", "D", "B", "E"}},
	}
	for _, c := range cases {
		d, changed := ReduceDocument(loaded("A", "B", "C", "D", "E"), ReorderSections{From: c.from, To: c.to})
		if !changed {
			t.Fatalf("reorder %d→%d reported no change", c.from, c.to)
		}
		if got := sectionIDs(d); !reflect.DeepEqual(got, c.want) {
			t.Errorf("reorder %d→%d = %v, want %v", c.from, c.to, got, c.want)
		}
		assertDenseOrder(t, d)
	}
}

func TestReorderOutOfRangeIsNoop(t *testing.T) {
	base := loaded("A", "B", "C")
	for _, a := range []ReorderSections{
		{From: -1, To: 0},
		{From: 0, To: 3},
		{From: 3, To: 0},
		{From: 1, To: 1},
	} {
		d, changed := ReduceDocument(base, a)
		if changed {
			t.Errorf("reorder %+v should be a no-op", a)
		}
		if d.Dirty {
			t.Errorf("reorder %+v set the dirty flag", a)
		}
		if got := sectionIDs(d); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
			t.Errorf("reorder %+v changed sections to %v", a, got)
		}
	}
}

func TestOrderStaysDenseUnderStructuralActions(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	d := loaded("s0", "s1", "s2")
	next := 3

	for step := 0; step < 500; step++ {
		n := len(d.Resume.Sections)
		var a Action
		switch rng.Intn(3) {
		case 0:
			idx := rng.Intn(n + 2)
			a = AddSection{
				Section: resume.Section{ID: "s" + strconv.Itoa(next), Type: resume.SectionSummary, Data: resume.Summary{}},
				Index:   &idx,
			}
			next++
		case 1:
			if n == 0 {
				continue
			}
			a = DeleteSection{ID: d.Resume.Sections[rng.Intn(n)].ID}
		default:
			a = ReorderSections{From: rng.Intn(n+1) - 1, To: rng.Intn(n+1) - 1}
		}
		d, _ = ReduceDocument(d, a)
		assertDenseOrder(t, d)
	}
}

func TestLoadIsNotDirtyButEditsAre(t *testing.T) {
	d := loaded("A")
	if d.Dirty {
		t.Fatal("initial load must not set dirty")
	}

	d, changed := ReduceDocument(d, UpdateTitle{Title: "New"})
	if !changed || !d.Dirty {
		t.Fatal("title edit must set dirty")
	}
	if d.Resume.Title != "New" {
		t.Fatalf("title = %q", d.Resume.Title)
	}
}

func TestReducerDoesNotMutateInput(t *testing.T) {
	base := loaded("A", "B")
	before := base.Resume.Clone()

	ReduceDocument(base, DeleteSection{ID: "A"})
	ReduceDocument(base, ReorderSections{From: 0, To: 1})
	ReduceDocument(base, UpdateTitle{Title: "x"})
	ReduceDocument(base, ToggleSectionVisibility{ID: "B"})

	if !reflect.DeepEqual(base.Resume, before) {
		t.Fatal("reducer mutated its input state")
	}
}

func TestUpdateSectionMergesPartialPatch(t *testing.T) {
	title := "Renamed"
	d, changed := ReduceDocument(loaded("A", "B"), UpdateSection{ID: "B", Patch: resume.SectionPatch{Title: &title}})
	if !changed {
		t.Fatal("expected change")
	}
	s := d.Resume.Sections[1]
	if s.Title != "Renamed" || s.Data.(resume.Custom).Content != "B" || !s.Visible {
		t.Fatalf("patch not merged: %+v", s)
	}

	if _, changed := ReduceDocument(d, UpdateSection{ID: "missing", Patch: resume.SectionPatch{Title: &title}}); changed {
		t.Fatal("update of unknown id should be a no-op")
	}
}

func TestAddSectionRejectsDuplicateAndEmptyIDs(t *testing.T) {
	base := loaded("A")
	if _, changed := ReduceDocument(base, AddSection{Section: resume.Section{ID: "A"}}); changed {
		t.Fatal("duplicate id should be a no-op")
	}
	if _, changed := ReduceDocument(base, AddSection{Section: resume.Section{}}); changed {
		t.Fatal("empty id should be a no-op")
	}

	d, _ := ReduceDocument(base, AddSection{Section: resume.Section{ID: "B", Type: resume.SectionSummary, Data: resume.Summary{}}})
	if got := sectionIDs(d); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("sections = %v", got)
	}
	if d.Resume.Sections[1].ResumeID != "r1" {
		t.Fatalf("added section not attached to resume")
	}
}

func TestToggleVisibility(t *testing.T) {
	d, _ := ReduceDocument(loaded("A"), ToggleSectionVisibility{ID: "A"})
	if d.Resume.Sections[0].Visible {
		t.Fatal("section should be hidden")
	}
	d, _ = ReduceDocument(d, ToggleSectionVisibility{ID: "A"})
	if !d.Resume.Sections[0].Visible {
		t.Fatal("section should be visible again")
	}
}

func TestSetSectionsRenumbers(t *testing.T) {
	d, _ := ReduceDocument(loaded("A"), SetSections{Sections: []resume.Section{
		{ID: "X", Order: 7, Type: resume.SectionSummary, Data: resume.Summary{}},
		{ID: "Y", Order: 3, Type: resume.SectionSummary, Data: resume.Summary{}},
	}})
	if got := sectionIDs(d); !reflect.DeepEqual(got, []string{"X", "Y"}) {
		t.Fatalf("sections = %v", got)
	}
	assertDenseOrder(t, d)
}

func TestSetSectionsRejectsInvalidIDs(t *testing.T) {
	cases := map[string][]resume.Section{
		"duplicate": {
			{ID: "a", Type: resume.SectionSummary, Data: resume.Summary{}},
			{ID: "a", Type: resume.SectionSummary, Data: resume.Summary{}},
		},
		"empty": {
			{ID: "a", Type: resume.SectionSummary, Data: resume.Summary{}},
			{ID: "", Type: resume.SectionSummary, Data: resume.Summary{}},
		},
		"unknown type": {
			{ID: "a", Type: "hobbies", Data: resume.Summary{}},
		},
	}
	for name, sections := range cases {
		t.Run(name, func(t *testing.T) {
			before := loaded("A", "B")
			d, changed := ReduceDocument(before, SetSections{Sections: sections})
			if changed || d.Dirty || d.Revision != before.Revision {
				t.Fatalf("changed=%v dirty=%v revision=%d", changed, d.Dirty, d.Revision)
			}
			if got := sectionIDs(d); !reflect.DeepEqual(got, []string{"A", "B"}) {
				t.Fatalf("sections = %v", got)
			}
		})
	}
}

func TestActionsWithoutResumeAreNoops(t *testing.T) {
	if _, changed := ReduceDocument(DocumentState{}, UpdateTitle{Title: "x"}); changed {
		t.Fatal("edit without loaded resume should be a no-op")
	}
}

func TestApplyUnknownThemeIsNoop(t *testing.T) {
	s := StyleState{Current: resume.DefaultStyle()}
	if _, changed := ReduceStyle(s, ApplyTheme{Name: "nope"}); changed {
		t.Fatal("unknown theme should be a no-op")
	}
}

func TestDescribe(t *testing.T) {
	font := "Roboto"
	cases := []struct {
		action Action
		want   string
	}{
		{UpdateTitle{Title: "CV"}, `Rename resume to "CV"`},
		{UpdateStyle{Patch: resume.StylePatch{FontFamily: &font}}, "Change font to Roboto"},
		{UpdateStyle{}, "Update style"},
		{ReorderSections{From: 0, To: 2}, "Move section from position 1 to 3"},
		{AddSection{Section: resume.Section{Type: resume.SectionSkills}}, "Add Skills section"},
		{ApplyTheme{Name: "ocean"}, "Apply ocean theme"},
		{nil, genericLabel},
	}
	for _, c := range cases {
		if got := Describe(c.action); got != c.want {
			t.Errorf("Describe(%T) = %q, want %q", c.action, got, c.want)
		}
	}
}

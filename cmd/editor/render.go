package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"resumeEditor/internal/editor"
	"resumeEditor/internal/resume"
	"resumeEditor/internal/syncer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

// renderStatus 输出会话的保存与同步状态。
func renderStatus(st editor.Status, remote *syncer.RemoteSync) string {
	save := "saved"
	switch {
	case st.IsSaving:
		save = "saving"
	case st.HasUnsavedChanges:
		save = "unsaved changes"
	}
	lines := []string{field("save", save)}
	if !st.LastSaved.IsZero() {
		lines = append(lines, field("last saved", st.LastSaved.Format(time.RFC3339)))
	}
	if remote != nil {
		online := "online"
		if !remote.Online() {
			online = "offline"
		}
		lines = append(lines, field("sync", fmt.Sprintf("%s, %d queued", online, len(remote.Queue()))))
	}
	if st.LastAction != "" {
		lines = append(lines, field("last action", st.LastAction))
	}
	lines = append(lines, field("history", fmt.Sprintf("undo=%t redo=%t", st.CanUndo, st.CanRedo)))
	if st.Error != "" {
		lines = append(lines, errorStyle.Render("error: ")+st.Error)
	}
	return strings.Join(lines, "\n")
}

func renderResumeList(list *resume.ResumeList) string {
	if len(list.Resumes) == 0 {
		return mutedStyle.Render("no resumes yet, create one with 'editor new <title>'")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Your resumes"))
	for _, r := range list.Resumes {
		fmt.Fprintf(&b, "\n  %s  %s  %s", r.ID, r.Title, mutedStyle.Render(r.UpdatedAt.Format(time.DateTime)))
	}
	p := list.Pagination
	fmt.Fprintf(&b, "\n%s", mutedStyle.Render(fmt.Sprintf("page %d/%d, %d total", p.Page, max(p.TotalPages, 1), p.Total)))
	return b.String()
}

// renderResume 只列出可见 Section 的标题与类型。
func renderResume(r *resume.Resume) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Title))
	fmt.Fprintf(&b, "\n%s", field("template", r.TemplateID))
	for _, s := range resume.VisibleSections(r.Sections) {
		fmt.Fprintf(&b, "\n  %d. %s %s", s.Order+1, s.Title, mutedStyle.Render("("+string(s.Type)+")"))
	}
	return b.String()
}

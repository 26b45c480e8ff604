package editor

import (
	"fmt"

	"resumeEditor/internal/resume"
)

const genericLabel = "Edit resume"

// Describe 把动作映射为人类可读的描述，只依赖动作本身。
func Describe(a Action) string {
	switch a := a.(type) {
	case SetResume:
		return "Load resume"
	case UpdateTitle:
		return fmt.Sprintf("Rename resume to %q", a.Title)
	case UpdateStyleConfig:
		return describeStylePatch(a.Patch)
	case UpdateStyle:
		return describeStylePatch(a.Patch)
	case UpdateTemplate:
		return fmt.Sprintf("Switch template to %s", a.TemplateID)
	case SetPublic:
		if a.IsPublic {
			return "Make resume public"
		}
		return "Make resume private"
	case AddSection:
		return fmt.Sprintf("Add %s section", sectionName(a.Section))
	case UpdateSection:
		if a.Patch.Title != nil {
			return fmt.Sprintf("Rename section to %q", *a.Patch.Title)
		}
		return "Edit section"
	case DeleteSection:
		return "Delete section"
	case ReorderSections:
		return fmt.Sprintf("Move section from position %d to %d", a.From+1, a.To+1)
	case ToggleSectionVisibility:
		return "Toggle section visibility"
	case SetSections:
		return "Replace sections"
	case SetStyle:
		return "Change style"
	case ApplyTheme:
		return fmt.Sprintf("Apply %s theme", a.Name)
	case ResetStyle:
		return "Reset style"
	case Restore:
		if a.Redo {
			return "Redo: " + a.Label
		}
		return "Undo: " + a.Label
	}
	return genericLabel
}

func sectionName(s resume.Section) string {
	if s.Title != "" {
		return s.Title
	}
	return resume.DefaultSectionTitle(s.Type)
}

func describeStylePatch(p resume.StylePatch) string {
	switch {
	case p.FontFamily != nil:
		return fmt.Sprintf("Change font to %s", *p.FontFamily)
	case p.FontSize != nil || p.FontSizes != nil:
		return "Change font size"
	case p.LineHeight != nil:
		return "Change line height"
	case p.Spacing != nil:
		return fmt.Sprintf("Change spacing to %s", *p.Spacing)
	case p.PrimaryColor != nil, p.SecondaryColor != nil, p.AccentColor != nil,
		p.TextColor != nil, p.BackgroundColor != nil:
		return "Change colors"
	case p.BorderStyle != nil || p.BorderColor != nil:
		return "Change border"
	}
	return "Update style"
}

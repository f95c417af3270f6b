package form

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/userbook/internal/record"
)

// View renders the form, the user list and the help bar.
func (m Model) View() string {
	t := m.theme
	if m.loading {
		return fmt.Sprintf("%s Loading users...", m.spinner.View())
	}

	var b strings.Builder
	b.WriteString(t.title().Render("Users"))
	b.WriteString(t.muted().Render("  " + t.Name + " theme"))
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(t.errorText().Render(m.err))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(t.errorText().Render(m.notice))
		b.WriteString("\n")
	}

	formStyle, listStyle := t.section(), t.section()
	if m.focus == FocusList {
		listStyle = t.focusedSection()
	} else {
		formStyle = t.focusedSection()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		b.String(),
		formStyle.Render(m.viewForm()),
		listStyle.Render(m.viewList()),
		m.help.View(m.helpKeys()),
	)
}

func (m Model) viewForm() string {
	t := m.theme
	labels := [fieldCount]string{"Name ", "Email", "Phone"}

	var lines []string
	for i, in := range m.inputs {
		lines = append(lines, t.text().Render(labels[i]+"  ")+in.View())
	}

	photoLine := t.muted().Render("none")
	if m.photoURI != "" {
		photoLine = t.text().Render(m.photoURI)
	}
	lines = append(lines, t.text().Render("Photo  ")+photoLine, "")

	label := "Add user"
	if m.editingID != "" {
		label = "Save changes"
	}
	lines = append(lines, t.button().Render(label))
	return strings.Join(lines, "\n")
}

func (m Model) viewList() string {
	t := m.theme
	lines := []string{t.title().Render("User list:")}
	if len(m.users) == 0 {
		lines = append(lines, t.muted().Render("No users yet"))
		return strings.Join(lines, "\n")
	}
	for i, u := range m.users {
		marker := "  "
		if m.focus == FocusList && i == m.cursor {
			marker = "▸ "
		}
		lines = append(lines, marker+m.viewRow(u))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewRow(u record.UserRecord) string {
	t := m.theme
	avatar := Initial(u.Name)
	if u.HasPhoto() {
		avatar = photoMarker
	}
	row := fmt.Sprintf("%s %s  %s  %s", t.avatar().Render(avatar), u.Name, u.Email, u.Phone)
	if u.ID == m.editingID {
		row += t.muted().Render("  (editing)")
	}
	return t.text().Render(row)
}

func (m Model) helpKeys() help.KeyMap {
	if m.focus == FocusList {
		return listHelp{m.keys}
	}
	return fieldHelp{m.keys}
}

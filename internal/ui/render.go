package ui

import (
	"fmt"
	"strings"

	"github.com/spigell/prospector/internal/prospect"
	"github.com/spigell/prospector/internal/scoring"
)

const timeLayout = "2006-01-02 15:04"

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := titleStyle.Render(m.title())
	content := frameStyle.Width(m.width - 2).Render(m.viewport.View())
	return title + "\n" + content + "\n" + m.statusBar()
}

func (m Model) title() string {
	switch m.ctl.State() {
	case StateSettings:
		return "Settings"
	case StateHistory:
		return fmt.Sprintf("History (%d)", len(m.reports))
	case StateAnalyzing:
		return "Analyzing " + m.candidateName()
	case StateReviewingScrape:
		return "Review scraped profile of " + m.candidateName()
	case StateReport:
		return "Report"
	default:
		return fmt.Sprintf("Pending prospects (%d)", len(m.candidates))
	}
}

func (m Model) candidateName() string {
	if c := m.ctl.Candidate(); c != nil {
		return c.Name
	}
	return ""
}

func (m Model) statusBar() string {
	var hints string
	switch m.ctl.State() {
	case StateListing:
		hints = "↑/↓ cursor  enter analyze  s settings  h history  r refresh  x clear all  q quit"
	case StateSettings:
		hints = "tab next field  ←/→ goal  enter save  esc cancel"
	case StateHistory:
		hints = "↑/↓ cursor  enter open  esc back  q quit"
	case StateAnalyzing:
		hints = "please wait  q quit"
	case StateReviewingScrape:
		hints = "enter proceed with AI  esc cancel  ↑/↓ scroll"
	case StateReport:
		hints = "c copy message  esc history  ↑/↓ scroll"
	}

	text := " " + hints
	switch {
	case m.failure != "":
		text = errorStyle.Render("⚠ "+m.failure) + "  " + hints
	case m.notice != "":
		text = noticeStyle.Render(m.notice) + "  " + hints
	}
	return statusBarStyle.Width(m.width).Render(text)
}

func (m Model) renderBody() string {
	switch m.ctl.State() {
	case StateSettings:
		return m.renderSettings()
	case StateHistory:
		return renderReports(m.reports, m.historyCursor)
	case StateAnalyzing:
		return m.renderAnalyzing()
	case StateReviewingScrape:
		return m.renderReview()
	case StateReport:
		return m.renderReport()
	default:
		return renderCandidates(m.candidates, m.cursor)
	}
}

func renderCandidates(items []*prospect.Candidate, cursor int) string {
	if len(items) == 0 {
		return hintStyle.Render("  no pending prospects, run `prospector capture` to collect some")
	}

	var b strings.Builder
	for i, c := range items {
		sub := c.Headline
		if c.ConnectionDegree != "" {
			sub = fmt.Sprintf("%s · %s", c.ConnectionDegree, sub)
		}
		writeItem(&b, i == cursor, c.Name, sub, i < len(items)-1)
	}
	return b.String()
}

func renderReports(items []*prospect.Report, cursor int) string {
	if len(items) == 0 {
		return hintStyle.Render("  no reports yet")
	}

	var b strings.Builder
	for i, r := range items {
		title := fmt.Sprintf("%s  %s %d", r.Name, gradeBadge(r.Grade), r.Score)
		sub := fmt.Sprintf("%s · %s", r.AnalyzedAt.Format(timeLayout), r.Headline)
		writeItem(&b, i == cursor, title, sub, i < len(items)-1)
	}
	return b.String()
}

func writeItem(b *strings.Builder, selected bool, title, subtitle string, separator bool) {
	titleSt := itemTitleStyle
	subtitleSt := itemSubtitleStyle
	prefix := "  "
	if selected {
		titleSt = selectedTitleStyle
		subtitleSt = selectedSubtitleStyle
		prefix = "> "
	}

	b.WriteString(prefix + titleSt.Render(title) + "\n")
	b.WriteString(prefix + subtitleSt.Render(subtitle) + "\n")
	if separator {
		b.WriteByte('\n')
	}
}

func (m Model) renderAnalyzing() string {
	var b strings.Builder
	if c := m.ctl.Candidate(); c != nil {
		addField(&b, "Prospect", c.Name)
		addField(&b, "Profile", c.ProfileURL)
	}
	addField(&b, "Goal", string(m.cfg.Goal))
	b.WriteByte('\n')
	b.WriteString(hintStyle.Render("  "+m.ctl.Status()) + "\n")
	return b.String()
}

func (m Model) renderReview() string {
	p := m.ctl.Profile()
	if p == nil {
		return ""
	}

	width := max(m.viewport.Width-4, 20)
	var b strings.Builder

	if c := m.ctl.Candidate(); c != nil {
		addField(&b, "Name", c.Name)
		addField(&b, "Headline", c.Headline)
		addField(&b, "Profile", c.ProfileURL)
	}

	if p.About != "" {
		b.WriteString("\n" + divider("── About ", width) + "\n")
		b.WriteString(bodyStyle.Render(wordWrap(p.About, width)) + "\n")
	}

	if len(p.Experience) > 0 {
		b.WriteString("\n" + divider("── Experience ", width) + "\n")
		for _, e := range p.Experience {
			b.WriteString(itemTitleStyle.Render("  "+joinNonEmpty(" @ ", e.Title, e.Company)) + "\n")
			if e.Dates != "" {
				b.WriteString(itemSubtitleStyle.Render("  "+e.Dates) + "\n")
			}
		}
	}

	if len(p.Education) > 0 {
		b.WriteString("\n" + divider("── Education ", width) + "\n")
		for _, e := range p.Education {
			b.WriteString(bodyStyle.Render("  "+joinNonEmpty(", ", e.School, e.Degree, e.Dates)) + "\n")
		}
	}

	if len(p.Skills) > 0 {
		b.WriteString("\n" + divider("── Skills ", width) + "\n")
		b.WriteString(bodyStyle.Render(wordWrap(strings.Join(p.Skills, ", "), width)) + "\n")
	}

	if len(p.Activity) > 0 {
		b.WriteString("\n" + divider("── Recent activity ", width) + "\n")
		for _, a := range p.Activity {
			b.WriteString(bodyStyle.Render("  • "+joinNonEmpty(": ", a.Type, a.Content)) + "\n")
		}
	}

	return b.String()
}

func (m Model) renderReport() string {
	r := m.report
	if r == nil {
		return hintStyle.Render("  loading report...")
	}

	width := max(m.viewport.Width-4, 20)
	var b strings.Builder

	addField(&b, "Name", r.Name)
	addField(&b, "Headline", r.Headline)
	addField(&b, "Profile", r.ProfileURL)
	addField(&b, "Degree", r.ConnectionDegree)
	addField(&b, "Goal", r.Goal)
	b.WriteString(labelStyle.Render("Score") + fmt.Sprintf("%d / %d  %s\n", r.Score, scoring.MaxScore, gradeBadge(r.Grade)))
	addField(&b, "Analyzed At", r.AnalyzedAt.Format(timeLayout))

	b.WriteString("\n" + divider("── Justification ", width) + "\n")
	b.WriteString(bodyStyle.Render(wordWrap(r.Justification, width)) + "\n")

	b.WriteString("\n" + divider("── Connection message ", width) + "\n")
	b.WriteString(bodyStyle.Render(wordWrap(r.ConnectionMessage, width)) + "\n")

	return b.String()
}

func (m Model) renderSettings() string {
	labels := []string{
		fieldTitle:    "Your title",
		fieldIndustry: "Industry",
		fieldSkills:   "Skills",
		fieldAPIKey:   "API key",
	}

	var b strings.Builder
	for i, in := range m.inputs {
		prefix := "  "
		if m.focus == i {
			prefix = "> "
		}
		b.WriteString(prefix + labelStyle.Render(labels[i]) + in.View() + "\n")
	}

	prefix := "  "
	if m.focus == fieldGoal {
		prefix = "> "
	}
	b.WriteString(prefix + labelStyle.Render("Goal") + string(m.draftGoal) + "\n")

	b.WriteByte('\n')
	b.WriteString(hintStyle.Render("  goals: "+goalList()) + "\n")
	return b.String()
}

func goalList() string {
	goals := scoring.Goals()
	names := make([]string, 0, len(goals))
	for _, g := range goals {
		names = append(names, string(g))
	}
	return strings.Join(names, ", ")
}

func addField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteByte('\n')
}

func divider(label string, width int) string {
	fill := strings.Repeat("─", max(width-len(label), 3))
	return dividerStyle.Render(label + fill)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

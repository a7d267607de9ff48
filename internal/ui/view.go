package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/logtail"
)

// Column widths of the product table. The title column takes the rest.
const (
	colID       = 6
	colCategory = 18
	colPrice    = 10
	colRating   = 12
	colGaps     = 4
)

func (m Model) View() string {
	w, h := m.size()
	page := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTable(),
		m.renderStatus(),
	)
	page = lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Background)).
		Width(w).
		Height(h).
		MaxHeight(h).
		Render(page)

	var overlay string
	switch m.mode {
	case modeForm:
		overlay = m.form.view(m.theme.Styles())
	case modeConfirm:
		overlay = m.renderConfirm()
	case modeHelp:
		overlay = m.help.View()
	case modeLogs:
		overlay = m.logs.View()
	default:
		return page
	}
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
		m.theme.Styles().Modal.Render(overlay),
		lipgloss.WithWhitespaceBackground(lipgloss.Color(m.theme.Background)),
	)
}

func (m Model) renderHeader() string {
	w, _ := m.size()
	styles := m.theme.Styles()
	bg := newBgStyle(m.theme.Surface)
	snap := m.snapshot

	parts := []string{
		bg.render("shelf", styles.Logo),
		bg.render("Category:", styles.MutedText) + bg.spaces(1) +
			bg.render(categoryLabel(snap.Category), styles.AccentText),
		bg.render("Products:", styles.MutedText) + bg.spaces(1) +
			bg.render(fmt.Sprintf("%d", len(snap.Products)), styles.Text),
	}

	switch {
	case snap.IsOffline():
		parts = append(parts, bg.render("● "+classifyError(snap.LastError), styles.DangerText))
	case snap.Loading:
		parts = append(parts, bg.render("● loading", styles.WarningText))
	case !snap.LastUpdated.IsZero():
		parts = append(parts, bg.render("● "+humanizeDuration(m.now().Sub(snap.LastUpdated))+" ago", styles.SuccessText))
	}
	if m.filter != snap.Category {
		parts = append(parts, bg.render("→ "+categoryLabel(m.filter), styles.InfoText))
	}
	if m.apiURL != "" && w >= 100 {
		parts = append(parts, bg.render(truncate(m.apiURL, 40), styles.FaintText))
	}

	return styles.Header.Width(w).Render(bg.join(parts, "  "))
}

func (m Model) titleWidth() int {
	w, _ := m.size()
	return max(w-colID-colCategory-colPrice-colRating-colGaps-2, 10)
}

func (m Model) renderTable() string {
	w, _ := m.size()
	styles := m.theme.Styles()
	rows := m.visibleRows()
	bg := newBgStyle(m.theme.Background)

	lines := make([]string, 0, rows+1)
	lines = append(lines, bg.fill(" "+styles.MutedText.Background(bg.bg).Bold(true).Render(m.formatRow("ID", "TITLE", "CATEGORY", "PRICE", "RATING")), w))

	products := m.snapshot.Products
	if len(products) == 0 {
		msg := "No products. Press n to add one or r to refresh."
		if m.snapshot.Loading {
			msg = "Loading products…"
		}
		lines = append(lines, bg.fill(" "+styles.MutedText.Background(bg.bg).Render(msg), w))
	}

	end := min(m.offset+rows, len(products))
	for i := m.offset; i < end; i++ {
		p := products[i]
		if i == m.cursor {
			row := m.formatRow(p.ID.String(), p.Title, p.Category, formatPrice(p.Price), formatRating(p.Rating))
			lines = append(lines, styles.Selected.Width(w).Render(" "+row))
			continue
		}
		rowBg := newBgStyle(m.theme.Background)
		if i%2 == 1 {
			rowBg = newBgStyle(m.theme.SurfaceAlt)
		}
		cat := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.CategoryColor(p.Category)))
		cells := []string{
			rowBg.render(padRight(p.ID.String(), colID), styles.FaintText),
			rowBg.render(padRight(p.Title, m.titleWidth()), styles.Text),
			rowBg.render(padRight(p.Category, colCategory), cat),
			rowBg.render(padLeft(formatPrice(p.Price), colPrice), styles.Text),
			rowBg.render(padLeft(formatRating(p.Rating), colRating), styles.MutedText),
		}
		lines = append(lines, rowBg.fill(rowBg.spaces(1)+rowBg.join(cells, " "), w))
	}

	return lipgloss.NewStyle().Height(rows + 1).MaxHeight(rows + 1).Render(strings.Join(lines, "\n"))
}

func (m Model) formatRow(id, title, category, price, rating string) string {
	return strings.Join([]string{
		padRight(id, colID),
		padRight(title, m.titleWidth()),
		padRight(category, colCategory),
		padLeft(price, colPrice),
		padLeft(rating, colRating),
	}, " ")
}

// renderStatus shows the latest operation outcome, the last recorded error,
// or key hints, in that order of preference.
func (m Model) renderStatus() string {
	w, _ := m.size()
	styles := m.theme.Styles()
	bg := newBgStyle(m.theme.Surface)

	switch {
	case m.flash != "" && m.flashErr:
		return styles.Footer.Width(w).Render(bg.render(truncate(m.flash, w-2), styles.DangerText))
	case m.flash != "":
		return styles.Footer.Width(w).Render(bg.render(truncate(m.flash, w-2), styles.SuccessText))
	case m.snapshot.LastError != nil:
		label := classifyError(m.snapshot.LastError)
		msg := truncate(m.snapshot.LastError.Error(), max(w-len(label)-4, 10))
		return styles.Footer.Width(w).Render(
			bg.render(label, styles.DangerText) + bg.spaces(2) + bg.render(msg, styles.MutedText))
	}

	hints := make([]string, 0, len(m.keys.footerBindings()))
	for _, b := range m.keys.footerBindings() {
		h := b.Help()
		hints = append(hints, bg.render("<"+h.Key+">", styles.AccentText)+bg.spaces(1)+bg.render(h.Desc, styles.MutedText))
	}
	return styles.Footer.Width(w).Render(bg.join(hints, "  "))
}

func (m Model) renderConfirm() string {
	styles := m.theme.Styles()
	title := truncate(m.confirm.Title, 40)
	if title == "" {
		title = "#" + m.confirm.ID.String()
	}
	return styles.DangerText.Render("Delete product?") + "\n\n" +
		styles.Text.Render(fmt.Sprintf("%s (#%s)", title, m.confirm.ID)) + "\n\n" +
		styles.FaintText.Render("y confirm · n cancel")
}

func (m Model) helpContent() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Keys"))
	b.WriteString("\n\n")
	for _, binding := range m.keys.helpBindings() {
		h := binding.Help()
		b.WriteString(styles.AccentText.Render(padRight("<"+h.Key+">", 10)))
		b.WriteString(styles.Text.Render(h.Desc))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// logContent renders the tail of the log file, newest last.
func (m Model) logContent() string {
	styles := m.theme.Styles()
	if m.logPath == "" {
		return styles.MutedText.Render("No log file configured.")
	}
	entries, err := logtail.Tail(m.logPath, logLines)
	if err != nil {
		return styles.DangerText.Render(err.Error())
	}
	if len(entries) == 0 {
		return styles.MutedText.Render("Log is empty: " + m.logPath)
	}

	width := max(m.logs.Width, 20)
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Raw != "" {
			lines = append(lines, styles.FaintText.Render(truncate(e.Raw, width)))
			continue
		}
		stamp := ""
		if !e.Time.IsZero() {
			stamp = e.Time.Local().Format("15:04:05") + " "
		}
		level := padRight(strings.ToUpper(e.Level), 5)
		rest := e.Message
		if fields := e.FieldString(); fields != "" {
			rest += "  " + fields
		}
		rest = truncate(rest, max(width-len(stamp)-6, 10))
		lines = append(lines,
			styles.MutedText.Render(stamp)+m.levelStyle(e.Level).Render(level)+" "+styles.Text.Render(rest))
	}
	return strings.Join(lines, "\n")
}

func (m Model) levelStyle(level string) lipgloss.Style {
	styles := m.theme.Styles()
	switch strings.ToLower(level) {
	case "debug":
		return styles.InfoText
	case "warn":
		return styles.WarningText.Bold(true)
	case "error", "dpanic", "panic", "fatal":
		return styles.DangerText
	default:
		return styles.SuccessText
	}
}

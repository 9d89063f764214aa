package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/mdns-dashboard/internal/format/table"
	"github.com/atomicstack/mdns-dashboard/internal/mdns"
	"github.com/atomicstack/mdns-dashboard/internal/state"
	uistate "github.com/atomicstack/mdns-dashboard/internal/ui/state"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
)

const (
	headerRows    = 2
	detailRows    = 12
	footerRows    = 2
	minListRows   = 3
	defaultWidth  = 80
	defaultHeight = 24

	searchWidthPercent = 60
	searchRows         = 4

	servicesTitle  = "Services"
	instancesTitle = "Resolved instances"
	detailTitle    = "Detailed info"
	searchTitle    = "Search"
	searchHint     = "Use ↵ to apply. Esc to exit"
	paneHint       = "←→ to switch panes, C-q to exit."
)

// paneView is a copy of one collection taken under its store lock.
type paneView struct {
	title     string
	rows      []string
	total     int
	cursor    int
	filtering bool
	buffer    string
}

type detailView struct {
	info mdns.ServiceInfo
	ok   bool
}

func snapshotPane[T uistate.Entry](list *uistate.Collection[T], name string) paneView {
	v := paneView{title: list.Title(name), total: list.Len(), cursor: -1}
	for item := range list.Filtered() {
		v.rows = append(v.rows, item.Label())
	}
	if c, ok := list.Cursor(); ok {
		v.cursor = c
	}
	v.filtering = list.Mode() == uistate.ModeFiltering
	v.buffer, _ = list.Buffer()
	return v
}

// snapshot copies what the view needs, taking each store lock in turn.
func (m *Model) snapshot() (paneView, paneView, detailView) {
	var (
		services  paneView
		selected  string
		hasSelect bool
	)
	m.categories.With(func(list *uistate.Collection[state.Category]) {
		services = snapshotPane(list, servicesTitle)
		if c, ok := list.Selected(); ok {
			selected, hasSelect = string(c), true
		}
	})
	instances := paneView{title: instancesTitle, cursor: -1}
	var detail detailView
	if hasSelect {
		m.instances.With(selected, func(list *uistate.Collection[state.Instance]) {
			instances = snapshotPane(list, instancesTitle)
			if inst, ok := list.Selected(); ok {
				detail = detailView{info: inst.ServiceInfo, ok: true}
			}
		})
	}
	return services, instances, detail
}

// View implements tea.Model.
func (m *Model) View() string {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	services, instances, detail := m.snapshot()

	listRows := height - headerRows - detailRows - footerRows
	if listRows < minListRows {
		listRows = minListRows
	}
	leftWidth := width / 2
	rightWidth := width - leftWidth

	lists := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPane(services, leftWidth, listRows, m.tab == TabServices),
		m.renderPane(instances, rightWidth, listRows, m.tab == TabInstances),
	)
	sections := []string{
		m.renderHeader(width),
		lists,
		m.renderDetail(detail, width, detailRows),
		m.renderFooter(width, m.activePane(services, instances).filtering),
	}
	return strings.Join(sections, "\n")
}

func (m *Model) activePane(services, instances paneView) paneView {
	if m.tab == TabInstances {
		return instances
	}
	return services
}

func (m *Model) renderHeader(width int) string {
	version := m.version
	if version == "" {
		version = "dev"
	}
	text := fmt.Sprintf("%s, v%s", description, strings.TrimPrefix(version, "v"))
	if styles.Header != nil {
		text = styles.Header.Render(text)
	}
	lines := make([]string, headerRows)
	lines[0] = lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
	for i := 1; i < headerRows; i++ {
		lines[i] = strings.Repeat(" ", width)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter(width int, filtering bool) string {
	controls := m.help.ShortHelpView(m.keys.ShortHelp())
	if filtering {
		controls = m.help.ShortHelpView(searchKeys{m.keys}.ShortHelp())
	}
	hint := paneHint
	if styles.Footer != nil {
		hint = styles.Footer.Render(hint)
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, controls) + "\n" +
		lipgloss.PlaceHorizontal(width, lipgloss.Center, hint)
}

func (m *Model) renderPane(v paneView, width, height int, focused bool) string {
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)

	body := make([]string, innerH)
	start := uistate.VisibleWindow(v.cursor, len(v.rows), innerH)
	for i := range body {
		idx := start + i
		if idx < len(v.rows) {
			body[i] = renderRow(v.rows[idx], idx, idx == v.cursor, innerW)
			continue
		}
		body[i] = fill(styles.Row, "", innerW)
	}
	if len(v.rows) == 0 {
		msg := ""
		switch {
		case v.total > 0:
			msg = "(no matches)"
		case focused:
			msg = "(no entries)"
		}
		if msg != "" {
			body[0] = fill(styles.Empty, " "+msg, innerW)
		}
	}
	if v.filtering {
		m.overlaySearch(body, v.buffer, innerW)
	}

	border, title := styles.Border, styles.Title
	if focused {
		border, title = styles.FocusedBorder, styles.FocusedTitle
	}
	return renderBox(v.title, body, width, height, border, title)
}

func renderRow(label string, idx int, selected bool, width int) string {
	style := styles.Row
	if idx%2 == 1 {
		style = styles.AltRow
	}
	indicator := " "
	if selected {
		indicator = ">"
		style = styles.SelectedRow
	}
	return fill(style, indicator+label, width)
}

// overlaySearch draws the search box over the middle rows of body.
func (m *Model) overlaySearch(body []string, buffer string, width int) {
	if len(body) < searchRows {
		body[len(body)-1] = fill(nil, m.searchPrompt(buffer), width)
		return
	}
	boxW := max(width*searchWidthPercent/100, lipgloss.Width(searchHint)+4)
	if boxW > width {
		boxW = width
	}
	hint := lipgloss.PlaceHorizontal(boxW-2, lipgloss.Center, searchHint)
	if styles.SearchHint != nil {
		hint = lipgloss.PlaceHorizontal(boxW-2, lipgloss.Center, styles.SearchHint.Render(searchHint))
	}
	box := strings.Split(renderBox(searchTitle,
		[]string{m.searchPrompt(buffer), hint},
		boxW, searchRows, styles.SearchBorder, styles.FocusedTitle), "\n")
	top := (len(body) - searchRows) / 2
	left := (width - boxW) / 2
	right := width - boxW - left
	for i, line := range box {
		body[top+i] = strings.Repeat(" ", left) + line + strings.Repeat(" ", right)
	}
}

func (m *Model) renderDetail(d detailView, width, height int) string {
	innerW := max(width-2, 1)
	var body []string
	if d.ok {
		for _, line := range table.KeyValue(detailFields(d.info, m.now), innerW-1) {
			key, value := line.Key, line.Value
			if styles.DetailKey != nil {
				key = styles.DetailKey.Render(key)
			}
			if styles.DetailValue != nil {
				value = styles.DetailValue.Render(value)
			}
			body = append(body, " "+key+value)
		}
	}
	return renderBox(detailTitle, body, width, height, styles.Border, styles.Title)
}

func detailFields(info mdns.ServiceInfo, now func() time.Time) []table.Field {
	seen := "-"
	if !info.SeenAt.IsZero() {
		seen = humanize.RelTime(info.SeenAt, now(), "ago", "from now")
	}
	return []table.Field{
		{Key: "Hostname", Value: info.HostName},
		{Key: "Addresses", Value: info.AddressList()},
		{Key: "Port", Value: strconv.Itoa(int(info.Port))},
		{Key: "Host TTL", Value: known(info.HasHostTTL, uint64(info.HostTTL))},
		{Key: "Other TTL", Value: known(info.HasOtherTTL, uint64(info.OtherTTL))},
		{Key: "Priority", Value: known(info.HasSRV, uint64(info.Priority))},
		{Key: "Weight", Value: known(info.HasSRV, uint64(info.Weight))},
		{Key: "Last seen", Value: seen},
		{Key: "Properties", Value: info.PropertyList()},
	}
}

// known renders v, or "-" when no record reported it.
func known(ok bool, v uint64) string {
	if !ok {
		return "-"
	}
	return strconv.FormatUint(v, 10)
}

// renderBox draws a bordered box of exactly width columns and height rows
// with title centered in the top border. Body lines are truncated or padded
// to the inner width.
func renderBox(title string, body []string, width, height int, border, titleStyle *lipgloss.Style) string {
	const (
		tlc = "╭"
		trc = "╮"
		blc = "╰"
		brc = "╯"
		hz  = "─"
		vt  = "│"
	)
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)

	titleSeg := " " + title + " "
	dashes := innerW - lipgloss.Width(titleSeg)
	if dashes < 0 {
		titleSeg = truncate.StringWithTail(titleSeg, uint(innerW), "…")
		dashes = innerW - lipgloss.Width(titleSeg)
	}
	leftDashes := dashes / 2
	rightDashes := dashes - leftDashes

	topLine := render(border, tlc+strings.Repeat(hz, leftDashes)) +
		render(titleStyle, titleSeg) +
		render(border, strings.Repeat(hz, rightDashes)+trc)
	bottomLine := render(border, blc+strings.Repeat(hz, innerW)+brc)

	rows := make([]string, 0, innerH+2)
	rows = append(rows, topLine)
	for i := 0; i < innerH; i++ {
		var content string
		if i < len(body) {
			content = body[i]
		}
		rows = append(rows, render(border, vt)+fit(content, innerW)+render(border, vt))
	}
	rows = append(rows, bottomLine)
	return strings.Join(rows, "\n")
}

// fill pads text to width and renders it with style so backgrounds span the
// whole row.
func fill(style *lipgloss.Style, text string, width int) string {
	return render(style, fit(text, width))
}

func fit(text string, width int) string {
	w := lipgloss.Width(text)
	if w > width {
		text = truncate.StringWithTail(text, uint(max(width, 0)), "…")
		w = lipgloss.Width(text)
	}
	if w < width {
		text += strings.Repeat(" ", width-w)
	}
	return text
}

func render(style *lipgloss.Style, text string) string {
	if style == nil {
		return text
	}
	return style.Render(text)
}

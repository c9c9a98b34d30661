package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rohzzn/medical-rag/internal/api"
	"github.com/rohzzn/medical-rag/internal/chat"
	"github.com/rohzzn/medical-rag/internal/config"
	"github.com/rohzzn/medical-rag/internal/highlight"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type Model struct {
	cfg    config.AppConfig
	client *api.Client
	thread *chat.Thread
	user   api.User

	list     list.Model
	viewport viewport.Model
	input    textinput.Model
	search   textinput.Model
	help     help.Model
	spinner  spinner.Model
	keys     keyMap

	width  int
	height int

	focusOnList bool
	searchMode  bool
	searchQuery string

	loadingList   bool
	expandSources bool
	mode          api.RetrieverMode

	rendering          bool
	renderNonce        int
	renderedTranscript string
	matchLines         []int
	matchCount         int
	matchIndex         int

	selectedListID int

	status string
	err    error
}

type conversationsMsg struct {
	conversations []api.Conversation
	err           error
}
type historyMsg struct {
	epoch int
	conv  api.Conversation
	err   error
}
type queryMsg struct {
	epoch int
	res   api.QueryResult
	err   error
}
type modeMsg struct {
	mode api.RetrieverMode
	err  error
}
type renderMsg struct {
	nonce      int
	rendered   string
	gotoBottom bool
}

type conversationItem struct {
	c api.Conversation
}

func (i conversationItem) Title() string {
	return truncateTitle(i.c.Title, 30)
}

func (i conversationItem) Description() string {
	n := len(i.c.Messages)
	plural := "s"
	if n == 1 {
		plural = ""
	}
	return fmt.Sprintf("%s | %d message%s", relativeTime(i.c.UpdatedAt, time.Now()), n, plural)
}

func (i conversationItem) FilterValue() string {
	return strings.ToLower(i.c.Title)
}

func NewModel(cfg config.AppConfig, client *api.Client, user api.User) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 40, 20)
	l.Title = "Conversations"
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	vp := viewport.New(60, 20)
	vp.SetContent("Ask a question to start a new conversation.")

	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Focus()

	si := textinput.New()
	si.Placeholder = "Search transcript..."
	si.Prompt = "/ "
	si.CharLimit = 256

	h := help.New()
	h.ShowAll = false

	sp := spinner.New()
	sp.Spinner = spinner.Points

	mode := api.RetrieverMode(cfg.RetrieverMode)
	if !mode.Valid() {
		mode = api.ModeHybrid
	}

	return Model{
		cfg:      cfg,
		client:   client,
		thread:   chat.New(),
		user:     user,
		list:     l,
		viewport: vp,
		input:    ti,
		search:   si,
		help:     h,
		spinner:  sp,
		keys:     defaultKeys(),

		loadingList: true,
		mode:        mode,
		matchIndex:  -1,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, m.conversationsCmd())
}

func (m Model) conversationsCmd() tea.Cmd {
	return func() tea.Msg {
		conversations, err := m.client.ListConversations(context.Background())
		return conversationsMsg{conversations: conversations, err: err}
	}
}

func (m Model) historyCmd(conversationID, epoch int) tea.Cmd {
	return func() tea.Msg {
		conv, err := m.client.GetConversation(context.Background(), conversationID)
		return historyMsg{epoch: epoch, conv: conv, err: err}
	}
}

func (m Model) sendCmd(text string, conversationID, epoch int) tea.Cmd {
	mode := m.mode
	return func() tea.Msg {
		res, err := m.client.SubmitQuery(context.Background(), text, conversationID, mode)
		return queryMsg{epoch: epoch, res: res, err: err}
	}
}

func (m Model) setModeCmd(mode api.RetrieverMode) tea.Cmd {
	return func() tea.Msg {
		err := m.client.SetRetrieverMode(context.Background(), mode)
		return modeMsg{mode: mode, err: err}
	}
}

func (m Model) renderCmd(md string, nonce, wrap int, gotoBottom bool) tea.Cmd {
	style := m.cfg.GlamourStyle
	if style == "" {
		style = config.DefaultGlamourStyle
	}
	return func() tea.Msg {
		rendered := md
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wrap),
		)
		if err == nil {
			if out, renderErr := r.Render(md); renderErr == nil {
				rendered = out
			}
		}
		return renderMsg{nonce: nonce, rendered: rendered, gotoBottom: gotoBottom}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		cmds = append(cmds, m.renderTranscript(false))

	case conversationsMsg:
		m.loadingList = false
		if msg.err != nil {
			m.err = msg.err
			m.status = "Could not refresh conversations"
			break
		}
		m.err = nil
		m.applyConversations(msg.conversations)

	case historyMsg:
		if msg.err != nil {
			if m.thread.FailFetch(msg.epoch) {
				m.err = msg.err
				m.status = "Could not load conversation"
				cmds = append(cmds, m.renderTranscript(false))
			}
			break
		}
		if m.thread.ApplyFetch(msg.epoch, msg.conv) {
			m.err = nil
			cmds = append(cmds, m.renderTranscript(true))
		}

	case queryMsg:
		if msg.err != nil {
			if m.thread.FailSend(msg.epoch, msg.err) {
				m.err = msg.err
				m.status = "Query failed"
				cmds = append(cmds, m.renderTranscript(true))
				if !m.focusOnList {
					cmds = append(cmds, m.input.Focus())
				}
			}
			break
		}
		if m.thread.ApplySendResult(msg.epoch, msg.res) {
			m.err = nil
			m.status = ""
			m.selectedListID = m.thread.ConversationID()
			cmds = append(cmds, m.renderTranscript(true), m.conversationsCmd())
			if !m.focusOnList {
				cmds = append(cmds, m.input.Focus())
			}
		}

	case modeMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "Could not set retriever mode"
			break
		}
		m.mode = msg.mode
		m.status = "Retriever mode: " + string(msg.mode)

	case renderMsg:
		if msg.nonce != m.renderNonce {
			break
		}
		m.rendering = false
		m.renderedTranscript = msg.rendered
		m.setViewportFromRendered(msg.rendered, msg.gotoBottom)

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	if m.busy() {
		var spin tea.Cmd
		m.spinner, spin = m.spinner.Update(msg)
		cmds = append(cmds, spin)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.searchMode {
		switch msg.String() {
		case "esc":
			m.searchMode = false
			m.searchQuery = ""
			m.search.SetValue("")
			m.search.Blur()
			m.setViewportFromRendered(m.renderedTranscript, false)
			return m, nil
		case "enter":
			m.searchMode = false
			m.search.Blur()
			m.searchQuery = strings.TrimSpace(m.search.Value())
			m.setViewportFromRendered(m.renderedTranscript, false)
			if len(m.matchLines) > 0 {
				m.matchIndex = 0
				m.viewport.SetYOffset(m.clampViewportOffset(m.matchLines[0]))
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.focusOnList = !m.focusOnList
		if m.focusOnList {
			m.input.Blur()
		} else if !m.thread.SendPending() {
			cmds = append(cmds, m.input.Focus())
		}
		return m, tea.Batch(cmds...)
	case key.Matches(msg, m.keys.NewChat):
		m.thread.NewChat()
		m.input.SetValue("")
		m.status = ""
		m.err = nil
		m.focusOnList = false
		m.selectedListID = 0
		cmds = append(cmds, m.input.Focus(), m.renderTranscript(false))
		return m, tea.Batch(cmds...)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focusOnList {
		switch {
		case msg.String() == "q":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.loadingList = true
			return m, tea.Batch(m.conversationsCmd(), m.spinner.Tick)
		case key.Matches(msg, m.keys.Search):
			m.searchMode = true
			m.search.SetValue(m.searchQuery)
			m.search.CursorEnd()
			return m, m.search.Focus()
		case key.Matches(msg, m.keys.ToggleSources):
			m.expandSources = !m.expandSources
			return m, m.renderTranscript(false)
		case key.Matches(msg, m.keys.CycleMode):
			return m, m.setModeCmd(nextMode(m.mode))
		case key.Matches(msg, m.keys.PrevMatch):
			m.jumpToMatch(-1)
			return m, nil
		case key.Matches(msg, m.keys.NextMatch):
			m.jumpToMatch(1)
			return m, nil
		}

		prev := m.selectedListID
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
		m.selectedListID = m.currentSelectedID()
		if m.selectedListID != 0 && m.selectedListID != prev {
			epoch := m.thread.BeginFetch(m.selectedListID)
			m.viewport.SetContent("Loading conversation...")
			cmds = append(cmds, m.historyCmd(m.selectedListID, epoch), m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)
	}

	// Input focused.
	if msg.String() == "enter" {
		entry, conversationID, epoch, err := m.thread.BeginSend(m.input.Value())
		switch err {
		case nil:
			m.input.SetValue("")
			m.input.Blur()
			m.status = ""
			cmds = append(cmds,
				m.sendCmd(entry.Content, conversationID, epoch),
				m.renderTranscript(true),
				m.spinner.Tick,
			)
		case chat.ErrSendInFlight:
			m.status = "Still waiting on the previous question"
		case chat.ErrEmptyMessage:
			// Nothing to send.
		}
		return m, tea.Batch(cmds...)
	}

	if m.thread.SendPending() {
		// Input is disabled while a send is outstanding.
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyConversations(in []api.Conversation) {
	items := make([]list.Item, 0, len(in))
	for _, c := range in {
		items = append(items, conversationItem{c: c})
	}
	m.list.SetItems(items)

	if len(in) == 0 {
		m.selectedListID = 0
		return
	}

	selectIdx := 0
	current := m.thread.ConversationID()
	if current != 0 {
		for idx, c := range in {
			if c.ID == current {
				selectIdx = idx
				break
			}
		}
	}
	m.list.Select(selectIdx)
	m.selectedListID = in[selectIdx].ID
}

func (m *Model) currentSelectedID() int {
	item, ok := m.list.SelectedItem().(conversationItem)
	if !ok {
		return 0
	}
	return item.c.ID
}

func (m *Model) renderTranscript(gotoBottom bool) tea.Cmd {
	entries := m.thread.Entries()
	if len(entries) == 0 {
		m.renderedTranscript = ""
		m.viewport.SetContent("Ask a question to start a new conversation.")
		m.clearMatches()
		return nil
	}

	md := BuildTranscriptMarkdown(entries, m.expandSources)
	if m.thread.SendPending() {
		md += "\n_Thinking..._\n"
	}

	m.rendering = true
	m.renderNonce++
	wrap := m.viewport.Width - 2
	if wrap < 20 {
		wrap = 20
	}
	return m.renderCmd(md, m.renderNonce, wrap, gotoBottom)
}

func (m *Model) setViewportFromRendered(rendered string, gotoBottom bool) {
	content := rendered
	query := strings.TrimSpace(m.searchQuery)
	if query != "" {
		res := highlight.Apply(rendered, query, func(s string) string {
			return searchMatchStyle.Render(s)
		})
		content = res.Text
		m.setMatchMeta(res)
	} else {
		m.clearMatches()
	}

	m.viewport.SetContent(content)
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) setMatchMeta(res highlight.Result) {
	if res.Count == 0 || len(res.LineIndex) == 0 {
		m.clearMatches()
		return
	}
	m.matchCount = res.Count
	m.matchLines = append(m.matchLines[:0], res.LineIndex...)
	if m.matchIndex < 0 || m.matchIndex >= len(m.matchLines) {
		m.matchIndex = 0
	}
}

func (m *Model) clearMatches() {
	m.matchLines = nil
	m.matchCount = 0
	m.matchIndex = -1
}

func (m *Model) jumpToMatch(delta int) {
	if len(m.matchLines) == 0 {
		m.status = "No search matches in transcript"
		return
	}

	if m.matchIndex < 0 || m.matchIndex >= len(m.matchLines) {
		m.matchIndex = 0
	} else if delta > 0 {
		m.matchIndex = (m.matchIndex + 1) % len(m.matchLines)
	} else if delta < 0 {
		m.matchIndex = (m.matchIndex - 1 + len(m.matchLines)) % len(m.matchLines)
	}

	line := m.matchLines[m.matchIndex]
	m.viewport.SetYOffset(m.clampViewportOffset(line))
	m.status = fmt.Sprintf("Match %d/%d", m.matchIndex+1, m.matchCount)
}

func (m *Model) clampViewportOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	maxOffset := m.viewport.TotalLineCount() - m.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}

func (m Model) busy() bool {
	return m.loadingList || m.rendering || m.thread.SendPending() || m.thread.Fetching()
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	left, right := m.paneWidths()

	bodyHeight := m.height - 2
	if bodyHeight < 8 {
		bodyHeight = 8
	}

	m.list.SetSize(left-2, bodyHeight-2)
	m.viewport.Width = right - 2
	m.viewport.Height = bodyHeight - 4
	m.input.Width = right - 6
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}

	status := m.statusLine()
	left, right := m.paneWidths()

	inputLine := m.input.View()
	if m.thread.SendPending() {
		inputLine = m.spinner.View() + " thinking..."
	}

	chatPane := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		inputStyle.Render(inputLine),
	)

	leftPane := panelStyle(m.focusOnList).Width(left).Height(m.height - 2).Render(m.list.View())
	rightPane := panelStyle(!m.focusOnList).Width(right).Height(m.height - 2).Render(chatPane)
	body := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)

	helpView := m.help.View(m.keys)
	if m.searchMode {
		helpView = m.search.View() + "  " + helpView
	} else if m.searchQuery != "" {
		helpView = "search: " + m.searchQuery + "  " + helpView
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		status,
		body,
		helpView,
	)
}

func (m Model) statusLine() string {
	status := m.user.Email
	if m.thread.Draft() {
		status += "  [new chat]"
	} else {
		status += fmt.Sprintf("  conversation=%d", m.thread.ConversationID())
	}
	status += "  mode=" + string(m.mode)
	if m.thread.Fetching() || m.loadingList {
		status += "  " + m.spinner.View() + " loading..."
	}
	if m.expandSources {
		status += "  [sources-expanded]"
	}
	if strings.TrimSpace(m.searchQuery) != "" {
		if m.matchCount > 0 {
			status += fmt.Sprintf("  [match %d/%d]", m.matchIndex+1, m.matchCount)
		} else {
			status += "  [match 0]"
		}
	}
	if strings.TrimSpace(m.status) != "" {
		status += "  " + shorten(strings.TrimSpace(m.status), 60)
	}
	if m.err != nil {
		status += "  err=" + shorten(m.err.Error(), 60)
	}
	return statusStyle.Render(status)
}

func (m *Model) paneWidths() (int, int) {
	left := m.width / 3
	if left < 28 {
		left = 28
	}
	if left > m.width-40 {
		left = m.width - 40
	}
	if left < 20 {
		left = 20
	}
	right := m.width - left - 1
	if right < 20 {
		right = 20
	}
	return left, right
}

func nextMode(mode api.RetrieverMode) api.RetrieverMode {
	modes := api.Modes()
	for i, candidate := range modes {
		if candidate == mode {
			return modes[(i+1)%len(modes)]
		}
	}
	return api.ModeHybrid
}

func shorten(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func truncateTitle(title string, max int) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled conversation"
	}
	if len(title) <= max {
		return title
	}
	return title[:max] + "..."
}

// relativeTime matches the sidebar's "5 mins ago" style timestamps.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		n := int(d.Minutes())
		return fmt.Sprintf("%d min%s ago", n, plural(n))
	case d < 24*time.Hour:
		n := int(d.Hours())
		return fmt.Sprintf("%d hour%s ago", n, plural(n))
	case d < 7*24*time.Hour:
		n := int(d.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", n, plural(n))
	default:
		return t.Format("2006-01-02")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("24")).
			Padding(0, 1)
	searchMatchStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("16")).
				Background(lipgloss.Color("220"))
	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color("240"))
)

func panelStyle(active bool) lipgloss.Style {
	border := lipgloss.NormalBorder()
	if active {
		return lipgloss.NewStyle().
			Border(border, true).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
	}
	return lipgloss.NewStyle().
		Border(border, true).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
}

type keyMap struct {
	Tab           key.Binding
	NewChat       key.Binding
	Refresh       key.Binding
	Search        key.Binding
	PrevMatch     key.Binding
	NextMatch     key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	ToggleSources key.Binding
	CycleMode     key.Binding
	Quit          key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle focus"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new chat"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh list"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "prev match"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next match"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		ToggleSources: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "expand sources"),
		),
		CycleMode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "retriever mode"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.NewChat, k.Refresh, k.Search, k.ToggleSources, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.NewChat, k.Refresh},
		{k.Search, k.PrevMatch, k.NextMatch, k.PageUp, k.PageDown},
		{k.ToggleSources, k.CycleMode, k.Quit},
	}
}

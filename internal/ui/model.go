package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/state"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
	modeHelp
	modeLogs
)

// Operation names used in status messages.
const (
	opFetch  = "fetch"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
	opPrefs  = "save prefs"
)

const (
	logLines    = 200 // entries loaded into the log overlay
	defaultRows = 24
	defaultCols = 100
)

// storeChangedMsg signals that the store published a new snapshot.
type storeChangedMsg struct{}

type categoriesMsg struct {
	names []string
	err   error
}

// opResultMsg reports a finished store operation. detail, when set, is shown
// in the status line on success.
type opResultMsg struct {
	op     string
	detail string
	err    error
}

// Model is the Bubble Tea model for the catalog browser.
type Model struct {
	ctx   context.Context
	store *state.Store
	api   catalog.API
	log   *zap.Logger
	keys  keyMap
	now   func() time.Time

	theme     Theme
	prefs     prefs.Prefs
	prefsPath string
	apiURL    string
	logPath   string

	snapshot   state.Snapshot
	categories []string
	filter     string // requested category; the applied one is snapshot.Category
	changes    <-chan struct{}
	cancelSub  func()

	width  int
	height int
	cursor int
	offset int

	mode    mode
	form    productForm
	confirm catalog.Product
	help    viewport.Model
	logs    viewport.Model

	flash    string
	flashErr bool
}

// NewModel builds the UI model and subscribes it to store changes. Call Close
// when the program exits.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	changes, cancel := opts.Store.Subscribe()
	userPrefs := opts.Prefs
	filter := strings.TrimSpace(opts.Category)

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		api:       opts.API,
		log:       log,
		keys:      defaultKeyMap(),
		now:       time.Now,
		theme:     GetTheme(userPrefs.Theme),
		prefs:     userPrefs,
		prefsPath: opts.PrefsPath,
		apiURL:    opts.APIURL,
		logPath:   opts.LogPath,
		snapshot:  opts.Store.Snapshot(),
		filter:    filter,
		changes:   changes,
		cancelSub: cancel,
		help:      viewport.New(0, 0),
		logs:      viewport.New(0, 0),
	}
}

// Close releases the store subscription.
func (m Model) Close() {
	if m.cancelSub != nil {
		m.cancelSub()
	}
}

// Init starts the first list fetch, loads the category list and begins
// listening for store changes.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForChange(m.changes),
		m.fetchCmd(m.filter),
	}
	if m.api != nil {
		cmds = append(cmds, m.loadCategoriesCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeHelp()
		m.clampCursor()
		return m, nil

	case storeChangedMsg:
		m.snapshot = m.store.Snapshot()
		m.clampCursor()
		return m, waitForChange(m.changes)

	case categoriesMsg:
		if msg.err != nil {
			m.log.Warn("load categories failed", zap.Error(msg.err))
			return m, nil
		}
		m.categories = msg.names
		return m, nil

	case opResultMsg:
		m.applyResult(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other input internals.
	if m.mode == modeForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) applyResult(msg opResultMsg) {
	switch {
	case msg.err != nil:
		m.flash = fmt.Sprintf("%s failed: %v", msg.op, msg.err)
		m.flashErr = true
	case msg.detail != "":
		m.flash = msg.detail
		m.flashErr = false
	}
	if msg.op == opCreate && msg.err == nil {
		m.cursor = 0
		m.offset = 0
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeHelp:
		return m.handleHelpKey(msg)
	case modeLogs:
		return m.handleLogsKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	case modeForm:
		return m.handleFormKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	page := m.visibleRows()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
		m.resizeHelp()
		m.help.SetContent(m.helpContent())
		m.help.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Logs):
		m.mode = modeLogs
		m.resizeHelp()
		m.logs.SetContent(m.logContent())
		m.logs.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.prefs.Theme = NextTheme(m.theme.Name)
		m.theme = GetTheme(m.prefs.Theme)
		return m, m.savePrefsCmd()

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-len(m.snapshot.Products))
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.snapshot.Products))
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-page)
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(page)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.CycleFilter):
		return m.setFilter(nextCategory(m.filter, m.categories))
	case key.Matches(msg, m.keys.ClearFilter):
		return m.setFilter("")

	case key.Matches(msg, m.keys.New):
		m.form = newProductForm(catalog.Product{Category: m.filter})
		m.mode = modeForm
		return m, m.form.inputs[fieldTitle].Focus()
	case key.Matches(msg, m.keys.Edit):
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.form = newProductForm(p)
		m.mode = modeForm
		return m, m.form.inputs[fieldTitle].Focus()
	case key.Matches(msg, m.keys.Delete):
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirm = p
		m.mode = modeConfirm
	}
	return m, nil
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit):
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.help, cmd = m.help.Update(msg)
	return m, cmd
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit):
		m.mode = modeList
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.logs.SetContent(m.logContent())
		m.logs.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logs, cmd = m.logs.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.mode = modeList
		return m, m.removeCmd(m.confirm)
	case key.Matches(msg, m.keys.No):
		m.mode = modeList
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		p, err := m.form.product()
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.mode = modeList
		if m.form.editing() {
			return m, m.updateCmd(p)
		}
		return m, m.createCmd(p)
	case key.Matches(msg, m.keys.NextField):
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.form.move(-1)
	}

	m.form.err = ""
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) setFilter(category string) (tea.Model, tea.Cmd) {
	m.filter = category
	m.prefs.Category = category
	m.cursor, m.offset = 0, 0
	return m, tea.Batch(m.fetchCmd(category), m.savePrefsCmd())
}

func (m Model) selected() (catalog.Product, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Products) {
		return catalog.Product{}, false
	}
	return m.snapshot.Products[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// clampCursor keeps the cursor on a product and the cursor row on screen.
func (m *Model) clampCursor() {
	n := len(m.snapshot.Products)
	m.cursor = clamp(m.cursor, 0, n-1)
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = clamp(m.offset, 0, max(n-rows, 0))
}

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultCols
	}
	if h <= 0 {
		h = defaultRows
	}
	return w, h
}

// visibleRows is the number of product rows that fit between the header,
// the column titles and the status line.
func (m Model) visibleRows() int {
	_, h := m.size()
	return max(h-3, 1)
}

func (m *Model) resizeHelp() {
	w, h := m.size()
	m.help.Width = min(w-8, 72)
	m.help.Height = min(h-8, len(m.keys.helpBindings())+2)
	m.logs.Width = max(w-8, 20)
	m.logs.Height = max(h-8, 3)
}

// Commands

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func (m Model) fetchCmd(category string) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return opResultMsg{op: opFetch, err: store.FilterByCategory(ctx, category)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return opResultMsg{op: opFetch, err: store.Refresh(ctx)}
	}
}

func (m Model) createCmd(p catalog.Product) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		created, err := store.Create(ctx, p)
		if err != nil {
			return opResultMsg{op: opCreate, err: err}
		}
		return opResultMsg{op: opCreate, detail: fmt.Sprintf("created %q as #%s", created.Title, created.ID)}
	}
}

func (m Model) updateCmd(p catalog.Product) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		updated, err := store.Update(ctx, p.ID, p)
		if err != nil {
			return opResultMsg{op: opUpdate, err: err}
		}
		return opResultMsg{op: opUpdate, detail: fmt.Sprintf("updated #%s", updated.ID)}
	}
}

func (m Model) removeCmd(p catalog.Product) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		if err := store.Remove(ctx, p.ID); err != nil {
			return opResultMsg{op: opDelete, err: err}
		}
		return opResultMsg{op: opDelete, detail: fmt.Sprintf("deleted %q", p.Title)}
	}
}

func (m Model) loadCategoriesCmd() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		names, err := api.ListCategories(ctx)
		return categoriesMsg{names: names, err: err}
	}
}

func (m Model) savePrefsCmd() tea.Cmd {
	path, p := m.prefsPath, m.prefs
	return func() tea.Msg {
		return opResultMsg{op: opPrefs, err: prefs.Save(path, p)}
	}
}

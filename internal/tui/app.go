package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/cratuity/internal/cache"
	"github.com/pders01/cratuity/internal/config"
	"github.com/pders01/cratuity/internal/crates"
	"github.com/pders01/cratuity/internal/debuglog"
	"github.com/pders01/cratuity/internal/events"
	"github.com/pders01/cratuity/internal/pager"
)

const (
	findLimit     = 20
	defaultWidth  = 80
	defaultHeight = 24
)

// Deps are the collaborators the UI drives. Only Pager and Submitter are
// required.
type Deps struct {
	Pager     *pager.Pager
	Submitter Submitter
	Opener    Opener
	Releases  ReleaseSource
	Finder    Finder
}

type App struct {
	config     *config.Config
	pager      *pager.Pager
	submitter  Submitter
	opener     Opener
	releases   ReleaseSource
	finder     Finder
	keys       KeyMap
	keyHandler *KeyHandler

	textInput textinput.Model
	findInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	help      help.Model
	toasts    toastQueue

	mode     Mode
	query    string
	searched bool
	page     uint32
	pageSize uint32
	sort     crates.Sort

	// selection indexes the visible page; -1 when nothing is selected.
	selection int

	// awaiting is set while the visible page is waiting on awaitingPlan.
	awaiting     bool
	awaitingPlan cache.FetchRequest
	failed       bool
	wantLast     bool

	// pending counts plans in the outbox, queued at the worker or in flight.
	pending int
	outbox  *cache.FetchRequest

	sortSelection int
	findResults   []crates.Crate
	findSelection int
	detailsCrate  *crates.Crate
	detailsReturn Mode

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func NewApp(cfg *config.Config, deps Deps) *App {
	ti := textinput.New()
	ti.Placeholder = "Search crates.io..."
	ti.Prompt = "› "
	ti.Focus()

	fi := textinput.New()
	fi.Placeholder = "Find among crates seen this session..."
	fi.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	sort, err := crates.ParseSort(cfg.Search.DefaultSort)
	if err != nil {
		debuglog.Warnf("ignoring default sort: %v", err)
		sort = crates.SortRelevance
	}

	pageSize := cfg.Search.ItemsPerPage
	if pageSize == 0 {
		pageSize = 5
	}

	app := &App{
		config:    cfg,
		pager:     deps.Pager,
		submitter: deps.Submitter,
		opener:    deps.Opener,
		releases:  deps.Releases,
		finder:    deps.Finder,
		keys:      DefaultKeyMap(),
		textInput: ti,
		findInput: fi,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
		help:      help.New(),
		toasts:    newToastQueue(),
		mode:      ModeInput,
		page:      1,
		pageSize:  pageSize,
		sort:      sort,
		selection: -1,
		width:     defaultWidth,
		height:    defaultHeight,
	}

	if app.pageSize > app.maxPageSize() {
		app.pageSize = app.maxPageSize()
	}

	app.keyHandler = NewKeyHandler(app)

	return app
}

// SetInitialSearch makes Init run a search for query instead of opening
// the search prompt.
func (a *App) SetInitialSearch(query string, sort crates.Sort) {
	a.query = query
	a.sort = sort
	a.searched = true
	a.mode = ModeNormal
	a.textInput.Blur()
}

func (a *App) Init() tea.Cmd {
	if a.searched {
		a.refresh()
		return nil
	}
	return textinput.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.viewport.Width = msg.Width
		a.viewport.Height = a.bodyHeight()

		inputWidth := msg.Width/2 - 4
		if inputWidth < 20 {
			inputWidth = msg.Width - 8
		}
		a.textInput.Width = inputWidth
		a.findInput.Width = inputWidth
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case events.Results:
		a.applyResults(msg)
		a.flushOutbox()
		return a, nil

	case events.FetchFailed:
		a.fetchFailed(msg.Request, msg.Err)
		a.flushOutbox()
		return a, nil

	case events.Tick:
		a.toasts.expire(msg.At)
		a.flushOutbox()
		if a.pending > 0 {
			a.spinner, _ = a.spinner.Update(spinner.TickMsg{ID: a.spinner.ID(), Time: msg.At})
		}
		return a, nil

	case detailsLoadedMsg:
		if a.mode == ModeDetails && a.detailsCrate != nil && a.detailsCrate.Name == msg.name {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
		}
		return a, nil

	case findResultsMsg:
		if a.mode == ModeFind && msg.query == a.findInput.Value() {
			if msg.err != nil {
				a.toastError("Find failed", msg.err)
			}
			a.findResults = msg.results
			if a.findSelection >= len(a.findResults) {
				a.findSelection = 0
			}
		}
		return a, nil

	case copiedMsg:
		if msg.err != nil {
			a.toastError(MsgClipboardError, msg.err)
		} else {
			a.toasts.push(StatusSuccess, "", MsgCopied(msg.line), a.config.UI.ToastDuration)
		}
		return a, nil

	case openedMsg:
		if msg.err != nil {
			a.toastError(MsgOpenError, msg.err)
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.mode {
	case ModeInput:
		a.textInput, cmd = a.textInput.Update(msg)
	case ModeFind:
		a.findInput, cmd = a.findInput.Update(msg)
	}
	return a, cmd
}

func (a *App) currentRequest() pager.Request {
	return pager.Request{
		Query:    a.query,
		Page:     a.page,
		PageSize: a.pageSize,
		Sort:     a.sort,
	}
}

// currentPage returns the visible page if it is resident.
func (a *App) currentPage() (cache.Page, bool) {
	if !a.searched {
		return cache.Page{}, false
	}
	return a.pager.Current(a.currentRequest())
}

func (a *App) selectedCrate() (crates.Crate, bool) {
	page, ok := a.currentPage()
	if !ok || a.selection < 0 || a.selection >= len(page.Crates) {
		return crates.Crate{}, false
	}
	return page.Crates[a.selection], true
}

// refresh shows the current page from the cache or enqueues the batch that
// contains it.
func (a *App) refresh() {
	page, plan := a.pager.Request(a.currentRequest())
	a.failed = false
	if plan == nil {
		a.awaiting = false
		a.selectOn(page)
		return
	}

	a.awaiting = true
	a.awaitingPlan = *plan
	a.selection = -1
	a.enqueue(*plan)
}

// enqueue hands plans to the worker in the order they were issued. While the
// worker's slot is full the plan waits in the outbox, where a newer plan
// replaces an older one that was never sent.
func (a *App) enqueue(plan cache.FetchRequest) {
	if a.outbox != nil {
		if *a.outbox == plan {
			return
		}
		debuglog.Debugf("dropping superseded fetch %s", *a.outbox)
		a.fetchDone()
	}
	a.outbox = &plan
	a.pending++
	a.flushOutbox()
}

// flushOutbox offers the waiting plan to the worker without blocking.
func (a *App) flushOutbox() {
	if a.outbox == nil {
		return
	}

	plan := *a.outbox
	taken, err := a.submitter.TrySubmit(plan)
	switch {
	case err != nil:
		debuglog.Warnf("submit %s: %v", plan, err)
		a.outbox = nil
		a.fetchFailed(plan, err)
	case taken:
		a.outbox = nil
	}
}

func (a *App) fetchFailed(plan cache.FetchRequest, err error) {
	a.fetchDone()
	if a.awaiting && plan == a.awaitingPlan {
		a.awaiting = false
		a.wantLast = false
		a.failed = true
	}
	a.toastError(MsgSearchFailed, err)
}

func (a *App) selectOn(page cache.Page) {
	switch {
	case len(page.Crates) == 0:
		a.selection = -1
	case a.wantLast:
		a.selection = len(page.Crates) - 1
	default:
		a.selection = 0
	}
	a.wantLast = false
}

func (a *App) applyResults(res events.Results) {
	a.fetchDone()
	a.pager.Apply(res)

	if !a.awaiting {
		return
	}
	if page, ok := a.currentPage(); ok {
		a.awaiting = false
		a.selectOn(page)
	}
}

func (a *App) fetchDone() {
	if a.pending > 0 {
		a.pending--
	}
}

func (a *App) toastError(title string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	a.toasts.push(StatusError, title, msg, a.config.UI.ToastDuration)
}

func (a *App) search(query string) {
	a.query = query
	a.searched = true
	a.page = 1
	a.wantLast = false
	a.refresh()
}

// retry asks for the visible page again after a failed fetch.
func (a *App) retry() {
	if !a.searched || a.awaiting {
		return
	}
	if _, ok := a.currentPage(); !ok {
		a.refresh()
	}
}

func (a *App) nextPage() {
	page, ok := a.currentPage()
	if !ok {
		return
	}
	if uint64(a.page)*uint64(a.pageSize) < uint64(page.Total) {
		a.page++
		a.refresh()
	}
}

func (a *App) prevPage() {
	if a.page > 1 {
		a.page--
		a.refresh()
		return
	}
	a.wantLast = false
}

func (a *App) nextItem() {
	page, ok := a.currentPage()
	if !ok || a.selection < 0 {
		return
	}
	if a.selection+1 >= len(page.Crates) {
		a.nextPage()
		return
	}
	a.selection++
}

func (a *App) prevItem() {
	if _, ok := a.currentPage(); !ok || a.selection < 0 {
		return
	}
	if a.selection == 0 && a.page != 1 {
		a.wantLast = true
		a.prevPage()
		return
	}
	if a.selection > 0 {
		a.selection--
	}
}

func (a *App) home() {
	if !a.searched {
		return
	}
	if a.page != 1 {
		a.page = 1
		a.refresh()
		return
	}
	if page, ok := a.currentPage(); ok && len(page.Crates) > 0 {
		a.selection = 0
	}
}

func (a *App) end() {
	page, ok := a.currentPage()
	if !ok {
		return
	}
	if uint64(a.page)*uint64(a.pageSize) < uint64(page.Total) {
		a.page = pager.NumPages(page.Total, a.pageSize)
		a.wantLast = true
		a.refresh()
		return
	}
	a.selection = len(page.Crates) - 1
}

// maxPageSize keeps one planned fetch within the remote per_page limit.
func (a *App) maxPageSize() uint32 {
	return max(crates.MaxPerPage/a.pager.BatchFactor(), 1)
}

// setPageSize keeps the first visible crate on screen.
func (a *App) setPageSize(size uint32) {
	if size < 1 || size > a.maxPageSize() || size == a.pageSize {
		return
	}
	first := (a.page - 1) * a.pageSize
	a.pageSize = size
	a.page = first/size + 1
	a.toasts.push(StatusInfo, "", MsgPageSize(size), a.config.UI.ToastDuration)
	if a.searched {
		a.refresh()
	}
}

func (a *App) setSort(sort crates.Sort) {
	a.sort = sort
	a.searched = true
	a.page = 1
	a.wantLast = false
	a.refresh()
}

func (a *App) showDetails(c crates.Crate) tea.Cmd {
	if a.mode != ModeDetails {
		a.detailsReturn = a.mode
	}
	a.mode = ModeDetails
	a.detailsCrate = &c
	a.viewport.Width = a.width
	a.viewport.Height = a.bodyHeight()
	a.viewport.SetContent(renderMuted(MsgLoadingDetails))
	return a.loadDetails(c)
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 120 {
		wordWrapWidth = 120
	}
	if wordWrapWidth < 40 {
		wordWrapWidth = 40
	}
	if a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// chrome is header, hint, separator, toast slot and footer rows.
const chromeLines = 6

func (a *App) bodyHeight() int {
	return max(a.height-chromeLines, 3)
}

func (a *App) View() string {
	header := renderHeader(
		TitleStyle.Render(AppName)+" "+renderMuted(Tagline),
		a.headerSubtitle(),
		a.width,
	)

	var body string
	switch a.mode {
	case ModeInput:
		body = renderCentered(a.width, a.bodyHeight(), lipgloss.JoinVertical(
			lipgloss.Center,
			HeaderStyle.Render("Enter your search term"),
			"",
			renderInputFrame(a.textInput.View(), true, a.textInput.Width),
		))
	case ModeSorting:
		body = renderCentered(a.width, a.bodyHeight(), a.renderSortPicker())
	case ModeDetails:
		body = a.viewport.View()
	case ModeFind:
		body = a.renderFind()
	default:
		body = a.renderResults()
	}

	body = contentBox(a.width, a.bodyHeight()).Render(body)

	toastLine := ""
	if t, ok := a.toasts.front(); ok {
		toastLine = t.render(a.width)
	}

	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width-1, 0)))

	rows := []string{header, renderHelp(a.modeHint()), body}
	if toastLine != "" {
		rows = append(rows, toastLine)
	}
	rows = append(rows, separator, a.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) headerSubtitle() string {
	if !a.searched {
		return "sort: " + a.sort.String()
	}
	q := a.query
	if q == "" {
		q = "all crates"
	}
	return "“" + q + "” · sort: " + a.sort.String()
}

func (a *App) modeHint() string {
	switch a.mode {
	case ModeInput:
		return "Type to enter your search term. Enter to confirm, Esc to cancel."
	case ModeSorting:
		return "j/k to move between options. Enter to confirm, Esc to cancel."
	case ModeDetails:
		return "Scroll with j/k. c copies the Cargo.toml line, o opens the docs, Esc goes back."
	case ModeFind:
		return "Find crates already loaded this session. Enter for details, Esc to cancel."
	default:
		return "n/p move between pages, f searches. j/k change the highlighted crate, c copies its Cargo.toml line."
	}
}

func (a *App) renderResults() string {
	if !a.searched {
		return renderCentered(a.width, a.bodyHeight(), GetWelcomeMessage())
	}

	page, ok := a.currentPage()
	if !ok {
		if a.pending > 0 {
			return renderCentered(a.width, a.bodyHeight(), a.spinner.View()+" "+MsgSearching)
		}
		if a.failed {
			return renderCentered(a.width, a.bodyHeight(), ErrorMessageStyle.Render(MsgRetryHint))
		}
		return renderCentered(a.width, a.bodyHeight(), renderMuted("Nothing to show yet. Press f to search."))
	}
	if len(page.Crates) == 0 {
		return renderCentered(a.width, a.bodyHeight(), renderMuted(MsgNoResults))
	}

	cards := make([]string, 0, len(page.Crates))
	for i, c := range page.Crates {
		cards = append(cards, renderCrateCard(c, i == a.selection, a.width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (a *App) renderSortPicker() string {
	rows := []string{HeaderStyle.Render("Select your sorting method"), ""}
	for i, s := range crates.AllSorts {
		label := "  " + s.String()
		if i == a.sortSelection {
			label = SelectedItemStyle.Render("› " + s.String())
		}
		rows = append(rows, label)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderFind() string {
	rows := []string{
		HeaderStyle.Render("› find"),
		renderInputFrame(a.findInput.View(), true, a.findInput.Width),
		"",
	}

	switch {
	case len(strings.TrimSpace(a.findInput.Value())) < 2:
		rows = append(rows, renderMuted("Type at least two characters"))
	case len(a.findResults) == 0:
		rows = append(rows, renderMuted(MsgNoResults))
	default:
		for i, c := range a.findResults {
			line := c.Name + "  " + renderMuted(truncateEnd(singleLine(c.Description), a.width-len(c.Name)-6))
			if i == a.findSelection {
				line = SelectedItemStyle.Render("› "+c.Name) + "  " + renderMuted(truncateEnd(singleLine(c.Description), a.width-len(c.Name)-8))
			} else {
				line = "  " + line
			}
			rows = append(rows, line)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderFooter() string {
	left := ""
	if a.searched {
		if page, ok := a.currentPage(); ok {
			left = MsgPage(a.page, pager.NumPages(page.Total, a.pageSize)) + " · " + MsgResultsCount(page.Total)
		} else {
			left = fmt.Sprintf("Page %d", a.page)
		}
	}
	if a.pending > 0 {
		left = a.spinner.View() + " " + left
	}

	helpView := a.help.View(a.keys.helpFor(a.mode))
	if left == "" {
		return StatusBarStyle.Render(helpView)
	}
	return StatusBarStyle.Render(left + "  " + helpView)
}

// Mode reports the active input mode.
func (a *App) Mode() Mode {
	return a.mode
}

// Pending reports how many fetches have not completed.
func (a *App) Pending() int {
	return a.pending
}

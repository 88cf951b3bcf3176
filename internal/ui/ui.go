package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/rdx/internal/formatter"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/services"
	"github.com/desertthunder/rdx/internal/shared"
)

// Catalog is the part of services.Client the browser calls.
type Catalog interface {
	Search(ctx context.Context, query string, types []string, opts services.SearchOptions) (*models.SearchResult, error)
	Get(ctx context.Context, keys []string, extras []string) ([]models.Object, error)
	AddToCollection(ctx context.Context, keys []string) (bool, error)
}

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	ResultsView
	DetailView
)

const pageSize = 50

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	catalog Catalog
	logger  *log.Logger
	types   []string

	view     ViewState
	width    int
	height   int
	input    textinput.Model
	results  list.Model
	tracks   list.Model
	selected models.Object
	query    string
	counts   *models.SearchResult
	loading  bool
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

// ModelOpts configures a [Model].
type ModelOpts struct {
	Catalog Catalog
	Logger  *log.Logger
	// Types restricts searches to these object types. Defaults to every searchable type.
	Types []string
	// Query, when set, is searched immediately.
	Query string
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if len(opts.Types) == 0 {
		opts.Types = services.SearchTypes
	}

	input := textinput.New()
	input.Placeholder = "artist, album, track, playlist or person"
	input.Prompt = "search › "
	input.CharLimit = 200
	input.SetValue(opts.Query)
	input.Focus()

	return &Model{
		ctx:     ctx,
		catalog: opts.Catalog,
		logger:  opts.Logger,
		types:   opts.Types,
		view:    SearchView,
		input:   input,
		query:   opts.Query,
		results: newList(nil, "Results"),
		tracks:  newList(nil, "Tracks"),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

func newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Init starts the initial search when a query was given.
func (m *Model) Init() tea.Cmd {
	if strings.TrimSpace(m.query) != "" {
		m.loading = true
		return m.search(m.query)
	}
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(msg.Width-4, msg.Height-8)
		m.tracks.SetSize(msg.Width-4, msg.Height-16)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case searchDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Error("search failed", "query", msg.query, "error", msg.err)
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.counts = msg.result
		var objects []models.Object
		if msg.result != nil {
			objects = msg.result.Results
		}
		m.results.SetItems(objectItems(objects))
		m.results.Title = fmt.Sprintf("Results for %q", msg.query)
		m.results.ResetSelected()
		m.view = ResultsView
		return m, nil

	case tracksFetchedMsg:
		m.loading = false
		if m.selected == nil || msg.parent != m.selected.ObjectKey() {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("failed to fetch tracks", "key", msg.parent, "error", msg.err)
			m.err = msg.err
			return m, nil
		}
		m.tracks.SetItems(objectItems(msg.tracks))
		m.tracks.ResetSelected()
		return m, nil

	case collectedMsg:
		switch {
		case msg.err != nil:
			m.err = msg.err
		case msg.ok:
			m.status = fmt.Sprintf("Added %s to your collection", msg.key)
		default:
			m.status = fmt.Sprintf("%s was not added", msg.key)
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case SearchView:
		body = m.renderSearch()
	case ResultsView:
		body = m.renderResults()
	case DetailView:
		body = m.renderDetail()
	}

	var footer []string
	if m.loading {
		footer = append(footer, styles.help.Render("Loading..."))
	}
	if m.status != "" {
		footer = append(footer, styles.success.Render(m.status))
	}
	if m.err != nil {
		footer = append(footer, styles.error.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if len(footer) == 0 {
		return body
	}
	return body + "\n" + strings.Join(footer, "\n")
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		m.query = query
		m.loading = true
		m.status, m.err = "", nil
		return m, m.search(query)
	case key.Matches(msg, m.keys.back):
		if len(m.results.Items()) > 0 {
			m.view = ResultsView
			m.input.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.results.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search), key.Matches(msg, m.keys.back):
		m.view = SearchView
		m.status, m.err = "", nil
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.results.SelectedItem().(objectItem); ok {
			return m, m.open(item.obj)
		}
		return m, nil
	case key.Matches(msg, m.keys.collect):
		if item, ok := m.results.SelectedItem().(objectItem); ok {
			return m, m.collect(item.obj)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ResultsView
		m.selected = nil
		m.status, m.err = "", nil
		return m, nil
	case key.Matches(msg, m.keys.collect):
		target := m.selected
		if item, ok := m.tracks.SelectedItem().(objectItem); ok && len(m.tracks.Items()) > 0 {
			target = item.obj
		}
		return m, m.collect(target)
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.input, cmd = m.input.Update(msg)
	case ResultsView:
		m.results, cmd = m.results.Update(msg)
	case DetailView:
		m.tracks, cmd = m.tracks.Update(msg)
	}
	return m, cmd
}

// open switches to the detail view for obj, loading its tracks when it has any.
func (m *Model) open(obj models.Object) tea.Cmd {
	m.selected = obj
	m.view = DetailView
	m.status, m.err = "", nil
	m.tracks.SetItems(nil)
	m.tracks.Title = "Tracks"

	var trackKeys []string
	switch o := obj.(type) {
	case *models.Album:
		trackKeys = o.TrackKeys
		m.tracks.Title = "Tracks on " + o.Name
	case *models.Playlist:
		trackKeys = o.TrackKeys
		m.tracks.Title = "Tracks in " + o.Name
	}
	if len(trackKeys) == 0 {
		return nil
	}
	m.loading = true
	return m.fetchTracks(obj.ObjectKey(), trackKeys)
}

func (m *Model) search(query string) tea.Cmd {
	catalog, ctx, types := m.catalog, m.ctx, m.types
	return func() tea.Msg {
		result, err := catalog.Search(ctx, query, types, services.SearchOptions{
			ListOptions: services.ListOptions{Count: pageSize, Extras: []string{"trackKeys"}},
		})
		return searchDoneMsg{query: query, result: result, err: err}
	}
}

func (m *Model) fetchTracks(parent string, keys []string) tea.Cmd {
	catalog, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		tracks, err := catalog.Get(ctx, keys, nil)
		return tracksFetchedMsg{parent: parent, tracks: tracks, err: err}
	}
}

func (m *Model) collect(obj models.Object) tea.Cmd {
	if obj == nil {
		return nil
	}
	catalog, ctx, objKey := m.catalog, m.ctx, obj.ObjectKey()
	return func() tea.Msg {
		ok, err := catalog.AddToCollection(ctx, []string{objKey})
		return collectedMsg{key: objKey, ok: ok, err: err}
	}
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Rdio catalog")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), helpView)
}

func (m *Model) renderResults() string {
	var counts string
	if c := m.counts; c != nil {
		counts = styles.help.Render(fmt.Sprintf("%d results: %d artists, %d albums, %d tracks, %d playlists, %d people",
			c.NumberResults, c.ArtistCount, c.AlbumCount, c.TrackCount, c.PlaylistCount, c.PersonCount)) + "\n"
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.collect, m.keys.search, m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", counts, m.results.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(m.selected.Title()))
	b.WriteString("\n")
	for _, row := range detailRows(m.selected) {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s%s\n", styles.label.Render(row[0]), row[1])
	}

	if len(m.tracks.Items()) > 0 {
		b.WriteString("\n")
		b.WriteString(m.tracks.View())
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.collect, m.keys.back, m.keys.quit})
	return b.String() + "\n\n" + helpView
}

// detailRows lists the label/value pairs shown for an object.
func detailRows(obj models.Object) [][2]string {
	rows := [][2]string{{"Key", obj.ObjectKey()}, {"Type", obj.Kind().String()}}

	switch o := obj.(type) {
	case *models.Artist:
		rows = append(rows,
			[2]string{"Tracks", fmt.Sprint(o.TrackCount)},
			[2]string{"Radio", yesNo(o.HasRadio)},
			[2]string{"URL", o.ShortURL},
		)
	case *models.Album:
		rows = append(rows,
			[2]string{"Artist", o.ArtistName},
			[2]string{"Released", o.ReleaseDate},
			[2]string{"Length", shared.FormatDuration(o.Duration)},
			[2]string{"Explicit", yesNo(o.IsExplicit)},
			[2]string{"Streamable", yesNo(o.CanStream)},
			[2]string{"URL", o.ShortURL},
		)
	case *models.Track:
		rows = append(rows,
			[2]string{"Artist", o.ArtistName},
			[2]string{"Album", o.AlbumName},
			[2]string{"Length", shared.FormatDuration(o.Duration)},
			[2]string{"Streamable", yesNo(o.CanStream)},
		)
		if o.PlayCount != nil {
			rows = append(rows, [2]string{"Plays", fmt.Sprint(*o.PlayCount)})
		}
	case *models.Playlist:
		rows = append(rows,
			[2]string{"Owner", o.OwnerName},
			[2]string{"Tracks", fmt.Sprint(o.TrackCount)},
			[2]string{"URL", o.ShortURL},
		)
	case *models.User:
		rows = append(rows, [2]string{"Profile", o.URL})
		if o.LastSongPlayed != nil {
			rows = append(rows, [2]string{"Last played", *o.LastSongPlayed})
		}
	}
	return append(rows, [2]string{"Summary", formatter.Detail(obj)})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

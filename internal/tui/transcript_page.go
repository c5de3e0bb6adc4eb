package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parleyhq/go-parley/internal/config"
	"github.com/parleyhq/go-parley/internal/i18n"
	"github.com/parleyhq/go-parley/internal/parley"
	"github.com/parleyhq/go-parley/internal/source"
	"github.com/parleyhq/go-parley/internal/tui/theme"
	"github.com/parleyhq/go-parley/internal/tuilog"
	"github.com/parleyhq/go-parley/internal/window"
)

// TranscriptMode selects how the page sources its turns.
type TranscriptMode int

const (
	// ModeView loads the file once.
	ModeView TranscriptMode = iota
	// ModeTail loads the file and follows appended writes live.
	ModeTail
	// ModeReplay re-delivers a recorded file with its original pacing.
	ModeReplay
)

// pageChrome is the fixed row overhead of the page: one header line
// and one status line.
const pageChrome = 2

// liveProbeInterval is how often tail mode re-checks the writer
// process.
const liveProbeInterval = 2 * time.Second

// transcriptSource adapts *parley.Transcript to the window calculator.
type transcriptSource struct{ tr *parley.Transcript }

func (s transcriptSource) Len() int               { return s.tr.Len() }
func (s transcriptSource) Key(i int) string       { return s.tr.Turn(i).ID }
func (s transcriptSource) Role(i int) parley.Role { return s.tr.Turn(i).Role }
func (s transcriptSource) ContentLen(i int) int   { return s.tr.Turn(i).ContentLen() }

// transcriptLoadedMsg carries the initial file load, plus the live
// event channel for tail and replay modes.
type transcriptLoadedMsg struct {
	res    *source.ReadResult
	ch     <-chan source.Event
	cancel context.CancelFunc
	err    error
}

// streamEventMsg delivers one source event. The channel rides along so
// the page can re-arm the next read.
type streamEventMsg struct {
	ev source.Event
	ch <-chan source.Event
}

// streamDoneMsg signals that the event channel closed.
type streamDoneMsg struct{}

// discloseStepMsg is one bounded step of a reveal-all continuation.
// The generation records the transcript structure the step was
// scheduled against; each step re-resolves its turn by ID and aborts
// silently when the turn is gone.
type discloseStepMsg struct {
	key string
	gen uint64
}

// liveTickMsg re-probes the writer process in tail mode.
type liveTickMsg struct{}

// TranscriptPage hosts the windowed transcript view. It owns the
// scroll offset (in content rows), the turn cursor, and the window
// engine. All layout and rendering happens inside Update; View only
// returns the prebuilt frame.
type TranscriptPage struct {
	path  string
	mode  TranscriptMode
	title string

	transcript *parley.Transcript
	meta       parley.TranscriptMeta
	calc       *window.Calculator
	follow     *window.Follow
	memo       *window.MemoCache
	discloser  *window.Discloser
	overscan   int
	replay     source.ReplayOptions

	scroll    int    // top visible content row
	cursor    int    // index of the selected turn
	revealing string // turn ID with a reveal-all chain in flight, or ""

	width  int
	height int
	rows   int // band rows between header and status line
	ready  bool
	loaded bool

	loadErr error

	// Prebuilt view state
	band    []string // rendered rows of the materialized window
	bandTop int      // content row offset of band[0]
	total   int      // total content extent in rows
	frame   string

	spinner spinner.Model
	keys    viewerKeyMap

	// Live source state
	ch           <-chan source.Event
	cancel       context.CancelFunc
	streamClosed bool
	writerLive   bool
	livePID      int
}

// NewTranscriptPage creates a transcript page over path. cfg supplies
// the disclosure budgets, the overscan, and whether the view opens
// pinned to the end.
func NewTranscriptPage(path string, mode TranscriptMode, cfg config.Config) TranscriptPage {
	t := theme.Current()
	sp := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.GetAccent()))),
	)
	tr := parley.NewTranscript(nil)
	p := TranscriptPage{
		path:       path,
		mode:       mode,
		transcript: tr,
		follow:     window.NewFollow(cfg.FollowOnOpen && mode != ModeView),
		memo:       window.NewMemoCache(),
		discloser:  window.NewDiscloser(cfg.Disclosure.Threshold, cfg.Disclosure.Preview, cfg.Disclosure.Chunk),
		overscan:   cfg.Overscan,
		spinner:    sp,
		keys:       defaultViewerKeyMap(),
	}
	if p.overscan <= 0 {
		p.overscan = window.DefaultOverscan
	}
	p.calc = window.NewCalculator(transcriptSource{tr})
	return p
}

// NewReplayPage creates a transcript page that re-delivers the file's
// turns with their recorded pacing.
func NewReplayPage(path string, cfg config.Config, opts source.ReplayOptions) TranscriptPage {
	p := NewTranscriptPage(path, ModeReplay, cfg)
	p.replay = opts
	return p
}

func (p TranscriptPage) Init() tea.Cmd {
	tuilog.Log.Info("TranscriptPage.Init", "path", p.path, "mode", int(p.mode))
	return tea.Batch(p.load(), p.spinner.Tick)
}

// load reads the transcript file and, for live modes, opens the event
// stream. The cancel func rides back in the message so Update owns its
// lifecycle.
func (p TranscriptPage) load() tea.Cmd {
	path, mode, replay := p.path, p.mode, p.replay
	return func() tea.Msg {
		res, err := source.ReadFile(path)
		if err != nil {
			return transcriptLoadedMsg{err: err}
		}
		switch mode {
		case ModeTail:
			ctx, cancel := context.WithCancel(context.Background())
			ch, err := source.Tail(ctx, path, res.Offset)
			if err != nil {
				cancel()
				return transcriptLoadedMsg{res: res, err: err}
			}
			return transcriptLoadedMsg{res: res, ch: ch, cancel: cancel}
		case ModeReplay:
			ctx, cancel := context.WithCancel(context.Background())
			ch := source.Replay(ctx, res.Turns, replay)
			// Replay re-delivers every turn itself; start empty.
			res.Turns = nil
			return transcriptLoadedMsg{res: res, ch: ch, cancel: cancel}
		}
		return transcriptLoadedMsg{res: res}
	}
}

// waitForEvent returns a command that blocks until the next source
// event arrives.
func waitForEvent(ch <-chan source.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamDoneMsg{}
		}
		return streamEventMsg{ev: ev, ch: ch}
	}
}

func liveTick() tea.Cmd {
	return tea.Tick(liveProbeInterval, func(time.Time) tea.Msg { return liveTickMsg{} })
}

func (p TranscriptPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.rows = msg.Height - pageChrome
		if p.rows < 1 {
			p.rows = 1
		}
		p.ready = true
		p.calc.SetWidth(p.contentWidth())
		// Rendered rows were wrapped at the old width.
		p.memo.Clear()
		cmds = append(cmds, p.refresh())

	case transcriptLoadedMsg:
		p.loaded = true
		if msg.err != nil {
			p.loadErr = msg.err
			tuilog.Log.Error("TranscriptPage: load failed", "path", p.path, "error", msg.err)
			return p, tea.Batch(cmds...)
		}
		p.transcript = parley.NewTranscript(msg.res.Turns)
		p.calc = window.NewCalculator(transcriptSource{p.transcript})
		p.calc.SetWidth(p.contentWidth())
		p.memo.Clear()
		p.meta = msg.res.Meta
		p.title = p.meta.Title
		p.ch = msg.ch
		p.cancel = msg.cancel
		if msg.res.OpenStream != "" {
			p.transcript.ResumeStream(msg.res.OpenStream)
		}
		if p.transcript.Len() > 0 && p.follow.Following() {
			p.cursor = p.transcript.Len() - 1
		}
		if p.mode == ModeTail {
			p.livePID = p.meta.WriterPID
			p.writerLive = p.livePID > 0 && source.WriterAlive(p.livePID)
			cmds = append(cmds, liveTick())
		}
		if p.ch != nil {
			cmds = append(cmds, waitForEvent(p.ch))
		}
		p.follow.Observe(p.transcript.LastKey(), p.transcript.Streaming())
		tuilog.Log.Info("TranscriptPage: loaded",
			"path", p.path, "turns", p.transcript.Len(), "openStream", msg.res.OpenStream)
		cmds = append(cmds, p.refresh())

	case streamEventMsg:
		p.applyEvent(msg.ev)
		if msg.ev.Kind != source.EventClosed {
			cmds = append(cmds, waitForEvent(msg.ch))
		}
		cmds = append(cmds, p.refresh())

	case streamDoneMsg:
		p.streamClosed = true
		if p.cancel != nil {
			p.cancel()
			p.cancel = nil
		}
		cmds = append(cmds, p.refresh())

	case discloseStepMsg:
		cmds = append(cmds, p.discloseStep(msg), p.refresh())

	case liveTickMsg:
		if p.mode == ModeTail && p.livePID > 0 && !p.streamClosed {
			was := p.writerLive
			p.writerLive = source.WriterAlive(p.livePID)
			if was != p.writerLive {
				tuilog.Log.Info("TranscriptPage: writer liveness changed", "pid", p.livePID, "live", p.writerLive)
				p.compose()
			}
			cmds = append(cmds, liveTick())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if p.transcript.Streaming() {
			// Animate the streaming turn's header row.
			cmds = append(cmds, p.refresh())
		}

	case tea.KeyMsg:
		cmd, handled := p.handleKey(msg)
		if handled {
			return p, cmd
		}
		cmds = append(cmds, cmd, p.refresh())
	}

	return p, tea.Batch(cmds...)
}

// handleKey applies one key press. handled means the key ended the
// page (quit, back, detail) and no refresh should follow.
func (p *TranscriptPage) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, p.keys.Quit):
		p.stop()
		return tea.Quit, true

	case key.Matches(msg, p.keys.Back):
		p.stop()
		return func() tea.Msg { return PopPageMsg{} }, true

	case key.Matches(msg, p.keys.Detail):
		turn := p.transcript.Turn(p.cursor)
		if turn == nil {
			return nil, false
		}
		detail := NewDetailPage(*turn, p.cursor)
		return func() tea.Msg {
			return PushPageMsg{Item: NavItem{
				Title: i18n.Tf("detail.title", "Turn %d", p.cursor+1),
				Model: detail,
			}}
		}, true

	case key.Matches(msg, p.keys.Up):
		p.scrollTo(p.scroll - 1)
	case key.Matches(msg, p.keys.Down):
		p.scrollTo(p.scroll + 1)
	case key.Matches(msg, p.keys.PgUp):
		p.scrollTo(p.scroll - (p.rows - 1))
	case key.Matches(msg, p.keys.PgDown):
		p.scrollTo(p.scroll + (p.rows - 1))
	case key.Matches(msg, p.keys.Home):
		p.scrollTo(0)
	case key.Matches(msg, p.keys.End):
		p.snapToEnd()
		p.follow.UserScrolled(true)
	case key.Matches(msg, p.keys.Follow):
		if p.follow.Following() {
			p.follow.UserScrolled(false)
		} else {
			p.snapToEnd()
			p.follow.UserScrolled(true)
		}
	case key.Matches(msg, p.keys.CursorUp):
		p.moveCursor(-1)
	case key.Matches(msg, p.keys.CursorDown):
		p.moveCursor(1)
	case key.Matches(msg, p.keys.Reveal):
		p.revealChunk()
	case key.Matches(msg, p.keys.RevealAll):
		return p.revealAll(), false
	case key.Matches(msg, p.keys.Collapse):
		p.collapse()
	}
	return nil, false
}

// stop tears down the live source.
func (p *TranscriptPage) stop() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// applyEvent folds one source event into the transcript.
func (p *TranscriptPage) applyEvent(ev source.Event) {
	switch ev.Kind {
	case source.EventTurn:
		p.transcript.Append(ev.Turn)
	case source.EventBegin:
		p.transcript.BeginStream(ev.Turn)
	case source.EventDelta:
		p.transcript.AppendStreamDelta(ev.Text)
		// The streaming turn grows; its measurement is stale.
		p.calc.Cache().Invalidate(p.transcript.Len() - 1)
	case source.EventEnd:
		p.transcript.FinalizeStream()
		// Settled assistant turns render as markdown, streaming ones
		// as plain text. Force the settled re-render.
		p.memo.Drop(ev.ID)
		if idx := p.transcript.IndexOf(ev.ID); idx >= 0 {
			p.calc.Cache().Invalidate(idx)
		}
	case source.EventClosed:
		p.streamClosed = true
		p.stop()
	}

	if p.follow.Observe(p.transcript.LastKey(), p.transcript.Streaming()) {
		p.snapToEnd()
	}
	if p.follow.Following() && p.transcript.Len() > 0 {
		p.setCursor(p.transcript.Len() - 1)
	}
}

// discloseStep performs one bounded reveal step and schedules the next
// while content remains.
func (p *TranscriptPage) discloseStep(msg discloseStepMsg) tea.Cmd {
	if p.revealing != msg.key {
		// The chain was cancelled by a collapse or superseded by a
		// newer reveal.
		return nil
	}
	idx := p.transcript.IndexOf(msg.key)
	if idx < 0 {
		// The turn left the transcript after this step was scheduled.
		tuilog.Log.Debug("TranscriptPage: dropping stale disclose step", "key", msg.key, "gen", msg.gen)
		p.revealing = ""
		return nil
	}
	turn := p.transcript.Turn(idx)
	_, done := p.discloser.Step(msg.key, turn.ContentLen())
	p.calc.Cache().Invalidate(idx)
	if done {
		p.revealing = ""
		return nil
	}
	next := discloseStepMsg{key: msg.key, gen: p.transcript.Generation()}
	return func() tea.Msg { return next }
}

func (p *TranscriptPage) contentWidth() int {
	if p.width < minRenderWidth {
		return minRenderWidth
	}
	return p.width
}

func (p *TranscriptPage) atBottom() bool {
	return p.scroll >= p.calc.TotalExtent()-p.rows
}

// scrollTo moves the viewport to the given content row. Explicit
// scrolling updates follow mode: scrolling away disengages it, landing
// on the bottom re-engages it.
func (p *TranscriptPage) scrollTo(row int) {
	p.scroll = p.calc.ClampOffset(row, p.rows)
	p.follow.UserScrolled(p.atBottom())
}

func (p *TranscriptPage) snapToEnd() {
	p.scroll = p.calc.ClampOffset(p.calc.TotalExtent(), p.rows)
}

// setCursor moves the selection directly. Selection affects rendering,
// so both affected turns drop their memoized rows.
func (p *TranscriptPage) setCursor(idx int) {
	if idx == p.cursor {
		return
	}
	if old := p.transcript.Turn(p.cursor); old != nil {
		p.memo.Drop(old.ID)
	}
	p.cursor = idx
	if cur := p.transcript.Turn(idx); cur != nil {
		p.memo.Drop(cur.ID)
	}
}

// moveCursor moves the selected turn and scrolls it into view.
func (p *TranscriptPage) moveCursor(delta int) {
	n := p.transcript.Len()
	if n == 0 {
		return
	}
	next := p.cursor + delta
	if next < 0 {
		next = 0
	}
	if next > n-1 {
		next = n - 1
	}
	p.setCursor(next)

	top := p.calc.OffsetOf(next)
	bottom := top + p.calc.Size(next)
	if top < p.scroll {
		p.scroll = p.calc.ClampOffset(top, p.rows)
	} else if bottom > p.scroll+p.rows {
		p.scroll = p.calc.ClampOffset(bottom-p.rows, p.rows)
	}
	p.follow.UserScrolled(p.atBottom())
}

// revealChunk grows the selected turn's disclosure by one chunk.
func (p *TranscriptPage) revealChunk() {
	turn := p.transcript.Turn(p.cursor)
	if turn == nil || !p.discloser.Oversized(turn.ContentLen()) {
		return
	}
	p.discloser.RequestChunk(turn.ID, turn.ContentLen())
	p.calc.Cache().Invalidate(p.cursor)
}

// revealAll starts the stepwise full reveal of the selected turn. Only
// one chain runs at a time; starting a new one supersedes the old.
func (p *TranscriptPage) revealAll() tea.Cmd {
	turn := p.transcript.Turn(p.cursor)
	if turn == nil || !p.discloser.Oversized(turn.ContentLen()) {
		return nil
	}
	p.revealing = turn.ID
	step := discloseStepMsg{key: turn.ID, gen: p.transcript.Generation()}
	return func() tea.Msg { return step }
}

// collapse resets the selected turn to its preview slice and cancels
// any reveal-all chain running on it.
func (p *TranscriptPage) collapse() {
	turn := p.transcript.Turn(p.cursor)
	if turn == nil {
		return
	}
	p.discloser.Collapse(turn.ID, turn.ContentLen())
	if p.revealing == turn.ID {
		p.revealing = ""
	}
	p.calc.Cache().Invalidate(p.cursor)
}

// refresh runs the render pipeline: recompute the visible window,
// render its items through the memo cache, report measured extents,
// recompute at most once more when a measurement changed, and
// assemble the frame. Returns a command when pending images need
// transmission.
func (p *TranscriptPage) refresh() tea.Cmd {
	if !p.ready || !p.loaded || p.loadErr != nil {
		return nil
	}

	p.reclamp()
	win := p.calc.Recompute(p.scroll, p.rows, p.overscan)
	if p.renderWindow(win) {
		// Measurements moved the layout. One extra recompute; any
		// drift still left settles on the next refresh.
		p.reclamp()
		win = p.calc.Recompute(p.scroll, p.rows, p.overscan)
		p.renderWindow(win)
	}
	p.assemble(win)
	p.compose()

	return kittyTransmitCmd(globalImageTracker.drainPending())
}

// reclamp pins the scroll to the end while following and keeps it in
// range otherwise.
func (p *TranscriptPage) reclamp() {
	if p.follow.Following() {
		p.scroll = p.calc.TotalExtent()
	}
	p.scroll = p.calc.ClampOffset(p.scroll, p.rows)
}

// renderWindow materializes the window's items and reports their
// measured extents. True when any measurement changed.
func (p *TranscriptPage) renderWindow(win window.Window) bool {
	changed := false
	for _, it := range win.Items {
		lines := p.renderItem(it)
		if p.calc.ReportMeasured(it.Index, len(lines)) {
			changed = true
		}
	}
	return changed
}

// renderItem renders one turn, reusing memoized rows when the policy
// allows.
func (p *TranscriptPage) renderItem(it window.Item) []string {
	turn := p.transcript.Turn(it.Index)
	if turn == nil {
		return nil
	}
	isLast := it.Index == p.transcript.Len()-1
	streaming := p.transcript.Streaming()
	streamingTurn := isLast && streaming

	content := turn.Content()
	slice, truncated := p.discloser.Slice(turn.ID, content, streamingTurn)
	snap := window.Snapshot{
		Key:      it.Key,
		Index:    it.Index,
		Content:  slice,
		Revealed: len(slice),
		Width:    p.calc.Width(),
	}
	if lines, ok := p.memo.Lookup(snap, isLast, streaming); ok {
		return lines
	}

	lines := renderTurnLines(turnView{
		Turn:      turn,
		Width:     p.calc.Width(),
		Slice:     slice,
		Truncated: truncated,
		Total:     len(content),
		Revealed:  len(slice),
		Streaming: streamingTurn,
		Expanding: p.revealing == turn.ID,
		Selected:  it.Index == p.cursor,
		Spinner:   p.spinner.View(),
	})
	p.memo.Store(snap, lines)
	return lines
}

// assemble collects the materialized rows into the band.
func (p *TranscriptPage) assemble(win window.Window) {
	p.total = win.TotalExtent
	p.band = p.band[:0]
	p.bandTop = 0
	if len(win.Items) == 0 {
		return
	}
	p.bandTop = win.Items[0].Offset
	for _, it := range win.Items {
		p.band = append(p.band, p.renderItem(it)...)
	}
}

// compose builds the final frame: header, the visible band rows, and
// the status line.
func (p *TranscriptPage) compose() {
	if !p.ready {
		return
	}
	var b strings.Builder
	b.WriteString(p.headerLine())
	b.WriteByte('\n')

	start := p.scroll - p.bandTop
	for row := 0; row < p.rows; row++ {
		i := start + row
		if i >= 0 && i < len(p.band) {
			b.WriteString(p.band[i])
		}
		b.WriteByte('\n')
	}
	b.WriteString(p.statusLine())
	p.frame = b.String()
}

func (p *TranscriptPage) headerLine() string {
	title := p.title
	if title == "" {
		title = filepath.Base(p.path)
	}
	header := viewerTitleStyle.Render(truncate(title, 60))

	var status []string
	if p.transcript.Streaming() {
		status = append(status, p.spinner.View()+" "+streamingStyle.Render(i18n.T("transcript.streaming", "streaming")))
	}
	if p.mode == ModeTail {
		switch {
		case p.streamClosed:
			status = append(status, viewerInfoStyle.Render(i18n.T("transcript.ended", "stream ended")))
		case p.livePID > 0 && !p.writerLive:
			status = append(status, viewerHelpStyle.Render(i18n.T("transcript.writerGone", "writer exited")))
		default:
			status = append(status, streamingStyle.Render(i18n.T("transcript.live", "live")))
		}
	}
	if p.mode == ModeReplay && p.streamClosed {
		status = append(status, viewerInfoStyle.Render(i18n.T("transcript.ended", "stream ended")))
	}
	if p.follow.Following() {
		status = append(status, viewerInfoStyle.Render(i18n.T("transcript.follow", "follow")))
	}

	if len(status) > 0 {
		header += "  " + strings.Join(status, "  ")
	}
	return header
}

func (p *TranscriptPage) statusLine() string {
	percent := 100.0
	if p.total > p.rows {
		percent = float64(p.scroll) / float64(p.total-p.rows) * 100
	}
	turns := i18n.Tn("picker.turns", "{{.Count}} turn", "{{.Count}} turns", p.transcript.Len())
	position := viewerInfoStyle.Render(fmt.Sprintf("%s · %3.0f%%", turns, percent))

	helpText := "↑/↓: " + i18n.T("help.scroll", "scroll") +
		" • j/k: " + i18n.T("help.select", "select") +
		" • o/O: " + i18n.T("help.expand", "more") +
		" • c: " + i18n.T("help.collapse", "collapse") +
		" • enter: " + i18n.T("help.detail", "detail") +
		" • f: " + i18n.T("help.follow", "follow") +
		" • q: " + i18n.T("help.quit", "quit")
	help := viewerHelpStyle.Render(helpText)
	footerWidth := p.width - lipgloss.Width(position) - 4
	if footerWidth < 0 {
		footerWidth = 0
	}
	return help + lipgloss.NewStyle().Width(footerWidth).Align(lipgloss.Right).Render(position)
}

func (p TranscriptPage) View() tea.View {
	if p.loadErr != nil {
		v := tea.NewView(viewerInfoStyle.Render(p.loadErr.Error()) + "\n" +
			viewerHelpStyle.Render("q "+i18n.T("help.quit", "quit")))
		v.AltScreen = true
		return v
	}
	if !p.ready || !p.loaded {
		v := tea.NewView(p.spinner.View() + " " + i18n.T("transcript.loading", "Loading..."))
		v.AltScreen = true
		return v
	}
	v := tea.NewView(p.frame)
	v.AltScreen = true
	return v
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/actions"
	"github.com/tinytelemetry/ecotrack/internal/animate"
	"github.com/tinytelemetry/ecotrack/internal/model"
	"github.com/tinytelemetry/ecotrack/internal/notify"
	"github.com/tinytelemetry/ecotrack/internal/timing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	// DashboardID is the page id of the dashboard.
	DashboardID = "dashboard"

	// RefreshDebounce is how long the refresh key waits for a burst to end.
	RefreshDebounce = 300 * time.Millisecond

	recentLimit  = 5
	quickActions = 4
	eventBuffer  = 64
)

// TickMsg is the periodic background refresh.
type TickMsg time.Time

type refreshMsg struct{}

type redrawMsg struct{}

// DashboardOption configures a DashboardPage.
type DashboardOption func(*DashboardPage)

// WithClock sets the clock used for alerts, animation and debouncing.
func WithClock(c clockwork.Clock) DashboardOption {
	return func(d *DashboardPage) { d.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) DashboardOption {
	return func(d *DashboardPage) { d.log = l }
}

// WithRefreshInterval sets the background refresh period. Zero disables it.
func WithRefreshInterval(iv time.Duration) DashboardOption {
	return func(d *DashboardPage) { d.interval = iv }
}

// DashboardPage shows one user's footprint, points, habits and alerts.
type DashboardPage struct {
	source   Source
	email    string
	keys     KeyMap
	clock    clockwork.Clock
	log      *zap.Logger
	interval time.Duration

	alerts   *notify.Stack
	emitter  *notify.Emitter
	animator *animate.Animator
	refresh  *timing.Debouncer
	events   chan tea.Msg

	ctx      context.Context
	cancel   context.CancelFunc
	stopAnim context.CancelFunc
	shown    atomic.Int64

	loaded bool
	data   dataMsg
}

// NewDashboardPage creates the dashboard for the user with the given email.
func NewDashboardPage(source Source, email string, opts ...DashboardOption) *DashboardPage {
	d := &DashboardPage{
		source:   source,
		email:    email,
		keys:     DefaultKeyMap(),
		clock:    clockwork.NewRealClock(),
		log:      zap.NewNop(),
		interval: model.DefaultRefreshInterval,
		alerts:   notify.NewStack(),
		events:   make(chan tea.Msg, eventBuffer),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())

	b := &banner{Stack: d.alerts, onRemove: func() { d.post(redrawMsg{}) }}
	d.emitter = notify.NewEmitter(b, notify.WithClock(d.clock), notify.WithLogger(d.log))
	d.animator = animate.New(d.clock)
	d.refresh = timing.Debounce(d.clock, RefreshDebounce, func() { d.post(refreshMsg{}) })
	return d
}

func (d *DashboardPage) ID() string { return DashboardID }

func (d *DashboardPage) Init() tea.Cmd {
	return tea.Batch(d.fetch(), d.listen(), spinnerTick(), d.tick())
}

func (d *DashboardPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return d.handleKey(msg), nil
	case SpinnerTickMsg:
		if !d.loaded {
			return spinnerTick(), nil
		}
	case TickMsg:
		return tea.Batch(d.fetch(), d.tick()), nil
	case refreshMsg:
		return tea.Batch(d.fetch(), d.listen()), nil
	case redrawMsg:
		return d.listen(), nil
	case dataMsg:
		d.applyData(msg)
	case actionDoneMsg:
		return d.applyAction(msg), nil
	}
	return nil, nil
}

// Close stops animations and pending refreshes.
func (d *DashboardPage) Close() {
	d.refresh.Stop()
	d.cancel()
}

func (d *DashboardPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case matches(msg, d.keys.Quit):
		return tea.Quit
	case matches(msg, d.keys.Refresh):
		d.refresh.Trigger()
	case matches(msg, d.keys.Dismiss):
		if all := d.alerts.Alerts(); len(all) > 0 {
			d.alerts.Remove(all[0].ID)
		}
	case matches(msg, d.keys.Complete):
		idx := int(msg.String()[0] - '1')
		if idx < 0 || idx >= len(d.data.catalog) {
			return nil
		}
		return d.complete(d.data.catalog[idx])
	}
	return nil
}

func (d *DashboardPage) fetch() tea.Cmd {
	src, email := d.source, d.email
	return func() tea.Msg {
		return load(src, email, recentLimit)
	}
}

func (d *DashboardPage) complete(a actions.Action) tea.Cmd {
	src, email := d.source, d.email
	return func() tea.Msg {
		res, err := src.CompleteAction(email, a.ID)
		return actionDoneMsg{title: a.Title, result: res, err: err}
	}
}

func (d *DashboardPage) tick() tea.Cmd {
	if d.interval <= 0 {
		return nil
	}
	return tea.Tick(d.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// listen waits for the next message posted from a timer goroutine.
func (d *DashboardPage) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-d.events:
			return msg
		case <-d.ctx.Done():
			return nil
		}
	}
}

func (d *DashboardPage) post(msg tea.Msg) {
	select {
	case d.events <- msg:
	default:
	}
}

func (d *DashboardPage) applyData(msg dataMsg) {
	if msg.err != nil {
		d.notify(notify.KindError, fmt.Sprintf("Could not load dashboard: %v", msg.err))
		return
	}
	changed := !d.loaded || msg.summary.Points != d.data.summary.Points
	if len(msg.catalog) > quickActions {
		msg.catalog = msg.catalog[:quickActions]
	}
	d.data = msg
	d.loaded = true
	if changed {
		d.animatePoints(msg.summary.Points)
	}
}

func (d *DashboardPage) applyAction(msg actionDoneMsg) tea.Cmd {
	if msg.err != nil {
		d.notify(notify.KindError, fmt.Sprintf("Could not complete action: %v", msg.err))
		return nil
	}
	d.notify(notify.KindSuccess, fmt.Sprintf("%s completed! +%d points", msg.title, msg.result.Points))
	return d.fetch()
}

func (d *DashboardPage) notify(kind notify.Kind, message string) {
	if _, err := d.emitter.Notify(message, kind); err != nil {
		d.log.Warn("tui: alert not shown", zap.String("message", message), zap.Error(err))
	}
}

func (d *DashboardPage) animatePoints(target int64) {
	if d.stopAnim != nil {
		d.stopAnim()
	}
	ctx, cancel := context.WithCancel(d.ctx)
	d.stopAnim = cancel
	d.animator.Animate(ctx, animate.DisplayFunc(func(v int64) {
		d.shown.Store(v)
		d.post(redrawMsg{})
	}), float64(target), animate.DefaultDuration)
}

func (d *DashboardPage) View(width, height int) string {
	if width <= 0 {
		width = 80
	}
	if !d.loaded {
		if d.alerts.Len() == 0 {
			return renderLoadingPlaceholder(d.clock.Now(), width, max(height, 3))
		}
		return lipgloss.JoinVertical(lipgloss.Left, d.renderHeader(width), d.renderAlerts(width))
	}

	inner := width - 4
	parts := []string{d.renderHeader(width)}
	if d.alerts.Len() > 0 {
		parts = append(parts, d.renderAlerts(width))
	}
	parts = append(parts,
		sectionStyle.Width(inner).Render(d.renderSummary()),
		sectionStyle.Width(inner).Render(renderEmissionsChart(d.data.summary.Emissions, inner-2)),
		sectionStyle.Width(inner).Render(d.renderActions()),
		sectionStyle.Width(inner).Render(d.renderRecent()),
		d.renderStatusLine(width),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (d *DashboardPage) renderHeader(width int) string {
	left := renderBranding()
	if name := d.data.summary.FirstName; name != "" {
		left += lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorWhite).Render("  Hi, " + name)
	}
	right := lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorGray).Render(d.email)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Background(ColorNavy).Render(strings.Repeat(" ", gap))
	return left + spacer + right
}

func (d *DashboardPage) renderAlerts(width int) string {
	var lines []string
	for _, a := range d.alerts.Alerts() {
		lines = append(lines, alertStyle(a.Kind).Width(width).Render(a.Message))
	}
	return strings.Join(lines, "\n")
}

func (d *DashboardPage) renderSummary() string {
	s := d.data.summary
	return strings.Join([]string{
		titleStyle.Render("Your footprint"),
		fmt.Sprintf("Total: %.2f t CO2e per year", s.Total),
		fmt.Sprintf("Sea ice melted: %d billboards", s.Billboards),
		helpStyle.Render(s.Description),
		"Points: " + pointsStyle.Render(fmt.Sprintf("%d", d.shown.Load())) +
			fmt.Sprintf("   CO2 saved: %.2f kg", s.CO2Saved),
	}, "\n")
}

func (d *DashboardPage) renderActions() string {
	progress := make(map[string]int, len(d.data.habits))
	for _, h := range d.data.habits {
		progress[h.ActionID] = h.Progress
	}

	lines := []string{titleStyle.Render("Quick actions")}
	for i, a := range d.data.catalog {
		lines = append(lines, fmt.Sprintf("[%d] %-28s +%d pts  habit %d / %d",
			i+1, a.Title, a.Points(), progress[a.ID], actions.HabitGoal))
	}
	return strings.Join(lines, "\n")
}

func (d *DashboardPage) renderRecent() string {
	lines := []string{titleStyle.Render("Recent actions")}
	if len(d.data.recent) == 0 {
		return strings.Join(append(lines, helpStyle.Render("No actions yet")), "\n")
	}
	for _, c := range d.data.recent {
		lines = append(lines, fmt.Sprintf("%s  %-28s %.2f kg  +%d",
			c.CompletedAt.Local().Format("Jan 02 15:04"), c.Title, c.CO2Saved, c.Points))
	}
	return strings.Join(lines, "\n")
}

func (d *DashboardPage) renderStatusLine(width int) string {
	var help []string
	for _, b := range d.keys.ShortHelp() {
		help = append(help, b.Help().Key+" "+b.Help().Desc)
	}
	return lipgloss.NewStyle().
		Background(ColorNavy).
		Foreground(ColorWhite).
		Width(width).
		Render(strings.Join(help, " • "))
}

// banner is the dashboard's alert container. It requests a redraw whenever
// an alert leaves it.
type banner struct {
	*notify.Stack
	onRemove func()
}

func (b *banner) FindContainer() (notify.Container, bool) { return b, true }

func (b *banner) Remove(id string) bool {
	if !b.Stack.Remove(id) {
		return false
	}
	b.onRemove()
	return true
}

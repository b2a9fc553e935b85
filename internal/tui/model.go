package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/service"
)

// noticeFadeDelay is how long a status-change notice stays in the footer.
const noticeFadeDelay = 6 * time.Second

// OrdersView is the live orders list, normally a *service.OrdersView.
type OrdersView interface {
	State() service.OrdersViewState
	Toggle(id int64)
	Refresh()
	Updates() <-chan struct{}
}

// ordersUpdatedMsg is sent after the view applied a poll.
type ordersUpdatedMsg struct{}

// transitionMsg carries a status change announced by the dispatcher.
type transitionMsg struct {
	transition domain.OrderTransition
}

// noticeFadeMsg clears the footer notice identified by seq.
type noticeFadeMsg struct {
	seq int
}

// Model implements tea.Model for the customer's orders.
type Model struct {
	view          OrdersView
	notifications <-chan domain.OrderTransition
	keys          KeyMap
	help          help.Model

	state     service.OrdersViewState
	cursor    int
	notice    string
	noticeSeq int
	width     int
}

// NewModel creates a Model. notifier may be nil.
func NewModel(view OrdersView, notifier *Notifier) Model {
	m := Model{
		view:  view,
		keys:  DefaultKeyMap,
		help:  help.New(),
		state: view.State(),
	}
	if notifier != nil {
		m.notifications = notifier.C()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenForUpdates(m.view.Updates()),
		listenForTransition(m.notifications),
	)
}

func listenForUpdates(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ordersUpdatedMsg{}
	}
}

func listenForTransition(ch <-chan domain.OrderTransition) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return transitionMsg{transition: t}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case ordersUpdatedMsg:
		m.state = m.view.State()
		m.clampCursor()
		return m, listenForUpdates(m.view.Updates())

	case transitionMsg:
		m.noticeSeq++
		m.notice = describeTransition(msg.transition)
		seq := m.noticeSeq
		return m, tea.Batch(
			listenForTransition(m.notifications),
			tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg { return noticeFadeMsg{seq: seq} }),
		)

	case noticeFadeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Orders)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if len(m.state.Orders) > 0 {
			m.view.Toggle(m.state.Orders[m.cursor].ID)
			m.state = m.view.State()
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.Refresh):
		m.view.Refresh()
	}
	return m, nil
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.state.Orders) {
		m.cursor = len(m.state.Orders) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("My Orders"))
	b.WriteString("\n\n")

	switch {
	case m.state.Loading:
		b.WriteString(faintStyle.Render("Loading orders..."))
		b.WriteString("\n")
	case len(m.state.Orders) == 0 && m.state.ErrorMessage == "":
		b.WriteString(faintStyle.Render("You have not placed any orders yet."))
		b.WriteString("\n")
	}

	if m.state.ErrorMessage != "" {
		b.WriteString(errorStyle.Render(m.state.ErrorMessage))
		b.WriteString("\n\n")
	}

	for i, o := range m.state.Orders {
		b.WriteString(m.renderRow(i, o))
		b.WriteString("\n")
		if m.state.HasExpanded && m.state.Expanded == o.ID {
			b.WriteString(renderDetail(o))
		}
	}

	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	if !m.state.UpdatedAt.IsZero() {
		b.WriteString(faintStyle.Render("Updated " + m.state.UpdatedAt.Format("15:04:05")))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderRow(i int, o domain.Order) string {
	status := o.Status.Display()
	marker := "  "
	if i == m.cursor {
		marker = "> "
	}
	row := fmt.Sprintf("%sOrder #%d  %s  %s  %s  (%d items)",
		marker,
		o.ID,
		statusStyle(status).Render(status.Icon()+" "+string(status)),
		o.CreatedAt.Local().Format("Jan 2, 2006"),
		domain.FormatAmount(o.TotalAmount),
		len(o.Items),
	)
	if i == m.cursor {
		return selectedStyle.Render(row)
	}
	return row
}

func renderDetail(o domain.Order) string {
	var lines []string
	for _, it := range o.Items {
		lines = append(lines, fmt.Sprintf("• %s (%s) %g %s  %s",
			it.PostTitle, it.FarmerName, it.Quantity, it.Unit, domain.FormatAmount(it.TotalPrice)))
	}
	if reason := o.Rejection(); reason != "" {
		lines = append(lines, reasonStyle.Render("Reason: "+reason))
	}
	if note := o.Status.Display().Note(); note != "" {
		lines = append(lines, faintStyle.Render(note))
	}
	if len(lines) == 0 {
		return ""
	}
	return detailStyle.Render(strings.Join(lines, "\n")) + "\n"
}

func describeTransition(t domain.OrderTransition) string {
	msg := fmt.Sprintf("Order #%d is now %s", t.OrderID, t.To.Display())
	if t.RejectionReason != "" {
		msg += ": " + t.RejectionReason
	}
	return msg
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/atongani/market-client/internal/core/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7CB342"))
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E53935")).Bold(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB300"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	detailStyle   = lipgloss.NewStyle().PaddingLeft(4)
	reasonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E53935"))
)

// statusStyle colours a status badge the way the web dashboard does.
func statusStyle(s domain.OrderStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch s {
	case domain.StatusApproved, domain.StatusCompleted:
		return base.Foreground(lipgloss.Color("#43A047"))
	case domain.StatusRejected:
		return base.Foreground(lipgloss.Color("#E53935"))
	case domain.StatusInProgress:
		return base.Foreground(lipgloss.Color("#1E88E5"))
	default:
		return base.Foreground(lipgloss.Color("#FFB300"))
	}
}

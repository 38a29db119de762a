package main

import "github.com/charmbracelet/lipgloss"

var styles = struct {
	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	err   lipgloss.Style
	muted lipgloss.Style
	key   lipgloss.Style
}{
	title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60a5fa")),
	ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
	warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
	err:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444")),
	muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")),
	key:   lipgloss.NewStyle().Bold(true).Width(14),
}

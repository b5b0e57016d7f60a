package main

import "github.com/charmbracelet/lipgloss"

// Terminal styles for command output. Log lines go through zap; these
// only dress the short human-facing status lines.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")).Underline(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9e9e9e"))
)

package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha subset.
const (
	colorRed     lipgloss.Color = "#f38ba8"
	colorPeach   lipgloss.Color = "#fab387"
	colorGreen   lipgloss.Color = "#a6e3a1"
	colorBlue    lipgloss.Color = "#89b4fa"
	colorMauve   lipgloss.Color = "#cba6f7"
	colorText    lipgloss.Color = "#cdd6f4"
	colorSub     lipgloss.Color = "#a6adc8"
	colorOverlay lipgloss.Color = "#6c7086"
	colorSurface lipgloss.Color = "#45475a"
	colorBase    lipgloss.Color = "#1e1e2e"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(colorMauve).Bold(true)
	headerStyle   = lipgloss.NewStyle().Foreground(colorSub)
	weekNumStyle  = lipgloss.NewStyle().Foreground(colorOverlay)
	dayStyle      = lipgloss.NewStyle().Foreground(colorText)
	outsideStyle  = lipgloss.NewStyle().Foreground(colorOverlay)
	disabledStyle = lipgloss.NewStyle().Foreground(colorSurface).Strikethrough(true)
	todayStyle    = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	markedStyle   = lipgloss.NewStyle().Foreground(colorPeach).Underline(true)
	selectedStyle = lipgloss.NewStyle().Foreground(colorBase).Background(colorBlue).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(colorSub)
	errorStyle    = lipgloss.NewStyle().Foreground(colorRed)
	helpStyle     = lipgloss.NewStyle().Foreground(colorOverlay)
)

// cellWidth is the column width of one day or week-number cell.
const cellWidth = 4

package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Layout constants
const (
	// Textarea
	MinTextareaHeight    = 3
	MaxTextareaHeight    = 10
	DefaultTextareaWidth = 80
	TextAreaPaddingLeft  = 1

	// Viewport
	MinViewportHeight = 1

	// Layout
	HeaderHeight       = 1
	MessagePaddingLeft = 2
	FormWidth          = 44
	UploadHeight       = 4

	// Help
	HelpMarginTop = 1

	// Truncation
	TruncateSuffix       = "..."
	TruncateSuffixLength = 3
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7C3AED") // Purple
	SecondaryColor = lipgloss.Color("#06B6D4") // Cyan
	AccentColor    = lipgloss.Color("#F59E0B") // Amber
	SuccessColor   = lipgloss.Color("#10B981") // Green
	ErrorColor     = lipgloss.Color("#EF4444") // Red
	MutedColor     = lipgloss.Color("#6B7280") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light gray
	DimTextColor   = lipgloss.Color("#9CA3AF") // Dim gray
	FileColor      = lipgloss.Color("#F472B6") // Pink
	BorderColor    = lipgloss.Color("#4B5563")
	DividerColor   = lipgloss.Color("#374151")
	SelectedColor  = lipgloss.Color("#10B981")
)

// Title bar
var (
	TitleStyle = lipgloss.NewStyle().
			Background(PrimaryColor).
			Foreground(TextColor).
			Bold(true)
)

// Messages
var (
	messageStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	UserMessageStyle = lipgloss.NewStyle().
				Inherit(messageStyle).
				BorderForeground(PrimaryColor).
				MarginLeft(10)

	BotMessageStyle = lipgloss.NewStyle().
			Inherit(messageStyle).
			BorderForeground(SecondaryColor).
			MarginRight(10)

	BotErrorStyle = lipgloss.NewStyle().
			Inherit(messageStyle).
			BorderForeground(ErrorColor).
			Foreground(ErrorColor).
			Italic(true).
			MarginRight(10)
)

// Forms
var (
	FormStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 2).
			Width(FormWidth)

	FormTitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(DimTextColor)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true)
)

// Sidebar
var (
	SidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(BorderColor).
			PaddingRight(1)

	SidebarItemStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				PaddingLeft(1)

	SidebarCursorStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(DividerColor).
				PaddingLeft(1)

	SidebarSelectedStyle = lipgloss.NewStyle().
				Foreground(SelectedColor).
				Bold(true).
				PaddingLeft(1)

	SidebarDateStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(3)
)

// Upload
var (
	UploadStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			PaddingLeft(1)

	FileStyle = lipgloss.NewStyle().
			Foreground(FileColor).
			Italic(true)
)

// Status and errors
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	DimTextStyle = lipgloss.NewStyle().
			Foreground(DimTextColor)
)

// Input area
var (
	TextAreaStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			PaddingLeft(TextAreaPaddingLeft)

	DisabledTextAreaStyle = lipgloss.NewStyle().
				Inherit(TextAreaStyle).
				BorderForeground(BorderColor)
)

// Spinner
var (
	SpinnerStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor)
)

// Help text
var (
	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true).
		MarginTop(HelpMarginTop)
)

// MessageHorizontalFrameSize returns the horizontal frame size of bot messages.
func MessageHorizontalFrameSize() int {
	return BotMessageStyle.GetHorizontalFrameSize()
}

// Truncate truncates a string to maxLen runes with a suffix.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= TruncateSuffixLength {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-TruncateSuffixLength]) + TruncateSuffix
}

package ui

import "github.com/charmbracelet/lipgloss"

// Palette. Outcome colours double as message colours: a verified candidate
// renders like a success, an inconclusive one like a warning.
var (
	ColorSuccess   = lipgloss.Color("#00D26A")
	ColorWarning   = lipgloss.Color("#FFB800")
	ColorError     = lipgloss.Color("#FF4444")
	ColorAddress   = lipgloss.Color("#00B4D8")
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#555555")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorChain     = lipgloss.Color("#9B5DE5")
	ColorHighlight = lipgloss.Color("#F15BB5")
)

var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleChain   = lipgloss.NewStyle().Foreground(ColorChain).Bold(true)
	StyleHeader  = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true).Underline(true)
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorChain).Bold(true).MarginBottom(1)

	StyleBorder   = boxStyle(ColorBorder)
	StyleSelected = lipgloss.NewStyle().Background(ColorHighlight).Foreground(lipgloss.Color("#000000")).Bold(true)
)

func boxStyle(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1)
}

const bannerArt = `
  ██╗    ██╗██████╗ ███╗   ███╗██╗███╗   ██╗████████╗
  ██║    ██║╚════██╗████╗ ████║██║████╗  ██║╚══██╔══╝
  ██║ █╗ ██║ █████╔╝██╔████╔██║██║██╔██╗ ██║   ██║
  ██║███╗██║ ╚═══██╗██║╚██╔╝██║██║██║╚██╗██║   ██║
  ╚███╔███╔╝██████╔╝██║ ╚═╝ ██║██║██║ ╚████║   ██║
   ╚══╝╚══╝ ╚═════╝ ╚═╝     ╚═╝╚═╝╚═╝  ╚═══╝   ╚═╝`

// Banner is printed by `w3mint init`.
func Banner() string {
	return StyleChain.Render(bannerArt) + "\n" + StyleMeta.Render("     Mint on any contract, no ABI required") + "\n"
}

func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }
func Err(msg string) string { return StyleError.Render("✗ " + msg) }
func Info(msg string) string { return StyleAddress.Render("ℹ " + msg) }

// Hint suggests the next command to run.
func Hint(msg string) string { return StyleMeta.Render("💡 " + msg) }

func Addr(a string) string { return StyleAddress.Render(a) }
func Val(v string) string { return StyleValue.Render(v) }
func Meta(m string) string { return StyleMeta.Render(m) }
func ChainName(c string) string { return StyleChain.Render(c) }

// DangerBox frames private keys and irreversible prompts in red.
func DangerBox(content string) string { return boxStyle(ColorError).Render(content) }

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/mendicot/internal/client"
	"github.com/lox/mendicot/internal/deck"
	"github.com/lox/mendicot/internal/game"
	"github.com/lox/mendicot/internal/server"
)

// CardPlayer sends a chosen card to the server.
type CardPlayer interface {
	PlayCard(card deck.Card) error
}

// EventMsg carries a server message together with the table view after it
// was applied.
type EventMsg struct {
	Message *server.Message
	Table   client.Table
}

// DisconnectedMsg tells the UI the connection is gone.
type DisconnectedMsg struct{}

// Model is the Bubble Tea model for a human player.
type Model struct {
	player CardPlayer
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	cardInput   textinput.Model

	table       client.Table
	gameLog     []string
	focusedPane int // 0 = log, 1 = input
	quitting    bool
	offline     bool

	// Dimensions
	width  int
	height int
}

// NewModel creates a model that plays cards through player.
func NewModel(player CardPlayer, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Card to play (e.g. 10h, qs, A♠) or its number"
	ti.Focus()
	ti.CharLimit = 16
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.Prompt = "> "

	return &Model{
		player:      player,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		cardInput:   ti,
		focusedPane: 1,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case EventMsg:
		m.table = msg.Table
		if line := describe(msg.Message, msg.Table); line != "" {
			m.AddLogEntry(line)
		}

	case DisconnectedMsg:
		m.offline = true
		m.AddLogEntry(ErrorStyle.Render("Disconnected from server"))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.cardInput.Focus()
			} else {
				m.focusedPane = 0
				m.cardInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.cardInput.Value())
				m.cardInput.SetValue("")
				if input == "quit" || input == "q" {
					m.quitting = true
					return m, tea.Quit
				}
				m.submit(input)
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.cardInput, cmd = m.cardInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit resolves input to a card in hand and plays it.
func (m *Model) submit(input string) {
	if input == "" {
		return
	}
	if m.offline {
		m.AddLogEntry(ErrorStyle.Render("Not connected"))
		return
	}
	if !m.table.MyTurn() {
		m.AddLogEntry(WarningStyle.Render("It is not your turn"))
		return
	}

	card, err := cardFromInput(input, m.table.Hand)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return
	}

	if err := m.player.PlayCard(card); err != nil {
		m.logger.Error("Failed to send card", "card", card, "error", err)
		m.AddLogEntry(ErrorStyle.Render("Failed to send card: " + err.Error()))
	}
}

// cardFromInput accepts a 1-based position in hand or a card name.
func cardFromInput(input string, hand []deck.Card) (deck.Card, error) {
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(hand) {
			return deck.Card{}, fmt.Errorf("pick a number between 1 and %d", len(hand))
		}
		return hand[n-1], nil
	}

	card, err := deck.ParseCard(input)
	if err != nil {
		return deck.Card{}, fmt.Errorf("unrecognised card %q", input)
	}
	for _, c := range hand {
		if c == card {
			return card, nil
		}
	}
	return deck.Card{}, fmt.Errorf("%s is not in your hand", card)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262"))
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows trump, scores and the trick in progress
func (m *Model) renderSidebarPane() string {
	t := m.table
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(" Mendicot "))
	b.WriteString("\n\n")

	if !t.Playing {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("Waiting room %d/4", t.Connected)))
		b.WriteString("\n")
	}
	if t.Trump != nil {
		b.WriteString(TrumpStyle.Render(fmt.Sprintf("Trump: %s %s", t.Trump, t.Trump.Name())))
		b.WriteString("\n")
	}
	if t.Team != 0 {
		b.WriteString(fmt.Sprintf("You: seat %d, team %d\n", t.Seat+1, int(t.Team)))
	}

	if t.Playing {
		b.WriteString("\n")
		for _, team := range []game.Team{game.Team1, game.Team2} {
			b.WriteString(fmt.Sprintf("Team %d: %d tricks, %d tens\n",
				int(team), t.TricksWon[team], t.TensWon[team]))
		}

		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("On the table:"))
		b.WriteString("\n")
		if len(t.Trick) == 0 {
			b.WriteString("  (empty)\n")
		}
		for _, p := range t.Trick {
			b.WriteString(fmt.Sprintf("  %s: %s\n", m.label(p.PlayerID), formatCard(p.Card)))
		}
	}

	return b.String()
}

// renderActionPane renders the hand and the input field
func (m *Model) renderActionPane() string {
	var b strings.Builder
	t := m.table

	if len(t.Hand) > 0 {
		b.WriteString(HandInfoStyle.Render("Hand: "))
		b.WriteString(formatHand(t.Hand))
		b.WriteString("\n")
	}

	switch {
	case t.Result != nil:
		b.WriteString(SuccessStyle.Render("Match over"))
	case t.MyTurn():
		b.WriteString(SuccessStyle.Render("Your turn"))
	case t.Playing && t.Turn != "":
		b.WriteString(InfoStyle.Render(fmt.Sprintf("Waiting for %s", m.label(t.Turn))))
	default:
		b.WriteString(InfoStyle.Render("Waiting for players..."))
	}
	b.WriteString("\n")

	b.WriteString(m.cardInput.View())
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to play • Ctrl+C to quit"))
	return b.String()
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns the game log lines.
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

func (m *Model) label(playerID string) string {
	return playerLabel(m.table, playerID)
}

func formatCard(c deck.Card) string {
	if c.IsRed() {
		return RedCardStyle.Render(c.String())
	}
	return BlackCardStyle.Render(c.String())
}

func formatHand(hand []deck.Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = fmt.Sprintf("%d:%s", i+1, formatCard(c))
	}
	return strings.Join(parts, " ")
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/space-runner/internal/core"
	"github.com/vovakirdan/space-runner/internal/game"
	"github.com/vovakirdan/space-runner/internal/leaderboard"
)

// statusLines is the number of rows below the playfield.
const statusLines = 2

// view is the overlay currently owning the keyboard.
type view int

const (
	viewPlay view = iota
	viewName
	viewBoard
)

// engineStartedMsg reports that the leaderboard engine finished its setup.
type engineStartedMsg struct{}

// Model is the Bubble Tea model for one runner session.
type Model struct {
	session  *Session
	ctx      context.Context
	screen   *core.Screen
	width    int
	height   int
	tickRate int
	keys     KeyMap
	help     help.Model
	name     textinput.Model
	board    table.Model
	view     view
	quitting bool

	pending    <-chan leaderboard.SubmitResult
	submission string // Outcome of the last leaderboard hand-off
}

// NewModel creates the model. ctx bounds the leaderboard engine's lifetime.
func NewModel(ctx context.Context, s *Session, cfg core.RuntimeConfig) Model {
	name := textinput.New()
	name.Placeholder = "Anonymous"
	name.CharLimit = 32
	name.Width = 32

	m := Model{
		session:  s,
		ctx:      ctx,
		screen:   core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-statusLines, 0)),
		width:    cfg.ScreenW,
		height:   cfg.ScreenH,
		tickRate: cfg.TickRate,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		name:     name,
	}
	m.help.Width = cfg.ScreenW
	m.board = newBoardTable(cfg.ScreenH)
	s.Game.SetReady(cfg.ScreenW > 0 && cfg.ScreenH > statusLines)
	return m
}

// Init starts the tick loop and the leaderboard engine.
func (m Model) Init() tea.Cmd {
	engine, ctx := m.session.Engine, m.ctx
	return tea.Batch(
		tickCmd(m.tickRate),
		func() tea.Msg {
			engine.Start(ctx)
			return engineStartedMsg{}
		},
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-statusLines, 0))
		m.help.Width = msg.Width
		m.board = newBoardTable(msg.Height)
		m.board.SetRows(m.boardRows())
		m.session.Game.SetReady(msg.Width > 0 && msg.Height > statusLines)
		return m, nil

	case TickMsg:
		return m.handleTick()

	case engineStartedMsg:
		return m, nil
	}

	if m.view == viewName {
		var cmd tea.Cmd
		m.name, cmd = m.name.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleTick advances the simulation and collects submission outcomes.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	machine := m.session.Machine()

	events := m.session.Game.Tick()
	if events.Collided {
		m.pending = machine.LastSubmission()
		m.submission = ""
		if m.pending != nil {
			m.submission = "Submitting score..."
		}
	}

	if m.pending != nil {
		select {
		case res, ok := <-m.pending:
			if ok {
				m.submission = describeSubmission(res)
			}
			m.pending = nil
		default:
		}
	}

	if m.view == viewBoard {
		m.board.SetRows(m.boardRows())
	}
	return m, tickCmd(m.tickRate)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.view {
	case viewName:
		return m.handleNameKey(msg)
	case viewBoard:
		return m.handleBoardKey(msg)
	}

	machine := m.session.Machine()
	playing := machine.Is(game.StatePlaying)

	switch {
	case key.Matches(msg, m.keys.Name) && machine.Is(game.StateMenu):
		m.view = viewName
		m.name.SetValue(m.session.Engine.PlayerName().Get())
		m.name.CursorEnd()
		return m, m.name.Focus()

	case key.Matches(msg, m.keys.Board) && !playing:
		m.view = viewBoard
		m.board.SetRows(m.boardRows())
		m.board.GotoTop()
		return m, nil
	}

	switch m.keys.Action(msg) {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case core.ActionLeft:
		m.session.Game.MoveLeft()

	case core.ActionRight:
		m.session.Game.MoveRight()

	case core.ActionConfirm:
		switch machine.State().Get() {
		case game.StateMenu:
			m.session.Game.Start()
		case game.StateGameOver:
			m.session.Game.Restart()
		}

	case core.ActionRestart:
		if machine.Is(game.StateGameOver) {
			m.session.Game.Restart()
		}

	case core.ActionBack:
		machine.ResetGame()
	}

	return m, nil
}

func (m Model) handleNameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.session.Engine.SetPlayerName(m.name.Value())
		m.name.Blur()
		m.view = viewPlay
		return m, nil
	case tea.KeyEsc:
		m.name.Blur()
		m.view = viewPlay
		return m, nil
	}

	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Board):
		m.view = viewPlay
		return m, nil
	}

	var cmd tea.Cmd
	m.board, cmd = m.board.Update(msg)
	return m, cmd
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.view {
	case viewName:
		body = m.nameView()
	case viewBoard:
		body = m.boardView()
	default:
		m.session.Game.Render(m.screen)
		m.drawOverlay()
		body = RenderScreen(m.screen)
	}

	return body + "\n" + m.statusBar() + "\n" + dimStyle.Render(m.help.View(m.keys))
}

// drawOverlay writes the menu and game-over text onto the playfield.
func (m Model) drawOverlay() {
	machine := m.session.Machine()
	h := m.screen.Height()
	if h < 6 {
		return
	}
	mid := h / 3

	switch machine.State().Get() {
	case game.StateMenu:
		m.screen.DrawTextCentered(mid, "S P A C E   R U N N E R", core.ColorBrightCyan)
		m.screen.DrawTextCentered(mid+2, "Pilot: "+m.session.Engine.DisplayName(), core.ColorWhite)
		m.screen.DrawTextCentered(mid+4, "Press Enter to launch", core.ColorYellow)

	case game.StateGameOver:
		score, best := machine.Score().Get(), machine.HighScore().Get()
		m.screen.DrawTextCentered(mid, "G A M E   O V E R", core.ColorRed)
		m.screen.DrawTextCentered(mid+2, fmt.Sprintf("Score %d   Best %d", score, best), core.ColorWhite)
		if score > 0 && score == best {
			m.screen.DrawTextCentered(mid+3, "New high score!", core.ColorOrange)
		}
		if m.submission != "" {
			m.screen.DrawTextCentered(mid+5, m.submission, core.ColorGray)
		}
		m.screen.DrawTextCentered(mid+7, "R: restart   Esc: menu   Tab: leaderboard", core.ColorYellow)
	}
}

// statusBar renders the online badge, score and pilot name.
func (m Model) statusBar() string {
	machine := m.session.Machine()
	engine := m.session.Engine

	score := statusStyle.Render(fmt.Sprintf(" SCORE %d  BEST %d ", machine.Score().Get(), machine.HighScore().Get()))
	pilot := dimStyle.Render("pilot: " + engine.DisplayName())
	return lipgloss.JoinHorizontal(lipgloss.Top, badge(engine.IsOnline().Get()), score, pilot)
}

func (m Model) nameView() string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(centerText(titleStyle.Render("PILOT NAME"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(panelStyle.Render(m.name.View()), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(dimStyle.Render("enter: save   esc: cancel"), m.width))
	return padLines(b.String(), m.height-statusLines)
}

func (m Model) boardView() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("LEADERBOARD"), m.width))
	b.WriteString("\n\n")

	global := m.board.View()
	if len(m.board.Rows()) == 0 {
		global = dimStyle.Italic(true).Padding(1, 2).Render("No global scores yet.")
	}

	local := m.localScoresView()
	b.WriteString(centerText(lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(global), "  ", panelStyle.Render(local)), m.width))
	return padLines(b.String(), m.height-statusLines)
}

// localScoresView lists this device's best runs.
func (m Model) localScoresView() string {
	scores, err := m.session.Local.Scores()
	if err != nil || len(scores) == 0 {
		return "Your runs\n\n" + dimStyle.Render("none yet")
	}

	var b strings.Builder
	b.WriteString("Your runs\n\n")
	for i, s := range scores {
		fmt.Fprintf(&b, "%2d. %6d\n", i+1, s.Score)
	}
	return strings.TrimRight(b.String(), "\n")
}

// boardRows converts the published top list into table rows.
func (m Model) boardRows() []table.Row {
	top := m.session.Engine.Leaderboard().Get()
	rows := make([]table.Row, len(top))
	for i, e := range top {
		rows[i] = table.Row{fmt.Sprintf("#%d", i+1), e.Name, fmt.Sprintf("%d", e.Score)}
	}
	return rows
}

func newBoardTable(height int) table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Rank", Width: 5},
			{Title: "Pilot", Width: 20},
			{Title: "Score", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(max(height-10, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// describeSubmission turns a submission outcome into a one-line message.
func describeSubmission(res leaderboard.SubmitResult) string {
	switch res.Outcome {
	case leaderboard.OutcomeSubmitted:
		return "Score posted to the global leaderboard"
	case leaderboard.OutcomeLocalOnly:
		return "Offline: score saved on this device"
	default:
		return "Upload failed: score saved, will sync when online"
	}
}

// padLines pads s with blank lines up to n lines so the status bar stays put.
func padLines(s string, n int) string {
	if lines := strings.Count(s, "\n") + 1; lines < n {
		s += strings.Repeat("\n", n-lines)
	}
	return s
}

// Run plays a session in the current terminal until the user quits.
func Run(ctx context.Context, s *Session, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewModel(ctx, s, cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Package tui provides the Bubble Tea front end: subject entry, the
// narrative screens, the playing field and the closing leaderboard.
package tui

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/megancady/Space-Defense-Pilot/internal/clock"
	"github.com/megancady/Space-Defense-Pilot/internal/eventlog"
	"github.com/megancady/Space-Defense-Pilot/internal/game"
	"github.com/megancady/Space-Defense-Pilot/internal/model"
	"github.com/megancady/Space-Defense-Pilot/internal/scheduler"
	"github.com/megancady/Space-Defense-Pilot/internal/session"
)

type screen int

const (
	screenSubject screen = iota
	screenLeaderboard
	screenBriefing
	screenInstructions
	screenRound
	screenBetween
	screenFinal
)

// DefaultFrameInterval paces the simulation at roughly 30 frames per second.
const DefaultFrameInterval = time.Second / 30

var subjectPattern = regexp.MustCompile(`^[0-9]{3}$`)

type frameMsg struct{}

// Options configures a Model.
type Options struct {
	Config    model.Config
	Scheduler *scheduler.Scheduler
	// Session options are passed to session.New once the subject is known.
	Session []session.Option
	Time    clock.TimeSource
	// FrameInterval defaults to DefaultFrameInterval.
	FrameInterval time.Duration
}

// Result is what the session produced once the program exits.
type Result struct {
	Subject    string
	Score      int
	Completed  bool
	ExportPath string
	ExportErr  error
	Summaries  []eventlog.RoundSummary
}

// Model implements the Bubble Tea session UI.
type Model struct {
	cfg      model.Config
	sched    *scheduler.Scheduler
	sessOpts []session.Option
	now      clock.TimeSource
	frame    time.Duration

	width  int
	height int

	screen   screen
	input    textinput.Model
	inputErr string

	sess    *session.Session
	round   *game.Round
	pending []game.Input

	board      []Entry
	boardTable table.Model

	exportPath string
	exportErr  error
	fatal      error
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs the session UI. When the config already names a
// subject the entry screen is skipped.
func NewModel(opts Options) (*Model, error) {
	m := &Model{
		cfg:      opts.Config,
		sched:    opts.Scheduler,
		sessOpts: opts.Session,
		now:      opts.Time,
		frame:    opts.FrameInterval,
		board:    ReferenceBoard(),
	}
	if m.sched == nil {
		m.sched = scheduler.New()
	}
	if m.now == nil {
		m.now = clock.System{}
	}
	if m.frame <= 0 {
		m.frame = DefaultFrameInterval
	}
	m.input = newSubjectInput()
	m.boardTable = buildBoardTable(Merge(m.board, "", 0), "")
	if m.cfg.Subject != "" {
		if err := m.openSession(m.cfg.Subject); err != nil {
			return nil, err
		}
		m.screen = screenLeaderboard
	}
	return m, nil
}

func newSubjectInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "Participant: "
	input.Placeholder = "e.g., 001"
	input.CharLimit = 3
	input.Focus()
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenSubject {
		return textinput.Blink
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case frameMsg:
		return m, m.handleFrame()
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.abort()
			return m, tea.Quit
		}
		return m, m.handleKey(msg)
	default:
		if m.screen == screenSubject {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.screen {
	case screenSubject:
		return m.handleSubjectKey(msg)
	case screenLeaderboard:
		if isSpace(msg) {
			m.screen = screenBriefing
		}
	case screenBriefing:
		if isSpace(msg) {
			m.screen = screenInstructions
		}
	case screenInstructions, screenBetween:
		if isSpace(msg) {
			return m.startRound()
		}
	case screenFinal:
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			return tea.Quit
		case tea.KeyRunes:
			if string(msg.Runes) == "q" {
				return tea.Quit
			}
		}
	}
	return nil
}

func isSpace(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeySpace || (msg.Type == tea.KeyRunes && string(msg.Runes) == " ")
}

func (m *Model) handleSubjectKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEnter {
		value := strings.TrimSpace(m.input.Value())
		if !subjectPattern.MatchString(value) {
			m.inputErr = "Use exactly 3 digits (leading zeros ok)."
			return nil
		}
		if err := m.openSession(value); err != nil {
			m.fatal = err
			return tea.Quit
		}
		m.inputErr = ""
		m.input.Blur()
		m.screen = screenLeaderboard
		return nil
	}
	if msg.Type == tea.KeySpace {
		return nil
	}
	if msg.Type == tea.KeyRunes {
		msg.Runes = digitsOnly(msg.Runes)
		if len(msg.Runes) == 0 {
			return nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func digitsOnly(runes []rune) []rune {
	out := runes[:0:0]
	for _, r := range runes {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return out
}

func (m *Model) openSession(subject string) error {
	cfg := m.cfg
	cfg.Subject = subject
	sess, err := session.New(cfg, m.sched, m.sessOpts...)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	m.cfg = cfg
	m.sess = sess
	log.Printf("session opened subject=%s rounds=%d", subject, len(sess.Plan()))
	return nil
}

func (m *Model) startRound() tea.Cmd {
	r, err := m.sess.StartNext(m.now.Now())
	if err != nil {
		m.fatal = err
		return tea.Quit
	}
	if r == nil {
		m.finish()
		return nil
	}
	m.round = r
	m.pending = nil
	m.screen = screenRound
	spec := r.Spec()
	log.Printf("round %d started type=%s p=%g", spec.Index, game.TrialType(spec.Label), spec.Probability)
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *Model) handleFrame() tea.Cmd {
	if m.screen != screenRound || m.round == nil {
		return nil
	}
	rows := m.round.Tick(m.now.Now(), m.pending)
	m.pending = nil
	for _, row := range rows {
		if row.Kind == eventlog.ShipDestroy || row.Kind == eventlog.ShipCrash {
			log.Printf("%s at %s score=%d", row.Kind, row.SessionTime, row.ScoreTotal)
		}
	}
	if !m.round.Ended() {
		return m.tick()
	}
	if m.sess.Done() {
		m.finish()
		return nil
	}
	m.screen = screenBetween
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.screen != screenRound || m.round == nil {
		return
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	f, ok := m.fieldLayout()
	if !ok {
		return
	}
	pt, ok := f.toField(msg.X, msg.Y)
	if !ok {
		return
	}
	m.pending = append(m.pending, game.Input{At: m.now.Now(), X: pt.X, Y: pt.Y})
}

func (m *Model) finish() {
	m.screen = screenFinal
	m.board = Merge(ReferenceBoard(), m.cfg.Subject, m.sess.Score())
	m.boardTable = buildBoardTable(m.board, m.cfg.Subject)
	m.export()
}

// abort keeps whatever was logged when the program is interrupted.
func (m *Model) abort() {
	if m.sess == nil || m.sess.Log().Len() == 0 {
		return
	}
	m.export()
}

func (m *Model) export() {
	if m.exportPath != "" || m.exportErr != nil {
		return
	}
	path, err := m.sess.WriteExport(m.cfg.ExportDir)
	if err != nil {
		m.exportErr = err
		log.Printf("export failed: %v", err)
		return
	}
	m.exportPath = path
	log.Printf("export written to %s", path)
}

// Err returns the error that stopped the program, if any.
func (m *Model) Err() error {
	return m.fatal
}

// Result reports the session outcome.
func (m *Model) Result() Result {
	res := Result{
		Subject:    m.cfg.Subject,
		ExportPath: m.exportPath,
		ExportErr:  m.exportErr,
	}
	if m.sess != nil {
		res.Score = m.sess.Score()
		res.Completed = m.sess.Done() && m.sess.Log().Len() > 0
		res.Summaries = m.sess.Log().Summaries()
	}
	return res
}

func (m *Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	return w, h
}

// fieldLayout places the field between the header and footer lines.
func (m *Model) fieldLayout() (fieldView, bool) {
	w, h := m.size()
	params := game.DefaultParams()
	if m.round != nil {
		params = m.round.Params()
	}
	return layoutField(params, w, h-2, 1)
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.screen {
	case screenSubject:
		return m.renderSubject()
	case screenLeaderboard:
		return m.page("Top Defenders",
			textStyle.Render("Try to beat the leaderboard.")+"\n\n"+m.boardTable.View(),
			"Press Space for the mission briefing.")
	case screenBriefing:
		return m.page("Mission briefing", m.paragraph(briefingText), "Press Space to continue.")
	case screenInstructions:
		return m.page("How to play", m.paragraph(m.instructionsText()), m.instructionsHint())
	case screenRound:
		return m.renderRound()
	case screenBetween:
		return m.renderBetween()
	case screenFinal:
		return m.renderFinal()
	default:
		return ""
	}
}

const briefingText = "Your home planet is under attack! Invaders are trying to steal your planet's magic, " +
	"which is stored at the Core of your planet. You have been appointed by your leader as the head " +
	"general for protecting your planet using a laser beam machine to take down enemy ships. Good luck!"

func (m *Model) instructionsText() string {
	p := game.DefaultParams()
	lines := []string{
		"Click on the CORE to attempt a laser shot.",
		fmt.Sprintf("Ships need %d hits to be destroyed.", p.HitsToDestroy),
		fmt.Sprintf("Destroy a ship: +%d points.", p.DestroyPoints),
		fmt.Sprintf("If a ship reaches the CORE: %d points.", p.CrashPoints),
		"Your score carries across rounds.",
	}
	if m.cfg.Practice {
		lines = append(lines, "You'll start with a short practice round.")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) instructionsHint() string {
	if m.cfg.Practice {
		return "Press Space to begin practice."
	}
	return "Press Space to begin."
}

func (m *Model) renderSubject() string {
	body := textStyle.Render("Enter your participant number to begin.") + "\n\n" + m.input.View()
	if m.inputErr != "" {
		body += "\n" + errStyle.Render(m.inputErr)
	}
	return m.page("Space Defense", body, "Use exactly 3 digits (leading zeros ok). Enter to continue.")
}

func (m *Model) renderBetween() string {
	title := "Round complete"
	if m.round != nil && m.round.Spec().Practice {
		title = "Practice complete"
	}
	body := textStyle.Render("Current total score: ") + accentStyle.Render(fmt.Sprintf("%d", m.sess.Score()))
	return m.page(title, body, "Press Space to continue.")
}

func (m *Model) renderFinal() string {
	score := m.sess.Score()
	var b strings.Builder
	b.WriteString(textStyle.Render("Final score: ") + accentStyle.Render(fmt.Sprintf("%d", score)) + "\n")
	if Ranked(m.board, m.cfg.Subject) {
		b.WriteString(textStyle.Render("Nice, you made the Top 5 defenders!"))
	} else {
		b.WriteString(textStyle.Render("Thanks for protecting the planet!"))
	}
	b.WriteString("\n\n" + titleStyle.Render("Top Scores") + "\n")
	b.WriteString(m.boardTable.View())
	b.WriteString("\n\n")
	switch {
	case m.exportErr != nil:
		b.WriteString(errStyle.Render(fmt.Sprintf("Failed to save data: %v", m.exportErr)))
	case m.exportPath != "":
		b.WriteString(textStyle.Render("Data saved to " + m.exportPath))
	}
	return m.page("Mission complete", b.String(), "Press q to quit.")
}

func (m *Model) renderRound() string {
	w, h := m.size()
	header := hudStyle.Render(fitWidth(" Defend the planet...", w))
	footer := footerStyle.Render(fitWidth(" Click the core to fire. Ctrl+C aborts the session.", w))
	f, ok := m.fieldLayout()
	if !ok {
		msg := fmt.Sprintf("Terminal too small: need at least %dx%d.", minFieldRows*2, minFieldRows+2)
		body := lipgloss.Place(w, maxInt(1, h-2), lipgloss.Center, lipgloss.Center, errStyle.Render(msg))
		return header + "\n" + body + "\n" + footer
	}
	snap := m.round.Snapshot(m.now.Now())
	field := f.render(snap, m.round.Spec().Color)
	body := lipgloss.Place(w, h-2, lipgloss.Center, lipgloss.Center, field)
	return header + "\n" + body + "\n" + footer
}

func (m *Model) paragraph(s string) string {
	return textStyle.Render(wrapText(s, m.textWidth()))
}

func (m *Model) textWidth() int {
	w, _ := m.size()
	w -= 4
	if w > 72 {
		w = 72
	}
	return maxInt(20, w)
}

func (m *Model) page(title, body, hint string) string {
	w, h := m.size()
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		body,
		"",
		footerStyle.Render(wrapText(hint, m.textWidth())),
	)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, content)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

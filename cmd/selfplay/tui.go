package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/baduk/game"
	"github.com/brensch/baduk/selfplay"
)

const recentGamesShown = 10

type GameUpdate struct {
	WorkerID int
	GameID   string
	Result   selfplay.GameResult
	Examples int
}

type TickMsg time.Time

type model struct {
	counters *counters

	gamesPlayed   int
	totalExamples int
	blackWins     int
	whiteWins     int
	draws         int
	moves         int64
	startTime     time.Time
	recentGames   []string
	updates       <-chan GameUpdate
	quitting      bool
}

func initialModel(c *counters, updates <-chan GameUpdate) model {
	return model{
		counters:  c,
		startTime: time.Now(),
		updates:   updates,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitForUpdate(updates <-chan GameUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return tea.Quit()
		}
		return u
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	case TickMsg:
		m.moves = m.counters.moves.Load()
		return m, tickCmd()
	case GameUpdate:
		m = m.record(msg)
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) record(u GameUpdate) model {
	m.gamesPlayed++
	m.totalExamples += u.Examples
	winner := selfplay.WinnerName(u.Result.Outcome)
	switch u.Result.Outcome {
	case game.BlackWin:
		m.blackWins++
	case game.WhiteWin:
		m.whiteWins++
	default:
		m.draws++
	}
	line := fmt.Sprintf("Worker %d: %s winner=%s moves=%d score=%.1f-%.1f",
		u.WorkerID, u.GameID, winner, u.Result.Moves, u.Result.BlackScore, u.Result.WhiteScore)
	m.recentGames = append([]string{line}, m.recentGames...)
	if len(m.recentGames) > recentGamesShown {
		m.recentGames = m.recentGames[:recentGamesShown]
	}
	return m
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	gamesPerSec := float64(m.gamesPlayed) / duration.Seconds()
	movesPerSec := float64(m.moves) / duration.Seconds()
	if duration.Seconds() < 1 {
		gamesPerSec = 0
		movesPerSec = 0
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Games Played:   %d\n", m.gamesPlayed)
	fmt.Fprintf(&sb, "Black/White/Draw: %d/%d/%d\n", m.blackWins, m.whiteWins, m.draws)
	fmt.Fprintf(&sb, "Total Examples: %d\n", m.totalExamples)
	fmt.Fprintf(&sb, "Total Moves:    %d\n", m.moves)
	fmt.Fprintf(&sb, "Duration:       %s\n", duration.Round(time.Second))
	fmt.Fprintf(&sb, "Games/Sec:      %.2f\n", gamesPerSec)
	fmt.Fprintf(&sb, "Moves/Sec:      %.2f\n\n", movesPerSec)

	sb.WriteString("Recent Games:\n")
	for _, g := range m.recentGames {
		sb.WriteString(g + "\n")
	}
	sb.WriteString("\nPress q to quit.\n")
	return sb.String()
}

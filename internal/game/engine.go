package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/layout"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/rules"
)

// Scoring and timing rules.
const (
	TimePenalty = 1
	FoodScore   = 10
	WinBonus    = 500
	LosePenalty = 500
	GhostScore  = 200
	ScaredTime  = 40
)

// ErrNoLayout is returned when an engine is configured without a layout.
var ErrNoLayout = errors.New("game config has no layout")

// Config configures an Engine.
type Config struct {
	Layout *layout.Layout

	// Ghosts holds one policy per ghost of the layout. Missing or nil
	// entries move at random.
	Ghosts []GhostAgent

	Rng    *rand.Rand
	GameID string
	Logger zerolog.Logger
}

// StepResult describes one turn.
type StepResult struct {
	State        State
	ScoreChange  int
	Outcome      rules.Outcome
	FoodEaten    bool
	CapsuleEaten bool
	GhostsEaten  int
}

// Engine runs a single-player Pacman game against ghost policies. A turn is
// one Pacman move followed by one move per ghost. The engine is
// deterministic given its rng and is not safe for concurrent use.
type Engine struct {
	layout *layout.Layout
	board  *core.Board
	rng    *rand.Rand
	ghosts []GhostAgent
	gameID string
	logger zerolog.Logger

	legalMoves    *rules.LegalMoveCalculator
	winCondition  *rules.WinConditionChecker
	turnProcessor *TurnProcessor

	state    State
	headings [MaxGhosts]core.Direction
	gameOver bool
	stats    GameStats
}

// NewEngine creates an engine with the game set up at the layout's start
// positions.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Layout == nil {
		return nil, ErrNoLayout
	}
	if len(cfg.Ghosts) > cfg.Layout.NumGhosts() {
		return nil, fmt.Errorf("layout %s has %d ghosts, got %d ghost policies",
			cfg.Layout.Name, cfg.Layout.NumGhosts(), len(cfg.Ghosts))
	}
	if cfg.Rng == nil {
		cfg.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.GameID == "" {
		cfg.GameID = fmt.Sprintf("game_%d", time.Now().UnixNano())
	}

	ghosts := make([]GhostAgent, cfg.Layout.NumGhosts())
	for i := range ghosts {
		ghosts[i] = RandomGhost{}
		if i < len(cfg.Ghosts) && cfg.Ghosts[i] != nil {
			ghosts[i] = cfg.Ghosts[i]
		}
	}

	gameLogger := cfg.Logger.With().Str("game_id", cfg.GameID).Logger()
	logger := gameLogger.With().Str("component", "GameEngine").Logger()
	e := &Engine{
		layout:       cfg.Layout,
		board:        cfg.Layout.Board,
		rng:          cfg.Rng,
		ghosts:       ghosts,
		gameID:       cfg.GameID,
		logger:       logger,
		legalMoves:   rules.NewLegalMoveCalculator(),
		winCondition: rules.NewWinConditionChecker(gameLogger),
	}
	e.turnProcessor = NewTurnProcessor(e)
	e.Reset()

	logger.Debug().
		Str("layout", cfg.Layout.Name).
		Int("width", cfg.Layout.Width).
		Int("height", cfg.Layout.Height).
		Int("ghosts", len(ghosts)).
		Msg("Engine created")
	return e, nil
}

// Reset puts every agent back at its start and restores food and capsules.
func (e *Engine) Reset() {
	capsules := make([]int, 0, len(e.layout.Capsules))
	for _, c := range e.layout.Capsules {
		capsules = append(capsules, e.board.Idx(c.X, c.Y))
	}

	s := State{
		Pacman:    e.layout.PacmanStart,
		NumGhosts: len(e.ghosts),
		Food:      e.layout.Food,
		Capsules:  core.BitmapOf(e.board.W*e.board.H, capsules...),
	}
	for i, g := range e.layout.GhostStarts {
		s.Ghosts[i] = g
		e.headings[i] = core.Stop
	}

	e.state = s
	e.gameOver = false
	e.stats = GameStats{}
}

// Step plays one turn with Pacman moving in direction.
func (e *Engine) Step(direction core.Direction) (StepResult, error) {
	return e.turnProcessor.ProcessTurn(direction)
}

// State returns the current snapshot
func (e *Engine) State() State { return e.state }

// LegalPacmanMoves lists Pacman's legal moves from pos, Stop last
func (e *Engine) LegalPacmanMoves(pos core.Coordinate) []core.Direction {
	return e.legalMoves.PacmanMoves(e.board, pos)
}

// Public accessors
func (e *Engine) Layout() *layout.Layout { return e.layout }
func (e *Engine) IsGameOver() bool       { return e.gameOver }
func (e *Engine) GameID() string         { return e.gameID }
func (e *Engine) Stats() GameStats       { return e.stats }

package agent

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// DefaultMaxSteps caps an episode when no explicit cap is given. It keeps a
// policy that never reaches a terminal state from running forever.
const DefaultMaxSteps = 100

// Config holds the hyperparameters shared by the Q-learning agents.
type Config struct {
	Epsilon  float64
	Alpha    float64
	Discount float64

	// NumTraining is the number of completed episodes after which epsilon and
	// alpha are frozen to 0 and the agent only exploits. Zero never freezes.
	NumTraining int

	Logger zerolog.Logger
}

func (c Config) validate() error {
	if !common.IsProbability(c.Epsilon) {
		return mdp.ConfigError("epsilon must be in [0, 1], got %v", c.Epsilon)
	}
	if !common.IsRate(c.Alpha) {
		return mdp.ConfigError("alpha must be in (0, 1], got %v", c.Alpha)
	}
	if !common.IsRate(c.Discount) {
		return mdp.ConfigError("discount must be in (0, 1], got %v", c.Discount)
	}
	if c.NumTraining < 0 {
		return mdp.ConfigError("num training must be non-negative, got %d", c.NumTraining)
	}
	return nil
}

// ActionFunc lists the legal actions of a state.
type ActionFunc[S comparable] func(state S) []mdp.Action

// Recorder receives every transition an agent learns from.
type Recorder[S comparable] interface {
	Add(exp experience.Experience[S]) error
}

// EpisodeStats summarises one episode.
type EpisodeStats[S comparable] struct {
	Episode     int
	TotalReward float64
	Steps       int
	Terminated  bool
	Training    bool
	FinalState  S
	Err         error
}

// estimator is the value-function half of an agent.
type estimator[S comparable] interface {
	qValue(state S, action mdp.Action) float64
	// update moves Q(state, action) towards target by step size alpha
	update(state S, action mdp.Action, target, alpha float64)
	// checkpoint captures the learned parameters and returns a func that
	// restores them
	checkpoint() func()
}

// QAgent is the episode machinery shared by the tabular, approximate and
// random agents: epsilon-greedy selection, TD updates and the episode
// lifecycle. It is not safe for concurrent use.
type QAgent[S comparable] struct {
	est     estimator[S]
	actions ActionFunc[S]
	rng     *rand.Rand

	epsilon     float64
	alpha       float64
	discount    float64
	numTraining int

	phase    Phase
	episodes int
	frozen   bool

	recorder Recorder[S]
	logger   zerolog.Logger
}

func newQAgent[S comparable](est estimator[S], actions ActionFunc[S], cfg Config, rng *rand.Rand, component string) (*QAgent[S], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if actions == nil {
		return nil, mdp.ConfigError("%s: action function is required", component)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QAgent[S]{
		est:         est,
		actions:     actions,
		rng:         rng,
		epsilon:     cfg.Epsilon,
		alpha:       cfg.Alpha,
		discount:    cfg.Discount,
		numTraining: cfg.NumTraining,
		phase:       PhaseIdle,
		logger:      cfg.Logger.With().Str("component", component).Logger(),
	}, nil
}

func (a *QAgent[S]) Phase() Phase { return a.phase }
func (a *QAgent[S]) Epsilon() float64 { return a.epsilon }
func (a *QAgent[S]) Alpha() float64 { return a.alpha }
func (a *QAgent[S]) Discount() float64 { return a.discount }
func (a *QAgent[S]) EpisodesSoFar() int { return a.episodes }

// IsTraining reports whether the agent is still within its training budget
// and has not been frozen.
func (a *QAgent[S]) IsTraining() bool {
	if a.frozen {
		return false
	}
	return a.numTraining == 0 || a.episodes < a.numTraining
}

// Freeze sets epsilon and alpha to 0: from now on the agent only exploits
// what it has learned. It is idempotent.
func (a *QAgent[S]) Freeze() {
	if a.frozen {
		return
	}
	a.frozen = true
	a.epsilon = 0
	a.alpha = 0
	a.logger.Info().Int("episodes", a.episodes).Msg("Exploration and learning frozen")
}

// SetRecorder attaches r to receive every learned transition. nil detaches.
func (a *QAgent[S]) SetRecorder(r Recorder[S]) {
	a.recorder = r
}

// StartEpisode moves the agent from Idle into EpisodeRunning.
func (a *QAgent[S]) StartEpisode() error {
	next, err := a.phase.transitionTo(PhaseEpisodeRunning)
	if err != nil {
		return err
	}
	a.phase = next
	return nil
}

// StopEpisode ends the running episode and counts it. Reaching the training
// budget freezes exploration and learning.
func (a *QAgent[S]) StopEpisode() error {
	next, err := a.phase.transitionTo(PhaseIdle)
	if err != nil {
		return err
	}
	a.phase = next
	a.episodes++

	if a.numTraining > 0 && a.episodes >= a.numTraining {
		a.Freeze()
	}
	return nil
}

// abandonEpisode returns to Idle without counting the episode.
func (a *QAgent[S]) abandonEpisode() {
	if a.phase == PhaseEpisodeRunning {
		a.phase = PhaseIdle
	}
}

// Stop retires the agent. No further episodes can be started.
func (a *QAgent[S]) Stop() error {
	next, err := a.phase.transitionTo(PhaseStopped)
	if err != nil {
		return err
	}
	a.phase = next
	return nil
}

// QValue returns the current estimate of Q(state, action).
func (a *QAgent[S]) QValue(state S, action mdp.Action) float64 {
	return a.est.qValue(state, action)
}

// Value returns max over legal actions of Q(state, ·), or 0 when there are none.
func (a *QAgent[S]) Value(state S) float64 {
	return a.maxQ(state, a.actions(state))
}

// Policy returns the greedy action at state. ok is false when there are no
// legal actions.
func (a *QAgent[S]) Policy(state S) (mdp.Action, bool) {
	best, _, ok := greedy(a.actions(state), func(act mdp.Action) float64 { return a.est.qValue(state, act) })
	return best, ok
}

// PolicyTable evaluates Policy over states.
func (a *QAgent[S]) PolicyTable(states []S) map[S]mdp.Action {
	out := make(map[S]mdp.Action, len(states))
	for _, s := range states {
		if act, ok := a.Policy(s); ok {
			out[s] = act
		}
	}
	return out
}

// ChooseAction picks an action for state: uniformly at random with
// probability epsilon, greedily otherwise.
func (a *QAgent[S]) ChooseAction(state S) (mdp.Action, bool) {
	return a.chooseFrom(state, a.actions(state))
}

func (a *QAgent[S]) chooseFrom(state S, actions []mdp.Action) (mdp.Action, bool) {
	if len(actions) == 0 {
		return "", false
	}
	if a.rng.Float64() < a.epsilon {
		return actions[a.rng.Intn(len(actions))], true
	}
	best, _, _ := greedy(actions, func(act mdp.Action) float64 { return a.est.qValue(state, act) })
	return best, true
}

// Update applies one temporal-difference update for an observed transition.
func (a *QAgent[S]) Update(state S, action mdp.Action, next S, reward float64) {
	a.learn(state, action, next, reward, a.actions(next))
}

func (a *QAgent[S]) learn(state S, action mdp.Action, next S, reward float64, nextActions []mdp.Action) {
	if a.alpha == 0 {
		return
	}
	target := reward + a.discount*a.maxQ(next, nextActions)
	a.est.update(state, action, target, a.alpha)
}

func (a *QAgent[S]) maxQ(state S, actions []mdp.Action) float64 {
	_, v, ok := greedy(actions, func(act mdp.Action) float64 { return a.est.qValue(state, act) })
	if !ok {
		return 0
	}
	return v
}

// Checkpoint captures the learned parameters. Calling the returned func
// restores them.
func (a *QAgent[S]) Checkpoint() func() {
	return a.est.checkpoint()
}

// RunEpisode plays one episode on env from its current state, learning from
// every step, until a terminal state or maxSteps steps. maxSteps <= 0 uses
// DefaultMaxSteps. A failed env step abandons the episode: it is not counted
// and the error is returned along with the partial stats. Updates made
// before the failure are not undone here; see Checkpoint.
func (a *QAgent[S]) RunEpisode(env mdp.Environment[S], maxSteps int) (EpisodeStats[S], error) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if err := a.StartEpisode(); err != nil {
		return EpisodeStats[S]{}, err
	}

	stats := EpisodeStats[S]{Episode: a.episodes, Training: a.IsTraining()}
	state := env.CurrentState()
	for stats.Steps < maxSteps {
		actions := env.PossibleActions(state)
		action, ok := a.chooseFrom(state, actions)
		if !ok {
			stats.Terminated = true
			break
		}

		outcome, err := env.Step(action)
		if err != nil {
			a.abandonEpisode()
			stats.FinalState = state
			stats.Err = err
			return stats, err
		}

		a.learn(state, action, outcome.Next, outcome.Reward, env.PossibleActions(outcome.Next))
		a.record(stats.Episode, stats.Steps, state, action, outcome)

		stats.TotalReward += outcome.Reward
		stats.Steps++
		state = outcome.Next
		if outcome.Done {
			stats.Terminated = true
			break
		}
	}
	stats.FinalState = state

	if err := a.StopEpisode(); err != nil {
		return stats, err
	}

	a.logger.Debug().
		Int("episode", stats.Episode).
		Float64("total_reward", stats.TotalReward).
		Int("steps", stats.Steps).
		Bool("terminated", stats.Terminated).
		Msg("Episode finished")
	return stats, nil
}

func (a *QAgent[S]) record(episode, step int, state S, action mdp.Action, outcome mdp.Outcome[S]) {
	if a.recorder == nil {
		return
	}
	err := a.recorder.Add(experience.Experience[S]{
		Episode:     episode,
		Step:        step,
		State:       state,
		Action:      action,
		Reward:      outcome.Reward,
		NextState:   outcome.Next,
		Done:        outcome.Done,
		CollectedAt: time.Now(),
	})
	if err != nil {
		a.logger.Debug().Err(err).Msg("Dropping recorded transition")
	}
}

// tableEstimator stores Q directly.
type tableEstimator[S comparable] struct {
	table *QTable[S]
}

func (e *tableEstimator[S]) qValue(state S, action mdp.Action) float64 {
	return e.table.Get(state, action)
}

func (e *tableEstimator[S]) update(state S, action mdp.Action, target, alpha float64) {
	q := e.table.Get(state, action)
	e.table.Set(state, action, q+alpha*(target-q))
}

func (e *tableEstimator[S]) checkpoint() func() {
	saved := e.table.Clone()
	return func() { e.table.values = saved.values }
}

// QLearningAgent is tabular Q-learning.
type QLearningAgent[S comparable] struct {
	*QAgent[S]
	table *QTable[S]
}

// NewQLearningAgent creates a tabular Q-learner. rng drives exploration; nil
// seeds one from the clock.
func NewQLearningAgent[S comparable](actions ActionFunc[S], cfg Config, rng *rand.Rand) (*QLearningAgent[S], error) {
	table := NewQTable[S]()
	core, err := newQAgent[S](&tableEstimator[S]{table: table}, actions, cfg, rng, "qlearning_agent")
	if err != nil {
		return nil, err
	}
	return &QLearningAgent[S]{QAgent: core, table: table}, nil
}

// Table exposes the live Q-table.
func (a *QLearningAgent[S]) Table() *QTable[S] {
	return a.table
}

// nullEstimator never learns.
type nullEstimator[S comparable] struct{}

func (nullEstimator[S]) qValue(S, mdp.Action) float64 { return 0 }
func (nullEstimator[S]) update(S, mdp.Action, float64, float64) {}
func (nullEstimator[S]) checkpoint() func() { return func() {} }

// NewRandomAgent returns an agent that picks uniformly among legal actions
// and never learns. It is the baseline for comparisons.
func NewRandomAgent[S comparable](actions ActionFunc[S], rng *rand.Rand, logger zerolog.Logger) (*QAgent[S], error) {
	return newQAgent[S](nullEstimator[S]{}, actions, Config{
		Epsilon:  1,
		Alpha:    1,
		Discount: 1,
		Logger:   logger,
	}, rng, "random_agent")
}

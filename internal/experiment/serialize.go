package experiment

import (
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/layout"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/gridworld"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// gridEstimates is what a solved or trained gridworld agent exposes.
type gridEstimates interface {
	Value(s gridworld.State) float64
	QValue(s gridworld.State, a mdp.Action) float64
	Policy(s gridworld.State) (mdp.Action, bool)
}

// solverEstimates adapts a value iteration solution.
type solverEstimates struct {
	sol *agent.Solution[gridworld.State]
}

func (e solverEstimates) Value(s gridworld.State) float64 { return e.sol.Values[s] }
func (e solverEstimates) QValue(s gridworld.State, a mdp.Action) float64 {
	return e.sol.QValues.Get(s, a)
}
func (e solverEstimates) Policy(s gridworld.State) (mdp.Action, bool) {
	a, ok := e.sol.Policy[s]
	return a, ok
}

// tables holds the string-keyed value, Q and policy tables of a gridworld
// agent, skipping the terminal sentinel. States without actions keep their
// value but have no Q entries or policy.
type tables struct {
	values  map[string]float64
	qValues map[string]float64
	policy  map[string]string
}

func tabulate(world *gridworld.Gridworld, est gridEstimates) tables {
	t := tables{
		values:  make(map[string]float64),
		qValues: make(map[string]float64),
		policy:  make(map[string]string),
	}
	for _, s := range world.States() {
		if world.IsTerminal(s) {
			continue
		}
		t.values[mdp.StateKey(s)] = est.Value(s)
		for _, a := range world.PossibleActions(s) {
			t.qValues[mdp.PairKey(s, a)] = est.QValue(s, a)
		}
		if a, ok := est.Policy(s); ok {
			t.policy[mdp.StateKey(s)] = a.String()
		}
	}
	return t
}

func gridData(world *gridworld.Gridworld, est gridEstimates) GridData {
	grid := world.Grid()
	data := GridData{
		Width:        grid.Width(),
		Height:       grid.Height(),
		Rows:         grid.Rows(),
		States:       []StateInfo{},
		Walls:        []Cell{},
		LivingReward: world.LivingReward(),
		Noise:        world.Noise(),
	}

	for _, s := range world.States() {
		if world.IsTerminal(s) {
			continue
		}
		cell := grid.At(s.X, s.Y)
		info := StateInfo{X: s.X, Y: s.Y, Type: "normal", Reward: world.LivingReward()}
		if cell.Kind == gridworld.CellTerminal {
			info.Type = "terminal"
			info.Reward = cell.Reward
		}

		actions := world.PossibleActions(s)
		info.Actions = make([]string, 0, len(actions))
		for _, a := range actions {
			info.Actions = append(info.Actions, a.String())
		}
		if est != nil {
			v := est.Value(s)
			info.Value = &v
			info.QValues = make(map[string]float64, len(actions))
			for _, a := range actions {
				info.QValues[a.String()] = est.QValue(s, a)
			}
		}
		data.States = append(data.States, info)
	}

	for x := 0; x < grid.Width(); x++ {
		for y := 0; y < grid.Height(); y++ {
			if grid.At(x, y).Kind == gridworld.CellWall {
				data.Walls = append(data.Walls, Cell{X: x, Y: y})
			}
		}
	}
	return data
}

func episodeReports[S comparable](stats []agent.EpisodeStats[S]) []EpisodeReport {
	out := make([]EpisodeReport, 0, len(stats))
	for _, s := range stats {
		out = append(out, EpisodeReport{
			Episode:     s.Episode,
			TotalReward: s.TotalReward,
			Steps:       s.Steps,
			Terminated:  s.Terminated,
		})
	}
	return out
}

func trainingSummary[S comparable](res *agent.TrainingResult[S]) TrainingSummary {
	return TrainingSummary{
		Completed:  res.Completed,
		Abandoned:  res.Abandoned,
		MeanReward: res.MeanReward,
		StdReward:  res.StdReward,
		MeanSteps:  res.MeanSteps,
	}
}

func transitionRecords[S comparable](exps []experience.Experience[S]) []TransitionRecord {
	out := make([]TransitionRecord, 0, len(exps))
	for _, e := range exps {
		out = append(out, TransitionRecord{
			Episode:   e.Episode,
			Step:      e.Step,
			State:     mdp.StateKey(e.State),
			Action:    e.Action.String(),
			Reward:    e.Reward,
			NextState: mdp.StateKey(e.NextState),
			Done:      e.Done,
		})
	}
	return out
}

func gameState(l *layout.Layout, s game.State) *GameState {
	board := l.Board
	food := make([][]bool, l.Width)
	for x := range food {
		food[x] = make([]bool, l.Height)
		for y := range food[x] {
			food[x][y] = s.Food.Has(board.Idx(x, y))
		}
	}

	ghosts := make([][2]int, 0, s.NumGhosts)
	for _, g := range s.GhostPositions() {
		ghosts = append(ghosts, pair(g))
	}
	capsules := make([][2]int, 0)
	for _, idx := range s.Capsules.Indices() {
		x, y := board.XY(idx)
		capsules = append(capsules, [2]int{x, y})
	}

	return &GameState{
		Score:          s.Score,
		PacmanPosition: pair(s.Pacman),
		GhostPositions: ghosts,
		ScaredTimers:   s.ScaredTimers(),
		Food:           food,
		Capsules:       capsules,
		IsWin:          s.Win,
		IsLose:         s.Lose,
		Width:          l.Width,
		Height:         l.Height,
		Walls:          board.Walls(),
	}
}

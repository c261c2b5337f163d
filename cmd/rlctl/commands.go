package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experiment"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/render"
)

// override copies value into dst when the flag was set on the command line,
// so that unset flags keep the configured defaults.
func override[T any](cmd *cobra.Command, name string, dst *T, value T) {
	if cmd.Flags().Changed(name) {
		*dst = value
	}
}

func (c *cli) solveCommand() *cobra.Command {
	var f experiment.ValueIterationRequest
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a gridworld with value iteration",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := experiment.DefaultValueIterationRequest(c.cfg)
			override(cmd, "grid", &req.Grid, f.Grid)
			override(cmd, "iterations", &req.Iterations, f.Iterations)
			override(cmd, "discount", &req.Discount, f.Discount)
			override(cmd, "noise", &req.Noise, f.Noise)
			override(cmd, "living-reward", &req.LivingReward, f.LivingReward)
			override(cmd, "max-magnitude", &req.MaxMagnitude, f.MaxMagnitude)

			ctx, cancel := c.context(cmd.Context())
			defer cancel()
			res, err := c.backend.ValueIteration(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.jsonOut {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "Value iteration on %s: %d sweeps, residual %.3g (discount %v, noise %v)\n\n",
				res.Grid, res.Sweeps, res.Residual, res.Discount, res.Noise)
			return c.printer.Values(out, res.GridData, res.Values, res.Policy)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.Grid, "grid", "g", "", "Gridworld name")
	fl.IntVarP(&f.Iterations, "iterations", "i", 0, "Number of sweeps")
	fl.Float64VarP(&f.Discount, "discount", "d", 0, "Discount factor")
	fl.Float64VarP(&f.Noise, "noise", "n", 0, "Probability of slipping sideways")
	fl.Float64VarP(&f.LivingReward, "living-reward", "r", 0, "Reward for every non-exit step")
	fl.Float64Var(&f.MaxMagnitude, "max-magnitude", 0, "Fail once any value exceeds this magnitude (0 disables)")
	return cmd
}

func (c *cli) trainCommand() *cobra.Command {
	var f experiment.QLearningRequest
	var chart string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a Q-learning agent on a gridworld",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := experiment.DefaultQLearningRequest(c.cfg)
			override(cmd, "grid", &req.Grid, f.Grid)
			override(cmd, "agent", &req.Agent, f.Agent)
			override(cmd, "extractor", &req.Extractor, f.Extractor)
			override(cmd, "episodes", &req.Episodes, f.Episodes)
			override(cmd, "epsilon", &req.Epsilon, f.Epsilon)
			override(cmd, "alpha", &req.Alpha, f.Alpha)
			override(cmd, "discount", &req.Discount, f.Discount)
			override(cmd, "noise", &req.Noise, f.Noise)
			override(cmd, "living-reward", &req.LivingReward, f.LivingReward)
			override(cmd, "max-steps", &req.MaxSteps, f.MaxSteps)
			override(cmd, "report-percent", &req.ReportEveryPercent, f.ReportEveryPercent)
			override(cmd, "seed", &req.Seed, f.Seed)
			override(cmd, "record", &req.RecordTransitions, f.RecordTransitions)

			ctx, cancel := c.context(cmd.Context())
			defer cancel()
			res, err := c.backend.QLearning(ctx, req)
			if err != nil {
				return err
			}
			if chart != "" {
				series := render.SeriesFromReports(res.Agent, res.TrainingHistory)
				if err := c.writeChart(chart, res.Grid, series); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if c.jsonOut {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "%s on %s: %d episodes (epsilon %v, alpha %v, discount %v, seed %d)\n\n",
				res.Agent, res.Grid, res.Episodes, res.Epsilon, res.Alpha, res.Discount, res.Seed)
			if err := c.printer.Values(out, res.GridData, res.Values, res.Policy); err != nil {
				return err
			}
			s := res.Summary
			fmt.Fprintf(out, "\ncompleted %d, abandoned %d, mean reward %.3f (std %.3f), mean steps %.1f\n",
				s.Completed, s.Abandoned, s.MeanReward, s.StdReward, s.MeanSteps)
			printHistory(out, res.TrainingHistory)
			printWeights(out, res.Weights)
			for _, t := range res.Transitions {
				fmt.Fprintf(out, "  ep %d step %d: %s --%s--> %s (%.2f)\n", t.Episode, t.Step, t.State, t.Action, t.NextState, t.Reward)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.Grid, "grid", "g", "", "Gridworld name")
	fl.StringVarP(&f.Agent, "agent", "a", "", "QLearningAgent or ApproximateQAgent")
	fl.StringVar(&f.Extractor, "extractor", "", "Feature extractor for ApproximateQAgent (identity, coordinates)")
	fl.IntVarP(&f.Episodes, "episodes", "k", 0, "Training episodes")
	fl.Float64VarP(&f.Epsilon, "epsilon", "e", 0, "Exploration rate")
	fl.Float64VarP(&f.Alpha, "alpha", "l", 0, "Learning rate")
	fl.Float64VarP(&f.Discount, "discount", "d", 0, "Discount factor")
	fl.Float64VarP(&f.Noise, "noise", "n", 0, "Probability of slipping sideways")
	fl.Float64VarP(&f.LivingReward, "living-reward", "r", 0, "Reward for every non-exit step")
	fl.IntVar(&f.MaxSteps, "max-steps", 0, "Step cap per episode")
	fl.Float64Var(&f.ReportEveryPercent, "report-percent", 0, "Report an episode every this percent of the run")
	fl.Int64Var(&f.Seed, "seed", 0, "Random seed (0 picks one)")
	fl.IntVar(&f.RecordTransitions, "record", 0, "Print the last n learned transitions")
	fl.StringVar(&chart, "chart", "", "Write a learning curve to this HTML file")
	return cmd
}

func (c *cli) pacmanCommand() *cobra.Command {
	var f experiment.PacmanRequest
	var chart string
	var quiet bool
	cmd := &cobra.Command{
		Use:   "pacman",
		Short: "Train a Pacman agent and play evaluation games",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := experiment.DefaultPacmanRequest(c.cfg)
			override(cmd, "layout", &req.Layout, f.Layout)
			override(cmd, "agent", &req.Agent, f.Agent)
			override(cmd, "ghost", &req.Ghost, f.Ghost)
			override(cmd, "training", &req.NumTraining, f.NumTraining)
			override(cmd, "games", &req.NumGames, f.NumGames)
			override(cmd, "epsilon", &req.Epsilon, f.Epsilon)
			override(cmd, "alpha", &req.Alpha, f.Alpha)
			override(cmd, "discount", &req.Discount, f.Discount)
			override(cmd, "max-steps", &req.MaxSteps, f.MaxSteps)
			override(cmd, "continue-on-error", &req.ContinueOnError, f.ContinueOnError)
			override(cmd, "seed", &req.Seed, f.Seed)

			ctx, cancel := c.context(cmd.Context())
			defer cancel()
			res, err := c.backend.RunPacman(ctx, req)
			if err != nil {
				return err
			}
			if chart != "" {
				series := render.SeriesFromReports(res.Agent, res.TrainingHistory)
				if err := c.writeChart(chart, res.Layout, series); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if c.jsonOut {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "%s on %s against %s ghosts: %d training, %d games (seed %d)\n",
				res.Agent, res.Layout, res.Ghost, res.NumTraining, res.NumGames, res.Seed)
			printHistory(out, res.TrainingHistory)
			for _, g := range res.Games {
				fmt.Fprintf(out, "\nGame %d: %d moves\n", g.GameIndex+1, g.Steps)
				if quiet {
					fmt.Fprintf(out, "Score: %d\n", g.Score)
					continue
				}
				if err := c.printer.Game(out, g.FinalState); err != nil {
					return err
				}
			}
			s := res.Summary
			fmt.Fprintf(out, "\nAverage score: %.1f\nWin rate: %d/%d\n", s.AvgScore, s.Wins, len(res.Games))
			if s.Abandoned > 0 {
				fmt.Fprintf(out, "Abandoned games: %d\n", s.Abandoned)
			}
			printWeights(out, res.Weights)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.Layout, "layout", "l", "", "Layout name")
	fl.StringVarP(&f.Agent, "agent", "p", "", "PacmanQAgent, ApproximateQAgent or random")
	fl.StringVarP(&f.Ghost, "ghost", "g", "", "Ghost policy (random, directional)")
	fl.IntVarP(&f.NumTraining, "training", "x", 0, "Training games")
	fl.IntVarP(&f.NumGames, "games", "n", 0, "Evaluation games")
	fl.Float64VarP(&f.Epsilon, "epsilon", "e", 0, "Exploration rate")
	fl.Float64VarP(&f.Alpha, "alpha", "a", 0, "Learning rate")
	fl.Float64VarP(&f.Discount, "discount", "d", 0, "Discount factor")
	fl.IntVar(&f.MaxSteps, "max-steps", 0, "Move cap per game")
	fl.BoolVar(&f.ContinueOnError, "continue-on-error", true, "Skip games the engine fails instead of aborting")
	fl.Int64Var(&f.Seed, "seed", 0, "Random seed (0 picks one)")
	fl.StringVar(&chart, "chart", "", "Write a learning curve to this HTML file")
	fl.BoolVarP(&quiet, "quiet", "q", false, "Do not draw final boards")
	return cmd
}

func (c *cli) compareCommand() *cobra.Command {
	var f experiment.CompareRequest
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare value iteration with Q-learning on one gridworld",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := experiment.DefaultCompareRequest(c.cfg)
			override(cmd, "grid", &req.Grid, f.Grid)
			override(cmd, "iterations", &req.Iterations, f.Iterations)
			override(cmd, "episodes", &req.Episodes, f.Episodes)
			override(cmd, "noise", &req.Noise, f.Noise)
			override(cmd, "max-steps", &req.MaxSteps, f.MaxSteps)
			override(cmd, "seed", &req.Seed, f.Seed)

			ctx, cancel := c.context(cmd.Context())
			defer cancel()
			res, err := c.backend.Compare(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.jsonOut {
				return printJSON(out, res)
			}
			for _, cmp := range res.Comparisons {
				budget := fmt.Sprintf("%d iterations", cmp.Iterations)
				if cmp.Episodes > 0 {
					budget = fmt.Sprintf("%d episodes", cmp.Episodes)
				}
				fmt.Fprintf(out, "%s (%s)\n", cmp.Algorithm, budget)
				if err := c.printer.Values(out, res.GridData, cmp.Values, cmp.Policy); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "Policy agreement: %.0f%%\n", res.PolicyAgreement*100)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.Grid, "grid", "g", "", "Gridworld name")
	fl.IntVarP(&f.Iterations, "iterations", "i", 0, "Value iteration sweeps")
	fl.IntVarP(&f.Episodes, "episodes", "k", 0, "Q-learning episodes")
	fl.Float64VarP(&f.Noise, "noise", "n", 0, "Probability of slipping sideways")
	fl.IntVar(&f.MaxSteps, "max-steps", 0, "Step cap per episode")
	fl.Int64Var(&f.Seed, "seed", 0, "Random seed (0 picks one)")
	return cmd
}

func (c *cli) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List environments, agents and algorithms",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			envs, err := c.backend.ListEnvironments(ctx)
			if err != nil {
				return err
			}
			agents, err := c.backend.ListAgents(ctx)
			if err != nil {
				return err
			}
			algos, err := c.backend.GetAlgorithms(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.jsonOut {
				return printJSON(out, struct {
					Environments *experiment.EnvironmentList `json:"environments"`
					Agents       *experiment.AgentList       `json:"agents"`
					Algorithms   []experiment.AlgorithmInfo  `json:"algorithms"`
				}{envs, agents, algos})
			}
			fmt.Fprintf(out, "Gridworlds: %s\n", strings.Join(envs.Gridworlds, ", "))
			fmt.Fprintf(out, "Layouts:    %s\n\n", strings.Join(envs.Layouts, ", "))
			fmt.Fprintln(out, "Gridworld agents:")
			for _, a := range agents.GridworldAgents {
				fmt.Fprintf(out, "  %-20s %s\n", a.ID, a.Description)
			}
			fmt.Fprintln(out, "Pacman agents:")
			for _, a := range agents.PacmanAgents {
				fmt.Fprintf(out, "  %-20s %s\n", a.ID, a.Description)
			}
			fmt.Fprintln(out, "\nAlgorithms:")
			for _, a := range algos {
				note := ""
				if !a.Available {
					note = " (not available)"
				}
				fmt.Fprintf(out, "  %-24s %s%s\n    %s\n", a.Name, a.Category, note, a.Equation)
			}
			return nil
		},
	}
}

func (c *cli) layoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layout NAME",
		Short: "Show a Pacman layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.backend.GetLayout(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return printJSON(out, d)
			}
			fmt.Fprintf(out, "%s: %dx%d, %d ghosts\n", d.Name, d.Width, d.Height, d.NumGhosts)
			return c.printer.Game(out, &experiment.GameState{
				PacmanPosition: d.PacmanStart,
				GhostPositions: d.GhostStarts,
				ScaredTimers:   make([]int, len(d.GhostStarts)),
				Food:           d.Food,
				Capsules:       d.Capsules,
				Width:          d.Width,
				Height:         d.Height,
				Walls:          d.Walls,
			})
		},
	}
}

func (c *cli) writeChart(path, subtitle string, series ...render.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}
	defer f.Close()
	return render.LearningCurve(f, render.ChartOptions{
		Title:     c.cfg.Render.ChartTitle,
		Subtitle:  subtitle,
		Window:    3,
		MaxPoints: 200,
	}, series...)
}

func printHistory(w io.Writer, history []experiment.EpisodeReport) {
	if len(history) == 0 {
		return
	}
	fmt.Fprintln(w, "\nepisode    reward   steps")
	for _, h := range history {
		fmt.Fprintf(w, "%7d %9.2f %7d\n", h.Episode, h.TotalReward, h.Steps)
	}
}

func printWeights(w io.Writer, weights map[string]float64) {
	if len(weights) == 0 {
		return
	}
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "\nWeights:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-28s %10.4f\n", name, weights[name])
	}
}

func printJSON(w io.Writer, v any) error {
	s, err := experiment.ToStruct(v)
	if err != nil {
		return err
	}
	raw, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

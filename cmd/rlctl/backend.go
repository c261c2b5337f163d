package main

import (
	"context"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experiment"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/grpc/experimentserver"
)

// backend runs experiments either in-process or on a remote rl_server.
type backend interface {
	ValueIteration(ctx context.Context, req experiment.ValueIterationRequest) (*experiment.ValueIterationResult, error)
	QLearning(ctx context.Context, req experiment.QLearningRequest) (*experiment.QLearningResult, error)
	RunPacman(ctx context.Context, req experiment.PacmanRequest) (*experiment.PacmanResult, error)
	Compare(ctx context.Context, req experiment.CompareRequest) (*experiment.CompareResult, error)
	ListEnvironments(ctx context.Context) (*experiment.EnvironmentList, error)
	ListAgents(ctx context.Context) (*experiment.AgentList, error)
	GetAlgorithms(ctx context.Context) ([]experiment.AlgorithmInfo, error)
	GetLayout(ctx context.Context, name string) (*experiment.LayoutDetails, error)
}

type local struct {
	runner *experiment.Runner
}

func (l local) ValueIteration(ctx context.Context, req experiment.ValueIterationRequest) (*experiment.ValueIterationResult, error) {
	return l.runner.ValueIteration(ctx, req)
}

func (l local) QLearning(ctx context.Context, req experiment.QLearningRequest) (*experiment.QLearningResult, error) {
	return l.runner.QLearning(ctx, req)
}

func (l local) RunPacman(ctx context.Context, req experiment.PacmanRequest) (*experiment.PacmanResult, error) {
	return l.runner.RunPacman(ctx, req)
}

func (l local) Compare(ctx context.Context, req experiment.CompareRequest) (*experiment.CompareResult, error) {
	return l.runner.Compare(ctx, req)
}

func (local) ListEnvironments(context.Context) (*experiment.EnvironmentList, error) {
	envs := experiment.ListEnvironments()
	return &envs, nil
}

func (local) ListAgents(context.Context) (*experiment.AgentList, error) {
	agents := experiment.ListAgents()
	return &agents, nil
}

func (local) GetAlgorithms(context.Context) ([]experiment.AlgorithmInfo, error) {
	return experiment.Algorithms(), nil
}

func (local) GetLayout(_ context.Context, name string) (*experiment.LayoutDetails, error) {
	return experiment.Layout(name)
}

type remote struct {
	client *experimentserver.Client
}

func (r remote) ValueIteration(ctx context.Context, req experiment.ValueIterationRequest) (*experiment.ValueIterationResult, error) {
	return r.client.ValueIteration(ctx, req)
}

func (r remote) QLearning(ctx context.Context, req experiment.QLearningRequest) (*experiment.QLearningResult, error) {
	return r.client.QLearning(ctx, req)
}

func (r remote) RunPacman(ctx context.Context, req experiment.PacmanRequest) (*experiment.PacmanResult, error) {
	return r.client.RunPacman(ctx, req)
}

func (r remote) Compare(ctx context.Context, req experiment.CompareRequest) (*experiment.CompareResult, error) {
	return r.client.Compare(ctx, req)
}

func (r remote) ListEnvironments(ctx context.Context) (*experiment.EnvironmentList, error) {
	return r.client.ListEnvironments(ctx)
}

func (r remote) ListAgents(ctx context.Context) (*experiment.AgentList, error) {
	return r.client.ListAgents(ctx)
}

func (r remote) GetAlgorithms(ctx context.Context) ([]experiment.AlgorithmInfo, error) {
	return r.client.GetAlgorithms(ctx)
}

func (r remote) GetLayout(ctx context.Context, name string) (*experiment.LayoutDetails, error) {
	return r.client.GetLayout(ctx, name)
}

// Package experimentserver exposes the experiment runner over gRPC.
package experimentserver

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experiment"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// DefaultReportLimit caps GetReports when the request sets no limit.
const DefaultReportLimit = 100

// ReportReader reads stored experiment reports back.
type ReportReader interface {
	Reports(ctx context.Context, experimentID string, limit int) ([]*structpb.Struct, error)
}

// Server implements ExperimentServiceServer on top of an experiment.Runner.
// Request fields left out by the caller take their values from the
// configuration returned by Defaults.
type Server struct {
	runner   *experiment.Runner
	defaults func() *config.Config
	reports  ReportReader
	logger   zerolog.Logger
}

// Options configures a Server.
type Options struct {
	// Defaults supplies the configuration requests are filled from. It is
	// called once per request so that reloaded configuration is picked up.
	// Nil uses config.Get.
	Defaults func() *config.Config

	// Reports serves GetReports. Nil makes GetReports fail with
	// FailedPrecondition.
	Reports ReportReader

	Logger zerolog.Logger
}

// NewServer creates a new experiment server
func NewServer(runner *experiment.Runner, opts Options) *Server {
	if opts.Defaults == nil {
		opts.Defaults = config.Get
	}
	return &Server{
		runner:   runner,
		defaults: opts.Defaults,
		reports:  opts.Reports,
		logger:   opts.Logger.With().Str("component", "experiment_server").Logger(),
	}
}

func (s *Server) ListEnvironments(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return respond(experiment.ListEnvironments(), nil)
}

func (s *Server) ListAgents(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return respond(experiment.ListAgents(), nil)
}

func (s *Server) GetAlgorithms(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return respond(struct {
		Algorithms []experiment.AlgorithmInfo `json:"algorithms"`
	}{experiment.Algorithms()}, nil)
}

func (s *Server) GetLayout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "layout name is required")
	}
	return respond(experiment.Layout(in.Name))
}

func (s *Server) ValueIteration(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := experiment.DefaultValueIterationRequest(s.defaults())
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return respond(s.runner.ValueIteration(ctx, in))
}

func (s *Server) QLearning(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := experiment.DefaultQLearningRequest(s.defaults())
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return respond(s.runner.QLearning(ctx, in))
}

func (s *Server) RunPacman(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := experiment.DefaultPacmanRequest(s.defaults())
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return respond(s.runner.RunPacman(ctx, in))
}

func (s *Server) Compare(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := experiment.DefaultCompareRequest(s.defaults())
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	return respond(s.runner.Compare(ctx, in))
}

func (s *Server) GetReports(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.reports == nil {
		return nil, status.Error(codes.FailedPrecondition, "report storage is not configured")
	}
	in := struct {
		ExperimentID string `json:"experimentId"`
		Limit        int    `json:"limit"`
	}{Limit: DefaultReportLimit}
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if in.ExperimentID == "" {
		return nil, status.Error(codes.InvalidArgument, "experimentId is required")
	}

	records, err := s.reports.Reports(ctx, in.ExperimentID, in.Limit)
	if err != nil {
		s.logger.Error().Err(err).Str("experiment_id", in.ExperimentID).Msg("Failed to read reports")
		return nil, toStatus(err)
	}
	list := make([]*structpb.Value, 0, len(records))
	for _, rec := range records {
		list = append(list, structpb.NewStructValue(rec))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"reports": structpb.NewListValue(&structpb.ListValue{Values: list}),
	}}, nil
}

func decode(req *structpb.Struct, v any) error {
	if err := experiment.FromStruct(req, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

func respond[T any](result T, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := experiment.ToStruct(result)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode result: %v", err)
	}
	return out, nil
}

// toStatus maps run errors onto gRPC status codes.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, mdp.ErrUnknownName):
		return status.Error(codes.NotFound, err.Error())
	}

	switch mdp.KindOf(err) {
	case mdp.KindConfig:
		return status.Error(codes.InvalidArgument, err.Error())
	case mdp.KindDivergence, mdp.KindDegenerate:
		return status.Error(codes.FailedPrecondition, err.Error())
	case mdp.KindEngine:
		return status.Error(codes.Aborted, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

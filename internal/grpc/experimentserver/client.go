package experimentserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experiment"
)

// Client calls the experiment service and decodes results into the
// experiment package's types.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with a raw Struct request.
func (c *Client) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func call[T any](ctx context.Context, c *Client, method string, req any, opts ...grpc.CallOption) (*T, error) {
	var in *structpb.Struct
	if req != nil {
		var err error
		if in, err = experiment.ToStruct(req); err != nil {
			return nil, err
		}
	}
	out, err := c.Call(ctx, method, in, opts...)
	if err != nil {
		return nil, err
	}
	result := new(T)
	if err := experiment.FromStruct(out, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) ListEnvironments(ctx context.Context, opts ...grpc.CallOption) (*experiment.EnvironmentList, error) {
	return call[experiment.EnvironmentList](ctx, c, MethodListEnvironments, nil, opts...)
}

func (c *Client) ListAgents(ctx context.Context, opts ...grpc.CallOption) (*experiment.AgentList, error) {
	return call[experiment.AgentList](ctx, c, MethodListAgents, nil, opts...)
}

func (c *Client) GetAlgorithms(ctx context.Context, opts ...grpc.CallOption) ([]experiment.AlgorithmInfo, error) {
	out, err := call[struct {
		Algorithms []experiment.AlgorithmInfo `json:"algorithms"`
	}](ctx, c, MethodGetAlgorithms, nil, opts...)
	if err != nil {
		return nil, err
	}
	return out.Algorithms, nil
}

func (c *Client) GetLayout(ctx context.Context, name string, opts ...grpc.CallOption) (*experiment.LayoutDetails, error) {
	return call[experiment.LayoutDetails](ctx, c, MethodGetLayout, map[string]string{"name": name}, opts...)
}

func (c *Client) ValueIteration(ctx context.Context, req experiment.ValueIterationRequest, opts ...grpc.CallOption) (*experiment.ValueIterationResult, error) {
	return call[experiment.ValueIterationResult](ctx, c, MethodValueIteration, req, opts...)
}

func (c *Client) QLearning(ctx context.Context, req experiment.QLearningRequest, opts ...grpc.CallOption) (*experiment.QLearningResult, error) {
	return call[experiment.QLearningResult](ctx, c, MethodQLearning, req, opts...)
}

func (c *Client) RunPacman(ctx context.Context, req experiment.PacmanRequest, opts ...grpc.CallOption) (*experiment.PacmanResult, error) {
	return call[experiment.PacmanResult](ctx, c, MethodRunPacman, req, opts...)
}

func (c *Client) Compare(ctx context.Context, req experiment.CompareRequest, opts ...grpc.CallOption) (*experiment.CompareResult, error) {
	return call[experiment.CompareResult](ctx, c, MethodCompare, req, opts...)
}

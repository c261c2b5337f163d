package experimentserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the experiment service.
const ServiceName = "prl.v1.ExperimentService"

// Method names, relative to ServiceName.
const (
	MethodListEnvironments = "ListEnvironments"
	MethodListAgents       = "ListAgents"
	MethodGetAlgorithms    = "GetAlgorithms"
	MethodGetLayout        = "GetLayout"
	MethodValueIteration   = "ValueIteration"
	MethodQLearning        = "QLearning"
	MethodRunPacman        = "RunPacman"
	MethodCompare          = "Compare"
	MethodGetReports       = "GetReports"
)

// ExperimentServiceServer is the server API of the experiment service. Every
// request and response is a JSON-shaped protobuf Struct whose fields match
// the JSON form of the experiment package's request and result types.
type ExperimentServiceServer interface {
	ListEnvironments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAgents(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAlgorithms(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetLayout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ValueIteration(context.Context, *structpb.Struct) (*structpb.Struct, error)
	QLearning(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RunPacman(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Compare(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetReports(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterExperimentServiceServer registers srv with s.
func RegisterExperimentServiceServer(s grpc.ServiceRegistrar, srv ExperimentServiceServer) {
	s.RegisterService(&ExperimentService_ServiceDesc, srv)
}

type unaryMethod func(srv ExperimentServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func handler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ExperimentServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ExperimentServiceServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ExperimentService_ServiceDesc describes the experiment service for
// grpc.ServiceRegistrar.
var ExperimentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExperimentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		handler(MethodListEnvironments, ExperimentServiceServer.ListEnvironments),
		handler(MethodListAgents, ExperimentServiceServer.ListAgents),
		handler(MethodGetAlgorithms, ExperimentServiceServer.GetAlgorithms),
		handler(MethodGetLayout, ExperimentServiceServer.GetLayout),
		handler(MethodValueIteration, ExperimentServiceServer.ValueIteration),
		handler(MethodQLearning, ExperimentServiceServer.QLearning),
		handler(MethodRunPacman, ExperimentServiceServer.RunPacman),
		handler(MethodCompare, ExperimentServiceServer.Compare),
		handler(MethodGetReports, ExperimentServiceServer.GetReports),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "prl/v1/experiment.proto",
}

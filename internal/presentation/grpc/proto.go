package grpc

// proto.go holds the hand-written service descriptor for
// fraudwatch.v1.ProviderService. Messages travel as JSON through the codec
// registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "fraudwatch.v1.ProviderService"

// ProviderServiceServer is the server API for ProviderService.
type ProviderServiceServer interface {
	IngestProviders(context.Context, *IngestProvidersRequest) (*IngestProvidersResponse, error)
	GetProvider(context.Context, *GetProviderRequest) (*GetProviderResponse, error)
	ListProviders(context.Context, *ListProvidersRequest) (*ListProvidersResponse, error)
	mustEmbedUnimplementedProviderServiceServer()
}

// UnimplementedProviderServiceServer provides forward-compatible default implementations.
type UnimplementedProviderServiceServer struct{}

func (UnimplementedProviderServiceServer) IngestProviders(context.Context, *IngestProvidersRequest) (*IngestProvidersResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method IngestProviders not implemented")
}
func (UnimplementedProviderServiceServer) GetProvider(context.Context, *GetProviderRequest) (*GetProviderResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetProvider not implemented")
}
func (UnimplementedProviderServiceServer) ListProviders(context.Context, *ListProvidersRequest) (*ListProvidersResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListProviders not implemented")
}
func (UnimplementedProviderServiceServer) mustEmbedUnimplementedProviderServiceServer() {}

// RegisterProviderServiceServer registers the ProviderServiceServer with the gRPC server.
func RegisterProviderServiceServer(s grpclib.ServiceRegistrar, srv ProviderServiceServer) {
	s.RegisterService(&providerServiceDesc, srv)
}

var providerServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProviderServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "IngestProviders", Handler: ingestProvidersHandler},
		{MethodName: "GetProvider", Handler: getProviderHandler},
		{MethodName: "ListProviders", Handler: listProvidersHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "fraudwatch/v1/provider.proto",
}

func ingestProvidersHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(IngestProvidersRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProviderServiceServer).IngestProviders(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/IngestProviders"}
	return interceptor(ctx, req, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ProviderServiceServer).IngestProviders(ctx, req.(*IngestProvidersRequest))
	})
}

func getProviderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetProviderRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProviderServiceServer).GetProvider(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetProvider"}
	return interceptor(ctx, req, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ProviderServiceServer).GetProvider(ctx, req.(*GetProviderRequest))
	})
}

func listProvidersHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ListProvidersRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProviderServiceServer).ListProviders(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ListProviders"}
	return interceptor(ctx, req, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ProviderServiceServer).ListProviders(ctx, req.(*ListProvidersRequest))
	})
}

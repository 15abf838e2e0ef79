package proto

import (
	"context"

	"google.golang.org/grpc"
)

// ArbServerRpcServiceServer is the server-side contract a pkg/api handler
// implements; arbiter.proto's service of the same name.
type ArbServerRpcServiceServer interface {
	RegisterNode(context.Context, *RegisterNodeRequest) (*RegisterNodeResponse, error)
	UpdateShardState(context.Context, *UpdateShardStateRequest) (*UpdateShardStateResponse, error)
	Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error)
	GracefulLeave(context.Context, *GracefulLeaveRequest) (*GracefulLeaveResponse, error)
	ListAllNodes(context.Context, *ListAllNodesRequest) (*ListAllNodesResponse, error)
	WatchTopology(*WatchTopologyRequest, ArbServerRpcService_WatchTopologyServer) error
}

// ArbServerRpcService_WatchTopologyServer is the server-side handle for
// the streaming RPC a GroupShard node opens to receive topology events.
type ArbServerRpcService_WatchTopologyServer interface {
	Send(*TopologyEvent) error
	grpc.ServerStream
}

type arbServerRpcServiceWatchTopologyServer struct {
	grpc.ServerStream
}

func (s *arbServerRpcServiceWatchTopologyServer) Send(e *TopologyEvent) error {
	return s.ServerStream.SendMsg(e)
}

func RegisterArbServerRpcServiceServer(s grpc.ServiceRegistrar, srv ArbServerRpcServiceServer) {
	s.RegisterService(&arbServerRpcServiceDesc, srv)
}

func _ArbServerRpcService_RegisterNode_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RegisterNodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArbServerRpcServiceServer).RegisterNode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/groupshard.ArbServerRpcService/RegisterNode"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ArbServerRpcServiceServer).RegisterNode(ctx, req.(*RegisterNodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ArbServerRpcService_UpdateShardState_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateShardStateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArbServerRpcServiceServer).UpdateShardState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/groupshard.ArbServerRpcService/UpdateShardState"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ArbServerRpcServiceServer).UpdateShardState(ctx, req.(*UpdateShardStateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ArbServerRpcService_Heartbeat_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(HeartbeatRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArbServerRpcServiceServer).Heartbeat(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/groupshard.ArbServerRpcService/Heartbeat"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ArbServerRpcServiceServer).Heartbeat(ctx, req.(*HeartbeatRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ArbServerRpcService_GracefulLeave_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GracefulLeaveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArbServerRpcServiceServer).GracefulLeave(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/groupshard.ArbServerRpcService/GracefulLeave"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ArbServerRpcServiceServer).GracefulLeave(ctx, req.(*GracefulLeaveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ArbServerRpcService_ListAllNodes_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListAllNodesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ArbServerRpcServiceServer).ListAllNodes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/groupshard.ArbServerRpcService/ListAllNodes"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ArbServerRpcServiceServer).ListAllNodes(ctx, req.(*ListAllNodesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ArbServerRpcService_WatchTopology_Handler(srv interface{}, stream grpc.ServerStream) error {
	in := new(WatchTopologyRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ArbServerRpcServiceServer).WatchTopology(in, &arbServerRpcServiceWatchTopologyServer{stream})
}

var arbServerRpcServiceDesc = grpc.ServiceDesc{
	ServiceName: "groupshard.ArbServerRpcService",
	HandlerType: (*ArbServerRpcServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterNode", Handler: _ArbServerRpcService_RegisterNode_Handler},
		{MethodName: "UpdateShardState", Handler: _ArbServerRpcService_UpdateShardState_Handler},
		{MethodName: "Heartbeat", Handler: _ArbServerRpcService_Heartbeat_Handler},
		{MethodName: "GracefulLeave", Handler: _ArbServerRpcService_GracefulLeave_Handler},
		{MethodName: "ListAllNodes", Handler: _ArbServerRpcService_ListAllNodes_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchTopology",
			Handler:       _ArbServerRpcService_WatchTopology_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "arbiter.proto",
}

// ArbServerRpcServiceClient is the client-side contract used by pkg/shard
// and pkg/client.
type ArbServerRpcServiceClient interface {
	RegisterNode(ctx context.Context, in *RegisterNodeRequest, opts ...grpc.CallOption) (*RegisterNodeResponse, error)
	UpdateShardState(ctx context.Context, in *UpdateShardStateRequest, opts ...grpc.CallOption) (*UpdateShardStateResponse, error)
	Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error)
	GracefulLeave(ctx context.Context, in *GracefulLeaveRequest, opts ...grpc.CallOption) (*GracefulLeaveResponse, error)
	ListAllNodes(ctx context.Context, in *ListAllNodesRequest, opts ...grpc.CallOption) (*ListAllNodesResponse, error)
	WatchTopology(ctx context.Context, in *WatchTopologyRequest, opts ...grpc.CallOption) (ArbServerRpcService_WatchTopologyClient, error)
}

type arbServerRpcServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewArbServerRpcServiceClient(cc grpc.ClientConnInterface) ArbServerRpcServiceClient {
	return &arbServerRpcServiceClient{cc}
}

func (c *arbServerRpcServiceClient) callOpts(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *arbServerRpcServiceClient) RegisterNode(ctx context.Context, in *RegisterNodeRequest, opts ...grpc.CallOption) (*RegisterNodeResponse, error) {
	out := new(RegisterNodeResponse)
	if err := c.cc.Invoke(ctx, "/groupshard.ArbServerRpcService/RegisterNode", in, out, c.callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *arbServerRpcServiceClient) UpdateShardState(ctx context.Context, in *UpdateShardStateRequest, opts ...grpc.CallOption) (*UpdateShardStateResponse, error) {
	out := new(UpdateShardStateResponse)
	if err := c.cc.Invoke(ctx, "/groupshard.ArbServerRpcService/UpdateShardState", in, out, c.callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *arbServerRpcServiceClient) Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error) {
	out := new(HeartbeatResponse)
	if err := c.cc.Invoke(ctx, "/groupshard.ArbServerRpcService/Heartbeat", in, out, c.callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *arbServerRpcServiceClient) GracefulLeave(ctx context.Context, in *GracefulLeaveRequest, opts ...grpc.CallOption) (*GracefulLeaveResponse, error) {
	out := new(GracefulLeaveResponse)
	if err := c.cc.Invoke(ctx, "/groupshard.ArbServerRpcService/GracefulLeave", in, out, c.callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *arbServerRpcServiceClient) ListAllNodes(ctx context.Context, in *ListAllNodesRequest, opts ...grpc.CallOption) (*ListAllNodesResponse, error) {
	out := new(ListAllNodesResponse)
	if err := c.cc.Invoke(ctx, "/groupshard.ArbServerRpcService/ListAllNodes", in, out, c.callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// ArbServerRpcService_WatchTopologyClient is the client-side handle for
// the topology stream.
type ArbServerRpcService_WatchTopologyClient interface {
	Recv() (*TopologyEvent, error)
	grpc.ClientStream
}

type arbServerRpcServiceWatchTopologyClient struct {
	grpc.ClientStream
}

func (x *arbServerRpcServiceWatchTopologyClient) Recv() (*TopologyEvent, error) {
	m := new(TopologyEvent)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *arbServerRpcServiceClient) WatchTopology(ctx context.Context, in *WatchTopologyRequest, opts ...grpc.CallOption) (ArbServerRpcService_WatchTopologyClient, error) {
	stream, err := c.cc.NewStream(ctx, &arbServerRpcServiceDesc.Streams[0], "/groupshard.ArbServerRpcService/WatchTopology", c.callOpts(opts)...)
	if err != nil {
		return nil, err
	}
	x := &arbServerRpcServiceWatchTopologyClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

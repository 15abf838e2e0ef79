package proto

import (
	"context"

	"google.golang.org/grpc"
)

// ShardRpcServiceServer is the per-group membership surface a GroupShard
// node serves (ArbGroupService in shard.proto), plus the peer migration
// call SyncData.
type ShardRpcServiceServer interface {
	CreateGroup(context.Context, *CreateGroupRequest) (*CreateGroupResponse, error)
	DismissGroup(context.Context, *DismissGroupRequest) (*DismissGroupResponse, error)
	AddMember(context.Context, *AddMemberRequest) (*AddMemberResponse, error)
	AddMembers(context.Context, *AddMembersRequest) (*AddMembersResponse, error)
	RemoveMember(context.Context, *RemoveMemberRequest) (*RemoveMemberResponse, error)
	GetMember(context.Context, *GetMemberRequest) (*GetMemberResponse, error)
	GetMemberPage(context.Context, *GetMemberPageRequest) (*GetMemberPageResponse, error)
	GetMemberCount(context.Context, *GetMemberCountRequest) (*GetMemberCountResponse, error)
	SetOnline(context.Context, *SetOnlineRequest) (*SetOnlineResponse, error)
	GetOnlineMember(context.Context, *GetOnlineMemberRequest) (*GetOnlineMemberResponse, error)
	GetOnlineCount(context.Context, *GetOnlineCountRequest) (*GetOnlineCountResponse, error)
	ChangeRole(context.Context, *ChangeRoleRequest) (*ChangeRoleResponse, error)
	GetAdminMember(context.Context, *GetAdminMemberRequest) (*GetAdminMemberResponse, error)
	GetUserGroups(context.Context, *GetUserGroupsRequest) (*GetUserGroupsResponse, error)
	TransferOwnership(context.Context, *TransferOwnershipRequest) (*TransferOwnershipResponse, error)
	SyncData(context.Context, *SyncDataRequest) (*SyncDataResponse, error)
}

func RegisterShardRpcServiceServer(s grpc.ServiceRegistrar, srv ShardRpcServiceServer) {
	s.RegisterService(&arbGroupServiceDesc, srv)
	s.RegisterService(&shardRpcServiceDesc, srv)
}

// unaryHandler builds a grpc.MethodDesc handler for a single-request/
// single-response RPC, given the request constructor and the call to make
// once it's decoded. Sharing this genuinely does not fit protoc-gen-go-grpc's
// flat-function-per-method style, so each method still gets its own
// generated-looking handler function below for fidelity with that shape;
// this helper only removes the repetition within each of those.
func unaryHandler(fullMethod string, newReq func() interface{}, call func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv, ctx, req)
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	_ArbGroupService_CreateGroup_Handler = unaryHandler(
		"/groupshard.ArbGroupService/CreateGroup",
		func() interface{} { return new(CreateGroupRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).CreateGroup(ctx, req.(*CreateGroupRequest))
		},
	)
	_ArbGroupService_DismissGroup_Handler = unaryHandler(
		"/groupshard.ArbGroupService/DismissGroup",
		func() interface{} { return new(DismissGroupRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).DismissGroup(ctx, req.(*DismissGroupRequest))
		},
	)
	_ArbGroupService_AddMember_Handler = unaryHandler(
		"/groupshard.ArbGroupService/AddMember",
		func() interface{} { return new(AddMemberRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).AddMember(ctx, req.(*AddMemberRequest))
		},
	)
	_ArbGroupService_AddMembers_Handler = unaryHandler(
		"/groupshard.ArbGroupService/AddMembers",
		func() interface{} { return new(AddMembersRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).AddMembers(ctx, req.(*AddMembersRequest))
		},
	)
	_ArbGroupService_RemoveMember_Handler = unaryHandler(
		"/groupshard.ArbGroupService/RemoveMember",
		func() interface{} { return new(RemoveMemberRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).RemoveMember(ctx, req.(*RemoveMemberRequest))
		},
	)
	_ArbGroupService_GetMember_Handler = unaryHandler(
		"/groupshard.ArbGroupService/GetMember",
		func() interface{} { return new(GetMemberRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).GetMember(ctx, req.(*GetMemberRequest))
		},
	)
	_ArbGroupService_GetMemberPage_Handler = unaryHandler(
		"/groupshard.ArbGroupService/GetMemberPage",
		func() interface{} { return new(GetMemberPageRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).GetMemberPage(ctx, req.(*GetMemberPageRequest))
		},
	)
	_ArbGroupService_GetMemberCount_Handler = unaryHandler(
		"/groupshard.ArbGroupService/GetMemberCount",
		func() interface{} { return new(GetMemberCountRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).GetMemberCount(ctx, req.(*GetMemberCountRequest))
		},
	)
	_ArbGroupService_SetOnline_Handler = unaryHandler(
		"/groupshard.ArbGroupService/SetOnline",
		func() interface{} { return new(SetOnlineRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).SetOnline(ctx, req.(*SetOnlineRequest))
		},
	)
	_ArbGroupService_GetOnlineMember_Handler = unaryHandler(
		"/groupshard.ArbGroupService/GetOnlineMember",
		func() interface{} { return new(GetOnlineMemberRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).GetOnlineMember(ctx, req.(*GetOnlineMemberRequest))
		},
	)
	_ArbGroupService_GetOnlineCount_Handler = unaryHandler(
		"/groupshard.ArbGroupService/GetOnlineCount",
		func() interface{} { return new(GetOnlineCountRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).GetOnlineCount(ctx, req.(*GetOnlineCountRequest))
		},
	)
	_ArbGroupService_ChangeRole_Handler = unaryHandler(
		"/groupshard.ArbGroupService/ChangeRole",
		func() interface{} { return new(ChangeRoleRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).ChangeRole(ctx, req.(*ChangeRoleRequest))
		},
	)
	_ArbGroupService_GetAdminMember_Handler = unaryHandler(
		"/groupshard.ArbGroupService/GetAdminMember",
		func() interface{} { return new(GetAdminMemberRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).GetAdminMember(ctx, req.(*GetAdminMemberRequest))
		},
	)
	_ArbGroupService_GetUserGroups_Handler = unaryHandler(
		"/groupshard.ArbGroupService/GetUserGroups",
		func() interface{} { return new(GetUserGroupsRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).GetUserGroups(ctx, req.(*GetUserGroupsRequest))
		},
	)
	_ArbGroupService_TransferOwnership_Handler = unaryHandler(
		"/groupshard.ArbGroupService/TransferOwnership",
		func() interface{} { return new(TransferOwnershipRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).TransferOwnership(ctx, req.(*TransferOwnershipRequest))
		},
	)
	_ShardRpcService_SyncData_Handler = unaryHandler(
		"/groupshard.ShardRpcService/SyncData",
		func() interface{} { return new(SyncDataRequest) },
		func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ShardRpcServiceServer).SyncData(ctx, req.(*SyncDataRequest))
		},
	)
)

var arbGroupServiceDesc = grpc.ServiceDesc{
	ServiceName: "groupshard.ArbGroupService",
	HandlerType: (*ShardRpcServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateGroup", Handler: _ArbGroupService_CreateGroup_Handler},
		{MethodName: "DismissGroup", Handler: _ArbGroupService_DismissGroup_Handler},
		{MethodName: "AddMember", Handler: _ArbGroupService_AddMember_Handler},
		{MethodName: "AddMembers", Handler: _ArbGroupService_AddMembers_Handler},
		{MethodName: "RemoveMember", Handler: _ArbGroupService_RemoveMember_Handler},
		{MethodName: "GetMember", Handler: _ArbGroupService_GetMember_Handler},
		{MethodName: "GetMemberPage", Handler: _ArbGroupService_GetMemberPage_Handler},
		{MethodName: "GetMemberCount", Handler: _ArbGroupService_GetMemberCount_Handler},
		{MethodName: "SetOnline", Handler: _ArbGroupService_SetOnline_Handler},
		{MethodName: "GetOnlineMember", Handler: _ArbGroupService_GetOnlineMember_Handler},
		{MethodName: "GetOnlineCount", Handler: _ArbGroupService_GetOnlineCount_Handler},
		{MethodName: "ChangeRole", Handler: _ArbGroupService_ChangeRole_Handler},
		{MethodName: "GetAdminMember", Handler: _ArbGroupService_GetAdminMember_Handler},
		{MethodName: "GetUserGroups", Handler: _ArbGroupService_GetUserGroups_Handler},
		{MethodName: "TransferOwnership", Handler: _ArbGroupService_TransferOwnership_Handler},
	},
	Metadata: "shard.proto",
}

var shardRpcServiceDesc = grpc.ServiceDesc{
	ServiceName: "groupshard.ShardRpcService",
	HandlerType: (*ShardRpcServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SyncData", Handler: _ShardRpcService_SyncData_Handler},
	},
	Metadata: "shard.proto",
}

// ShardRpcServiceClient is the client-side contract used by pkg/client and
// by pkg/shard's peer dialer during migration.
type ShardRpcServiceClient interface {
	CreateGroup(ctx context.Context, in *CreateGroupRequest, opts ...grpc.CallOption) (*CreateGroupResponse, error)
	DismissGroup(ctx context.Context, in *DismissGroupRequest, opts ...grpc.CallOption) (*DismissGroupResponse, error)
	AddMember(ctx context.Context, in *AddMemberRequest, opts ...grpc.CallOption) (*AddMemberResponse, error)
	AddMembers(ctx context.Context, in *AddMembersRequest, opts ...grpc.CallOption) (*AddMembersResponse, error)
	RemoveMember(ctx context.Context, in *RemoveMemberRequest, opts ...grpc.CallOption) (*RemoveMemberResponse, error)
	GetMember(ctx context.Context, in *GetMemberRequest, opts ...grpc.CallOption) (*GetMemberResponse, error)
	GetMemberPage(ctx context.Context, in *GetMemberPageRequest, opts ...grpc.CallOption) (*GetMemberPageResponse, error)
	GetMemberCount(ctx context.Context, in *GetMemberCountRequest, opts ...grpc.CallOption) (*GetMemberCountResponse, error)
	SetOnline(ctx context.Context, in *SetOnlineRequest, opts ...grpc.CallOption) (*SetOnlineResponse, error)
	GetOnlineMember(ctx context.Context, in *GetOnlineMemberRequest, opts ...grpc.CallOption) (*GetOnlineMemberResponse, error)
	GetOnlineCount(ctx context.Context, in *GetOnlineCountRequest, opts ...grpc.CallOption) (*GetOnlineCountResponse, error)
	ChangeRole(ctx context.Context, in *ChangeRoleRequest, opts ...grpc.CallOption) (*ChangeRoleResponse, error)
	GetAdminMember(ctx context.Context, in *GetAdminMemberRequest, opts ...grpc.CallOption) (*GetAdminMemberResponse, error)
	GetUserGroups(ctx context.Context, in *GetUserGroupsRequest, opts ...grpc.CallOption) (*GetUserGroupsResponse, error)
	TransferOwnership(ctx context.Context, in *TransferOwnershipRequest, opts ...grpc.CallOption) (*TransferOwnershipResponse, error)
	SyncData(ctx context.Context, in *SyncDataRequest, opts ...grpc.CallOption) (*SyncDataResponse, error)
}

type shardRpcServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewShardRpcServiceClient(cc grpc.ClientConnInterface) ShardRpcServiceClient {
	return &shardRpcServiceClient{cc}
}

func (c *shardRpcServiceClient) callOpts(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *shardRpcServiceClient) CreateGroup(ctx context.Context, in *CreateGroupRequest, opts ...grpc.CallOption) (*CreateGroupResponse, error) {
	out := new(CreateGroupResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/CreateGroup", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) DismissGroup(ctx context.Context, in *DismissGroupRequest, opts ...grpc.CallOption) (*DismissGroupResponse, error) {
	out := new(DismissGroupResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/DismissGroup", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) AddMember(ctx context.Context, in *AddMemberRequest, opts ...grpc.CallOption) (*AddMemberResponse, error) {
	out := new(AddMemberResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/AddMember", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) AddMembers(ctx context.Context, in *AddMembersRequest, opts ...grpc.CallOption) (*AddMembersResponse, error) {
	out := new(AddMembersResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/AddMembers", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) RemoveMember(ctx context.Context, in *RemoveMemberRequest, opts ...grpc.CallOption) (*RemoveMemberResponse, error) {
	out := new(RemoveMemberResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/RemoveMember", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) GetMember(ctx context.Context, in *GetMemberRequest, opts ...grpc.CallOption) (*GetMemberResponse, error) {
	out := new(GetMemberResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/GetMember", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) GetMemberPage(ctx context.Context, in *GetMemberPageRequest, opts ...grpc.CallOption) (*GetMemberPageResponse, error) {
	out := new(GetMemberPageResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/GetMemberPage", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) GetMemberCount(ctx context.Context, in *GetMemberCountRequest, opts ...grpc.CallOption) (*GetMemberCountResponse, error) {
	out := new(GetMemberCountResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/GetMemberCount", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) SetOnline(ctx context.Context, in *SetOnlineRequest, opts ...grpc.CallOption) (*SetOnlineResponse, error) {
	out := new(SetOnlineResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/SetOnline", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) GetOnlineMember(ctx context.Context, in *GetOnlineMemberRequest, opts ...grpc.CallOption) (*GetOnlineMemberResponse, error) {
	out := new(GetOnlineMemberResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/GetOnlineMember", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) GetOnlineCount(ctx context.Context, in *GetOnlineCountRequest, opts ...grpc.CallOption) (*GetOnlineCountResponse, error) {
	out := new(GetOnlineCountResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/GetOnlineCount", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) ChangeRole(ctx context.Context, in *ChangeRoleRequest, opts ...grpc.CallOption) (*ChangeRoleResponse, error) {
	out := new(ChangeRoleResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/ChangeRole", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) GetAdminMember(ctx context.Context, in *GetAdminMemberRequest, opts ...grpc.CallOption) (*GetAdminMemberResponse, error) {
	out := new(GetAdminMemberResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/GetAdminMember", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) GetUserGroups(ctx context.Context, in *GetUserGroupsRequest, opts ...grpc.CallOption) (*GetUserGroupsResponse, error) {
	out := new(GetUserGroupsResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/GetUserGroups", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) TransferOwnership(ctx context.Context, in *TransferOwnershipRequest, opts ...grpc.CallOption) (*TransferOwnershipResponse, error) {
	out := new(TransferOwnershipResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ArbGroupService/TransferOwnership", in, out, c.callOpts(opts)...)
	return out, err
}

func (c *shardRpcServiceClient) SyncData(ctx context.Context, in *SyncDataRequest, opts ...grpc.CallOption) (*SyncDataResponse, error) {
	out := new(SyncDataResponse)
	err := c.cc.Invoke(ctx, "/groupshard.ShardRpcService/SyncData", in, out, c.callOpts(opts)...)
	return out, err
}

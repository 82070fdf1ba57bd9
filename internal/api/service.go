package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "commoni.v1.Monitoring"

const (
	LoginFullMethod         = "/" + ServiceName + "/Login"
	RefreshTokenFullMethod  = "/" + ServiceName + "/RefreshToken"
	LogoutFullMethod        = "/" + ServiceName + "/Logout"
	RegisterHostFullMethod  = "/" + ServiceName + "/RegisterHost"
	ListHostsFullMethod     = "/" + ServiceName + "/ListHosts"
	GetHostFullMethod       = "/" + ServiceName + "/GetHost"
	UpdateHostFullMethod    = "/" + ServiceName + "/UpdateHost"
	DeleteHostFullMethod    = "/" + ServiceName + "/DeleteHost"
	PushReadingFullMethod   = "/" + ServiceName + "/PushReading"
	ListReadingsFullMethod  = "/" + ServiceName + "/ListReadings"
	LatestReadingFullMethod = "/" + ServiceName + "/LatestReading"
	GetUserFullMethod       = "/" + ServiceName + "/GetUser"
	UpdateUserFullMethod    = "/" + ServiceName + "/UpdateUser"
	PingFullMethod          = "/" + ServiceName + "/Ping"
)

// MonitoringServer is implemented by the server side of the service.
type MonitoringServer interface {
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	RegisterHost(context.Context, *RegisterHostRequest) (*RegisterHostResponse, error)
	ListHosts(context.Context, *ListHostsRequest) (*ListHostsResponse, error)
	GetHost(context.Context, *GetHostRequest) (*GetHostResponse, error)
	UpdateHost(context.Context, *UpdateHostRequest) (*UpdateHostResponse, error)
	DeleteHost(context.Context, *DeleteHostRequest) (*DeleteHostResponse, error)
	PushReading(context.Context, *PushReadingRequest) (*PushReadingResponse, error)
	ListReadings(context.Context, *ListReadingsRequest) (*ListReadingsResponse, error)
	LatestReading(context.Context, *LatestReadingRequest) (*LatestReadingResponse, error)
	GetUser(context.Context, *GetUserRequest) (*GetUserResponse, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*UpdateUserResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// UnimplementedMonitoringServer answers every method with Unimplemented.
// Embed it to stay forward compatible.
type UnimplementedMonitoringServer struct{}

func (UnimplementedMonitoringServer) Login(context.Context, *LoginRequest) (*TokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedMonitoringServer) RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedMonitoringServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedMonitoringServer) RegisterHost(context.Context, *RegisterHostRequest) (*RegisterHostResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterHost not implemented")
}
func (UnimplementedMonitoringServer) ListHosts(context.Context, *ListHostsRequest) (*ListHostsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListHosts not implemented")
}
func (UnimplementedMonitoringServer) GetHost(context.Context, *GetHostRequest) (*GetHostResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetHost not implemented")
}
func (UnimplementedMonitoringServer) UpdateHost(context.Context, *UpdateHostRequest) (*UpdateHostResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateHost not implemented")
}
func (UnimplementedMonitoringServer) DeleteHost(context.Context, *DeleteHostRequest) (*DeleteHostResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteHost not implemented")
}
func (UnimplementedMonitoringServer) PushReading(context.Context, *PushReadingRequest) (*PushReadingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PushReading not implemented")
}
func (UnimplementedMonitoringServer) ListReadings(context.Context, *ListReadingsRequest) (*ListReadingsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListReadings not implemented")
}
func (UnimplementedMonitoringServer) LatestReading(context.Context, *LatestReadingRequest) (*LatestReadingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method LatestReading not implemented")
}
func (UnimplementedMonitoringServer) GetUser(context.Context, *GetUserRequest) (*GetUserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUser not implemented")
}
func (UnimplementedMonitoringServer) UpdateUser(context.Context, *UpdateUserRequest) (*UpdateUserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateUser not implemented")
}
func (UnimplementedMonitoringServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func RegisterMonitoringServer(s grpc.ServiceRegistrar, srv MonitoringServer) {
	s.RegisterService(&MonitoringServiceDesc, srv)
}

func unaryHandler[Req, Resp any](fullMethod string, call func(MonitoringServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MonitoringServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MonitoringServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var MonitoringServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MonitoringServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unaryHandler(LoginFullMethod, MonitoringServer.Login)},
		{MethodName: "RefreshToken", Handler: unaryHandler(RefreshTokenFullMethod, MonitoringServer.RefreshToken)},
		{MethodName: "Logout", Handler: unaryHandler(LogoutFullMethod, MonitoringServer.Logout)},
		{MethodName: "RegisterHost", Handler: unaryHandler(RegisterHostFullMethod, MonitoringServer.RegisterHost)},
		{MethodName: "ListHosts", Handler: unaryHandler(ListHostsFullMethod, MonitoringServer.ListHosts)},
		{MethodName: "GetHost", Handler: unaryHandler(GetHostFullMethod, MonitoringServer.GetHost)},
		{MethodName: "UpdateHost", Handler: unaryHandler(UpdateHostFullMethod, MonitoringServer.UpdateHost)},
		{MethodName: "DeleteHost", Handler: unaryHandler(DeleteHostFullMethod, MonitoringServer.DeleteHost)},
		{MethodName: "PushReading", Handler: unaryHandler(PushReadingFullMethod, MonitoringServer.PushReading)},
		{MethodName: "ListReadings", Handler: unaryHandler(ListReadingsFullMethod, MonitoringServer.ListReadings)},
		{MethodName: "LatestReading", Handler: unaryHandler(LatestReadingFullMethod, MonitoringServer.LatestReading)},
		{MethodName: "GetUser", Handler: unaryHandler(GetUserFullMethod, MonitoringServer.GetUser)},
		{MethodName: "UpdateUser", Handler: unaryHandler(UpdateUserFullMethod, MonitoringServer.UpdateUser)},
		{MethodName: "Ping", Handler: unaryHandler(PingFullMethod, MonitoringServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "commoni/v1/monitoring",
}

// MonitoringClient is the client side of the service. Every call uses the
// JSON codec.
type MonitoringClient interface {
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error)
	RegisterHost(ctx context.Context, in *RegisterHostRequest, opts ...grpc.CallOption) (*RegisterHostResponse, error)
	ListHosts(ctx context.Context, in *ListHostsRequest, opts ...grpc.CallOption) (*ListHostsResponse, error)
	GetHost(ctx context.Context, in *GetHostRequest, opts ...grpc.CallOption) (*GetHostResponse, error)
	UpdateHost(ctx context.Context, in *UpdateHostRequest, opts ...grpc.CallOption) (*UpdateHostResponse, error)
	DeleteHost(ctx context.Context, in *DeleteHostRequest, opts ...grpc.CallOption) (*DeleteHostResponse, error)
	PushReading(ctx context.Context, in *PushReadingRequest, opts ...grpc.CallOption) (*PushReadingResponse, error)
	ListReadings(ctx context.Context, in *ListReadingsRequest, opts ...grpc.CallOption) (*ListReadingsResponse, error)
	LatestReading(ctx context.Context, in *LatestReadingRequest, opts ...grpc.CallOption) (*LatestReadingResponse, error)
	GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*GetUserResponse, error)
	UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*UpdateUserResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type monitoringClient struct {
	cc grpc.ClientConnInterface
}

func NewMonitoringClient(cc grpc.ClientConnInterface) MonitoringClient {
	return &monitoringClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *monitoringClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, LoginFullMethod, in, opts)
}

func (c *monitoringClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, RefreshTokenFullMethod, in, opts)
}

func (c *monitoringClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, LogoutFullMethod, in, opts)
}

func (c *monitoringClient) RegisterHost(ctx context.Context, in *RegisterHostRequest, opts ...grpc.CallOption) (*RegisterHostResponse, error) {
	return invoke[RegisterHostResponse](ctx, c.cc, RegisterHostFullMethod, in, opts)
}

func (c *monitoringClient) ListHosts(ctx context.Context, in *ListHostsRequest, opts ...grpc.CallOption) (*ListHostsResponse, error) {
	return invoke[ListHostsResponse](ctx, c.cc, ListHostsFullMethod, in, opts)
}

func (c *monitoringClient) GetHost(ctx context.Context, in *GetHostRequest, opts ...grpc.CallOption) (*GetHostResponse, error) {
	return invoke[GetHostResponse](ctx, c.cc, GetHostFullMethod, in, opts)
}

func (c *monitoringClient) UpdateHost(ctx context.Context, in *UpdateHostRequest, opts ...grpc.CallOption) (*UpdateHostResponse, error) {
	return invoke[UpdateHostResponse](ctx, c.cc, UpdateHostFullMethod, in, opts)
}

func (c *monitoringClient) DeleteHost(ctx context.Context, in *DeleteHostRequest, opts ...grpc.CallOption) (*DeleteHostResponse, error) {
	return invoke[DeleteHostResponse](ctx, c.cc, DeleteHostFullMethod, in, opts)
}

func (c *monitoringClient) PushReading(ctx context.Context, in *PushReadingRequest, opts ...grpc.CallOption) (*PushReadingResponse, error) {
	return invoke[PushReadingResponse](ctx, c.cc, PushReadingFullMethod, in, opts)
}

func (c *monitoringClient) ListReadings(ctx context.Context, in *ListReadingsRequest, opts ...grpc.CallOption) (*ListReadingsResponse, error) {
	return invoke[ListReadingsResponse](ctx, c.cc, ListReadingsFullMethod, in, opts)
}

func (c *monitoringClient) LatestReading(ctx context.Context, in *LatestReadingRequest, opts ...grpc.CallOption) (*LatestReadingResponse, error) {
	return invoke[LatestReadingResponse](ctx, c.cc, LatestReadingFullMethod, in, opts)
}

func (c *monitoringClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*GetUserResponse, error) {
	return invoke[GetUserResponse](ctx, c.cc, GetUserFullMethod, in, opts)
}

func (c *monitoringClient) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*UpdateUserResponse, error) {
	return invoke[UpdateUserResponse](ctx, c.cc, UpdateUserFullMethod, in, opts)
}

func (c *monitoringClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, PingFullMethod, in, opts)
}

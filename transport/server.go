package transport

import (
	"context"
	"errors"
	"net"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	gogotypes "github.com/cosmos/gogoproto/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"github.com/hyperledger-labs/aero-relay/log"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"
)

const (
	serviceName   = "aerorelay.transport.v1.Relay"
	deliverMethod = "/" + serviceName + "/Deliver"
)

// Handler consumes the messages received by a Server.
type Handler func(ctx context.Context, msg *chantypes.MsgRecvPacket) error

type relayServer interface {
	Deliver(ctx context.Context, in *codectypes.Any) (*gogotypes.Empty, error)
}

var relayServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*relayServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Deliver",
			Handler:    deliverHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "aerorelay/transport/v1/relay.proto",
}

func deliverHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(codectypes.Any)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(relayServer).Deliver(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: deliverMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(relayServer).Deliver(ctx, req.(*codectypes.Any))
	}
	return interceptor(ctx, in, info, handler)
}

// Server receives MsgRecvPacket frames from relay clients over gRPC.
type Server struct {
	handler Handler
	server  *grpc.Server
	logger  *log.RelayLogger
}

var _ relayServer = (*Server)(nil)

func NewServer(cfg CryptoConfig, handler Handler) (*Server, error) {
	tlsCfg, err := cfg.ServerTLS()
	if err != nil {
		return nil, err
	}
	srv := &Server{
		handler: handler,
		logger:  log.GetLogger().WithModule("transport.server"),
	}
	srv.server = grpc.NewServer(
		grpc.Creds(credentials.NewTLS(tlsCfg)),
		grpc.ForceServerCodec(gogoCodec{}),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	srv.server.RegisterService(&relayServiceDesc, srv)
	return srv, nil
}

// Serve accepts connections on lis until ctx is done.
func (srv *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv.logger.Info("transport server started", "addr", lis.Addr().String())
	go func() {
		<-ctx.Done()
		srv.server.GracefulStop()
	}()
	if err := srv.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return ctx.Err()
}

func (srv *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return srv.Serve(ctx, lis)
}

func (srv *Server) Deliver(ctx context.Context, in *codectypes.Any) (*gogotypes.Empty, error) {
	if want := sdk.MsgTypeURL(&chantypes.MsgRecvPacket{}); in.TypeUrl != want {
		return nil, status.Errorf(codes.InvalidArgument, "unexpected type url %q, want %q", in.TypeUrl, want)
	}
	var msg chantypes.MsgRecvPacket
	if err := msg.Unmarshal(in.Value); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "failed to unmarshal message: %v", err)
	}
	if err := msg.Packet.ValidateBasic(); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid packet: %v", err)
	}
	if err := srv.handler(ctx, &msg); err != nil {
		srv.logger.ErrorContext(ctx, "failed to handle message", err, "sequence", msg.Packet.Sequence)
		return nil, status.Errorf(codes.Internal, "failed to handle message: %v", err)
	}
	return &gogotypes.Empty{}, nil
}

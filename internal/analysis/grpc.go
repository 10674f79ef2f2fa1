package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// The analyzer service speaks google.protobuf.Struct in both directions so
// that no generated stubs are needed:
//
//	request:  {"text": "..."}
//	response: {"channels": {"joy": 0.8, ...}}
const (
	serviceName   = "affectfield.Analyzer"
	analyzeMethod = "/" + serviceName + "/Analyze"
)

// #region client

// GRPCAnalyzer forwards text to a remote analyzer service.
type GRPCAnalyzer struct {
	conn  *grpc.ClientConn
	owned bool
}

// NewGRPCAnalyzer dials target with plaintext credentials and client-side
// tracing.
func NewGRPCAnalyzer(target string) (*GRPCAnalyzer, error) {
	if strings.TrimSpace(target) == "" {
		return nil, errors.New("grpc analyzer: target is empty")
	}
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCAnalyzer{conn: conn, owned: true}, nil
}

// NewGRPCAnalyzerWithConn wraps an existing connection; Close leaves it open.
func NewGRPCAnalyzerWithConn(conn *grpc.ClientConn) *GRPCAnalyzer {
	return &GRPCAnalyzer{conn: conn}
}

// Analyze sends text and converts the reply. A reply naming an unknown
// channel is rejected whole.
func (a *GRPCAnalyzer) Analyze(ctx context.Context, text string) (affect.Partial, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	ctx, span := startSpan(ctx, "analysis.grpc", attribute.Int("analysis.text_len", len(text)))

	req, err := structpb.NewStruct(map[string]any{"text": text})
	if err != nil {
		err = fmt.Errorf("grpc request: %w", err)
		endSpan(span, nil, err)
		return nil, err
	}
	resp := &structpb.Struct{}
	if err := a.conn.Invoke(ctx, analyzeMethod, req, resp); err != nil {
		err = fmt.Errorf("grpc analyze: %w", err)
		endSpan(span, nil, err)
		return nil, err
	}
	p, err := partialFromStruct(resp)
	endSpan(span, p, err)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Close releases the connection if this analyzer dialed it.
func (a *GRPCAnalyzer) Close() error {
	if a.conn == nil || !a.owned {
		return nil
	}
	return a.conn.Close()
}

func partialFromStruct(s *structpb.Struct) (affect.Partial, error) {
	field, ok := s.GetFields()["channels"]
	if !ok {
		return nil, errors.New("grpc response: missing channels")
	}
	channels := field.GetStructValue()
	if channels == nil {
		return nil, errors.New("grpc response: channels is not an object")
	}
	values := make(map[string]float64, len(channels.GetFields()))
	for name, v := range channels.GetFields() {
		if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
			return nil, fmt.Errorf("grpc response: channel %q is not a number", name)
		}
		values[name] = v.GetNumberValue()
	}
	p, unknown := affect.PartialFromNames(values)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("grpc response: unknown channels %v", unknown)
	}
	return p, nil
}

// #endregion client

// #region server

// RegisterServer exposes analyzer as the Analyze RPC on s.
func RegisterServer(s grpc.ServiceRegistrar, analyzer Analyzer) {
	s.RegisterService(&analyzerServiceDesc, analyzer)
}

var analyzerServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Analyzer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: analyzeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "affectfield/analyzer",
}

func analyzeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := &structpb.Struct{}
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return serveAnalyze(ctx, srv.(Analyzer), in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: analyzeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return serveAnalyze(ctx, srv.(Analyzer), req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func serveAnalyze(ctx context.Context, analyzer Analyzer, in *structpb.Struct) (*structpb.Struct, error) {
	text := in.GetFields()["text"].GetStringValue()
	if strings.TrimSpace(text) == "" {
		return nil, status.Error(codes.InvalidArgument, "text is required")
	}
	p, err := analyzer.Analyze(ctx, text)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, status.FromContextError(err).Err()
		}
		return nil, status.Errorf(codes.Internal, "analyze: %v", err)
	}
	channels := make(map[string]any, len(p))
	for name, v := range p.Names() {
		channels[name] = v
	}
	out, err := structpb.NewStruct(map[string]any{"channels": channels})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	return out, nil
}

// #endregion server

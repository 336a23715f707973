package grpc

import (
	"context"
	"errors"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/weiawesome/wes-idgen/internal/service"
	"github.com/weiawesome/wes-idgen/pkg/idgen"
	pkglog "github.com/weiawesome/wes-idgen/pkg/log"
)

// IDServiceName is the fully qualified gRPC service name.
//
// Messages are google.protobuf.Struct values with these fields:
//
//	GenerateID        {type}          -> {type, id}
//	GenerateBatchIDs  {type, count}   -> {type, ids}
//	ValidateID        {type, id}      -> {valid, reason}
//	ParseID           {type, id}      -> {valid, error_message, timestamp_ms, instance, ...}
//
// An empty or missing type selects the default kind.
const IDServiceName = "idgen.v1.IDService"

const (
	methodGenerateID       = "GenerateID"
	methodGenerateBatchIDs = "GenerateBatchIDs"
	methodValidateID       = "ValidateID"
	methodParseID          = "ParseID"
)

type idServiceServer interface {
	GenerateID(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateBatchIDs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ValidateID(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ParseID(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type idServer struct {
	svc service.IDService
}

func (s *idServer) GenerateID(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.svc.Generate(ctx, stringField(req, "type"), 1)
	if err != nil {
		return nil, toStatus(ctx, err, "failed to generate ID")
	}
	return structpb.NewStruct(map[string]any{
		"type": res.Kind.String(),
		"id":   res.IDs[0],
	})
}

func (s *idServer) GenerateBatchIDs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	count, ok := intField(req, "count")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "count must be an integer")
	}

	res, err := s.svc.Generate(ctx, stringField(req, "type"), count)
	if err != nil {
		return nil, toStatus(ctx, err, "failed to generate batch IDs")
	}

	ids := make([]any, len(res.IDs))
	for i, id := range res.IDs {
		ids[i] = id
	}
	return structpb.NewStruct(map[string]any{
		"type": res.Kind.String(),
		"ids":  ids,
	})
}

func (s *idServer) ValidateID(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.svc.Validate(ctx, stringField(req, "type"), stringField(req, "id"))
	if err != nil {
		return nil, toStatus(ctx, err, "failed to validate ID")
	}
	return structpb.NewStruct(map[string]any{
		"valid":  res.Valid,
		"reason": res.Reason,
	})
}

// ParseID reports malformed IDs in the response body; only an unknown
// kind fails the call.
func (s *idServer) ParseID(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.svc.Parse(ctx, stringField(req, "type"), stringField(req, "id"))
	if errors.Is(err, idgen.ErrUnregisteredKind) {
		return nil, toStatus(ctx, err, "failed to parse ID")
	}
	if err != nil {
		return structpb.NewStruct(map[string]any{
			"valid":         false,
			"error_message": err.Error(),
		})
	}

	return structpb.NewStruct(map[string]any{
		"valid":          true,
		"timestamp_ms":   res.TimestampMs,
		"instance":       res.Instance,
		"sequence":       res.Sequence,
		"uuid_version":   res.UUIDVersion,
		"uuid_variant":   res.UUIDVariant,
		"random_payload": res.RandomPayload,
		"id_length":      res.IDLength,
		"alphabet":       res.Alphabet,
	})
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// intField reads a whole number. A missing field reads as zero.
func intField(req *structpb.Struct, key string) (int, bool) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, true
	}
	n, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum || n.NumberValue != math.Trunc(n.NumberValue) ||
		math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, false
	}
	return int(n.NumberValue), true
}

func toStatus(ctx context.Context, err error, msg string) error {
	switch {
	case errors.Is(err, service.ErrInvalidCount),
		errors.Is(err, idgen.ErrUnregisteredKind),
		errors.Is(err, idgen.ErrLibraryUsage):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, idgen.ErrClockMovedBackwards):
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Msg(msg)
		return status.Error(codes.Unavailable, "clock moved backwards, retry later")
	default:
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Msg(msg)
		return status.Error(codes.Internal, msg)
	}
}

type idHandler func(*idServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call idHandler) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*idServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + IDServiceName + "/" + method,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var idServiceDesc = grpc.ServiceDesc{
	ServiceName: IDServiceName,
	HandlerType: (*idServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(methodGenerateID, (*idServer).GenerateID),
		unaryHandler(methodGenerateBatchIDs, (*idServer).GenerateBatchIDs),
		unaryHandler(methodValidateID, (*idServer).ValidateID),
		unaryHandler(methodParseID, (*idServer).ParseID),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterIDService exposes svc on s under IDServiceName.
func RegisterIDService(s grpc.ServiceRegistrar, svc service.IDService) {
	s.RegisterService(&idServiceDesc, &idServer{svc: svc})
}

// IDClient calls IDServiceName over an existing connection.
type IDClient struct {
	cc grpc.ClientConnInterface
}

// NewIDClient wraps cc.
func NewIDClient(cc grpc.ClientConnInterface) *IDClient {
	return &IDClient{cc: cc}
}

func (c *IDClient) invoke(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+IDServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateID returns one ID of kind ("" for the default kind).
func (c *IDClient) GenerateID(ctx context.Context, kind string, opts ...grpc.CallOption) (string, error) {
	out, err := c.invoke(ctx, methodGenerateID, map[string]any{"type": kind}, opts...)
	if err != nil {
		return "", err
	}
	return stringField(out, "id"), nil
}

// GenerateBatchIDs returns count IDs of kind in issue order.
func (c *IDClient) GenerateBatchIDs(ctx context.Context, kind string, count int, opts ...grpc.CallOption) ([]string, error) {
	out, err := c.invoke(ctx, methodGenerateBatchIDs, map[string]any{"type": kind, "count": float64(count)}, opts...)
	if err != nil {
		return nil, err
	}
	values := out.GetFields()["ids"].GetListValue().GetValues()
	ids := make([]string, len(values))
	for i, v := range values {
		ids[i] = v.GetStringValue()
	}
	return ids, nil
}

// ValidateID reports whether id is well formed for kind.
func (c *IDClient) ValidateID(ctx context.Context, kind, id string, opts ...grpc.CallOption) (*service.ValidateResult, error) {
	out, err := c.invoke(ctx, methodValidateID, map[string]any{"type": kind, "id": id}, opts...)
	if err != nil {
		return nil, err
	}
	return &service.ValidateResult{
		Valid:  out.GetFields()["valid"].GetBoolValue(),
		Reason: stringField(out, "reason"),
	}, nil
}

// ParseID returns the raw ParseID response.
func (c *IDClient) ParseID(ctx context.Context, kind, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodParseID, map[string]any{"type": kind, "id": id}, opts...)
}

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/attendance"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/llm"
	"github.com/joseph-ayodele/attendance-tracker/internal/normalize"
)

const AttendanceServiceName = "attendance.v1.AttendanceService"

// AttendanceServer is the gRPC surface. Messages are google.protobuf.Struct
// carrying the same field names as the HTTP API.
type AttendanceServer interface {
	Calculate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CalculateCombined(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Analyze(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// TextAnalyzer normalizes already extracted text.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string, mode llm.Mode) (normalize.Result, error)
}

// AttendanceService implements AttendanceServer.
type AttendanceService struct {
	analyzer TextAnalyzer
	logger   *slog.Logger
}

func NewAttendanceService(analyzer TextAnalyzer, logger *slog.Logger) *AttendanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceService{analyzer: analyzer, logger: logger}
}

func (s *AttendanceService) Calculate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	total, err := intField(in, "total_classes", true)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	attended, err := intField(in, "attended_classes", true)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	target, err := targetField(in)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	stats, err := attendance.Compute(total, attended, target)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	return toStruct(stats)
}

func (s *AttendanceService) CalculateCombined(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	days, err := intField(in, "total_working_days", true)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	perDay, err := intField(in, "classes_per_working_day", true)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	attended, err := intField(in, "attended_classes", true)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	target, err := targetField(in)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	stats, err := attendance.ComputeFromSchedule(days, perDay, attended, target)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	return toStruct(stats)
}

// Analyze normalizes {"mode": "calendar"|"timetable", "text": "..."}.
func (s *AttendanceService) Analyze(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.analyzer == nil {
		return nil, common.InternalError("analysis is not configured")
	}
	text := in.GetFields()["text"].GetStringValue()
	if text == "" {
		return nil, common.InvalidArgumentError("text is required")
	}
	mode := llm.Mode(in.GetFields()["mode"].GetStringValue())
	res, err := s.analyzer.Analyze(ctx, text, mode)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	return toStruct(res)
}

// intField reads a whole, non-fractional number from in.
func intField(in *structpb.Struct, key string, required bool) (int, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		if required {
			return 0, common.InvalidInputf("%s is required", key)
		}
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, common.InvalidInputf("%s must be a number", key)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, common.InvalidInputf("%s must be an integer", key)
	}
	return int(n.NumberValue), nil
}

func targetField(in *structpb.Struct) (float64, error) {
	v, ok := in.GetFields()["target_percentage"]
	if !ok {
		return constants.DefaultTargetPercentage, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, common.InvalidInput("target_percentage must be a number")
	}
	return n.NumberValue, nil
}

// toStruct round-trips v through its JSON form so the Struct carries the
// same keys as the HTTP responses.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalError(err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, common.InternalError(err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalError(err.Error())
	}
	return out, nil
}

func unaryHandler(method string, call func(AttendanceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	fullMethod := "/" + AttendanceServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AttendanceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AttendanceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var attendanceServiceDesc = grpc.ServiceDesc{
	ServiceName: AttendanceServiceName,
	HandlerType: (*AttendanceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Calculate", AttendanceServer.Calculate),
		unaryHandler("CalculateCombined", AttendanceServer.CalculateCombined),
		unaryHandler("Analyze", AttendanceServer.Analyze),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "attendance/v1/attendance.proto",
}

// RegisterAttendanceServer attaches srv to a gRPC registrar.
func RegisterAttendanceServer(r grpc.ServiceRegistrar, srv AttendanceServer) {
	r.RegisterService(&attendanceServiceDesc, srv)
}

// NewGRPCServer builds a server with the attendance service, health and
// reflection registered. metrics may be nil.
func NewGRPCServer(svc AttendanceServer, metrics *Metrics, logger *slog.Logger) *grpc.Server {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogging(metrics, logger)))
	RegisterAttendanceServer(gs, svc)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(AttendanceServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(gs)
	return gs
}

func unaryLogging(metrics *Metrics, logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		if metrics != nil {
			metrics.grpcRequests.WithLabelValues(info.FullMethod, code.String()).Inc()
		}
		attrs := []any{"method", info.FullMethod, "code", code.String(), "dur_ms", time.Since(start).Milliseconds()}
		if err != nil {
			logger.Warn("grpc.request", append(attrs, "err", err)...)
		} else {
			logger.Info("grpc.request", attrs...)
		}
		return resp, err
	}
}

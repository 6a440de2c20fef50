package server

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/attendance-tracker/internal/llm"
	"github.com/joseph-ayodele/attendance-tracker/internal/normalize"
)

func dialBufnet(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := NewGRPCServer(NewAttendanceService(normalize.New(llm.None(), nil), nil), NewMetrics(), nil)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, method string, in map[string]any) (*structpb.Struct, error) {
	t.Helper()
	req, err := structpb.NewStruct(in)
	require.NoError(t, err)
	out := new(structpb.Struct)
	err = conn.Invoke(context.Background(), "/"+AttendanceServiceName+"/"+method, req, out)
	return out, err
}

func TestGRPC_Calculate(t *testing.T) {
	conn := dialBufnet(t)

	out, err := invoke(t, conn, "Calculate", map[string]any{"total_classes": 100, "attended_classes": 60})
	require.NoError(t, err)
	f := out.GetFields()
	assert.Equal(t, 60.0, f["attendance_percentage"].GetNumberValue())
	assert.Equal(t, 15.0, f["classes_to_attend_for_target"].GetNumberValue())
	assert.Equal(t, 75.0, f["target_percentage"].GetNumberValue())
}

func TestGRPC_CalculateErrors(t *testing.T) {
	conn := dialBufnet(t)

	_, err := invoke(t, conn, "Calculate", map[string]any{"attended_classes": 1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = invoke(t, conn, "Calculate", map[string]any{"total_classes": 2.5, "attended_classes": 1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = invoke(t, conn, "CalculateCombined", map[string]any{
		"total_working_days": 0, "classes_per_working_day": 2, "attended_classes": 0,
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "No classes found in the data", status.Convert(err).Message())
}

func TestGRPC_CalculateCombined(t *testing.T) {
	conn := dialBufnet(t)

	out, err := invoke(t, conn, "CalculateCombined", map[string]any{
		"total_working_days": 72, "classes_per_working_day": 2, "attended_classes": 144, "target_percentage": 90,
	})
	require.NoError(t, err)
	assert.Equal(t, 144.0, out.GetFields()["total_classes"].GetNumberValue())
	assert.Equal(t, 100.0, out.GetFields()["attendance_percentage"].GetNumberValue())
	assert.Equal(t, 0.0, out.GetFields()["classes_to_attend_for_target"].GetNumberValue())
}

func TestGRPC_Analyze(t *testing.T) {
	conn := dialBufnet(t)

	out, err := invoke(t, conn, "Analyze", map[string]any{"mode": "timetable", "text": timetableText})
	require.NoError(t, err)
	tt := out.GetFields()["timetable"].GetStructValue()
	require.NotNil(t, tt)
	assert.Len(t, tt.GetFields()["timetable_events"].GetListValue().GetValues(), 4)

	_, err = invoke(t, conn, "Analyze", map[string]any{"mode": "poem", "text": "x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = invoke(t, conn, "Analyze", map[string]any{"mode": "calendar"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPC_Health(t *testing.T) {
	conn := dialBufnet(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: AttendanceServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

package grpcweb

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"clinic-scheduler/internal/rpc"
)

// fakeServer answers the few methods the tests call. The embedded interface
// is nil, so any other method panics.
type fakeServer struct {
	rpc.ClinicServer
	md        metadata.MD
	healthErr error
}

func (f *fakeServer) Health(ctx context.Context, _ *rpc.Empty) (*rpc.HealthResponse, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &rpc.HealthResponse{Status: "ok"}, nil
}

func (f *fakeServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	f.md, _ = metadata.FromIncomingContext(ctx)
	if req.Password != "right" {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	return &rpc.LoginResponse{Token: "tok", Role: req.Role, ID: "p1"}, nil
}

func (f *fakeServer) BookAppointment(ctx context.Context, req *rpc.BookAppointmentRequest) (*rpc.AppointmentResponse, error) {
	f.md, _ = metadata.FromIncomingContext(ctx)
	st, err := status.New(codes.AlreadyExists, "slot unavailable").
		WithDetails(&errdetails.ErrorInfo{Reason: "CONFLICT", Domain: "clinic-scheduler"})
	if err != nil {
		return nil, err
	}
	return nil, st.Err()
}

func setup(t *testing.T) (*fakeServer, *echo.Echo) {
	t.Helper()
	fake := &fakeServer{}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ForceServerCodec(rpc.Codec{}))
	rpc.RegisterClinicServer(srv, fake)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return fake, New(conn, nil, zerolog.Nop()).Echo()
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func post(method, contentType string, body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/"+rpc.ServiceName+"/"+method, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, contentType)
	return req
}

// frames splits a grpc-web response body into (flag, payload) pairs.
func frames(t *testing.T, body []byte) [][2][]byte {
	t.Helper()
	var out [][2][]byte
	for len(body) > 0 {
		require.GreaterOrEqual(t, len(body), 5)
		n := binary.BigEndian.Uint32(body[1:5])
		out = append(out, [2][]byte{{body[0]}, body[5 : 5+n]})
		body = body[5+n:]
	}
	return out
}

func TestJSONForward(t *testing.T) {
	fake, e := setup(t)

	req := post(rpc.MethodLogin, echo.MIMEApplicationJSON, []byte(`{"role":"patient","identifier":"jane@mail.test","password":"right"}`))
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	rec := do(e, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out rpc.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "tok", out.Token)
	assert.Equal(t, "patient", out.Role)

	assert.Equal(t, []string{"Bearer abc"}, fake.md.Get("authorization"))
	assert.NotEmpty(t, fake.md.Get("x-request-id"))
	assert.NotEmpty(t, fake.md.Get("x-forwarded-for"))
	assert.Equal(t, fake.md.Get("x-request-id")[0], rec.Header().Get(echo.HeaderXRequestID))
}

func TestForwardedClientIgnoresSpoofedHeaders(t *testing.T) {
	fake, e := setup(t)

	for _, spoof := range []string{"1.1.1.1", "2.2.2.2, 198.51.100.4"} {
		req := post(rpc.MethodLogin, echo.MIMEApplicationJSON, []byte(`{"role":"patient","identifier":"jane@mail.test","password":"right"}`))
		req.RemoteAddr = "203.0.113.9:1234"
		req.Header.Set(echo.HeaderXForwardedFor, spoof)
		req.Header.Set(echo.HeaderXRealIP, "9.9.9.9")
		rec := do(e, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"203.0.113.9"}, fake.md.Get("x-forwarded-for"), spoof)
	}
}

func TestJSONErrors(t *testing.T) {
	_, e := setup(t)

	rec := do(e, post(rpc.MethodBookAppointment, echo.MIMEApplicationJSON, []byte(`{"doctor_id":"d1"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorBody{Code: "AlreadyExists", Reason: "CONFLICT", Message: "slot unavailable"}, body)

	rec = do(e, post(rpc.MethodLogin, echo.MIMEApplicationJSON, []byte(`{"password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, post("DropTables", echo.MIMEApplicationJSON, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGRPCWebFraming(t *testing.T) {
	_, e := setup(t)

	msg := []byte(`{"role":"doctor","identifier":"house@clinic.test","password":"right"}`)
	rec := do(e, post(rpc.MethodLogin, grpcWebContentType, frame(frameData, msg)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, grpcWebContentType, rec.Header().Get(echo.HeaderContentType))

	fs := frames(t, rec.Body.Bytes())
	require.Len(t, fs, 2)
	assert.Equal(t, byte(frameData), fs[0][0][0])
	var out rpc.LoginResponse
	require.NoError(t, json.Unmarshal(fs[0][1], &out))
	assert.Equal(t, "doctor", out.Role)
	assert.Equal(t, byte(frameTrailer), fs[1][0][0])
	assert.Equal(t, "grpc-status:0\r\n", string(fs[1][1]))
}

func TestGRPCWebErrorTrailer(t *testing.T) {
	_, e := setup(t)

	rec := do(e, post(rpc.MethodBookAppointment, grpcWebContentType, frame(frameData, []byte(`{}`))))
	require.Equal(t, http.StatusOK, rec.Code)
	fs := frames(t, rec.Body.Bytes())
	require.Len(t, fs, 1)
	assert.True(t, strings.HasPrefix(string(fs[0][1]), "grpc-status:6\r\n"), string(fs[0][1]))
	assert.Contains(t, string(fs[0][1]), "grpc-message:slot unavailable")

	rec = do(e, post(rpc.MethodLogin, grpcWebContentType, []byte{0, 0, 0}))
	fs = frames(t, rec.Body.Bytes())
	assert.Contains(t, string(fs[0][1]), "grpc-status:3")
}

func TestUnframe(t *testing.T) {
	p, err := unframe(frame(frameData, []byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(p))

	_, err = unframe([]byte{0, 0, 0, 0, 9, 'a'})
	assert.Error(t, err)

	_, err = unframe(frame(frameTrailer, nil))
	assert.Error(t, err)
}

func TestHealthAndCORS(t *testing.T) {
	fake, e := setup(t)

	rec := do(e, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	fake.healthErr = status.Error(codes.Unavailable, "store unavailable")
	rec = do(e, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	pre := httptest.NewRequest(http.MethodOptions, "/"+rpc.ServiceName+"/"+rpc.MethodLogin, nil)
	pre.Header.Set(echo.HeaderOrigin, "http://app.test")
	pre.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec = do(e, pre)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(codes.ResourceExhausted))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(codes.PermissionDenied))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(codes.Internal))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(codes.DataLoss))
}

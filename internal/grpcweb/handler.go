// Package grpcweb exposes the gRPC service to browsers. It accepts grpc-web
// frames and plain JSON posts and forwards the message bytes untouched.
package grpcweb

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"clinic-scheduler/internal/handler"
	"clinic-scheduler/internal/rpc"
)

const (
	grpcWebContentType = "application/grpc-web+json"
	frameData          = 0x00
	frameTrailer       = 0x80
)

// Bridge relays HTTP/1.1 requests to the gRPC server.
type Bridge struct {
	conn    grpc.ClientConnInterface
	close   func() error
	log     zerolog.Logger
	origins []string
	methods map[string]bool
}

// Dial connects to the gRPC server at addr (e.g. "localhost:50051").
func Dial(addr string, origins []string, log zerolog.Logger) (*Bridge, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpcweb dial: %w", err)
	}
	b := New(conn, origins, log)
	b.close = conn.Close
	return b, nil
}

// New wraps an existing connection. The caller keeps ownership of conn.
func New(conn grpc.ClientConnInterface, origins []string, log zerolog.Logger) *Bridge {
	methods := make(map[string]bool, len(rpc.ServiceDesc.Methods))
	for _, m := range rpc.ServiceDesc.Methods {
		methods[m.MethodName] = true
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Bridge{
		conn:    conn,
		close:   func() error { return nil },
		log:     log.With().Str("component", "grpcweb").Logger(),
		origins: origins,
		methods: methods,
	}
}

func (b *Bridge) Close() error { return b.close() }

// Echo builds the HTTP router.
func (b *Bridge) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// the client key forwarded to the rate limiter is the socket peer only
	e.IPExtractor = echo.ExtractIPDirect()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			b.log.Info().
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("http")
			return nil
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: b.origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestID,
			"X-Grpc-Web", "X-User-Agent",
		},
		ExposeHeaders: []string{"Grpc-Status", "Grpc-Message", "Grpc-Status-Details-Bin", echo.HeaderXRequestID},
		MaxAge:        86400,
	}))
	e.Use(echomw.BodyLimit("1M"))

	e.GET("/health", b.health)
	e.POST("/"+rpc.ServiceName+"/:method", b.forward)
	return e
}

func (b *Bridge) outgoing(c echo.Context) metadata.MD {
	md := metadata.MD{}
	if v := c.Request().Header.Get(echo.HeaderAuthorization); v != "" {
		md.Set("authorization", v)
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		md.Set("x-request-id", id)
	}
	md.Set("x-forwarded-for", c.RealIP())
	return md
}

func (b *Bridge) invoke(c echo.Context, method string, payload []byte) ([]byte, error) {
	ctx := metadata.NewOutgoingContext(c.Request().Context(), b.outgoing(c))
	resp := &rpc.Raw{}
	err := b.conn.Invoke(ctx, rpc.FullMethod(method), &rpc.Raw{Data: payload}, resp, grpc.ForceCodec(rpc.RawCodec{}))
	return resp.Data, err
}

func (b *Bridge) health(c echo.Context) error {
	if _, err := b.invoke(c, rpc.MethodHealth, []byte("{}")); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (b *Bridge) forward(c echo.Context) error {
	method := c.Param("method")
	grpcWeb := strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), "application/grpc-web")

	if !b.methods[method] {
		if grpcWeb {
			return writeError(c, codes.Unimplemented, "unknown method")
		}
		return writeJSONError(c, status.New(codes.Unimplemented, "unknown method").Err())
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return writeJSONError(c, status.Error(codes.InvalidArgument, "read body failed"))
	}

	if !grpcWeb {
		if len(body) == 0 {
			body = []byte("{}")
		}
		data, err := b.invoke(c, method, body)
		if err != nil {
			return writeJSONError(c, err)
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
	}

	payload, err := unframe(body)
	if err != nil {
		return writeError(c, codes.InvalidArgument, err.Error())
	}
	data, err := b.invoke(c, method, payload)
	if err != nil {
		st := status.Convert(err)
		b.log.Debug().Str("method", method).Str("code", st.Code().String()).Msg("grpc-web error")
		return writeError(c, st.Code(), st.Message())
	}
	return writeSuccess(c, data)
}

// unframe extracts the message of a single grpc-web data frame: 1-byte flag,
// 4-byte big-endian length, payload.
func unframe(body []byte) ([]byte, error) {
	if len(body) < 5 {
		return nil, fmt.Errorf("body too short")
	}
	if body[0]&frameTrailer != 0 {
		return nil, fmt.Errorf("expected data frame")
	}
	n := binary.BigEndian.Uint32(body[1:5])
	if int(n)+5 > len(body) {
		return nil, fmt.Errorf("incomplete frame")
	}
	return body[5 : 5+n], nil
}

func frame(flag byte, data []byte) []byte {
	f := make([]byte, 5+len(data))
	f[0] = flag
	binary.BigEndian.PutUint32(f[1:5], uint32(len(data)))
	copy(f[5:], data)
	return f
}

func writeSuccess(c echo.Context, data []byte) error {
	out := append(frame(frameData, data), frame(frameTrailer, []byte("grpc-status:0\r\n"))...)
	return c.Blob(http.StatusOK, grpcWebContentType, out)
}

// grpc-web reports failures in the trailer frame with HTTP 200.
func writeError(c echo.Context, code codes.Code, msg string) error {
	trailer := fmt.Sprintf("grpc-status:%d\r\ngrpc-message:%s\r\n", code, msg)
	return c.Blob(http.StatusOK, grpcWebContentType, frame(frameTrailer, []byte(trailer)))
}

// ErrorBody is the JSON error envelope of the plain-JSON transport.
type ErrorBody struct {
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

func writeJSONError(c echo.Context, err error) error {
	st := status.Convert(err)
	return c.JSON(HTTPStatus(st.Code()), ErrorBody{
		Code:    st.Code().String(),
		Reason:  handler.Reason(err),
		Message: st.Message(),
	})
}

var httpStatus = map[codes.Code]int{
	codes.OK:                http.StatusOK,
	codes.Unauthenticated:   http.StatusUnauthorized,
	codes.InvalidArgument:   http.StatusBadRequest,
	codes.PermissionDenied:  http.StatusForbidden,
	codes.NotFound:          http.StatusNotFound,
	codes.AlreadyExists:     http.StatusConflict,
	codes.ResourceExhausted: http.StatusTooManyRequests,
	codes.Unimplemented:     http.StatusNotFound,
	codes.Unavailable:       http.StatusServiceUnavailable,
	codes.DeadlineExceeded:  http.StatusGatewayTimeout,
}

// HTTPStatus maps a gRPC code to the status the JSON transport answers with.
func HTTPStatus(code codes.Code) int {
	if s, ok := httpStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

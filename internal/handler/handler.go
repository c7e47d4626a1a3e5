package handler

import (
	"context"

	"github.com/rs/zerolog"

	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/middleware"
	"clinic-scheduler/internal/rpc"
	"clinic-scheduler/internal/scheduling"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the domain components the handler translates to and from RPC.
type Services struct {
	Gate          *auth.Gate
	Engine        *scheduling.Engine
	Appointments  *scheduling.Appointments
	Search        *scheduling.Search
	Doctors       *scheduling.Doctors
	Patients      *scheduling.Patients
	Prescriptions *scheduling.Prescriptions
	Dashboard     *scheduling.Dashboard
	Health        Pinger
}

type Handler struct {
	svc Services
	log zerolog.Logger
}

var _ rpc.ClinicServer = (*Handler)(nil)

func New(svc Services, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// caller is the identity the auth interceptor verified. The zero Identity is
// rejected by every role-scoped service.
func caller(ctx context.Context) auth.Identity {
	id, _ := middleware.IdentityFrom(ctx)
	return id
}

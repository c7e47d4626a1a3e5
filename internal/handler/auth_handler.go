package handler

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-scheduler/internal/apperr"
	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/rpc"
	"clinic-scheduler/internal/scheduling"
)

func (h *Handler) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	role, ok := auth.ParseRole(req.Role)
	if !ok {
		return nil, toStatus(apperr.Validation("role must be admin, doctor or patient"))
	}
	identifier := strings.TrimSpace(req.Identifier)
	if role != auth.Admin {
		identifier = strings.ToLower(identifier)
	}

	tok, id, err := h.svc.Gate.Login(ctx, role, identifier, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.LoginResponse{Token: tok, Role: role.String(), ID: id.ID}, nil
}

func (h *Handler) RegisterPatient(ctx context.Context, req *rpc.RegisterPatientRequest) (*rpc.RegisterPatientResponse, error) {
	p, err := h.svc.Patients.Register(ctx, scheduling.PatientInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	tok, err := h.svc.Gate.Issue(p.Email)
	if err != nil {
		h.log.Error().Err(err).Msg("issue token")
		return nil, toStatus(apperr.Internal(err))
	}
	return &rpc.RegisterPatientResponse{Patient: toPatient(p), Token: tok}, nil
}

func (h *Handler) Health(ctx context.Context, _ *rpc.Empty) (*rpc.HealthResponse, error) {
	if h.svc.Health != nil {
		if err := h.svc.Health.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("health check")
			return nil, status.Error(codes.Unavailable, "store unavailable")
		}
	}
	return &rpc.HealthResponse{Status: "ok"}, nil
}

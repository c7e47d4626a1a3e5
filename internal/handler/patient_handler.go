package handler

import (
	"context"

	"clinic-scheduler/internal/rpc"
)

func (h *Handler) GetPatientDetails(ctx context.Context, _ *rpc.Empty) (*rpc.PatientResponse, error) {
	p, err := h.svc.Patients.Details(ctx, caller(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.PatientResponse{Patient: toPatient(p)}, nil
}

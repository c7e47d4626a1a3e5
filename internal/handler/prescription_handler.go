package handler

import (
	"context"

	"clinic-scheduler/internal/rpc"
	"clinic-scheduler/internal/scheduling"
)

func (h *Handler) SavePrescription(ctx context.Context, req *rpc.SavePrescriptionRequest) (*rpc.PrescriptionResponse, error) {
	p, err := h.svc.Prescriptions.Save(ctx, caller(ctx), scheduling.PrescriptionInput{
		AppointmentID: req.AppointmentID,
		Medication:    req.Medication,
		Dosage:        req.Dosage,
		Instructions:  req.Instructions,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.PrescriptionResponse{Prescription: toPrescription(p)}, nil
}

func (h *Handler) GetPrescription(ctx context.Context, req *rpc.GetPrescriptionRequest) (*rpc.PrescriptionResponse, error) {
	p, err := h.svc.Prescriptions.Get(ctx, caller(ctx), req.AppointmentID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.PrescriptionResponse{Prescription: toPrescription(p)}, nil
}

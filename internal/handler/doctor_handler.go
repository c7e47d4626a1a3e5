package handler

import (
	"context"

	"clinic-scheduler/internal/rpc"
)

func (h *Handler) ListDoctors(ctx context.Context, _ *rpc.Empty) (*rpc.ListDoctorsResponse, error) {
	ds, err := h.svc.Search.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ListDoctorsResponse{Doctors: toDoctors(ds)}, nil
}

func (h *Handler) FilterDoctors(ctx context.Context, req *rpc.FilterDoctorsRequest) (*rpc.ListDoctorsResponse, error) {
	ds, err := h.svc.Search.Filter(ctx, req.Name, req.Specialty, req.Time)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ListDoctorsResponse{Doctors: toDoctors(ds)}, nil
}

func (h *Handler) SaveDoctor(ctx context.Context, req *rpc.SaveDoctorRequest) (*rpc.DoctorResponse, error) {
	d, err := h.svc.Doctors.Save(ctx, caller(ctx), doctorInput(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.DoctorResponse{Doctor: toDoctor(d)}, nil
}

func (h *Handler) UpdateDoctor(ctx context.Context, req *rpc.UpdateDoctorRequest) (*rpc.DoctorResponse, error) {
	d, err := h.svc.Doctors.Update(ctx, caller(ctx), req.ID, doctorInput(&req.SaveDoctorRequest))
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.DoctorResponse{Doctor: toDoctor(d)}, nil
}

func (h *Handler) DeleteDoctor(ctx context.Context, req *rpc.DeleteDoctorRequest) (*rpc.Empty, error) {
	if err := h.svc.Doctors.Delete(ctx, caller(ctx), req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.Empty{}, nil
}

func (h *Handler) Dashboard(ctx context.Context, _ *rpc.Empty) (*rpc.DashboardResponse, error) {
	sum, err := h.svc.Dashboard.Summary(ctx, caller(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.DashboardResponse{
		Role:      sum.Role.String(),
		Doctors:   sum.Doctors,
		Scheduled: sum.Scheduled,
		Completed: sum.Completed,
		Canceled:  sum.Canceled,
	}, nil
}

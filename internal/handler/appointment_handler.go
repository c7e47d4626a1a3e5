package handler

import (
	"context"

	"clinic-scheduler/internal/rpc"
	"clinic-scheduler/internal/scheduling"
)

func (h *Handler) GetAvailability(ctx context.Context, req *rpc.GetAvailabilityRequest) (*rpc.GetAvailabilityResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, toStatus(err)
	}
	times := h.svc.Engine.Availability(ctx, req.DoctorID, date)
	return &rpc.GetAvailabilityResponse{DoctorID: req.DoctorID, Date: date.Format(dateLayout), Times: times}, nil
}

func (h *Handler) BookAppointment(ctx context.Context, req *rpc.BookAppointmentRequest) (*rpc.AppointmentResponse, error) {
	a, err := h.svc.Appointments.Book(ctx, caller(ctx), req.DoctorID, req.Time)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.AppointmentResponse{Appointment: toAppointment(a)}, nil
}

func (h *Handler) UpdateAppointment(ctx context.Context, req *rpc.UpdateAppointmentRequest) (*rpc.AppointmentResponse, error) {
	a, err := h.svc.Appointments.Update(ctx, caller(ctx), scheduling.UpdateRequest{
		ID:        req.ID,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Time:      req.Time,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.AppointmentResponse{Appointment: toAppointment(a)}, nil
}

func (h *Handler) CancelAppointment(ctx context.Context, req *rpc.CancelAppointmentRequest) (*rpc.Empty, error) {
	if err := h.svc.Appointments.Cancel(ctx, caller(ctx), req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.Empty{}, nil
}

func (h *Handler) ListPatientAppointments(ctx context.Context, req *rpc.ListPatientAppointmentsRequest) (*rpc.ListAppointmentsResponse, error) {
	as, err := h.svc.Appointments.PatientAppointments(ctx, caller(ctx), req.Condition, req.DoctorName)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ListAppointmentsResponse{Appointments: toAppointments(as)}, nil
}

func (h *Handler) ListDoctorAppointments(ctx context.Context, req *rpc.ListDoctorAppointmentsRequest) (*rpc.ListAppointmentsResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, toStatus(err)
	}
	as, err := h.svc.Appointments.DoctorAppointments(ctx, caller(ctx), date, req.PatientName)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ListAppointmentsResponse{Appointments: toAppointments(as)}, nil
}

package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "clinic.v1.ClinicService"

const (
	MethodLogin                   = "Login"
	MethodRegisterPatient         = "RegisterPatient"
	MethodHealth                  = "Health"
	MethodListDoctors             = "ListDoctors"
	MethodFilterDoctors           = "FilterDoctors"
	MethodGetAvailability         = "GetAvailability"
	MethodBookAppointment         = "BookAppointment"
	MethodUpdateAppointment       = "UpdateAppointment"
	MethodCancelAppointment       = "CancelAppointment"
	MethodListPatientAppointments = "ListPatientAppointments"
	MethodGetPatientDetails       = "GetPatientDetails"
	MethodListDoctorAppointments  = "ListDoctorAppointments"
	MethodSavePrescription        = "SavePrescription"
	MethodGetPrescription         = "GetPrescription"
	MethodSaveDoctor              = "SaveDoctor"
	MethodUpdateDoctor            = "UpdateDoctor"
	MethodDeleteDoctor            = "DeleteDoctor"
	MethodDashboard               = "Dashboard"
)

// FullMethod is the gRPC path of a method, e.g. /clinic.v1.ClinicService/Login.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

type ClinicServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RegisterPatient(context.Context, *RegisterPatientRequest) (*RegisterPatientResponse, error)
	Health(context.Context, *Empty) (*HealthResponse, error)

	ListDoctors(context.Context, *Empty) (*ListDoctorsResponse, error)
	FilterDoctors(context.Context, *FilterDoctorsRequest) (*ListDoctorsResponse, error)
	GetAvailability(context.Context, *GetAvailabilityRequest) (*GetAvailabilityResponse, error)

	BookAppointment(context.Context, *BookAppointmentRequest) (*AppointmentResponse, error)
	UpdateAppointment(context.Context, *UpdateAppointmentRequest) (*AppointmentResponse, error)
	CancelAppointment(context.Context, *CancelAppointmentRequest) (*Empty, error)
	ListPatientAppointments(context.Context, *ListPatientAppointmentsRequest) (*ListAppointmentsResponse, error)
	GetPatientDetails(context.Context, *Empty) (*PatientResponse, error)

	ListDoctorAppointments(context.Context, *ListDoctorAppointmentsRequest) (*ListAppointmentsResponse, error)
	SavePrescription(context.Context, *SavePrescriptionRequest) (*PrescriptionResponse, error)
	GetPrescription(context.Context, *GetPrescriptionRequest) (*PrescriptionResponse, error)

	SaveDoctor(context.Context, *SaveDoctorRequest) (*DoctorResponse, error)
	UpdateDoctor(context.Context, *UpdateDoctorRequest) (*DoctorResponse, error)
	DeleteDoctor(context.Context, *DeleteDoctorRequest) (*Empty, error)
	Dashboard(context.Context, *Empty) (*DashboardResponse, error)
}

func unary[Req, Resp any](name string, call func(ClinicServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ClinicServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ClinicServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClinicServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodLogin, ClinicServer.Login),
		unary(MethodRegisterPatient, ClinicServer.RegisterPatient),
		unary(MethodHealth, ClinicServer.Health),
		unary(MethodListDoctors, ClinicServer.ListDoctors),
		unary(MethodFilterDoctors, ClinicServer.FilterDoctors),
		unary(MethodGetAvailability, ClinicServer.GetAvailability),
		unary(MethodBookAppointment, ClinicServer.BookAppointment),
		unary(MethodUpdateAppointment, ClinicServer.UpdateAppointment),
		unary(MethodCancelAppointment, ClinicServer.CancelAppointment),
		unary(MethodListPatientAppointments, ClinicServer.ListPatientAppointments),
		unary(MethodGetPatientDetails, ClinicServer.GetPatientDetails),
		unary(MethodListDoctorAppointments, ClinicServer.ListDoctorAppointments),
		unary(MethodSavePrescription, ClinicServer.SavePrescription),
		unary(MethodGetPrescription, ClinicServer.GetPrescription),
		unary(MethodSaveDoctor, ClinicServer.SaveDoctor),
		unary(MethodUpdateDoctor, ClinicServer.UpdateDoctor),
		unary(MethodDeleteDoctor, ClinicServer.DeleteDoctor),
		unary(MethodDashboard, ClinicServer.Dashboard),
	},
	Metadata: "clinic/v1/clinic.proto",
}

func RegisterClinicServer(s grpc.ServiceRegistrar, srv ClinicServer) {
	s.RegisterService(&ServiceDesc, srv)
}

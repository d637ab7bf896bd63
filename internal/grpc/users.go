package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AdilMir1433/User-Service/internal/model"
	"github.com/AdilMir1433/User-Service/internal/repository"
)

const serviceName = "devxam.users.v1.UsersQueryService"

type GetAdminIDRequest struct {
	UserID int64 `json:"userId"`
}

type GetAdminIDResponse struct {
	AdminID *int64 `json:"adminId"`
}

type ListTeacherIDsRequest struct {
	AdminID int64 `json:"adminId"`
}

type ListTeacherIDsResponse struct {
	TeacherIDs []int64 `json:"teacherIds"`
}

type GetTotalRequest struct {
	ExamID    int64 `json:"examId"`
	StudentID int64 `json:"studentId"`
}

type GetTotalResponse struct {
	Total int `json:"total"`
}

// UsersQueryServer is what the exam services call to resolve ownership and
// scores.
type UsersQueryServer interface {
	GetAdminID(context.Context, *GetAdminIDRequest) (*GetAdminIDResponse, error)
	ListTeacherIDs(context.Context, *ListTeacherIDsRequest) (*ListTeacherIDsResponse, error)
	GetTotal(context.Context, *GetTotalRequest) (*GetTotalResponse, error)
}

type UserDirectory interface {
	GetAdminID(ctx context.Context, userID int64) (*int64, error)
	ListUsersByRole(ctx context.Context, role model.Role, adminID int64) ([]model.User, error)
}

type ScoreTotals interface {
	Total(ctx context.Context, examID, studentID int64) (int, error)
}

type UsersServer struct {
	users  UserDirectory
	totals ScoreTotals
}

func NewUsersServer(users UserDirectory, totals ScoreTotals) *UsersServer {
	return &UsersServer{users: users, totals: totals}
}

func (s *UsersServer) GetAdminID(ctx context.Context, req *GetAdminIDRequest) (*GetAdminIDResponse, error) {
	if req.UserID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "user_id required")
	}
	adminID, err := s.users.GetAdminID(ctx, req.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, status.Error(codes.NotFound, "user not found")
	}
	if err != nil {
		return nil, status.Error(codes.Internal, "lookup failed")
	}
	return &GetAdminIDResponse{AdminID: adminID}, nil
}

func (s *UsersServer) ListTeacherIDs(ctx context.Context, req *ListTeacherIDsRequest) (*ListTeacherIDsResponse, error) {
	if req.AdminID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "admin_id required")
	}
	teachers, err := s.users.ListUsersByRole(ctx, model.RoleTeacher, req.AdminID)
	if err != nil {
		return nil, status.Error(codes.Internal, "lookup failed")
	}
	ids := make([]int64, 0, len(teachers))
	for _, teacher := range teachers {
		ids = append(ids, teacher.ID)
	}
	return &ListTeacherIDsResponse{TeacherIDs: ids}, nil
}

func (s *UsersServer) GetTotal(ctx context.Context, req *GetTotalRequest) (*GetTotalResponse, error) {
	if req.ExamID <= 0 || req.StudentID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "exam_id and student_id required")
	}
	total, err := s.totals.Total(ctx, req.ExamID, req.StudentID)
	if err != nil {
		return nil, status.Error(codes.Internal, "lookup failed")
	}
	return &GetTotalResponse{Total: total}, nil
}

func RegisterUsersQueryServer(s grpc.ServiceRegistrar, srv UsersQueryServer) {
	s.RegisterService(&usersQueryServiceDesc, srv)
}

var usersQueryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*UsersQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetAdminID", Handler: getAdminIDHandler},
		{MethodName: "ListTeacherIDs", Handler: listTeacherIDsHandler},
		{MethodName: "GetTotal", Handler: getTotalHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func getAdminIDHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAdminIDRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UsersQueryServer).GetAdminID(ctx, req.(*GetAdminIDRequest))
	}
	return unary(ctx, srv, in, "GetAdminID", call, interceptor)
}

func listTeacherIDsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListTeacherIDsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UsersQueryServer).ListTeacherIDs(ctx, req.(*ListTeacherIDsRequest))
	}
	return unary(ctx, srv, in, "ListTeacherIDs", call, interceptor)
}

func getTotalHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetTotalRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UsersQueryServer).GetTotal(ctx, req.(*GetTotalRequest))
	}
	return unary(ctx, srv, in, "GetTotal", call, interceptor)
}

func unary(ctx context.Context, srv, in interface{}, method string, call grpc.UnaryHandler, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + method}
	return interceptor(ctx, in, info, call)
}

// UsersQueryClient calls the users query service over the json codec.
type UsersQueryClient struct {
	cc grpc.ClientConnInterface
}

func NewUsersQueryClient(cc grpc.ClientConnInterface) *UsersQueryClient {
	return &UsersQueryClient{cc: cc}
}

func (c *UsersQueryClient) GetAdminID(ctx context.Context, in *GetAdminIDRequest, opts ...grpc.CallOption) (*GetAdminIDResponse, error) {
	out := new(GetAdminIDResponse)
	if err := c.invoke(ctx, "GetAdminID", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UsersQueryClient) ListTeacherIDs(ctx context.Context, in *ListTeacherIDsRequest, opts ...grpc.CallOption) (*ListTeacherIDsResponse, error) {
	out := new(ListTeacherIDsResponse)
	if err := c.invoke(ctx, "ListTeacherIDs", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UsersQueryClient) GetTotal(ctx context.Context, in *GetTotalRequest, opts ...grpc.CallOption) (*GetTotalResponse, error) {
	out := new(GetTotalResponse)
	if err := c.invoke(ctx, "GetTotal", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UsersQueryClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}

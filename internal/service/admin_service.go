package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/admin/dashboard"
	adminUser "ai-chat-be/pkg/admin/user"

	"github.com/google/uuid"
)

type IAdminService interface {
	// User management
	ListUsers(ctx context.Context, query dto.ListUsersQuery) (*dto.PaginatedResponse[dto.ManagedUserResponse], error)
	DisableUser(ctx context.Context, userId uuid.UUID, actor string) (*dto.ManagedUserResponse, error)
	EnableUser(ctx context.Context, userId uuid.UUID, actor string) (*dto.ManagedUserResponse, error)
	InitiateDeleteUser(ctx context.Context, userId uuid.UUID) (*dto.DeleteUserInitiateResponse, error)
	ConfirmDeleteUser(ctx context.Context, token, actor string) error
	CancelDeleteUser(token string) error

	// Administrators
	ListAdmins(ctx context.Context, query dto.ListAdminsQuery) (*dto.PaginatedResponse[dto.AdminResponse], error)
	CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest, actor string) (*dto.AdminResponse, error)
	UpdateAdmin(ctx context.Context, adminId uuid.UUID, req *dto.UpdateAdminRequest) (*dto.AdminResponse, error)
	DeleteAdmin(ctx context.Context, adminId uuid.UUID, actor string) error

	// Dashboard
	GetChatUsersStats(ctx context.Context) (*dto.ChatUsersStats, error)
	GetMonthlyGrowth(ctx context.Context, year int) (*dto.MonthlyGrowthResponse, error)
	GetYearlyGrowth(ctx context.Context) (*dto.YearlyGrowthResponse, error)

	// Logs
	GetLogs(query dto.ListLogsQuery) ([]logger.LogEntry, error)
	GetLogById(id string) (*logger.LogEntry, error)
}

type adminService struct {
	uowFactory    unitofwork.RepositoryFactory
	userManager   *adminUser.Manager
	aggregator    *dashboard.Aggregator
	mailPublisher IMailPublisherService
	log           logger.ILogger
}

func NewAdminService(
	uowFactory unitofwork.RepositoryFactory,
	userManager *adminUser.Manager,
	aggregator *dashboard.Aggregator,
	mailPublisher IMailPublisherService,
	log logger.ILogger,
) IAdminService {
	return &adminService{
		uowFactory:    uowFactory,
		userManager:   userManager,
		aggregator:    aggregator,
		mailPublisher: mailPublisher,
		log:           log,
	}
}

func (s *adminService) ListUsers(ctx context.Context, query dto.ListUsersQuery) (*dto.PaginatedResponse[dto.ManagedUserResponse], error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	users, total, err := s.userManager.List(ctx, uow, query)
	if err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(query.Page, query.PageSize)
	items := make([]dto.ManagedUserResponse, len(users))
	for i, u := range users {
		items[i] = managedUserToDto(u)
	}
	return &dto.PaginatedResponse[dto.ManagedUserResponse]{
		Items:      items,
		Pagination: dto.NewPagination(page, pageSize, total),
	}, nil
}

func (s *adminService) DisableUser(ctx context.Context, userId uuid.UUID, actor string) (*dto.ManagedUserResponse, error) {
	return s.setUserStatus(ctx, userId, entity.UserStatusBlocked, actor)
}

func (s *adminService) EnableUser(ctx context.Context, userId uuid.UUID, actor string) (*dto.ManagedUserResponse, error) {
	return s.setUserStatus(ctx, userId, entity.UserStatusActive, actor)
}

func (s *adminService) setUserStatus(ctx context.Context, userId uuid.UUID, status entity.UserStatus, actor string) (*dto.ManagedUserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.userManager.SetStatus(ctx, uow, userId, status, actor)
	if err != nil {
		return nil, mapManagerErr(err)
	}
	resp := managedUserToDto(user)
	return &resp, nil
}

func (s *adminService) InitiateDeleteUser(ctx context.Context, userId uuid.UUID) (*dto.DeleteUserInitiateResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	token, expiresAt, err := s.userManager.InitiateDelete(ctx, uow, userId)
	if err != nil {
		return nil, mapManagerErr(err)
	}
	return &dto.DeleteUserInitiateResponse{
		ConfirmationToken: token,
		ExpiresAt:         expiresAt,
	}, nil
}

func (s *adminService) ConfirmDeleteUser(ctx context.Context, token, actor string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return mapManagerErr(s.userManager.ConfirmDelete(ctx, uow, token, actor))
}

func (s *adminService) CancelDeleteUser(token string) error {
	return mapManagerErr(s.userManager.CancelDelete(token))
}

func (s *adminService) ListAdmins(ctx context.Context, query dto.ListAdminsQuery) (*dto.PaginatedResponse[dto.AdminResponse], error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	admins, total, err := s.userManager.ListAdmins(ctx, uow, query)
	if err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(query.Page, query.PageSize)
	items := make([]dto.AdminResponse, len(admins))
	for i, a := range admins {
		items[i] = adminToDto(a)
	}
	return &dto.PaginatedResponse[dto.AdminResponse]{
		Items:      items,
		Pagination: dto.NewPagination(page, pageSize, total),
	}, nil
}

func (s *adminService) CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest, actor string) (*dto.AdminResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	admin, password, err := s.userManager.CreateStaffAdmin(ctx, uow, *req, actor)
	if err != nil {
		return nil, mapManagerErr(err)
	}

	if err := s.mailPublisher.PublishAdminCredentials(ctx, admin.Email, admin.FullName, password); err != nil {
		fmt.Printf("Error queueing credentials email: %v\n", err)
	}

	resp := adminToDto(admin)
	return &resp, nil
}

func (s *adminService) UpdateAdmin(ctx context.Context, adminId uuid.UUID, req *dto.UpdateAdminRequest) (*dto.AdminResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	admin, err := s.userManager.UpdateAdmin(ctx, uow, adminId, *req)
	if err != nil {
		return nil, mapManagerErr(err)
	}
	resp := adminToDto(admin)
	return &resp, nil
}

func (s *adminService) DeleteAdmin(ctx context.Context, adminId uuid.UUID, actor string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.userManager.DeleteAdmin(ctx, uow, adminId, actor); err != nil {
		return mapManagerErr(err)
	}
	return nil
}

func (s *adminService) GetChatUsersStats(ctx context.Context) (*dto.ChatUsersStats, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.aggregator.ChatUsers(ctx, uow)
}

func (s *adminService) GetMonthlyGrowth(ctx context.Context, year int) (*dto.MonthlyGrowthResponse, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.aggregator.MonthlyGrowth(ctx, uow, year)
}

func (s *adminService) GetYearlyGrowth(ctx context.Context) (*dto.YearlyGrowthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.aggregator.YearlyGrowth(ctx, uow)
}

func (s *adminService) GetLogs(query dto.ListLogsQuery) ([]logger.LogEntry, error) {
	limit := query.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	return s.log.GetLogs(query.Level, limit, offset)
}

func (s *adminService) GetLogById(id string) (*logger.LogEntry, error) {
	entry, err := s.log.GetLogById(id)
	if err != nil {
		return nil, ErrLogNotFound
	}
	return entry, nil
}

func mapManagerErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, adminUser.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, adminUser.ErrEmailExists):
		return ErrEmailTaken
	case errors.Is(err, adminUser.ErrInvalidConfirmation):
		return ErrInvalidConfirm
	default:
		return err
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func managedUserToDto(u *entity.User) dto.ManagedUserResponse {
	resp := dto.ManagedUserResponse{
		Id:         u.Id,
		Email:      u.Email,
		FullName:   u.FullName,
		Status:     string(u.Status),
		IsVerified: u.EmailVerified,
		CreatedAt:  u.CreatedAt,
	}
	if u.MobileNumber != nil {
		resp.MobileNumber = *u.MobileNumber
	}
	return resp
}

func adminToDto(u *entity.User) dto.AdminResponse {
	return dto.AdminResponse{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	adminEvents "ai-chat-be/pkg/admin/events"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound            = errors.New("user not found")
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidConfirmation = errors.New("invalid or expired confirmation token")
)

const deleteConfirmationTTL = 5 * time.Minute

// Manager handles user-related admin operations
type Manager struct {
	logger    logger.ILogger
	publisher adminEvents.Publisher

	// Pending account deletions awaiting a second confirmation call
	pendingDeletes *gocache.Cache
}

func NewManager(logger logger.ILogger, publisher adminEvents.Publisher) *Manager {
	return &Manager{
		logger:         logger,
		publisher:      publisher,
		pendingDeletes: gocache.New(deleteConfirmationTTL, 10*time.Minute),
	}
}

// List returns a page of end users matching the query filters.
func (m *Manager) List(ctx context.Context, uow unitofwork.UnitOfWork, query dto.ListUsersQuery) ([]*entity.User, int64, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	specs := []specification.Specification{
		specification.ByRole{Role: string(entity.UserRoleUser)},
	}
	if query.Search != "" {
		specs = append(specs, specification.SearchUsers{Term: query.Search})
	}
	if query.Status != "" {
		specs = append(specs, specification.ByStatus{Status: query.Status})
	}

	total, err := uow.UserRepository().Count(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}

	listSpecs := append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	users, err := uow.UserRepository().FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// SetStatus blocks or unblocks an end user account.
func (m *Manager) SetStatus(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, status entity.UserStatus, actor string) (*entity.User, error) {
	user, err := m.findEndUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	if err := uow.UserRepository().UpdateStatus(ctx, userId, string(status)); err != nil {
		return nil, err
	}
	user.Status = status

	switch status {
	case entity.UserStatusBlocked:
		m.publisher.PublishUserBlocked(ctx, user.Id, user.Email, actor)
	case entity.UserStatusActive:
		m.publisher.PublishUserUnblocked(ctx, user.Id, user.Email, actor)
	}

	m.logger.Info("ADMIN", "user status changed", map[string]interface{}{
		"user_id": userId.String(),
		"status":  string(status),
		"actor":   actor,
	})
	return user, nil
}

// InitiateDelete stages a destructive account removal behind a
// short-lived confirmation token.
func (m *Manager) InitiateDelete(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (string, time.Time, error) {
	if _, err := m.findEndUser(ctx, uow, userId); err != nil {
		return "", time.Time{}, err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	token := hex.EncodeToString(buf)

	m.pendingDeletes.Set(token, userId, deleteConfirmationTTL)
	return token, time.Now().Add(deleteConfirmationTTL), nil
}

// ConfirmDelete removes the user and every chat record they own.
func (m *Manager) ConfirmDelete(ctx context.Context, uow unitofwork.UnitOfWork, token, actor string) error {
	v, found := m.pendingDeletes.Get(token)
	if !found {
		return ErrInvalidConfirmation
	}
	userId := v.(uuid.UUID)

	user, err := m.findEndUser(ctx, uow, userId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return err
	}
	if err := uow.UserRepository().DeleteUnscoped(ctx, userId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	m.pendingDeletes.Delete(token)
	m.publisher.PublishUserDeleted(ctx, userId, user.Email, actor)
	m.logger.Warn("ADMIN", "user account deleted", map[string]interface{}{
		"user_id": userId.String(),
		"actor":   actor,
	})
	return nil
}

// CancelDelete drops a staged deletion.
func (m *Manager) CancelDelete(token string) error {
	if _, found := m.pendingDeletes.Get(token); !found {
		return ErrInvalidConfirmation
	}
	m.pendingDeletes.Delete(token)
	return nil
}

// Administrators

// ListAdmins returns a page of staff and super admin accounts.
func (m *Manager) ListAdmins(ctx context.Context, uow unitofwork.UnitOfWork, query dto.ListAdminsQuery) ([]*entity.User, int64, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var specs []specification.Specification
	if query.Role != "" {
		specs = append(specs, specification.ByRole{Role: query.Role})
	} else {
		specs = append(specs, specification.ByRoles{Roles: []string{
			string(entity.UserRoleStaffAdmin),
			string(entity.UserRoleSuperAdmin),
		}})
	}
	if query.Search != "" {
		specs = append(specs, specification.SearchUsers{Term: query.Search})
	}
	if query.Status != "" {
		specs = append(specs, specification.ByStatus{Status: query.Status})
	}

	total, err := uow.UserRepository().Count(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}

	listSpecs := append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	admins, err := uow.UserRepository().FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, 0, err
	}

	return admins, total, nil
}

// CreateStaffAdmin creates an active staff admin. When no password is
// supplied a random one is generated, the caller is responsible for
// delivering it.
func (m *Manager) CreateStaffAdmin(ctx context.Context, uow unitofwork.UnitOfWork, req dto.CreateAdminRequest, actor string) (*entity.User, string, error) {
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailExists
	}

	password := req.Password
	if password == "" {
		buf := make([]byte, 9)
		if _, err := rand.Read(buf); err != nil {
			return nil, "", err
		}
		password = hex.EncodeToString(buf)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	hashStr := string(hash)

	now := time.Now()
	admin := &entity.User{
		Id:            uuid.New(),
		Email:         req.Email,
		FullName:      req.FullName,
		PasswordHash:  &hashStr,
		Role:          entity.UserRoleStaffAdmin,
		Status:        entity.UserStatusActive, // Admin-created accounts skip OTP
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uow.UserRepository().Create(ctx, admin); err != nil {
		return nil, "", err
	}

	m.publisher.PublishAdminCreated(ctx, admin.Id, admin.Email, actor)
	return admin, password, nil
}

// UpdateAdmin patches a staff admin account.
func (m *Manager) UpdateAdmin(ctx context.Context, uow unitofwork.UnitOfWork, adminId uuid.UUID, req dto.UpdateAdminRequest) (*entity.User, error) {
	admin, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: adminId})
	if err != nil {
		return nil, err
	}
	if admin == nil || !admin.Role.IsAdmin() {
		return nil, ErrNotFound
	}

	if req.FullName != "" {
		admin.FullName = req.FullName
	}
	if req.Status != "" {
		admin.Status = entity.UserStatus(req.Status)
	}
	admin.UpdatedAt = time.Now()

	if err := uow.UserRepository().Update(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// DeleteAdmin removes a staff admin account. Super admins cannot be
// removed through this path.
func (m *Manager) DeleteAdmin(ctx context.Context, uow unitofwork.UnitOfWork, adminId uuid.UUID, actor string) error {
	admin, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: adminId})
	if err != nil {
		return err
	}
	if admin == nil || admin.Role != entity.UserRoleStaffAdmin {
		return ErrNotFound
	}

	if err := uow.UserRepository().RevokeAllRefreshTokens(ctx, adminId); err != nil {
		return err
	}
	if err := uow.UserRepository().DeleteUnscoped(ctx, adminId); err != nil {
		return err
	}

	m.publisher.PublishAdminRemoved(ctx, adminId, admin.Email, actor)
	m.logger.Warn("ADMIN", "admin account removed", map[string]interface{}{
		"admin_id": adminId.String(),
		"actor":    actor,
	})
	return nil
}

func (m *Manager) findEndUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil || user.Role != entity.UserRoleUser {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, userId)
	}
	return user, nil
}

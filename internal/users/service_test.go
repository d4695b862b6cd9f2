package users

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/config"
	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

type stubUserRepo struct {
	users map[uuid.UUID]*models.User

	deactivated []uuid.UUID
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (r *stubUserRepo) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        dto.Email,
		PasswordHash: dto.PasswordHash,
		FullName:     dto.FullName,
		Role:         dto.Role,
		Active:       true,
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) List(ctx context.Context, role *enums.UserRole) ([]models.User, error) {
	var out []models.User
	for _, user := range r.users {
		if role != nil && user.Role != *role {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

func (r *stubUserRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if !active {
		r.deactivated = append(r.deactivated, id)
	}
	if user, ok := r.users[id]; ok {
		user.Active = active
	}
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newUsersFixture(t *testing.T) (*stubUserRepo, Service) {
	t.Helper()
	repo := newStubUserRepo()
	svc, err := NewService(repo, testPasswordConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return repo, svc
}

func TestCreateUserNormalizesEmailAndHashesPassword(t *testing.T) {
	repo, svc := newUsersFixture(t)

	dto, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email:    "  Ana.Torres@Armeria.EC ",
		Password: "hunter2hunter2",
		FullName: "Ana Torres",
		Role:     enums.UserRoleOperations,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if dto.Email != "ana.torres@armeria.ec" {
		t.Fatalf("email = %q, want lowercased trimmed", dto.Email)
	}

	stored := repo.users[dto.ID]
	if stored.PasswordHash == "" || strings.Contains(stored.PasswordHash, "hunter2") {
		t.Fatalf("password stored in the clear")
	}
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	_, svc := newUsersFixture(t)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email:    "ana@armeria.ec",
		Password: "short",
		FullName: "Ana",
		Role:     enums.UserRoleAdmin,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateUserRejectsInvalidRole(t *testing.T) {
	_, svc := newUsersFixture(t)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email:    "ana@armeria.ec",
		Password: "hunter2hunter2",
		FullName: "Ana",
		Role:     enums.UserRole("superuser"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListUsersFiltersByRole(t *testing.T) {
	_, svc := newUsersFixture(t)

	for _, role := range []enums.UserRole{enums.UserRoleAdmin, enums.UserRoleVendor, enums.UserRoleVendor} {
		if _, err := svc.CreateUser(context.Background(), CreateUserRequest{
			Email:    string(role) + "@armeria.ec",
			Password: "hunter2hunter2",
			FullName: "Test",
			Role:     role,
		}); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}

	vendor := enums.UserRoleVendor
	list, err := svc.ListUsers(context.Background(), &vendor)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d entries, want 2", len(list))
	}
}

func TestDeactivateUser(t *testing.T) {
	repo, svc := newUsersFixture(t)

	dto, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email:    "ana@armeria.ec",
		Password: "hunter2hunter2",
		FullName: "Ana",
		Role:     enums.UserRoleOperations,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := svc.DeactivateUser(context.Background(), dto.ID); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}
	if len(repo.deactivated) != 1 || repo.deactivated[0] != dto.ID {
		t.Fatalf("deactivation not persisted")
	}
}

func TestDeactivateUnknownUser(t *testing.T) {
	_, svc := newUsersFixture(t)

	err := svc.DeactivateUser(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

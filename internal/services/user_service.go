package services

import (
	"database/sql"
	"errors"
	"fmt"

	"prodtrack_backend/internal/models"
	"prodtrack_backend/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

var ErrLoginExists = errors.New("login already exists")

// CreateUserRequest is used for creating a new user account.
type CreateUserRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role"`
}

// UpdateUserRequest updates an account through the allow-listed field set.
// A supplied password is re-hashed; status changes maintain fired_at.
type UpdateUserRequest struct {
	Login    *string `json:"login"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
}

type UserService interface {
	CreateUser(req CreateUserRequest) (*models.User, error)
	GetUsers() ([]models.User, error)
	GetUserByID(id int64) (*models.User, error)
	UpdateUser(id int64, req UpdateUserRequest) (*models.User, error)
	DeleteUser(id int64) error
}

type userService struct {
	userRepo repositories.UserRepository
	db       *sql.DB
}

// NewUserService creates a new instance of UserService.
func NewUserService(ur repositories.UserRepository, db *sql.DB) UserService {
	return &userService{userRepo: ur, db: db}
}

func (s *userService) CreateUser(req CreateUserRequest) (*models.User, error) {
	if req.Login == "" || req.Password == "" || req.FullName == "" {
		return nil, fmt.Errorf("%w: login, password and full_name are required", ErrValidation)
	}
	role := req.Role
	if role == "" {
		role = models.RoleWorker
	}
	if role != models.RoleAdmin && role != models.RoleSupervisor && role != models.RoleWorker {
		return nil, fmt.Errorf("%w: unknown role '%s'", ErrValidation, role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Login:    req.Login,
		Password: string(hashed),
		FullName: req.FullName,
		Role:     role,
	}
	if err := s.userRepo.CreateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrLoginExists
		}
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (s *userService) GetUsers() ([]models.User, error) {
	return s.userRepo.GetUsers()
}

func (s *userService) GetUserByID(id int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateUser(id int64, req UpdateUserRequest) (*models.User, error) {
	fields := map[string]interface{}{}
	if req.Login != nil {
		fields["login"] = *req.Login
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		fields["password"] = string(hashed)
	}
	if req.FullName != nil {
		fields["full_name"] = *req.FullName
	}
	if req.Role != nil {
		if *req.Role != models.RoleAdmin && *req.Role != models.RoleSupervisor && *req.Role != models.RoleWorker {
			return nil, fmt.Errorf("%w: unknown role '%s'", ErrValidation, *req.Role)
		}
		fields["role"] = *req.Role
	}
	if req.Status != nil {
		if *req.Status != models.UserStatusActive && *req.Status != models.UserStatusFired {
			return nil, fmt.Errorf("%w: unknown status '%s'", ErrValidation, *req.Status)
		}
		fields["status"] = *req.Status
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields supplied", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	user, err := s.userRepo.UpdateUser(tx, id, fields)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrLoginExists
		}
		return nil, err
	}
	if req.Status != nil {
		if err := s.userRepo.SetFiredAt(tx, id, *req.Status == models.UserStatusFired); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.Password = ""
	return user, nil
}

func (s *userService) DeleteUser(id int64) error {
	if err := s.userRepo.DeleteUser(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

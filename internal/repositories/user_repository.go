package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"prodtrack_backend/internal/models"

	"github.com/lib/pq"
)

// UserRepository defines database operations for user accounts.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) error
	GetUserByID(id int64) (*models.User, error)
	GetUserByLogin(login string) (*models.User, error)
	GetUsers() ([]models.User, error)
	GetUserRole(executor SQLExecutor, id int64) (string, error)
	UpdateUser(executor SQLExecutor, id int64, fields map[string]interface{}) (*models.User, error)
	SetFiredAt(executor SQLExecutor, id int64, fired bool) error
	DeleteUser(executor SQLExecutor, id int64) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, login, password, full_name, role, status, fired_at, created_at, updated_at`

func scanUserRow(row scanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Login, &user.Password, &user.FullName, &user.Role,
		&user.Status, &user.FiredAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User) error {
	query := `INSERT INTO users (login, password, full_name, role, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, 'active', NOW(), NOW())
	          RETURNING id, status, created_at, updated_at`
	err := executor.QueryRow(query, user.Login, user.Password, user.FullName, user.Role).
		Scan(&user.ID, &user.Status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: login '%s' already exists (constraint: %s)", ErrDuplicateKey, user.Login, pqErr.Constraint)
		}
		return fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *userRepository) GetUserByID(id int64) (*models.User, error) {
	user, err := scanUserRow(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by ID %d: %v", ErrDatabaseError, id, err)
	}
	return user, nil
}

func (r *userRepository) GetUserByLogin(login string) (*models.User, error) {
	user, err := scanUserRow(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE login = $1`, login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by login: %v", ErrDatabaseError, err)
	}
	return user, nil
}

func (r *userRepository) GetUsers() ([]models.User, error) {
	users := []models.User{}
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: getting users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// GetUserRole is the single lookup used by the identity middleware.
func (r *userRepository) GetUserRole(executor SQLExecutor, id int64) (string, error) {
	var role string
	err := executor.QueryRow(`SELECT role FROM users WHERE id = $1`, id).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: getting role for user %d: %v", ErrDatabaseError, id, err)
	}
	return role, nil
}

func (r *userRepository) UpdateUser(executor SQLExecutor, id int64, fields map[string]interface{}) (*models.User, error) {
	builder := newUpdateBuilder("users", "login", "password", "full_name", "role", "status")
	for column, value := range fields {
		builder.Set(column, value)
	}
	query, args, err := builder.Build(id, userColumns)
	if err != nil {
		return nil, err
	}

	user, err := scanUserRow(executor.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: login already exists", ErrDuplicateKey)
		}
		return nil, fmt.Errorf("%w: updating user %d: %v", ErrDatabaseError, id, err)
	}
	return user, nil
}

// SetFiredAt stamps fired_at when an account transitions to fired and
// clears it when the account is restored.
func (r *userRepository) SetFiredAt(executor SQLExecutor, id int64, fired bool) error {
	var query string
	if fired {
		query = `UPDATE users SET fired_at = NOW(), updated_at = NOW() WHERE id = $1`
	} else {
		query = `UPDATE users SET fired_at = NULL, updated_at = NOW() WHERE id = $1`
	}
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: setting fired_at for user %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) DeleteUser(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting user %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

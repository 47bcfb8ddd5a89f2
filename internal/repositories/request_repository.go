package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"prodtrack_backend/internal/models"
)

// RequestRepository defines database operations for ad-hoc material
// requests and their items.
type RequestRepository interface {
	CreateRequest(executor SQLExecutor, request *models.Request) error
	CreateRequestItem(executor SQLExecutor, item *models.RequestItem) error
	GetRequests() ([]models.Request, error)
	GetRequestByID(id int64) (*models.Request, error)
	GetRequestItems(executor SQLExecutor, requestID int64) ([]models.RequestItem, error)
	GetRequestIDForItem(executor SQLExecutor, itemID int64) (int64, error)
	UpdateItemCompletion(executor SQLExecutor, itemID int64, quantityCompleted int64) (*models.RequestItem, error)
	SetRequestStatus(executor SQLExecutor, requestID int64, status string, completedAt *time.Time) error
	MarkRequestSent(executor SQLExecutor, requestID int64) error
	DeleteRequestItems(executor SQLExecutor, requestID int64) error
	DeleteRequest(executor SQLExecutor, requestID int64) error
}

type requestRepository struct {
	db *sql.DB
}

// NewRequestRepository creates a new instance of RequestRepository.
func NewRequestRepository(db *sql.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) CreateRequest(executor SQLExecutor, request *models.Request) error {
	query := `INSERT INTO requests (request_number, section_id, status, comment, created_by, created_at, updated_at)
	          VALUES ($1, $2, 'new', $3, $4, NOW(), NOW())
	          RETURNING id, status, created_at, updated_at`
	err := executor.QueryRow(query,
		request.RequestNumber, request.SectionID, request.Comment, request.CreatedBy,
	).Scan(&request.ID, &request.Status, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *requestRepository) CreateRequestItem(executor SQLExecutor, item *models.RequestItem) error {
	query := `INSERT INTO request_items (request_id, material_name, quantity_required, color, size, comment, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	          RETURNING id, quantity_completed, created_at, updated_at`
	err := executor.QueryRow(query,
		item.RequestID, item.MaterialName, item.QuantityRequired, item.Color, item.Size, item.Comment,
	).Scan(&item.ID, &item.QuantityCompleted, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: creating request item: %v", ErrDatabaseError, err)
	}
	return nil
}

const requestSelect = `SELECT r.id, r.request_number, r.section_id, r.status, r.comment, r.created_by,
       r.completed_at, r.created_at, r.updated_at,
       COALESCE(s.name, ''), COALESCE(u.full_name, '')
  FROM requests r
  LEFT JOIN sections s ON s.id = r.section_id
  LEFT JOIN users u ON u.id = r.created_by`

func scanRequestRow(row scanner) (*models.Request, error) {
	var request models.Request
	err := row.Scan(
		&request.ID, &request.RequestNumber, &request.SectionID, &request.Status,
		&request.Comment, &request.CreatedBy, &request.CompletedAt,
		&request.CreatedAt, &request.UpdatedAt,
		&request.SectionName, &request.CreatedByName,
	)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) GetRequests() ([]models.Request, error) {
	requests := []models.Request{}
	rows, err := r.db.Query(requestSelect + ` ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: getting requests: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		request, err := scanRequestRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning request: %v", ErrDatabaseError, err)
		}
		requests = append(requests, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating requests: %v", ErrDatabaseError, err)
	}

	for i := range requests {
		items, err := r.GetRequestItems(r.db, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].Items = items
	}
	return requests, nil
}

func (r *requestRepository) GetRequestByID(id int64) (*models.Request, error) {
	request, err := scanRequestRow(r.db.QueryRow(requestSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting request by ID %d: %v", ErrDatabaseError, id, err)
	}

	items, err := r.GetRequestItems(r.db, id)
	if err != nil {
		return nil, err
	}
	request.Items = items
	return request, nil
}

func (r *requestRepository) GetRequestItems(executor SQLExecutor, requestID int64) ([]models.RequestItem, error) {
	items := []models.RequestItem{}
	rows, err := executor.Query(
		`SELECT id, request_id, material_name, quantity_required, quantity_completed, color, size, comment, created_at, updated_at
		 FROM request_items WHERE request_id = $1 ORDER BY id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting items for request %d: %v", ErrDatabaseError, requestID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.RequestItem
		if err := rows.Scan(
			&item.ID, &item.RequestID, &item.MaterialName, &item.QuantityRequired, &item.QuantityCompleted,
			&item.Color, &item.Size, &item.Comment, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning request item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *requestRepository) GetRequestIDForItem(executor SQLExecutor, itemID int64) (int64, error) {
	var requestID int64
	err := executor.QueryRow(`SELECT request_id FROM request_items WHERE id = $1`, itemID).Scan(&requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: resolving request for item %d: %v", ErrDatabaseError, itemID, err)
	}
	return requestID, nil
}

func (r *requestRepository) UpdateItemCompletion(executor SQLExecutor, itemID int64, quantityCompleted int64) (*models.RequestItem, error) {
	item := &models.RequestItem{}
	query := `UPDATE request_items
	          SET quantity_completed = $1, updated_at = NOW()
	          WHERE id = $2
	          RETURNING id, request_id, material_name, quantity_required, quantity_completed, color, size, comment, created_at, updated_at`
	err := executor.QueryRow(query, quantityCompleted, itemID).Scan(
		&item.ID, &item.RequestID, &item.MaterialName, &item.QuantityRequired, &item.QuantityCompleted,
		&item.Color, &item.Size, &item.Comment, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating completion for request item %d: %v", ErrDatabaseError, itemID, err)
	}
	return item, nil
}

func (r *requestRepository) SetRequestStatus(executor SQLExecutor, requestID int64, status string, completedAt *time.Time) error {
	result, err := executor.Exec(
		`UPDATE requests SET status = $1, completed_at = $2, updated_at = NOW() WHERE id = $3`,
		status, completedAt, requestID)
	if err != nil {
		return fmt.Errorf("%w: setting status for request %d: %v", ErrDatabaseError, requestID, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRequestSent flips the status without touching completed_at.
func (r *requestRepository) MarkRequestSent(executor SQLExecutor, requestID int64) error {
	result, err := executor.Exec(
		`UPDATE requests SET status = 'sent', updated_at = NOW() WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("%w: marking request %d sent: %v", ErrDatabaseError, requestID, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *requestRepository) DeleteRequestItems(executor SQLExecutor, requestID int64) error {
	if _, err := executor.Exec(`DELETE FROM request_items WHERE request_id = $1`, requestID); err != nil {
		return fmt.Errorf("%w: deleting items for request %d: %v", ErrDatabaseError, requestID, err)
	}
	return nil
}

func (r *requestRepository) DeleteRequest(executor SQLExecutor, requestID int64) error {
	result, err := executor.Exec(`DELETE FROM requests WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("%w: deleting request %d: %v", ErrDatabaseError, requestID, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"prodtrack_backend/internal/models"
	"prodtrack_backend/internal/repositories"
)

var (
	ErrRequestNotFound     = errors.New("request not found")
	ErrRequestItemNotFound = errors.New("request item not found")
)

// CreateRequestItemRequest is one line of a new material request. Quantity
// may be omitted for free-text items.
type CreateRequestItemRequest struct {
	MaterialName     string  `json:"material_name" binding:"required"`
	QuantityRequired *int64  `json:"quantity_required"`
	Color            *string `json:"color"`
	Size             *string `json:"size"`
	Comment          string  `json:"comment"`
}

// CreateRequestRequest is used for creating a new material request.
type CreateRequestRequest struct {
	RequestNumber string                     `json:"request_number" binding:"required"`
	SectionID     *int64                     `json:"section_id"`
	Comment       string                     `json:"comment"`
	CreatedBy     *int64                     `json:"created_by"`
	Items         []CreateRequestItemRequest `json:"items" binding:"required,dive"`
}

type RequestService interface {
	CreateRequest(req CreateRequestRequest) (*models.Request, error)
	GetRequests() ([]models.Request, error)
	GetRequestByID(requestID int64) (*models.Request, error)
	UpdateItemCompletion(itemID, quantityCompleted int64) (*models.Request, error)
	SendRequest(requestID int64) (*models.Request, error)
	DeleteRequest(requestID int64) error
}

type requestService struct {
	requestRepo repositories.RequestRepository
	db          *sql.DB
}

// NewRequestService creates a new instance of RequestService.
func NewRequestService(rr repositories.RequestRepository, db *sql.DB) RequestService {
	return &requestService{requestRepo: rr, db: db}
}

func (s *requestService) CreateRequest(req CreateRequestRequest) (*models.Request, error) {
	if req.RequestNumber == "" || len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: request_number and items are required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	request := &models.Request{
		RequestNumber: req.RequestNumber,
		SectionID:     req.SectionID,
		Comment:       req.Comment,
		CreatedBy:     req.CreatedBy,
	}
	if err := s.requestRepo.CreateRequest(tx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for _, itemReq := range req.Items {
		if itemReq.MaterialName == "" {
			return nil, fmt.Errorf("%w: material_name is required for every item", ErrValidation)
		}
		item := models.RequestItem{
			RequestID:        request.ID,
			MaterialName:     itemReq.MaterialName,
			QuantityRequired: itemReq.QuantityRequired,
			Color:            itemReq.Color,
			Size:             itemReq.Size,
			Comment:          itemReq.Comment,
		}
		if err := s.requestRepo.CreateRequestItem(tx, &item); err != nil {
			return nil, fmt.Errorf("failed to create request item: %w", err)
		}
		request.Items = append(request.Items, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return request, nil
}

func (s *requestService) GetRequests() ([]models.Request, error) {
	return s.requestRepo.GetRequests()
}

func (s *requestService) GetRequestByID(requestID int64) (*models.Request, error) {
	request, err := s.requestRepo.GetRequestByID(requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// UpdateItemCompletion sets one item's completed quantity and recomputes the
// request status. Items without a required quantity count as satisfied.
func (s *requestService) UpdateItemCompletion(itemID, quantityCompleted int64) (*models.Request, error) {
	if quantityCompleted < 0 {
		return nil, fmt.Errorf("%w: quantity_completed cannot be negative", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	requestID, err := s.requestRepo.GetRequestIDForItem(tx, itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrRequestItemNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to resolve request item: %w", err)
	}
	if _, err := s.requestRepo.UpdateItemCompletion(tx, itemID, quantityCompleted); err != nil {
		return nil, fmt.Errorf("failed to update request item: %w", err)
	}

	items, err := s.requestRepo.GetRequestItems(tx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request items: %w", err)
	}
	newStatus := DeriveRequestStatus(items)
	var completedAt *time.Time
	if newStatus == StatusCompleted {
		now := time.Now()
		completedAt = &now
	}
	if err := s.requestRepo.SetRequestStatus(tx, requestID, newStatus, completedAt); err != nil {
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetRequestByID(requestID)
}

// SendRequest marks a request sent.
func (s *requestService) SendRequest(requestID int64) (*models.Request, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requestRepo.MarkRequestSent(tx, requestID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetRequestByID(requestID)
}

func (s *requestService) DeleteRequest(requestID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requestRepo.DeleteRequestItems(tx, requestID); err != nil {
		return fmt.Errorf("failed to delete request items: %w", err)
	}
	if err := s.requestRepo.DeleteRequest(tx, requestID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to delete request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

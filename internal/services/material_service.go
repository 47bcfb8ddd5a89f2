package services

import (
	"database/sql"
	"errors"
	"fmt"

	"prodtrack_backend/internal/models"
	"prodtrack_backend/internal/repositories"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrColorNotFound   = errors.New("color not found")
	ErrNameConflict    = errors.New("name already exists")
)

// CreateMaterialRequest carries a new material and its color links.
type CreateMaterialRequest struct {
	Name           string  `json:"name" binding:"required"`
	SectionID      *int64  `json:"section_id"`
	Quantity       int64   `json:"quantity"`
	AutoDeduct     *bool   `json:"auto_deduct"`
	ManualDeduct   bool    `json:"manual_deduct"`
	DefectTracking bool    `json:"defect_tracking"`
	ImageURL       string  `json:"image_url"`
	ColorIDs       []int64 `json:"color_ids"`
}

// UpdateMaterialRequest updates a material; nil ColorIDs leaves links alone,
// an empty slice clears them.
type UpdateMaterialRequest struct {
	Fields   map[string]interface{}
	ColorIDs *[]int64
}

type MaterialService interface {
	CreateSection(section *models.Section) error
	GetSections() ([]models.Section, error)
	UpdateSection(id int64, fields map[string]interface{}) (*models.Section, error)
	DeleteSection(id int64) error

	CreateColor(color *models.Color) error
	GetColors() ([]models.Color, error)
	UpdateColor(id int64, fields map[string]interface{}) (*models.Color, error)
	DeleteColor(id int64) error

	CreateMaterial(req CreateMaterialRequest) (*models.Material, error)
	GetMaterials(sectionID *int64) ([]models.Material, error)
	GetMaterialByID(id int64) (*models.Material, error)
	UpdateMaterial(id int64, req UpdateMaterialRequest) (*models.Material, error)
	DeleteMaterial(id int64) error
}

type materialService struct {
	materialRepo repositories.MaterialRepository
	db           *sql.DB
}

// NewMaterialService creates a new instance of MaterialService.
func NewMaterialService(mr repositories.MaterialRepository, db *sql.DB) MaterialService {
	return &materialService{materialRepo: mr, db: db}
}

func (s *materialService) CreateSection(section *models.Section) error {
	if section.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := s.materialRepo.CreateSection(s.db, section); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return fmt.Errorf("%w: section '%s'", ErrNameConflict, section.Name)
		}
		return err
	}
	return nil
}

func (s *materialService) GetSections() ([]models.Section, error) {
	return s.materialRepo.GetSections()
}

func (s *materialService) UpdateSection(id int64, fields map[string]interface{}) (*models.Section, error) {
	section, err := s.materialRepo.UpdateSection(s.db, id, fields)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrSectionNotFound, id)
		}
		if errors.Is(err, repositories.ErrNoUpdatableFields) {
			return nil, fmt.Errorf("%w: no updatable fields supplied", ErrValidation)
		}
		return nil, err
	}
	return section, nil
}

func (s *materialService) DeleteSection(id int64) error {
	if err := s.materialRepo.DeleteSection(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrSectionNotFound, id)
		}
		return err
	}
	return nil
}

func (s *materialService) CreateColor(color *models.Color) error {
	if color.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := s.materialRepo.CreateColor(s.db, color); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return fmt.Errorf("%w: color '%s'", ErrNameConflict, color.Name)
		}
		return err
	}
	return nil
}

func (s *materialService) GetColors() ([]models.Color, error) {
	return s.materialRepo.GetColors()
}

func (s *materialService) UpdateColor(id int64, fields map[string]interface{}) (*models.Color, error) {
	color, err := s.materialRepo.UpdateColor(s.db, id, fields)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrColorNotFound, id)
		}
		if errors.Is(err, repositories.ErrNoUpdatableFields) {
			return nil, fmt.Errorf("%w: no updatable fields supplied", ErrValidation)
		}
		return nil, err
	}
	return color, nil
}

func (s *materialService) DeleteColor(id int64) error {
	if err := s.materialRepo.DeleteColor(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrColorNotFound, id)
		}
		return err
	}
	return nil
}

func (s *materialService) CreateMaterial(req CreateMaterialRequest) (*models.Material, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	material := &models.Material{
		Name:           req.Name,
		SectionID:      req.SectionID,
		Quantity:       req.Quantity,
		AutoDeduct:     req.AutoDeduct == nil || *req.AutoDeduct,
		ManualDeduct:   req.ManualDeduct,
		DefectTracking: req.DefectTracking,
		ImageURL:       req.ImageURL,
	}
	if err := s.materialRepo.CreateMaterial(tx, material, req.ColorIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.materialRepo.GetMaterialByID(material.ID)
}

func (s *materialService) GetMaterials(sectionID *int64) ([]models.Material, error) {
	return s.materialRepo.GetMaterials(sectionID)
}

func (s *materialService) GetMaterialByID(id int64) (*models.Material, error) {
	material, err := s.materialRepo.GetMaterialByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrMaterialNotFound, id)
		}
		return nil, err
	}
	return material, nil
}

func (s *materialService) UpdateMaterial(id int64, req UpdateMaterialRequest) (*models.Material, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if len(req.Fields) > 0 {
		if _, err := s.materialRepo.UpdateMaterial(tx, id, req.Fields); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: ID %d", ErrMaterialNotFound, id)
			}
			if errors.Is(err, repositories.ErrNoUpdatableFields) {
				return nil, fmt.Errorf("%w: no updatable fields supplied", ErrValidation)
			}
			return nil, err
		}
	}
	if req.ColorIDs != nil {
		if err := s.materialRepo.ReplaceMaterialColors(tx, id, *req.ColorIDs); err != nil {
			return nil, fmt.Errorf("failed to update material colors: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetMaterialByID(id)
}

func (s *materialService) DeleteMaterial(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.materialRepo.DeleteMaterial(tx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrMaterialNotFound, id)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

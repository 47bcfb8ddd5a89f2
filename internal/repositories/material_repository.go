package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"prodtrack_backend/internal/models"

	"github.com/lib/pq"
)

// MaterialRepository defines database operations for sections, colors,
// materials and the inventory ledger primitives.
type MaterialRepository interface {
	// Section methods
	CreateSection(executor SQLExecutor, section *models.Section) error
	GetSectionByID(id int64) (*models.Section, error)
	GetSections() ([]models.Section, error)
	UpdateSection(executor SQLExecutor, id int64, fields map[string]interface{}) (*models.Section, error)
	DeleteSection(executor SQLExecutor, id int64) error

	// Color methods
	CreateColor(executor SQLExecutor, color *models.Color) error
	GetColorByID(id int64) (*models.Color, error)
	GetColors() ([]models.Color, error)
	UpdateColor(executor SQLExecutor, id int64, fields map[string]interface{}) (*models.Color, error)
	DeleteColor(executor SQLExecutor, id int64) error

	// Material methods
	CreateMaterial(executor SQLExecutor, material *models.Material, colorIDs []int64) error
	GetMaterialByID(id int64) (*models.Material, error)
	GetMaterials(sectionID *int64) ([]models.Material, error)
	UpdateMaterial(executor SQLExecutor, id int64, fields map[string]interface{}) (*models.Material, error)
	ReplaceMaterialColors(executor SQLExecutor, materialID int64, colorIDs []int64) error
	DeleteMaterial(executor SQLExecutor, id int64) error

	// Ledger primitives
	ApplyQuantityDelta(executor SQLExecutor, materialID int64, delta int64) (int64, error)
	UpsertColorInventory(executor SQLExecutor, materialID, colorID int64, delta int64) error
	InsertHistory(executor SQLExecutor, entry *models.MaterialHistory) error
	GetMaterialFlags(executor SQLExecutor, materialID int64) (quantity int64, autoDeduct bool, err error)
	GetHistory(materialID int64) ([]models.MaterialHistory, error)
}

type materialRepository struct {
	db *sql.DB
}

// NewMaterialRepository creates a new instance of MaterialRepository.
func NewMaterialRepository(db *sql.DB) MaterialRepository {
	return &materialRepository{db: db}
}

// --- Section Methods ---

func (r *materialRepository) CreateSection(executor SQLExecutor, section *models.Section) error {
	query := `INSERT INTO sections (name, parent_id, created_at, updated_at)
	          VALUES ($1, $2, NOW(), NOW())
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, section.Name, section.ParentID).
		Scan(&section.ID, &section.CreatedAt, &section.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: parent section does not exist", ErrNotFound)
		}
		return fmt.Errorf("%w: creating section: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *materialRepository) GetSectionByID(id int64) (*models.Section, error) {
	section := &models.Section{}
	query := `SELECT id, name, parent_id, created_at, updated_at FROM sections WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&section.ID, &section.Name, &section.ParentID, &section.CreatedAt, &section.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting section by ID %d: %v", ErrDatabaseError, id, err)
	}
	return section, nil
}

func (r *materialRepository) GetSections() ([]models.Section, error) {
	sections := []models.Section{}
	rows, err := r.db.Query(`SELECT id, name, parent_id, created_at, updated_at FROM sections ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: getting sections: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var section models.Section
		if err := rows.Scan(&section.ID, &section.Name, &section.ParentID, &section.CreatedAt, &section.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning section: %v", ErrDatabaseError, err)
		}
		sections = append(sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sections: %v", ErrDatabaseError, err)
	}
	return sections, nil
}

func (r *materialRepository) UpdateSection(executor SQLExecutor, id int64, fields map[string]interface{}) (*models.Section, error) {
	builder := newUpdateBuilder("sections", "name", "parent_id")
	for column, value := range fields {
		builder.Set(column, value)
	}
	query, args, err := builder.Build(id, "id, name, parent_id, created_at, updated_at")
	if err != nil {
		return nil, err
	}

	section := &models.Section{}
	err = executor.QueryRow(query, args...).
		Scan(&section.ID, &section.Name, &section.ParentID, &section.CreatedAt, &section.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating section %d: %v", ErrDatabaseError, id, err)
	}
	return section, nil
}

func (r *materialRepository) DeleteSection(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting section %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Color Methods ---

func (r *materialRepository) CreateColor(executor SQLExecutor, color *models.Color) error {
	query := `INSERT INTO colors (name, hex_code, created_at, updated_at)
	          VALUES ($1, $2, NOW(), NOW())
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, color.Name, color.HexCode).
		Scan(&color.ID, &color.CreatedAt, &color.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: creating color: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *materialRepository) GetColorByID(id int64) (*models.Color, error) {
	color := &models.Color{}
	query := `SELECT id, name, hex_code, created_at, updated_at FROM colors WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&color.ID, &color.Name, &color.HexCode, &color.CreatedAt, &color.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting color by ID %d: %v", ErrDatabaseError, id, err)
	}
	return color, nil
}

func (r *materialRepository) GetColors() ([]models.Color, error) {
	colors := []models.Color{}
	rows, err := r.db.Query(`SELECT id, name, hex_code, created_at, updated_at FROM colors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: getting colors: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var color models.Color
		if err := rows.Scan(&color.ID, &color.Name, &color.HexCode, &color.CreatedAt, &color.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning color: %v", ErrDatabaseError, err)
		}
		colors = append(colors, color)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating colors: %v", ErrDatabaseError, err)
	}
	return colors, nil
}

func (r *materialRepository) UpdateColor(executor SQLExecutor, id int64, fields map[string]interface{}) (*models.Color, error) {
	builder := newUpdateBuilder("colors", "name", "hex_code")
	for column, value := range fields {
		builder.Set(column, value)
	}
	query, args, err := builder.Build(id, "id, name, hex_code, created_at, updated_at")
	if err != nil {
		return nil, err
	}

	color := &models.Color{}
	err = executor.QueryRow(query, args...).
		Scan(&color.ID, &color.Name, &color.HexCode, &color.CreatedAt, &color.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating color %d: %v", ErrDatabaseError, id, err)
	}
	return color, nil
}

func (r *materialRepository) DeleteColor(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM colors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting color %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Material Methods ---

func (r *materialRepository) CreateMaterial(executor SQLExecutor, material *models.Material, colorIDs []int64) error {
	query := `INSERT INTO materials (name, section_id, quantity, auto_deduct, manual_deduct, defect_tracking, image_url, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query,
		material.Name, material.SectionID, material.Quantity,
		material.AutoDeduct, material.ManualDeduct, material.DefectTracking, material.ImageURL,
	).Scan(&material.ID, &material.CreatedAt, &material.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: section %v does not exist", ErrNotFound, material.SectionID)
		}
		return fmt.Errorf("%w: creating material: %v", ErrDatabaseError, err)
	}

	for _, colorID := range colorIDs {
		if _, err := executor.Exec(
			`INSERT INTO material_colors (material_id, color_id) VALUES ($1, $2)`,
			material.ID, colorID,
		); err != nil {
			return fmt.Errorf("%w: linking color %d to material %d: %v", ErrDatabaseError, colorID, material.ID, err)
		}
	}
	return nil
}

func scanMaterialRow(row scanner) (*models.Material, error) {
	var material models.Material
	err := row.Scan(
		&material.ID, &material.Name, &material.SectionID, &material.Quantity,
		&material.AutoDeduct, &material.ManualDeduct, &material.DefectTracking,
		&material.ImageURL, &material.CreatedAt, &material.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &material, nil
}

const materialColumns = `id, name, section_id, quantity, auto_deduct, manual_deduct, defect_tracking, image_url, created_at, updated_at`

func (r *materialRepository) GetMaterialByID(id int64) (*models.Material, error) {
	material, err := scanMaterialRow(r.db.QueryRow(
		`SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting material by ID %d: %v", ErrDatabaseError, id, err)
	}

	colors, err := r.getMaterialColors(id)
	if err != nil {
		return nil, err
	}
	material.Colors = colors

	inventory, err := r.getColorInventory(id)
	if err != nil {
		return nil, err
	}
	material.ColorInventory = inventory
	return material, nil
}

func (r *materialRepository) GetMaterials(sectionID *int64) ([]models.Material, error) {
	materials := []models.Material{}

	var rows *sql.Rows
	var err error
	if sectionID != nil {
		rows, err = r.db.Query(`SELECT `+materialColumns+` FROM materials WHERE section_id = $1 ORDER BY id`, *sectionID)
	} else {
		rows, err = r.db.Query(`SELECT ` + materialColumns + ` FROM materials ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting materials: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		material, err := scanMaterialRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning material: %v", ErrDatabaseError, err)
		}
		materials = append(materials, *material)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating materials: %v", ErrDatabaseError, err)
	}

	for i := range materials {
		colors, err := r.getMaterialColors(materials[i].ID)
		if err != nil {
			return nil, err
		}
		materials[i].Colors = colors

		inventory, err := r.getColorInventory(materials[i].ID)
		if err != nil {
			return nil, err
		}
		materials[i].ColorInventory = inventory
	}
	return materials, nil
}

func (r *materialRepository) getMaterialColors(materialID int64) ([]models.Color, error) {
	colors := []models.Color{}
	rows, err := r.db.Query(
		`SELECT c.id, c.name, c.hex_code, c.created_at, c.updated_at
		 FROM colors c
		 JOIN material_colors mc ON c.id = mc.color_id
		 WHERE mc.material_id = $1
		 ORDER BY c.name`, materialID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting colors for material %d: %v", ErrDatabaseError, materialID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var color models.Color
		if err := rows.Scan(&color.ID, &color.Name, &color.HexCode, &color.CreatedAt, &color.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning material color: %v", ErrDatabaseError, err)
		}
		colors = append(colors, color)
	}
	return colors, rows.Err()
}

// getColorInventory returns only cells with positive stock, matching the
// inventory readout the admin screens expect.
func (r *materialRepository) getColorInventory(materialID int64) ([]models.ColorInventoryCell, error) {
	cells := []models.ColorInventoryCell{}
	rows, err := r.db.Query(
		`SELECT mci.material_id, mci.color_id, mci.quantity, c.name, c.hex_code
		 FROM material_color_inventory mci
		 JOIN colors c ON c.id = mci.color_id
		 WHERE mci.material_id = $1 AND mci.quantity > 0
		 ORDER BY c.name`, materialID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting color inventory for material %d: %v", ErrDatabaseError, materialID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cell models.ColorInventoryCell
		if err := rows.Scan(&cell.MaterialID, &cell.ColorID, &cell.Quantity, &cell.ColorName, &cell.HexCode); err != nil {
			return nil, fmt.Errorf("%w: scanning color inventory cell: %v", ErrDatabaseError, err)
		}
		cells = append(cells, cell)
	}
	return cells, rows.Err()
}

func (r *materialRepository) UpdateMaterial(executor SQLExecutor, id int64, fields map[string]interface{}) (*models.Material, error) {
	builder := newUpdateBuilder("materials",
		"name", "section_id", "quantity", "auto_deduct", "manual_deduct", "defect_tracking", "image_url")
	for column, value := range fields {
		builder.Set(column, value)
	}
	query, args, err := builder.Build(id, materialColumns)
	if err != nil {
		return nil, err
	}

	material, err := scanMaterialRow(executor.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating material %d: %v", ErrDatabaseError, id, err)
	}
	return material, nil
}

func (r *materialRepository) ReplaceMaterialColors(executor SQLExecutor, materialID int64, colorIDs []int64) error {
	if _, err := executor.Exec(`DELETE FROM material_colors WHERE material_id = $1`, materialID); err != nil {
		return fmt.Errorf("%w: clearing colors for material %d: %v", ErrDatabaseError, materialID, err)
	}
	for _, colorID := range colorIDs {
		if _, err := executor.Exec(
			`INSERT INTO material_colors (material_id, color_id) VALUES ($1, $2)`,
			materialID, colorID,
		); err != nil {
			return fmt.Errorf("%w: linking color %d to material %d: %v", ErrDatabaseError, colorID, materialID, err)
		}
	}
	return nil
}

func (r *materialRepository) DeleteMaterial(executor SQLExecutor, id int64) error {
	if _, err := executor.Exec(`DELETE FROM material_colors WHERE material_id = $1`, id); err != nil {
		return fmt.Errorf("%w: deleting color links for material %d: %v", ErrDatabaseError, id, err)
	}
	result, err := executor.Exec(`DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting material %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Ledger Primitives ---

// ApplyQuantityDelta adjusts materials.quantity with a single additive
// statement so concurrent shipments cannot lose updates. Negative totals
// are allowed.
func (r *materialRepository) ApplyQuantityDelta(executor SQLExecutor, materialID int64, delta int64) (int64, error) {
	query, args, err := newUpdateBuilder("materials").
		SetRaw("quantity = quantity + $%d", delta).
		Build(materialID, "quantity")
	if err != nil {
		return 0, err
	}
	var newQuantity int64
	if err := executor.QueryRow(query, args...).Scan(&newQuantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: applying quantity delta to material %d: %v", ErrDatabaseError, materialID, err)
	}
	return newQuantity, nil
}

// UpsertColorInventory adds delta to the (material, color) cell, creating
// it at delta when absent.
func (r *materialRepository) UpsertColorInventory(executor SQLExecutor, materialID, colorID int64, delta int64) error {
	query := `INSERT INTO material_color_inventory (material_id, color_id, quantity)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (material_id, color_id)
	          DO UPDATE SET quantity = material_color_inventory.quantity + EXCLUDED.quantity, updated_at = NOW()`
	if _, err := executor.Exec(query, materialID, colorID, delta); err != nil {
		return fmt.Errorf("%w: upserting color inventory (material %d, color %d): %v", ErrDatabaseError, materialID, colorID, err)
	}
	return nil
}

func (r *materialRepository) InsertHistory(executor SQLExecutor, entry *models.MaterialHistory) error {
	query := `INSERT INTO material_history (material_id, user_id, quantity_change, action_type, comment, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW())
	          RETURNING id, created_at`
	err := executor.QueryRow(query,
		entry.MaterialID, entry.UserID, entry.QuantityChange, entry.ActionType, entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: inserting material history: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *materialRepository) GetMaterialFlags(executor SQLExecutor, materialID int64) (int64, bool, error) {
	var quantity int64
	var autoDeduct bool
	err := executor.QueryRow(
		`SELECT quantity, auto_deduct FROM materials WHERE id = $1`, materialID,
	).Scan(&quantity, &autoDeduct)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, ErrNotFound
		}
		return 0, false, fmt.Errorf("%w: getting flags for material %d: %v", ErrDatabaseError, materialID, err)
	}
	return quantity, autoDeduct, nil
}

func (r *materialRepository) GetHistory(materialID int64) ([]models.MaterialHistory, error) {
	entries := []models.MaterialHistory{}
	rows, err := r.db.Query(
		`SELECT id, material_id, user_id, quantity_change, action_type, comment, created_at
		 FROM material_history
		 WHERE material_id = $1
		 ORDER BY created_at DESC`, materialID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting history for material %d: %v", ErrDatabaseError, materialID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.MaterialHistory
		if err := rows.Scan(&entry.ID, &entry.MaterialID, &entry.UserID,
			&entry.QuantityChange, &entry.ActionType, &entry.Comment, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning material history: %v", ErrDatabaseError, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

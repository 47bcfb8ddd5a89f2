package handlers

import (
	"errors"
	"net/http"

	"prodtrack_backend/internal/middleware"
	"prodtrack_backend/internal/models"
	"prodtrack_backend/internal/services"
	"prodtrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// MaterialHandler serves sections, colors, materials and the manual
// quantity adjustment endpoint.
type MaterialHandler struct {
	materialService  services.MaterialService
	inventoryService services.InventoryService
}

// NewMaterialHandler creates a new MaterialHandler.
func NewMaterialHandler(ms services.MaterialService, is services.InventoryService) *MaterialHandler {
	return &MaterialHandler{materialService: ms, inventoryService: is}
}

// --- Sections ---

func (h *MaterialHandler) CreateSection(c *gin.Context) {
	var section models.Section
	if err := c.ShouldBindJSON(&section); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	if err := h.materialService.CreateSection(&section); err != nil {
		h.respondMaterialError(c, err, "CreateSection")
		return
	}
	c.JSON(http.StatusCreated, section)
}

func (h *MaterialHandler) GetSections(c *gin.Context) {
	sections, err := h.materialService.GetSections()
	if err != nil {
		utils.RespondInternalError(c, err, "GetSections: failed to fetch sections")
		return
	}
	c.JSON(http.StatusOK, sections)
}

// UpdateSectionRequest carries the mutable section fields.
type UpdateSectionRequest struct {
	Name     *string `json:"name"`
	ParentID *int64  `json:"parent_id"`
}

func (h *MaterialHandler) UpdateSection(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid section ID format")
		return
	}
	var req UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.ParentID != nil {
		fields["parent_id"] = *req.ParentID
	}
	section, err := h.materialService.UpdateSection(id, fields)
	if err != nil {
		h.respondMaterialError(c, err, "UpdateSection")
		return
	}
	c.JSON(http.StatusOK, section)
}

func (h *MaterialHandler) DeleteSection(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid section ID format")
		return
	}
	if err := h.materialService.DeleteSection(id); err != nil {
		h.respondMaterialError(c, err, "DeleteSection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Colors ---

func (h *MaterialHandler) CreateColor(c *gin.Context) {
	var color models.Color
	if err := c.ShouldBindJSON(&color); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	if err := h.materialService.CreateColor(&color); err != nil {
		h.respondMaterialError(c, err, "CreateColor")
		return
	}
	c.JSON(http.StatusCreated, color)
}

func (h *MaterialHandler) GetColors(c *gin.Context) {
	colors, err := h.materialService.GetColors()
	if err != nil {
		utils.RespondInternalError(c, err, "GetColors: failed to fetch colors")
		return
	}
	c.JSON(http.StatusOK, colors)
}

// UpdateColorRequest carries the mutable color fields.
type UpdateColorRequest struct {
	Name    *string `json:"name"`
	HexCode *string `json:"hex_code"`
}

func (h *MaterialHandler) UpdateColor(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid color ID format")
		return
	}
	var req UpdateColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.HexCode != nil {
		fields["hex_code"] = *req.HexCode
	}
	color, err := h.materialService.UpdateColor(id, fields)
	if err != nil {
		h.respondMaterialError(c, err, "UpdateColor")
		return
	}
	c.JSON(http.StatusOK, color)
}

func (h *MaterialHandler) DeleteColor(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid color ID format")
		return
	}
	if err := h.materialService.DeleteColor(id); err != nil {
		h.respondMaterialError(c, err, "DeleteColor")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Materials ---

func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var req services.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	material, err := h.materialService.CreateMaterial(req)
	if err != nil {
		h.respondMaterialError(c, err, "CreateMaterial")
		return
	}
	c.JSON(http.StatusCreated, material)
}

func (h *MaterialHandler) GetMaterials(c *gin.Context) {
	sectionID := utils.QueryInt64Ptr(c, "section_id")
	materials, err := h.materialService.GetMaterials(sectionID)
	if err != nil {
		utils.RespondInternalError(c, err, "GetMaterials: failed to fetch materials")
		return
	}
	c.JSON(http.StatusOK, materials)
}

func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid material ID format")
		return
	}
	material, err := h.materialService.GetMaterialByID(id)
	if err != nil {
		h.respondMaterialError(c, err, "GetMaterial")
		return
	}
	c.JSON(http.StatusOK, material)
}

// UpdateMaterialRequest carries the mutable material fields and the full
// color link set when it changes.
type UpdateMaterialRequest struct {
	Name           *string  `json:"name"`
	SectionID      *int64   `json:"section_id"`
	AutoDeduct     *bool    `json:"auto_deduct"`
	ManualDeduct   *bool    `json:"manual_deduct"`
	DefectTracking *bool    `json:"defect_tracking"`
	ImageURL       *string  `json:"image_url"`
	ColorIDs       *[]int64 `json:"color_ids"`
}

func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid material ID format")
		return
	}
	var req UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.SectionID != nil {
		fields["section_id"] = *req.SectionID
	}
	if req.AutoDeduct != nil {
		fields["auto_deduct"] = *req.AutoDeduct
	}
	if req.ManualDeduct != nil {
		fields["manual_deduct"] = *req.ManualDeduct
	}
	if req.DefectTracking != nil {
		fields["defect_tracking"] = *req.DefectTracking
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if len(fields) == 0 && req.ColorIDs == nil {
		utils.RespondValidationFailed(c, "No updatable fields supplied")
		return
	}

	material, err := h.materialService.UpdateMaterial(id, services.UpdateMaterialRequest{Fields: fields, ColorIDs: req.ColorIDs})
	if err != nil {
		h.respondMaterialError(c, err, "UpdateMaterial")
		return
	}
	c.JSON(http.StatusOK, material)
}

func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid material ID format")
		return
	}
	if err := h.materialService.DeleteMaterial(id); err != nil {
		h.respondMaterialError(c, err, "DeleteMaterial")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Quantity adjustment and history ---

// AdjustQuantity applies a signed quantity change to a material. The actor
// defaults to the authenticated caller.
func (h *MaterialHandler) AdjustQuantity(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid material ID format")
		return
	}
	var req services.AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}
	req.MaterialID = id
	if callerID := middleware.CallerID(c); callerID != nil {
		req.ActorID = callerID
	}

	newQuantity, err := h.inventoryService.AdjustQuantity(req)
	if err != nil {
		h.respondMaterialError(c, err, "AdjustQuantity")
		return
	}
	c.JSON(http.StatusOK, gin.H{"material_id": id, "quantity": newQuantity})
}

func (h *MaterialHandler) GetHistory(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid material ID format")
		return
	}
	history, err := h.inventoryService.GetHistory(id)
	if err != nil {
		utils.RespondInternalError(c, err, "GetHistory: failed to fetch material history")
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *MaterialHandler) respondMaterialError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	case errors.Is(err, services.ErrNameConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	case errors.Is(err, services.ErrSectionNotFound),
		errors.Is(err, services.ErrColorNotFound),
		errors.Is(err, services.ErrMaterialNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	default:
		utils.RespondInternalError(c, err, operation+": unexpected error")
	}
}

package handlers

import (
	"errors"
	"net/http"

	"prodtrack_backend/internal/middleware"
	"prodtrack_backend/internal/services"
	"prodtrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequestHandler serves ad-hoc material requests.
type RequestHandler struct {
	requestService services.RequestService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(rs services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: rs}
}

// CreateRequestItemPayload is one incoming request line; empty color and
// size land as NULL.
type CreateRequestItemPayload struct {
	MaterialName     string `json:"material_name" binding:"required"`
	QuantityRequired *int64 `json:"quantity_required"`
	Color            string `json:"color"`
	Size             string `json:"size"`
	Comment          string `json:"comment"`
}

// CreateRequestPayload is the incoming create-request body.
type CreateRequestPayload struct {
	RequestNumber string                     `json:"request_number" binding:"required"`
	SectionID     *int64                     `json:"section_id"`
	Comment       string                     `json:"comment"`
	Items         []CreateRequestItemPayload `json:"items" binding:"required,dive"`
}

func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var payload CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	req := services.CreateRequestRequest{
		RequestNumber: payload.RequestNumber,
		SectionID:     payload.SectionID,
		Comment:       payload.Comment,
		CreatedBy:     middleware.CallerID(c),
	}
	for _, item := range payload.Items {
		req.Items = append(req.Items, services.CreateRequestItemRequest{
			MaterialName:     item.MaterialName,
			QuantityRequired: item.QuantityRequired,
			Color:            utils.NewNullString(item.Color),
			Size:             utils.NewNullString(item.Size),
			Comment:          item.Comment,
		})
	}

	request, err := h.requestService.CreateRequest(req)
	if err != nil {
		h.respondRequestError(c, err, "CreateRequest")
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (h *RequestHandler) GetRequests(c *gin.Context) {
	requests, err := h.requestService.GetRequests()
	if err != nil {
		utils.RespondInternalError(c, err, "GetRequests: failed to fetch requests")
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *RequestHandler) GetRequest(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid request ID format")
		return
	}
	request, err := h.requestService.GetRequestByID(id)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		utils.RespondInternalError(c, err, "GetRequest: failed to fetch request")
		return
	}
	c.JSON(http.StatusOK, request)
}

// UpdateRequestItemPayload sets one item's completed quantity.
type UpdateRequestItemPayload struct {
	QuantityCompleted *int64 `json:"quantity_completed" binding:"required"`
}

// UpdateRequestItem sets an item's completed quantity and returns the
// request with its recomputed status.
func (h *RequestHandler) UpdateRequestItem(c *gin.Context) {
	itemID, ok := utils.ParseIDParam(c, "item_id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid request item ID format")
		return
	}
	var payload UpdateRequestItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	request, err := h.requestService.UpdateItemCompletion(itemID, *payload.QuantityCompleted)
	if err != nil {
		h.respondRequestError(c, err, "UpdateRequestItem")
		return
	}
	c.JSON(http.StatusOK, request)
}

// SendRequest marks a request sent.
func (h *RequestHandler) SendRequest(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid request ID format")
		return
	}
	request, err := h.requestService.SendRequest(id)
	if err != nil {
		h.respondRequestError(c, err, "SendRequest")
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid request ID format")
		return
	}
	if err := h.requestService.DeleteRequest(id); err != nil {
		h.respondRequestError(c, err, "DeleteRequest")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *RequestHandler) respondRequestError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	case errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrRequestItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	default:
		utils.RespondInternalError(c, err, operation+": unexpected error")
	}
}

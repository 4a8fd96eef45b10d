package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainerrors "go-payments.backend/internal/domain/errors"
	"go-payments.backend/internal/interfaces/http/middleware"
	"go-payments.backend/internal/interfaces/http/response"
	"go-payments.backend/internal/usecases"
)

// TemplateHandler handles payment template endpoints
type TemplateHandler struct {
	templateUsecase *usecases.TemplateUsecase
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateUsecase *usecases.TemplateUsecase) *TemplateHandler {
	return &TemplateHandler{templateUsecase: templateUsecase}
}

// ListTemplates lists the templates owned by the authenticated wallet
// GET /templates/:userAddress
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	address := c.Param("userAddress")
	if !sessionOwns(c, address) {
		response.Error(c, domainerrors.Unauthorized("session does not match requested address"))
		return
	}

	templates, err := h.templateUsecase.List(c.Request.Context(), address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, templates)
}

// CreateTemplate persists a dispatched batch as a template
// POST /templates/:userAddress
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	address := c.Param("userAddress")
	if !sessionOwns(c, address) {
		response.Error(c, domainerrors.Unauthorized("session does not match requested address"))
		return
	}

	var input usecases.CreateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	template, err := h.templateUsecase.Create(c.Request.Context(), address, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, template)
}

// DeleteTemplate cancels a template
// DELETE /templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid template id"))
		return
	}

	address, ok := middleware.GetUserAddress(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	if err := h.templateUsecase.Cancel(c.Request.Context(), uint(id), address); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Template cancelled successfully"})
}

// sessionOwns reports whether the authenticated session belongs to address.
func sessionOwns(c *gin.Context, address string) bool {
	sessionAddress, ok := middleware.GetUserAddress(c)
	return ok && strings.EqualFold(sessionAddress, address)
}

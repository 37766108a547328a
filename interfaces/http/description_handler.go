package http

import (
	"net/http"
	"strings"

	"job-board/domain/dto"
	"job-board/infrastructure/logger"
	"job-board/usecase"

	"github.com/gin-gonic/gin"
)

type IDescriptionHandler interface {
	Generate(c *gin.Context)
}

type DescriptionHandler struct {
	descriptionUsecase usecase.IDescriptionUsecase
}

func NewDescriptionHandler(descriptionUsecase usecase.IDescriptionUsecase) IDescriptionHandler {
	return &DescriptionHandler{descriptionUsecase: descriptionUsecase}
}

// Generate always answers with a GenerateDescriptionResult body; only a
// missing title is a client error.
func (h *DescriptionHandler) Generate(c *gin.Context) {
	var req dto.GenerateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.GenerateDescriptionResult{Error: ErrorUnmarshal})
		return
	}
	res := h.descriptionUsecase.GenerateDescription(c.Request.Context(), req)
	switch {
	case res.Success:
		c.JSON(http.StatusOK, res)
	case strings.TrimSpace(req.JobTitle) == "":
		c.JSON(http.StatusBadRequest, res)
	default:
		c.JSON(http.StatusBadGateway, res)
	}
}

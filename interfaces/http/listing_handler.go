package http

import (
	"errors"
	"net/http"
	"strconv"

	"job-board/domain/dto"
	"job-board/domain/model"
	"job-board/infrastructure/logger"
	"job-board/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type IListingHandler interface {
	ListPublic(c *gin.Context)
	ListOwned(c *gin.Context)
	GetByID(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	ToggleStatus(c *gin.Context)
}

type ListingHandler struct {
	listingUsecase usecase.IListingUsecase
}

func NewListingHandler(listingUsecase usecase.IListingUsecase) IListingHandler {
	return &ListingHandler{listingUsecase: listingUsecase}
}

func (h *ListingHandler) ListPublic(c *gin.Context) {
	q, ok := bindListingQuery(c)
	if !ok {
		return
	}
	writePage(c, h.listingUsecase.GetPage(c.Request.Context(), q))
}

func (h *ListingHandler) ListOwned(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	q, ok := bindListingQuery(c)
	if !ok {
		return
	}
	q.Scope, q.OwnerID = dto.ScopeOwner, owner
	writePage(c, h.listingUsecase.GetPage(c.Request.Context(), q))
}

func (h *ListingHandler) GetByID(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	listing, err := h.listingUsecase.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: listing})
}

func (h *ListingHandler) Create(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	var in dto.ListingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: ErrorUnmarshal})
		return
	}
	listing, err := h.listingUsecase.Create(c.Request.Context(), owner, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Res{ResponseCode: "201", ResponseMessage: "Created", Data: listing})
}

func (h *ListingHandler) Update(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}
	var in dto.ListingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: ErrorUnmarshal})
		return
	}
	listing, err := h.listingUsecase.Update(c.Request.Context(), owner, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Updated", Data: listing})
}

func (h *ListingHandler) Delete(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}
	if err := h.listingUsecase.Delete(c.Request.Context(), owner, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Deleted"})
}

func (h *ListingHandler) ToggleStatus(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}
	listing, err := h.listingUsecase.ToggleStatus(c.Request.Context(), owner, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Status updated", Data: listing})
}

// bindListingQuery reads filters and pagination. Missing page or limit take
// the defaults; unparsable ones are left to clamping.
func bindListingQuery(c *gin.Context) (dto.ListingQuery, bool) {
	q := dto.DefaultListingQuery()
	if err := c.ShouldBindQuery(&q.Filter); err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return q, false
	}
	if v, ok := c.GetQuery("page"); ok {
		q.Page, _ = strconv.Atoi(v)
	}
	if v, ok := c.GetQuery("limit"); ok {
		q.Limit, _ = strconv.Atoi(v)
	}
	return q, true
}

func writePage(c *gin.Context, page dto.ListingPage) {
	if page.Error != nil {
		c.JSON(http.StatusInternalServerError, page)
		return
	}
	c.JSON(http.StatusOK, page)
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil || id == uuid.Nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"})
		return uuid.Nil, false
	}
	return id, true
}

func listingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: model.ErrListingNotFound.Error()})
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthenticated), errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrListingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrEmailTaken):
		status = http.StatusConflict
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.GetLogger().WithField("error", err).Error("Unhandled error")
		msg = http.StatusText(status)
	}
	c.JSON(status, dto.Res{ResponseCode: strconv.Itoa(status), ResponseMessage: msg})
}

package handler

import (
	"net/http"

	"github.com/fotowand/backend/internal/model"
	"github.com/fotowand/backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookHandler struct {
	svc    *service.BookService
	logger *zap.Logger
}

func NewBookHandler(svc *service.BookService, logger *zap.Logger) *BookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookHandler{svc: svc, logger: logger}
}

// ListBooks godoc
// @Summary List books
// @Tags book
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.BookListResponse
// @Failure 401 {object} model.Response
// @Failure 500 {object} model.Response
// @Router /api/v1/book [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list books", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.Response{Message: messageGeneralError})
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	c.JSON(http.StatusOK, model.BookListResponse{Message: "OK", Data: books})
}

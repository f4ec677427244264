package handler

import (
	"net/http"

	"github.com/fotowand/backend/internal/model"
	"github.com/gin-gonic/gin"
)

// 헬스체크 엔드포인트
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

// 루트 엔드포인트
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.RootResponse{
		Status:  "ok",
		Message: "fotowand API server is running",
	})
}

// APIBanner answers the bare /api/v1 prefix.
func APIBanner(c *gin.Context) {
	c.JSON(http.StatusOK, model.Response{Message: "fotowand API v1"})
}

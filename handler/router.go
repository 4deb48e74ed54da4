package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khaledhikmat/vs-detect/middleware"
	"github.com/khaledhikmat/vs-detect/service/config"
	"github.com/khaledhikmat/vs-detect/service/inference"
)

func NewRouter(cfgSvc config.IService, inferenceSvc inference.IService) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = cfgSvc.GetServerMaxMultipartMemory()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprint(recovered)})
	}))

	detectHandler := NewDetectHandler(inferenceSvc)

	r.GET("/health", Health)
	r.HEAD("/health", Health)
	r.POST("/detect", detectHandler.Detect)

	return r
}

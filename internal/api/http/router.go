package http

import "github.com/gin-gonic/gin"

// Register registers the admin routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/collections/:collection", h.ListRecords)
	rg.POST("/collections/:collection", h.CreateRecord)
	rg.GET("/collections/:collection/:id", h.GetRecord)
	rg.PUT("/collections/:collection/:id", h.UpdateRecord)
	rg.DELETE("/collections/:collection/:id", h.DeleteRecord)
	rg.POST("/collections/:collection/:id/:section", h.AppendItem)
	rg.PUT("/collections/:collection/:id/:section/:index", h.ReplaceItem)
	rg.DELETE("/collections/:collection/:id/:section/:index", h.RemoveItem)

	rg.POST("/contact/:id/discussed", h.MarkDiscussed)

	rg.GET("/content/:doc", h.GetContent)
	rg.PUT("/content/:doc", h.SaveContent)
	rg.POST("/content/:doc/:section", h.AppendContentItem)
	rg.PUT("/content/:doc/:section/:index", h.ReplaceContentItem)
	rg.DELETE("/content/:doc/:section/:index", h.RemoveContentItem)

	rg.POST("/uploads/:collection", h.Upload)
}

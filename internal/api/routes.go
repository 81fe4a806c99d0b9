package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the sticker set API under /api
func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", health)

		api.GET("/sets", h.listSets)
		api.POST("/sets", h.createSet)
		api.GET("/sets/:set", h.getSet)
		api.DELETE("/sets/:set", h.deleteSet)
		api.GET("/sets/:set/archive", h.archive)

		api.PUT("/sets/:set/main", h.putMain)
		api.DELETE("/sets/:set/main", h.deleteMain)
		api.PUT("/sets/:set/tab", h.putTab)
		api.DELETE("/sets/:set/tab", h.deleteTab)

		api.POST("/sets/:set/sheet", h.addSheet)
		api.POST("/sets/:set/stickers", h.addStickers)
		api.DELETE("/sets/:set/stickers", h.clearStickers)
		api.PUT("/sets/:set/order", h.reorder)
		api.DELETE("/sets/:set/stickers/:image", h.removeSticker)
		api.POST("/sets/:set/stickers/:image/move", h.moveSticker)

		api.GET("/sets/:set/images/:image", h.imagePNG)
		api.GET("/sets/:set/images/:image/keycolor", h.keyColor)
		api.POST("/sets/:set/images/:image/chromakey", h.applyChromaKey)
		api.DELETE("/sets/:set/images/:image/chromakey", h.resetChromaKey)
	}
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/service"
)

func (h *Handler) contentDoc(c *gin.Context) (domain.ContentDoc, bool) {
	doc, err := domain.LookupContent(c.Param("doc"))
	if err != nil {
		writeError(c, "content", err)
		return domain.ContentDoc{}, false
	}
	return doc, true
}

func (h *Handler) GetContent(c *gin.Context) {
	doc, ok := h.contentDoc(c)
	if !ok {
		return
	}

	rec, err := h.content.Load(c.Request.Context(), doc)
	if err != nil {
		writeError(c, "content.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": rec})
}

func (h *Handler) SaveContent(c *gin.Context) {
	doc, ok := h.contentDoc(c)
	if !ok {
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content"})
		return
	}

	rec, err := h.content.Save(c.Request.Context(), doc, domain.Record(body))
	if err != nil {
		writeError(c, "content.save", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": rec})
}

func (h *Handler) AppendContentItem(c *gin.Context) {
	doc, ok := h.contentDoc(c)
	if !ok {
		return
	}
	var item any
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item"})
		return
	}

	rec, err := h.nested.Append(c.Request.Context(), service.ContentTarget(doc), c.Param("section"), item)
	if err != nil {
		writeError(c, "content.section", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": rec})
}

func (h *Handler) ReplaceContentItem(c *gin.Context) {
	doc, ok := h.contentDoc(c)
	if !ok {
		return
	}
	var item any
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item"})
		return
	}
	index, err := indexParam(c)
	if err != nil {
		writeError(c, "content.section", err)
		return
	}

	rec, err := h.nested.Replace(c.Request.Context(), service.ContentTarget(doc), c.Param("section"), index, item)
	if err != nil {
		writeError(c, "content.section", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": rec})
}

func (h *Handler) RemoveContentItem(c *gin.Context) {
	doc, ok := h.contentDoc(c)
	if !ok {
		return
	}
	index, err := indexParam(c)
	if err != nil {
		writeError(c, "content.section", err)
		return
	}

	rec, err := h.nested.RemoveAt(c.Request.Context(), service.ContentTarget(doc), c.Param("section"), index)
	if err != nil {
		writeError(c, "content.section", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": rec})
}

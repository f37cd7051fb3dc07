package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novaframes/content-admin/internal/blob"
	"github.com/novaframes/content-admin/internal/records/domain"
)

// Upload stores one file under the collection's blob prefix and returns its
// URL without touching any record.
func (h *Handler) Upload(c *gin.Context) {
	schema, err := domain.Lookup(c.Param("collection"))
	if err != nil {
		writeError(c, "uploads", err)
		return
	}
	if schema.BlobPrefix == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection has no images"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	data, err := readFile(fh, h.maxUpload)
	if err != nil {
		writeError(c, "uploads", err)
		return
	}

	path := blob.ObjectPath(schema.BlobPrefix, fh.Filename, h.now())
	url, err := h.blobs.Upload(c.Request.Context(), path, data, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, "uploads", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url, "path": path})
}

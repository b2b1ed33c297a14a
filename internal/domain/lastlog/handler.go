package lastlog

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tpaukrt/DRAMConsole/pkg/response"
)

// Handler wires HTTP routes to the Service.
type Handler struct {
	service *Service
}

// NewHandler returns a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublic mounts the read-only endpoints.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
	rg.GET("/lastlog", h.read)
	rg.GET("/lastlog/view", h.view)
}

// RegisterProtected mounts the mutating and archive endpoints.
func (h *Handler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/lastlog", h.truncate)
	rg.GET("/lastlog/archive", h.listArchives)
	rg.GET("/lastlog/archive/:id", h.getArchive)
}

func (h *Handler) health(c *gin.Context) {
	valid, written, evicted := h.service.CaptureStats()
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"ring_valid":     valid,
		"bytes_written":  written,
		"bytes_evicted":  evicted,
		"snapshot_bytes": h.service.SnapshotLen(),
	})
}

// read serves raw snapshot bytes with conventional file semantics: an
// offset past the end yields an empty 200, and a short body only
// happens at end of data.
func (h *Handler) read(c *gin.Context) {
	offset := response.GetOffset(c)
	limit := response.GetLimit(c, h.service.SnapshotLen(), 0)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", h.service.Read(offset, limit))
}

func (h *Handler) view(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(h.service.RenderView()))
}

// truncate implements the write contract: whatever the payload, the
// snapshot is emptied and the payload length is echoed as written.
func (h *Handler) truncate(c *gin.Context) {
	n, err := io.Copy(io.Discard, c.Request.Body)
	if err != nil {
		response.InternalServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"written": h.service.Truncate(int(n))})
}

func (h *Handler) listArchives(c *gin.Context) {
	limit := response.GetLimit(c, 20, 100)
	offset := response.GetOffset(c)
	archives, total, err := h.service.ListArchives(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Paginated(c, archives, total, offset, limit)
}

func (h *Handler) getArchive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "snapshot")
		return
	}
	archive, err := h.service.GetArchive(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", archive.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrArchiveNotFound):
		response.NotFound(c, "snapshot")
	case errors.Is(err, ErrArchiveDisabled):
		response.NotFound(c, "archive")
	default:
		response.InternalServerError(c, err)
	}
}

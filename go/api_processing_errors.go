package fiscalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	errorshttpmapper "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/adapters/http/mapper"
	errorstypes "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application/types"
	errorsports "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/ports"
)

// ProcessingErrorsAPI exposes the retry/skip tracker.
type ProcessingErrorsAPI struct {
	tracker errorsports.Tracker
}

func NewProcessingErrorsAPI(tracker errorsports.Tracker) ProcessingErrorsAPI {
	return ProcessingErrorsAPI{tracker: tracker}
}

// Get /v1/processing-errors
// Lists processing errors filtered by status and operation
func (api *ProcessingErrorsAPI) ListProcessingErrors(c *gin.Context) {
	filter := errorshttpmapper.ToListFilter(c.Query("status"), c.Query("operation"))
	items, err := api.tracker.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, errorshttpmapper.FromDomainList(items))
}

// Get /v1/processing-errors/stats
// Counts processing errors per status
func (api *ProcessingErrorsAPI) GetProcessingErrorStats(c *gin.Context) {
	stats, err := api.tracker.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, errorshttpmapper.FromStats(stats))
}

// Get /v1/processing-errors/:errorId
func (api *ProcessingErrorsAPI) GetProcessingError(c *gin.Context) {
	id, ok := parseIDParam(c, "errorId")
	if !ok {
		return
	}
	item, err := api.tracker.Get(c.Request.Context(), errorstypes.ErrorIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, errorshttpmapper.FromDomain(item))
}

// Post /v1/processing-errors/:errorId/retry
// Re-runs the failed invoice or label generation
func (api *ProcessingErrorsAPI) RetryProcessingError(c *gin.Context) {
	id, ok := parseIDParam(c, "errorId")
	if !ok {
		return
	}
	var payload errorshttpmapper.RetryRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := api.tracker.Retry(c.Request.Context(), errorshttpmapper.ToRetryInput(id, payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, errorshttpmapper.FromDomain(item))
}

// Post /v1/processing-errors/:errorId/skip
// Closes the error manually
func (api *ProcessingErrorsAPI) SkipProcessingError(c *gin.Context) {
	id, ok := parseIDParam(c, "errorId")
	if !ok {
		return
	}
	var payload errorshttpmapper.SkipRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := api.tracker.Skip(c.Request.Context(), errorshttpmapper.ToSkipInput(id, payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, errorshttpmapper.FromDomain(item))
}

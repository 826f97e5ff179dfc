package fiscalserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	manifesthttpmapper "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/adapters/http/mapper"
	manifestsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application"
	manifeststypes "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application/types"
	manifestsports "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

// ManifestsAPI wires HTTP transport with the manifests bounded context service and workflows.
type ManifestsAPI struct {
	service   manifestsports.Service
	workflows manifestsports.WorkflowOrchestrator
}

// NewManifestsAPI creates a ManifestsAPI backed by the provided service.
func NewManifestsAPI(service manifestsports.Service, workflows manifestsports.WorkflowOrchestrator) ManifestsAPI {
	return ManifestsAPI{service: service, workflows: workflows}
}

// Get /v1/manifests/:manifestId
// Loads a manifest with its items
func (api *ManifestsAPI) GetManifest(c *gin.Context) {
	id, ok := parseIDParam(c, "manifestId")
	if !ok {
		return
	}
	manifest, err := api.service.GetManifest(c.Request.Context(), manifeststypes.ManifestIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, manifesthttpmapper.FromDomain(manifest))
}

// Post /v1/manifests/:manifestId/verification
// Parks a draft manifest for verification
func (api *ManifestsAPI) RequestVerification(c *gin.Context) {
	id, ok := parseIDParam(c, "manifestId")
	if !ok {
		return
	}
	manifest, err := api.service.RequestVerification(c.Request.Context(), manifeststypes.ManifestIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, manifesthttpmapper.FromDomain(manifest))
}

// Post /v1/manifests/:manifestId/confirm
// Confirms a manifest for processing
func (api *ManifestsAPI) ConfirmManifest(c *gin.Context) {
	id, ok := parseIDParam(c, "manifestId")
	if !ok {
		return
	}
	var payload manifesthttpmapper.ActorRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	manifest, err := api.service.Confirm(c.Request.Context(), manifesthttpmapper.ToConfirmInput(id, payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, manifesthttpmapper.FromDomain(manifest))
}

// Post /v1/manifests/:manifestId/process
// Runs the fiscal flow matching the manifest kind
func (api *ManifestsAPI) ProcessManifest(c *gin.Context) {
	id, ok := parseIDParam(c, "manifestId")
	if !ok {
		return
	}
	var payload manifesthttpmapper.ActorRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	result, err := api.process(c.Request.Context(), manifesthttpmapper.ToProcessInput(id, payload))
	if err != nil {
		if errors.Is(err, manifestsapp.ErrPrecondition) {
			if result == nil {
				result = manifeststypes.NewRejectedResult(err.Error())
			}
			problem, _ := responder.Map(err)
			respondProblem(c, problem.WithExtension("result", result))
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get /v1/manifests/:manifestId/audit
// Lists the audit trail written while settling the manifest
func (api *ManifestsAPI) ListManifestAudit(c *gin.Context) {
	id, ok := parseIDParam(c, "manifestId")
	if !ok {
		return
	}
	entries, err := api.service.ListAudit(c.Request.Context(), manifeststypes.ManifestIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, manifesthttpmapper.FromAuditEntries(entries))
}

func (api *ManifestsAPI) process(ctx context.Context, input manifeststypes.ProcessManifestInput) (*manifeststypes.BatchResult, error) {
	if api.workflows != nil {
		return api.workflows.ProcessManifest(ctx, input)
	}
	return api.service.Process(ctx, input)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		if err == nil {
			err = errors.New(name + " must be positive")
		}
		respondError(c, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}

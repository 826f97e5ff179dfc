package fiscalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	manifestsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/application"
	manifestsports "github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
	errorsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/processingerrors/application"
	returnsapp "github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/application"
	apierrors "github.com/Apurer/go-gin-fiscal-server/internal/shared/errors"
)

// responder maps application errors of every bounded context; order matters for wrapped chains.
var responder = apierrors.NewResponder("",
	apierrors.Match(apierrors.ErrNotFound, manifestsports.ErrNotFound, manifestsports.ErrInvoiceNotFound, errorsapp.ErrNotFound, returnsapp.ErrNotFound),
	apierrors.Match(apierrors.ErrPrecondition, manifestsapp.ErrPrecondition),
	apierrors.Match(apierrors.ErrRetryLimitReached, errorsapp.ErrRetryLimitReached),
	apierrors.Match(apierrors.ErrStockReversal, returnsapp.ErrReversal),
	apierrors.Match(apierrors.ErrValidation, manifestsapp.ErrInvalidInput, errorsapp.ErrInvalidInput, returnsapp.ErrInvalidInput),
	apierrors.Match(apierrors.ErrConflict, errorsapp.ErrTerminal, errorsapp.ErrInvalidTransition, returnsapp.ErrConflict),
)

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondError answers transport-level failures such as malformed bodies or ids.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	respondProblem(c, problem)
}

func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

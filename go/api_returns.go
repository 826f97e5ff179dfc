package fiscalserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	returnshttpmapper "github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/adapters/http/mapper"
	returnstypes "github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/application/types"
	returnsports "github.com/Apurer/go-gin-fiscal-server/internal/domains/returns/ports"
)

// ReturnsAPI links scanned return shipments to their orders.
type ReturnsAPI struct {
	linker returnsports.Linker
}

func NewReturnsAPI(linker returnsports.Linker) ReturnsAPI {
	return ReturnsAPI{linker: linker}
}

// Post /v1/returns/links
// Links a return shipment to an order and reverses its stock once
func (api *ReturnsAPI) LinkReturn(c *gin.Context) {
	var payload returnshttpmapper.LinkRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	result, err := api.linker.Link(c.Request.Context(), returnshttpmapper.ToLinkInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, returnshttpmapper.FromResult(result))
}

// Get /v1/returns/links/:shipmentNumber
func (api *ReturnsAPI) GetReturnLink(c *gin.Context) {
	shipment := c.Param("shipmentNumber")
	if shipment == "" {
		respondError(c, http.StatusBadRequest, errors.New("shipmentNumber is required"))
		return
	}
	link, err := api.linker.Get(c.Request.Context(), returnstypes.ShipmentIdentifier{ReturnShipmentNumber: shipment})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, returnshttpmapper.FromDomain(link))
}

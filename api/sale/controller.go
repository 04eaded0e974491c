/*
Package sale - sale API controller.

Responsibilities:
 1. Parse and bind HTTP requests.
 2. Call the application service.
 3. Render responses and errors through the response package.

Binding errors return 400 via response.HandleError; business errors go
through response.HandleAppError, which maps domain sentinels to status codes
(not found 404, rule violations 422, optimistic-lock conflicts 409).
*/
package sale

import (
	"net/http"

	"salesvc/api/response"
	saleapp "salesvc/application/sale"
	"salesvc/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Controller handles the /sales routes.
type Controller struct {
	saleService *saleapp.Service
}

func NewController(saleService *saleapp.Service) *Controller {
	return &Controller{
		saleService: saleService,
	}
}

// RegisterRoutes registers the sale routes.
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	saleGroup := router.Group("/sales")
	{
		saleGroup.POST("", c.CreateSale)
		saleGroup.GET("", c.ListSales)
		saleGroup.GET("/:id", c.GetSale)
		saleGroup.GET("/number/:number", c.GetSaleByNumber)
		saleGroup.POST("/:id/cancel", c.CancelSale)
		saleGroup.DELETE("/:id", c.DeleteSale)
		saleGroup.DELETE("/:id/items/:itemId", c.CancelItem)
	}
}

// CreateSale creates a sale with its items.
// POST /api/v1/sales
func (c *Controller) CreateSale(ctx *gin.Context) {
	var req saleapp.CreateSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	resp, err := c.saleService.CreateSale(ctx.Request.Context(), &req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, resp, "sale created successfully")
}

// GetSale returns one sale.
// GET /api/v1/sales/:id
func (c *Controller) GetSale(ctx *gin.Context) {
	saleID := ctx.Param("id")
	if saleID == "" {
		response.HandleError(ctx, errors.BadRequest("sale ID is required"), "sale ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.saleService.GetSale(ctx.Request.Context(), saleID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "sale retrieved successfully")
}

// GetSaleByNumber returns one sale by its business number.
// GET /api/v1/sales/number/:number
func (c *Controller) GetSaleByNumber(ctx *gin.Context) {
	saleNumber := ctx.Param("number")
	if saleNumber == "" {
		response.HandleError(ctx, errors.BadRequest("sale number is required"), "sale number is required", http.StatusBadRequest)
		return
	}

	resp, err := c.saleService.GetSaleByNumber(ctx.Request.Context(), saleNumber)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "sale retrieved successfully")
}

// ListSales returns a filtered, paginated sale listing.
// GET /api/v1/sales
func (c *Controller) ListSales(ctx *gin.Context) {
	var req saleapp.ListSalesRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}

	sales, total, err := c.saleService.ListSales(ctx.Request.Context(), &req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	pagination := response.NewPagination(req.Page, req.Size, total)
	response.HandlePaginated(ctx, sales, pagination, "sales retrieved successfully")
}

// CancelSale cancels a whole sale.
// POST /api/v1/sales/:id/cancel
func (c *Controller) CancelSale(ctx *gin.Context) {
	saleID := ctx.Param("id")
	if saleID == "" {
		response.HandleError(ctx, errors.BadRequest("sale ID is required"), "sale ID is required", http.StatusBadRequest)
		return
	}

	resp, err := c.saleService.CancelSale(ctx.Request.Context(), saleID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, resp, "sale cancelled successfully")
}

// CancelItemResponse wraps the sale plus the cascade flag.
type CancelItemResponse struct {
	Sale             *saleapp.SaleResponse `json:"sale"`
	WasAutoCancelled bool                  `json:"was_auto_cancelled"`
}

// CancelItem removes one item from a sale. Removing the last active item
// auto-cancels the sale, reported by was_auto_cancelled.
// DELETE /api/v1/sales/:id/items/:itemId
func (c *Controller) CancelItem(ctx *gin.Context) {
	saleID := ctx.Param("id")
	itemID := ctx.Param("itemId")
	if saleID == "" || itemID == "" {
		response.HandleError(ctx, errors.BadRequest("sale ID and item ID are required"), "sale ID and item ID are required", http.StatusBadRequest)
		return
	}

	resp, autoCancelled, err := c.saleService.CancelItem(ctx.Request.Context(), saleID, itemID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, CancelItemResponse{
		Sale:             resp,
		WasAutoCancelled: autoCancelled,
	}, "item cancelled successfully")
}

// DeleteSale physically removes a sale record.
// DELETE /api/v1/sales/:id
func (c *Controller) DeleteSale(ctx *gin.Context) {
	saleID := ctx.Param("id")
	if saleID == "" {
		response.HandleError(ctx, errors.BadRequest("sale ID is required"), "sale ID is required", http.StatusBadRequest)
		return
	}

	if err := c.saleService.DeleteSale(ctx.Request.Context(), saleID); err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleNoContent(ctx)
}

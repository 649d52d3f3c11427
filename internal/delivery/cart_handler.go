package delivery

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	useCase usecase.CartUseCase
	log     *logrus.Logger
}

func NewCartHandler(uc usecase.CartUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{useCase: uc, log: logger}
}

type addToCartRequest struct {
	ProductID int64  `json:"productId" binding:"required,gt=0"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type updateCartLineRequest struct {
	Quantity *int    `json:"quantity"`
	Color    *string `json:"color"`
}

func (h *CartHandler) GetCart(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		return
	}
	cart, err := h.useCase.GetCart(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, h.log, "retrieve cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		return
	}
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	cart, err := h.useCase.AddItem(c.Request.Context(), customerID, req.ProductID, req.Color, req.Quantity)
	if err != nil {
		respondError(c, h.log, "add item to cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item added to cart", cart)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		return
	}
	lineID, ok := pathID(c, "lineId", "cart line")
	if !ok {
		return
	}
	var req updateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	cart, err := h.useCase.UpdateItem(c.Request.Context(), customerID, lineID, usecase.CartLineUpdate{
		Quantity: req.Quantity,
		Color:    req.Color,
	})
	if err != nil {
		respondError(c, h.log, "update cart item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart item updated", cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		return
	}
	lineID, ok := pathID(c, "lineId", "cart line")
	if !ok {
		return
	}
	cart, err := h.useCase.RemoveItem(c.Request.Context(), customerID, lineID)
	if err != nil {
		respondError(c, h.log, "remove cart item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart item removed", cart)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.useCase.ClearCart(c.Request.Context(), customerID); err != nil {
		respondError(c, h.log, "clear cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart cleared", nil)
}

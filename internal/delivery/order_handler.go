package delivery

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase usecase.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc usecase.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{useCase: uc, log: logger}
}

type orderLineRequest struct {
	ProductID int64  `json:"productId"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type updateOrderStatusRequest struct {
	Status        *domain.OrderStatus   `json:"status"`
	ReceiptStatus *domain.ReceiptStatus `json:"receiptStatus"`
	AdminNotes    *string               `json:"adminNotes"`
}

// PlaceOrder accepts multipart form data: a receipt file, the declared
// totalAmount and optionally items as a JSON array. Without items the
// customer's cart is ordered.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		return
	}

	total, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("totalAmount")))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid or missing totalAmount")
		return
	}

	var lines []usecase.OrderLine
	if raw, present := c.GetPostForm("items"); present {
		var items []orderLineRequest
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid items: "+err.Error())
			return
		}
		lines = make([]usecase.OrderLine, 0, len(items))
		for _, it := range items {
			lines = append(lines, usecase.OrderLine{ProductID: it.ProductID, Color: it.Color, Quantity: it.Quantity})
		}
	}

	input := usecase.PlaceOrderInput{CustomerID: customerID, Items: lines, DeclaredTotal: total}
	fileHeader, err := c.FormFile("receipt")
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, h.log, "read receipt", err)
			return
		}
		defer file.Close()
		input.Receipt = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// left nil; the use case rejects it
	default:
		ErrorResponse(c, http.StatusBadRequest, "Invalid receipt upload: "+err.Error())
		return
	}

	order, err := h.useCase.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, "place order", err)
		return
	}
	h.log.Infof("Order created successfully: ID %d for customer %d", order.ID, order.CustomerID)
	SuccessResponse(c, http.StatusCreated, "Order placed successfully", order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		return
	}
	limit, offset := page(c)
	orders, err := h.useCase.ListOrders(c.Request.Context(), customerID, limit, offset)
	if err != nil {
		respondError(c, h.log, "list orders", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	order, err := h.useCase.GetOrder(c.Request.Context(), customerID, id)
	if err != nil {
		respondError(c, h.log, "retrieve order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	if err := h.useCase.CancelOrder(c.Request.Context(), customerID, id); err != nil {
		respondError(c, h.log, "cancel order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order cancelled successfully", nil)
}

func (h *OrderHandler) DownloadReceipt(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	path, err := h.useCase.ReceiptFile(c.Request.Context(), customerID, id)
	if err != nil {
		respondError(c, h.log, "retrieve receipt", err)
		return
	}
	c.File(path)
}

func (h *OrderHandler) AdminListOrders(c *gin.Context) {
	customerID, ok := queryID(c, "customerId")
	if !ok {
		return
	}
	limit, offset := page(c)
	orders, err := h.useCase.ListAllOrders(c.Request.Context(), domain.OrderFilter{
		CustomerID:    customerID,
		Status:        domain.OrderStatus(c.Query("status")),
		ReceiptStatus: domain.ReceiptStatus(c.Query("receiptStatus")),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		respondError(c, h.log, "list orders", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) AdminGetOrder(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	order, err := h.useCase.GetOrderAdmin(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "retrieve order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.useCase.UpdateOrderStatus(c.Request.Context(), id, domain.OrderStatusUpdate{
		Status:        req.Status,
		ReceiptStatus: req.ReceiptStatus,
		AdminNotes:    req.AdminNotes,
	})
	if err != nil {
		respondError(c, h.log, "update order status", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order status updated successfully", order)
}

func (h *OrderHandler) AdminDownloadReceipt(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	path, err := h.useCase.AdminReceiptFile(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "retrieve receipt", err)
		return
	}
	c.File(path)
}

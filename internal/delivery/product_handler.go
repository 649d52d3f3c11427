package delivery

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{useCase: uc, log: logger}
}

type productRequest struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Price       decimal.Decimal       `json:"price"`
	CategoryID  *int64                `json:"categoryId"`
	Colors      []domain.ColorVariant `json:"colors"`
	Status      domain.ProductStatus  `json:"status"`
}

type productUpdateRequest struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Price       *decimal.Decimal       `json:"price"`
	CategoryID  *int64                 `json:"categoryId"`
	Colors      *[]domain.ColorVariant `json:"colors"`
	Status      *domain.ProductStatus  `json:"status"`
}

type colorQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// ListProducts is the public catalog: active products only.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	categoryID, ok := queryID(c, "categoryId")
	if !ok {
		return
	}
	limit, offset := page(c)
	products, err := h.useCase.ListActiveProducts(c.Request.Context(), categoryID, limit, offset)
	if err != nil {
		respondError(c, h.log, "list products", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}
	product, err := h.useCase.GetActiveProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "retrieve product", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) AdminListProducts(c *gin.Context) {
	categoryID, ok := queryID(c, "categoryId")
	if !ok {
		return
	}
	limit, offset := page(c)
	products, err := h.useCase.ListProducts(c.Request.Context(), domain.ProductFilter{
		Status:     domain.ProductStatus(c.Query("status")),
		CategoryID: categoryID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondError(c, h.log, "list products", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) AdminGetProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}
	product, err := h.useCase.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "retrieve product", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.useCase.CreateProduct(c.Request.Context(), &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Colors:      req.Colors,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, h.log, "create product", err)
		return
	}
	h.log.Infof("Product created successfully: ID %d, Name %s", product.ID, product.Name)
	SuccessResponse(c, http.StatusCreated, "Product created successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}
	var req productUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.useCase.UpdateProduct(c.Request.Context(), id, domain.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Colors:      req.Colors,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, h.log, "update product", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}
	if err := h.useCase.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.log, "delete product", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) SetColorQuantity(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}
	var req colorQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	product, err := h.useCase.SetColorQuantity(c.Request.Context(), id, c.Param("color"), req.Quantity)
	if err != nil {
		respondError(c, h.log, "set color quantity", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Color quantity updated successfully", product)
}

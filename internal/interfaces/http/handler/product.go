package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/wagginmeals/backend/internal/application/catalog"
)

// ProductCatalog is the product and variant use case surface
type ProductCatalog interface {
	ListPublic(ctx context.Context, f catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error)
	List(ctx context.Context, f catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error)
	GetByHandle(ctx context.Context, handle string) (*catalogapp.ProductResponse, error)
	VariantsByHandle(ctx context.Context, handle string) ([]catalogapp.VariantResponse, error)
	Create(ctx context.Context, req catalogapp.ProductRequest) (*catalogapp.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.ProductRequest) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListVariants(ctx context.Context, productID uuid.UUID) ([]catalogapp.VariantResponse, error)
	CreateVariant(ctx context.Context, productID uuid.UUID, req catalogapp.VariantRequest) (*catalogapp.VariantResponse, error)
	UpdateVariant(ctx context.Context, id uuid.UUID, req catalogapp.VariantRequest) (*catalogapp.VariantResponse, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error
}

// ProductHandler handles products and their variants
type ProductHandler struct {
	BaseHandler
	service ProductCatalog
}

// NewProductHandler creates a new product handler
func NewProductHandler(service ProductCatalog) *ProductHandler {
	return &ProductHandler{service: service}
}

// ListPublic godoc
//
//	@ID			listProducts
//	@Summary	List active products
//	@Tags		products
//	@Produce	json
//	@Param		search		query		string	false	"Search"
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	APIResponse[[]catalogapp.ProductResponse]
//	@Router		/products [get]
func (h *ProductHandler) ListPublic(c *gin.Context) {
	h.list(c, h.service.ListPublic)
}

// List godoc
//
//	@ID			adminListProducts
//	@Summary	List all products
//	@Tags		admin-products
//	@Produce	json
//	@Param		search				query		string	false	"Search"
//	@Param		include_archived	query		bool	false	"Include archived"
//	@Param		page				query		int		false	"Page"
//	@Param		page_size			query		int		false	"Page size"
//	@Success	200					{object}	APIResponse[[]catalogapp.ProductResponse]
//	@Router		/admin/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	h.list(c, h.service.List)
}

func (h *ProductHandler) list(c *gin.Context, fetch func(context.Context, catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error)) {
	var f catalogapp.ProductListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
	products, total, err := fetch(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, f.Page, f.PageSize)
}

// GetByHandle godoc
//
//	@ID			getProduct
//	@Summary	Get a product by handle
//	@Tags		products
//	@Produce	json
//	@Param		handle	path		string	true	"Product handle"
//	@Success	200		{object}	APIResponse[catalogapp.ProductResponse]
//	@Failure	404		{object}	ErrorResponse
//	@Router		/products/{handle} [get]
func (h *ProductHandler) GetByHandle(c *gin.Context) {
	product, err := h.service.GetByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// VariantsByHandle godoc
//
//	@ID			listProductVariants
//	@Summary	List the variants of a product with stock status
//	@Tags		products
//	@Produce	json
//	@Param		handle	path		string	true	"Product handle"
//	@Success	200		{object}	APIResponse[[]catalogapp.VariantResponse]
//	@Failure	404		{object}	ErrorResponse
//	@Router		/products/{handle}/variants [get]
func (h *ProductHandler) VariantsByHandle(c *gin.Context) {
	variants, err := h.service.VariantsByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variants)
}

// Create godoc
//
//	@ID			adminCreateProduct
//	@Summary	Create a product
//	@Tags		admin-products
//	@Accept		json
//	@Produce	json
//	@Param		request	body		catalogapp.ProductRequest	true	"Product"
//	@Success	201		{object}	APIResponse[catalogapp.ProductResponse]
//	@Failure	409		{object}	ErrorResponse
//	@Router		/admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
//
//	@ID			adminUpdateProduct
//	@Summary	Update a product
//	@Tags		admin-products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Product ID"
//	@Param		request	body		catalogapp.ProductRequest	true	"Product"
//	@Success	200		{object}	APIResponse[catalogapp.ProductResponse]
//	@Router		/admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
//
//	@ID			adminDeleteProduct
//	@Summary	Delete a product
//	@Tags		admin-products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"
//	@Success	200	{object}	APIResponse[MessageData]
//	@Router		/admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	h.remove(c, h.service.Delete, "Product deleted")
}

// ListVariants godoc
//
//	@ID			adminListVariants
//	@Summary	List variants of a product
//	@Tags		admin-products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"
//	@Success	200	{object}	APIResponse[[]catalogapp.VariantResponse]
//	@Router		/admin/products/{id}/variants [get]
func (h *ProductHandler) ListVariants(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	variants, err := h.service.ListVariants(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variants)
}

// CreateVariant godoc
//
//	@ID			adminCreateVariant
//	@Summary	Add a variant to a product
//	@Tags		admin-products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Product ID"
//	@Param		request	body		catalogapp.VariantRequest	true	"Variant"
//	@Success	201		{object}	APIResponse[catalogapp.VariantResponse]
//	@Failure	409		{object}	ErrorResponse
//	@Router		/admin/products/{id}/variants [post]
func (h *ProductHandler) CreateVariant(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.VariantRequest
	if !h.bindJSON(c, &req) {
		return
	}
	variant, err := h.service.CreateVariant(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, variant)
}

// UpdateVariant godoc
//
//	@ID			adminUpdateVariant
//	@Summary	Update a variant
//	@Tags		admin-products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Variant ID"
//	@Param		request	body		catalogapp.VariantRequest	true	"Variant"
//	@Success	200		{object}	APIResponse[catalogapp.VariantResponse]
//	@Router		/admin/variants/{id} [put]
func (h *ProductHandler) UpdateVariant(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.VariantRequest
	if !h.bindJSON(c, &req) {
		return
	}
	variant, err := h.service.UpdateVariant(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variant)
}

// DeleteVariant godoc
//
//	@ID			adminDeleteVariant
//	@Summary	Delete a variant
//	@Tags		admin-products
//	@Produce	json
//	@Param		id	path		string	true	"Variant ID"
//	@Success	200	{object}	APIResponse[MessageData]
//	@Router		/admin/variants/{id} [delete]
func (h *ProductHandler) DeleteVariant(c *gin.Context) {
	h.remove(c, h.service.DeleteVariant, "Variant deleted")
}

func (h *ProductHandler) remove(c *gin.Context, del func(context.Context, uuid.UUID) error, message string) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: message})
}

package handler

import (
	"fmt"
	"net/http"
	"time"

	"soko/internal/middleware"
	"soko/internal/models"
	"soko/internal/repository"
	"soko/internal/service"
	"soko/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	catalog *service.CatalogService
	cloud   cloudinary.Client
}

func NewProductHandler(catalog *service.CatalogService, cloud cloudinary.Client) *ProductHandler {
	return &ProductHandler{catalog: catalog, cloud: cloud}
}

type productRequest struct {
	Name              string  `json:"name" binding:"required"`
	Description       string  `json:"description"`
	Price             float64 `json:"price" binding:"required,gt=0"`
	Discount          float64 `json:"discount"`
	AvailableQuantity int     `json:"availableQuantity"`
	CategoryID        *uint   `json:"categoryId"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid product body: "+err.Error())
		return
	}
	p := &models.Product{
		UserID:            middleware.GetUserID(c),
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Discount:          req.Discount,
		AvailableQuantity: req.AvailableQuantity,
	}
	if err := h.catalog.CreateProduct(p); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "product created successfully", p)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "product fetched successfully", p)
}

func (h *ProductHandler) List(c *gin.Context) {
	filter := repository.ProductFilter{
		CategoryID: queryUint(c, "categoryId"),
		Name:       c.Query("name"),
	}
	page, limit := pageParams(c)
	products, pagination, err := h.catalog.ListProducts(filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "products fetched successfully", gin.H{
		"products":   products,
		"pagination": pagination,
	})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid product body: "+err.Error())
		return
	}
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Discount = req.Discount
	p.AvailableQuantity = req.AvailableQuantity
	p.CategoryID = req.CategoryID
	if err := h.catalog.UpdateProduct(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "product updated successfully", p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "product deleted successfully", nil)
}

// UploadImage handles POST /products/:id/image (multipart form, field "image").
func (h *ProductHandler) UploadImage(c *gin.Context) {
	if h.cloud == nil {
		respondBadRequest(c, "image uploads are not configured")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondBadRequest(c, "image file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "unable to read image file")
		return
	}
	defer file.Close()
	publicID := fmt.Sprintf("product_%d_%d", p.ID, time.Now().Unix())
	url, thumb, err := h.cloud.UploadImage(c.Request.Context(), file, "products", publicID)
	if err != nil {
		respondError(c, err)
		return
	}
	p.ImageURL = url
	p.ThumbnailURL = thumb
	if err := h.catalog.UpdateProduct(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "product image uploaded successfully", p)
}

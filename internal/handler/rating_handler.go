package handler

import (
	"net/http"

	"soko/internal/middleware"
	"soko/internal/models"
	"soko/internal/service"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	catalog *service.CatalogService
}

func NewRatingHandler(catalog *service.CatalogService) *RatingHandler {
	return &RatingHandler{catalog: catalog}
}

type ratingRequest struct {
	ProductID uint   `json:"productId" binding:"required"`
	Star      int    `json:"star" binding:"required,gte=1,lte=5"`
	Review    string `json:"review"`
}

func (h *RatingHandler) Create(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid rating body: "+err.Error())
		return
	}
	rating := &models.Rating{
		UserID:    middleware.GetUserID(c),
		ProductID: req.ProductID,
		Star:      req.Star,
		Review:    req.Review,
	}
	if err := h.catalog.CreateRating(c.Request.Context(), rating); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "rating created successfully", rating)
}

func (h *RatingHandler) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	rating, err := h.catalog.GetRating(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "rating fetched successfully", rating)
}

func (h *RatingHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	productID := queryUint(c, "productId")
	ratings, pagination, err := h.catalog.ListRatings(productID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "ratings fetched successfully", gin.H{
		"ratings":    ratings,
		"pagination": pagination,
	})
}

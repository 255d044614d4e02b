package handler

import (
	"net/http"

	"soko/internal/models"
	"soko/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	catalog *service.CatalogService
}

func NewCategoryHandler(catalog *service.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

type categoryRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parentId"`
	URL      string `json:"url"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid category body: "+err.Error())
		return
	}
	cat := &models.Category{Name: req.Name, ParentID: req.ParentID, URL: req.URL}
	if err := h.catalog.CreateCategory(cat); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "category created successfully", cat)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	cat, err := h.catalog.GetCategory(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "category fetched successfully", cat)
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "categories fetched successfully", categories)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	cat, err := h.catalog.GetCategory(id)
	if err != nil {
		respondError(c, err)
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid category body: "+err.Error())
		return
	}
	cat.Name = req.Name
	cat.ParentID = req.ParentID
	cat.URL = req.URL
	if err := h.catalog.UpdateCategory(cat); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "category updated successfully", cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "category deleted successfully", nil)
}

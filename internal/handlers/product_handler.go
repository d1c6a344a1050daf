package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"commerce-api/internal/cache"
	"commerce-api/internal/models"
	"commerce-api/internal/repository"
)

type ProductHandler struct {
	repo  *repository.ProductRepository
	cache *cache.Cache
	log   *slog.Logger
}

func NewProductHandler(repo *repository.ProductRepository, c *cache.Cache, log *slog.Logger) *ProductHandler {
	return &ProductHandler{repo: repo, cache: c, log: log}
}

// GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := repository.ListParams{
		Query: c.Query("query"),
		Sort:  c.Query("sort"),
		Page:  c.Query("page"),
		Limit: c.Query("limit"),
	}

	cacheKey := fmt.Sprintf("products:list:q=%s&sort=%s&page=%s&limit=%s",
		params.Query, params.Sort, params.Page, params.Limit)
	if cached, found := h.cache.GetValue(cacheKey); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	page, err := h.repo.List(c.Request.Context(), params)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	// Navigation links keep every query parameter except page/limit.
	if page.PrevPage != nil {
		link := pageLink(c, *page.PrevPage, page.Limit)
		page.PrevLink = &link
	}
	if page.NextPage != nil {
		link := pageLink(c, *page.NextPage, page.Limit)
		page.NextLink = &link
	}

	h.cache.Set(cacheKey, page)
	c.JSON(http.StatusOK, page)
}

// GET /api/products/:pid
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID := c.Param("pid")
	cacheKey := "product:" + productID

	if cached, found := h.cache.GetValue(cacheKey); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	product, err := h.repo.Get(c.Request.Context(), productID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	h.cache.Set(cacheKey, product)
	c.JSON(http.StatusOK, product)
}

// POST /api/products
//
// Accepts a single product object or an array for bulk creation.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
		return
	}

	if isJSONArray(body) {
		var ins []models.ProductInput
		if err := json.Unmarshal(body, &ins); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ps, err := h.repo.CreateBulk(c.Request.Context(), ins)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		h.cache.DeleteByPrefix("products:list:")
		c.JSON(http.StatusCreated, gin.H{"message": "products created", "products": ps})
		return
	}

	var in models.ProductInput
	if err := json.Unmarshal(body, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.repo.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.cache.DeleteByPrefix("products:list:")
	c.JSON(http.StatusCreated, gin.H{"message": "product created", "product": p})
}

// PUT /api/products/:pid
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID := c.Param("pid")

	var update models.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if update.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid fields to update"})
		return
	}

	p, err := h.repo.Update(c.Request.Context(), productID, update)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	h.cache.Delete("product:" + productID)
	h.cache.DeleteByPrefix("products:list:")
	c.JSON(http.StatusOK, gin.H{"message": "product updated", "product": p})
}

// DELETE /api/products/:pid
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID := c.Param("pid")

	if err := h.repo.Delete(c.Request.Context(), productID); err != nil {
		writeError(c, h.log, err)
		return
	}

	h.cache.Delete("product:" + productID)
	h.cache.DeleteByPrefix("products:list:")
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// pageLink rebuilds the request URL pointing at another page, keeping
// all other query parameters.
func pageLink(c *gin.Context, page, limit int) string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}
	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String()
}

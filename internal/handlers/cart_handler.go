package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"commerce-api/internal/cart"
	"commerce-api/internal/errs"
	"commerce-api/internal/repository"
)

type CartHandler struct {
	repo   *repository.CartRepository
	engine *cart.Engine
	log    *slog.Logger
}

func NewCartHandler(repo *repository.CartRepository, engine *cart.Engine, log *slog.Logger) *CartHandler {
	return &CartHandler{repo: repo, engine: engine, log: log}
}

// POST /api/carts
func (h *CartHandler) CreateCart(c *gin.Context) {
	newCart, err := h.repo.Create(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newCart)
}

// GET /api/carts/:cid
func (h *CartHandler) GetCart(c *gin.Context) {
	populated, err := h.repo.Get(c.Request.Context(), c.Param("cid"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, populated)
}

// addItemBody carries the optional quantity. json.Number keeps the raw
// token so a fractional or non-numeric quantity maps to the quantity
// error instead of a generic decode failure.
type addItemBody struct {
	Quantity *json.Number `json:"quantity"`
}

// POST /api/carts/:cid/products/:pid
func (h *CartHandler) AddProduct(c *gin.Context) {
	quantity := 1
	var body addItemBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, h.log, errs.ErrInvalidQuantity)
		return
	}
	if body.Quantity != nil {
		n, err := body.Quantity.Int64()
		if err != nil {
			writeError(c, h.log, errs.ErrInvalidQuantity)
			return
		}
		quantity = int(n)
	}

	cid, pid := c.Param("cid"), c.Param("pid")
	if _, err := h.engine.AddItem(c.Request.Context(), cid, pid, quantity); err != nil {
		writeError(c, h.log, err)
		return
	}

	populated, err := h.repo.Get(c.Request.Context(), cid)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product added to cart", "cart": populated})
}

// DELETE /api/carts/:cid/products/:pid
func (h *CartHandler) RemoveProduct(c *gin.Context) {
	populated, err := h.repo.RemoveItem(c.Request.Context(), c.Param("cid"), c.Param("pid"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product removed from cart", "cart": populated})
}

// DELETE /api/carts/:cid
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.repo.Clear(c.Request.Context(), c.Param("cid")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

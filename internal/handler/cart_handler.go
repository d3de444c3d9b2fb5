package handler

import (
	"errors"
	"net/http"

	"shopcart/internal/cart"
	"shopcart/internal/config"
	"shopcart/internal/domain/model"
	"shopcart/internal/middleware"
	repo "shopcart/internal/repository"
	"shopcart/internal/storage"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// /cartのHTTP。カート本体の薄いガワ。
type CartHandler struct {
	cfg      config.Config
	deps     storage.Deps
	resolver repo.ProductResolver
	hooks    cart.Hooks
}

// DI。depsのSessionはリクエストごとに差し替えるので空で良い。
func NewCartHandler(cfg config.Config, deps storage.Deps, resolver repo.ProductResolver, hooks cart.Hooks) *CartHandler {
	if hooks == nil {
		hooks = cart.NoopHooks{}
	}
	return &CartHandler{cfg: cfg, deps: deps, resolver: resolver, hooks: hooks}
}

type AddItemRequest struct {
	ProductPK        string         `json:"product_pk"`
	Quantity         int            `json:"quantity"`
	Variant          model.Variant  `json:"variant,omitempty"`
	OverrideQuantity bool           `json:"override_quantity,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

type IncreaseItemRequest struct {
	Quantity int `json:"quantity"`
}

type RemoveItemRequest struct {
	// 0なら全削除
	Quantity int `json:"quantity,omitempty" query:"quantity"`
}

type MetadataRequest struct {
	Metadata map[string]any `json:"metadata"`
}

type ClearMetadataRequest struct {
	Keys []string `json:"keys,omitempty" query:"keys"`
}

type CartItemResponse struct {
	ID        string         `json:"id"`
	ProductPK string         `json:"product_pk"`
	Quantity  int            `json:"quantity"`
	Variant   model.Variant  `json:"variant,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Price     int64          `json:"price"`
	Subtotal  int64          `json:"subtotal"`
}

type CartResponse struct {
	Items       []CartItemResponse `json:"items"`
	Total       int64              `json:"total"`
	Count       int                `json:"count"`
	UniqueCount int                `json:"unique_count"`
	Metadata    map[string]any     `json:"metadata"`
}

// /cart配下を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, sessions storage.SessionProvider) {
	g := e.Group("/cart")
	g.Use(middleware.Identity(h.cfg, sessions))

	g.GET("", h.getCart)
	g.GET("/variants", h.getVariants)
	g.POST("/items", h.addItem)
	g.POST("/items/:id/increase", h.increaseItem)
	g.DELETE("/items/:id", h.removeItem)
	g.DELETE("", h.emptyCart)
	g.PUT("/metadata", h.updateMetadata)
	g.DELETE("/metadata", h.clearMetadata)
}

// リクエストのidentity・セッション・prefixからカートを組み立てる
func (h *CartHandler) cartFrom(c echo.Context) (*cart.Cart, error) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		return nil, errors.New("identity not resolved")
	}
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		return nil, errors.New("session not resolved")
	}

	deps := h.deps
	deps.Session = sess
	deps.SessionKey = h.cfg.SessionKey
	deps.CacheTimeout = h.cfg.CacheTimeout

	ctx := c.Request().Context()
	st, err := storage.New(ctx, h.cfg.StorageBackend, deps, id)
	if err != nil {
		return nil, err
	}

	prefix := c.QueryParam("prefix")
	if prefix == "" {
		prefix = h.cfg.DefaultPrefix
	}
	return cart.New(ctx, st, h.resolver, cart.Options{Prefix: prefix, Hooks: h.hooks})
}

func (h *CartHandler) getCart(c echo.Context) error {
	ct, err := h.cartFrom(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart unavailable"})
	}
	return c.JSON(http.StatusOK, buildCartResponse(ct))
}

func (h *CartHandler) getVariants(c echo.Context) error {
	ct, err := h.cartFrom(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart unavailable"})
	}
	return c.JSON(http.StatusOK, ct.VariantsGroupByProduct())
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	product, err := h.resolver.Resolve(c.Request().Context(), req.ProductPK)
	if errors.Is(err, repo.ErrNotFound) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
	}

	ct, err := h.cartFrom(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart unavailable"})
	}

	_, err = ct.Add(c.Request().Context(), product, cart.AddInput{
		Quantity:         req.Quantity,
		Variant:          req.Variant,
		OverrideQuantity: req.OverrideQuantity,
		Metadata:         req.Metadata,
	})
	if err != nil {
		if cart.IsValidationError(err) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart save failed"})
	}

	return c.JSON(http.StatusOK, buildCartResponse(ct))
}

func (h *CartHandler) increaseItem(c echo.Context) error {
	var req IncreaseItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	ct, err := h.cartFrom(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart unavailable"})
	}

	item, err := ct.Increase(c.Request().Context(), c.Param("id"), req.Quantity)
	if err != nil {
		if cart.IsValidationError(err) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart save failed"})
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	return c.JSON(http.StatusOK, buildCartResponse(ct))
}

func (h *CartHandler) removeItem(c echo.Context) error {
	var req RemoveItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	ct, err := h.cartFrom(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart unavailable"})
	}

	itemID := c.Param("id")
	if ct.FindOne(cart.Criteria{ID: itemID}) == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	if _, err := ct.Remove(c.Request().Context(), itemID, req.Quantity); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart save failed"})
	}

	return c.JSON(http.StatusOK, buildCartResponse(ct))
}

func (h *CartHandler) emptyCart(c echo.Context) error {
	ct, err := h.cartFrom(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart unavailable"})
	}

	clearMetadata := c.QueryParam("keep_metadata") != "true"
	if err := ct.Empty(c.Request().Context(), clearMetadata); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart save failed"})
	}

	return c.JSON(http.StatusOK, buildCartResponse(ct))
}

func (h *CartHandler) updateMetadata(c echo.Context) error {
	var req MetadataRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	ct, err := h.cartFrom(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart unavailable"})
	}

	if err := ct.UpdateMetadata(c.Request().Context(), req.Metadata); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart save failed"})
	}

	return c.JSON(http.StatusOK, buildCartResponse(ct))
}

func (h *CartHandler) clearMetadata(c echo.Context) error {
	var req ClearMetadataRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	ct, err := h.cartFrom(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart unavailable"})
	}

	if err := ct.ClearMetadata(c.Request().Context(), req.Keys...); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cart save failed"})
	}

	return c.JSON(http.StatusOK, buildCartResponse(ct))
}

// カートをレスポンスに詰め替える
func buildCartResponse(ct *cart.Cart) CartResponse {
	items := ct.Items()
	respItems := make([]CartItemResponse, 0, len(items))
	for _, it := range items {
		respItems = append(respItems, CartItemResponse{
			ID:        it.ID,
			ProductPK: it.ProductPK,
			Quantity:  it.Quantity,
			Variant:   it.Variant,
			Metadata:  it.Metadata,
			Price:     it.Price(),
			Subtotal:  it.Subtotal(),
		})
	}

	return CartResponse{
		Items:       respItems,
		Total:       ct.Total(),
		Count:       ct.Count(),
		UniqueCount: ct.UniqueCount(),
		Metadata:    ct.Metadata(),
	}
}

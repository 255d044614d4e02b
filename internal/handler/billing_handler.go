package handler

import (
	"net/http"
	"strconv"

	"soko/internal/middleware"
	"soko/internal/repository"
	"soko/internal/service"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	billing *service.BillingService
}

func NewBillingHandler(billing *service.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// InitializeCheckout handles POST /billings.
func (h *BillingHandler) InitializeCheckout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid checkout body: "+err.Error())
		return
	}
	result, err := h.billing.InitializeCheckout(c.Request.Context(), middleware.GetUserID(c), middleware.GetEmail(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "transaction initiated successfully", result)
}

// VerifyTransaction handles GET /billings?reference=.
func (h *BillingHandler) VerifyTransaction(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		respondBadRequest(c, "reference is required")
		return
	}
	result, err := h.billing.VerifyTransaction(c.Request.Context(), reference, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "transaction verified successfully", result)
}

type topUpRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// InitializeWalletTopUp handles POST /billings/wallet.
func (h *BillingHandler) InitializeWalletTopUp(c *gin.Context) {
	var req topUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid top-up body: "+err.Error())
		return
	}
	result, err := h.billing.InitializeWalletTopUp(c.Request.Context(), middleware.GetUserID(c), middleware.GetEmail(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "transaction for wallet initiated successfully", result)
}

type transferRequest struct {
	ReceiverID uint    `json:"receiverId" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
}

// Transfer handles POST /billings/wallet/transfer.
func (h *BillingHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid transfer body: "+err.Error())
		return
	}
	result, err := h.billing.Transfer(c.Request.Context(), middleware.GetUserID(c), req.ReceiverID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "transaction for wallet transfer successful", result)
}

// GetWallet handles GET /billings/wallet.
func (h *BillingHandler) GetWallet(c *gin.Context) {
	w, err := h.billing.GetWallet(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "wallet fetched successfully", w)
}

// GetWalletByID handles GET /billings/wallet/:id.
func (h *BillingHandler) GetWalletByID(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	w, err := h.billing.GetWalletByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "wallet fetched successfully", w)
}

// ListOrders handles GET /billings/orders.
func (h *BillingHandler) ListOrders(c *gin.Context) {
	filter := repository.OrderFilter{
		ProductID:   queryUint(c, "productId"),
		IsDelivered: queryBool(c, "isDelivered"),
		UserID:      queryUint(c, "userId"),
	}
	page, limit := pageParams(c)
	orders, pagination, err := h.billing.ListOrders(filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "orders fetched successfully", gin.H{
		"orders":     orders,
		"pagination": pagination,
	})
}

// ListTransactions handles GET /billings/transactions.
func (h *BillingHandler) ListTransactions(c *gin.Context) {
	filter := repository.TransactionFilter{
		OrderID:       queryUint(c, "orderId"),
		ProductID:     queryUint(c, "productId"),
		UserID:        queryUint(c, "userId"),
		Status:        c.Query("status"),
		PaymentMethod: c.Query("paymentMethod"),
		AlertType:     c.Query("alertType"),
		Reference:     c.Query("reference"),
	}
	page, limit := pageParams(c)
	txns, pagination, err := h.billing.ListTransactions(filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "transactions fetched successfully", gin.H{
		"transactions": txns,
		"pagination":   pagination,
	})
}

// GetOrder handles GET /billings/order/:id.
func (h *BillingHandler) GetOrder(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	o, err := h.billing.GetOrder(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "order fetched successfully", o)
}

// GetTransaction handles GET /billings/transaction/:id.
func (h *BillingHandler) GetTransaction(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	t, err := h.billing.GetTransaction(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "transaction fetched successfully", t)
}

// UpdateOrderTracker handles PATCH /billings/tracker/:id.
func (h *BillingHandler) UpdateOrderTracker(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var patch repository.TrackerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "invalid tracker body: "+err.Error())
		return
	}
	o, err := h.billing.UpdateOrderTracker(id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "order tracker updated successfully", o)
}

// Query/param helpers shared by the handlers.

func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

func queryUint(c *gin.Context, name string) *uint {
	s := c.Query(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}

func queryBool(c *gin.Context, name string) *bool {
	s := c.Query(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}

func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("paginate", "20"))
	return page, limit
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"snackbar-web/internal/draft"
	"snackbar-web/internal/gateway"
	"snackbar-web/internal/models"
	"snackbar-web/internal/stores/kafka"
	"snackbar-web/pkg/ctxmanage"
	"snackbar-web/pkg/logkey"
)

// OrdersIndex lists the logged-in customer's orders with their favorites
// pulled out. Guests see an empty list rather than an error.
func (h *Handler) OrdersIndex(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var customer models.Customer
	var orders []models.Order

	if authID := authSubject(c); authID != "" {
		var err error
		customer, err = h.gw.CustomerByAuthID(c.Request.Context(), authID)
		switch {
		case errors.Is(err, gateway.ErrNotFound):
			// Logged in but no customer record yet; nothing to list.
		case err != nil:
			slog.Error("error resolving customer", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			h.renderError(c, http.StatusBadGateway, "Could not load your orders.")
			return
		default:
			orders, err = h.gw.CustomerOrders(c.Request.Context(), customer.ID)
			if err != nil {
				slog.Error("error listing customer orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
				h.renderError(c, http.StatusBadGateway, "Could not load your orders.")
				return
			}
		}
	}

	var favorites []models.Order
	for _, order := range orders {
		if order.IsFavorited {
			favorites = append(favorites, order)
		}
	}

	c.HTML(http.StatusOK, "orders_index.html", gin.H{
		"Orders":    orders,
		"Favorites": favorites,
		"Customer":  customer,
	})
}

// OrderDetails shows one order with its product list expanded.
func (h *Handler) OrderDetails(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Order not found.")
		return
	}

	order, err := h.gw.Order(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Order not found.")
			return
		}
		slog.Error("error loading order", slog.String(logkey.TraceID, traceId), slog.Int(logkey.OrderID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the order.")
		return
	}

	var customer models.Customer
	if order.CustomerID != 0 {
		customer, err = h.gw.Customer(c.Request.Context(), order.CustomerID)
		if err != nil && !errors.Is(err, gateway.ErrNotFound) {
			slog.Error("error loading order customer", slog.String(logkey.TraceID, traceId), slog.Int(logkey.OrderID, id), slog.String(logkey.ERROR, err.Error()))
		}
	}

	c.HTML(http.StatusOK, "order_details.html", gin.H{
		"Order":    order,
		"Products": order.Products,
		"Customer": customer,
	})
}

// OrderCreatePage shows the catalog next to the session's current draft.
func (h *Handler) OrderCreatePage(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	catalog, err := h.gw.Products(c.Request.Context())
	if err != nil {
		slog.Error("error listing products", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the product catalog.")
		return
	}

	d := h.flow.Draft(sessionId)
	c.HTML(http.StatusOK, "order_create.html", gin.H{
		"AllProducts": catalog,
		"Products":    d.Products,
		"Cost":        draft.Cost(d.Products),
	})
}

// OrderEditPage shows an order being edited: the stored order, the catalog,
// and the session's draft (as replaced by StartEditOrder).
func (h *Handler) OrderEditPage(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Order not found.")
		return
	}

	order, err := h.gw.Order(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Order not found.")
			return
		}
		slog.Error("error loading order", slog.String(logkey.TraceID, traceId), slog.Int(logkey.OrderID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the order.")
		return
	}

	catalog, err := h.gw.Products(c.Request.Context())
	if err != nil {
		slog.Error("error listing products", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the product catalog.")
		return
	}

	d := h.flow.Draft(sessionId)
	c.HTML(http.StatusOK, "order_edit.html", gin.H{
		"Order":       order,
		"AllProducts": catalog,
		"Products":    d.Products,
		"Cost":        draft.Cost(d.Products),
	})
}

// StartEditOrder replaces the session's draft with the order's current
// products and redirects into the edit page.
func (h *Handler) StartEditOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Order not found.")
		return
	}

	if err := h.flow.StartEdit(c.Request.Context(), sessionId, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Order not found.")
			return
		}
		slog.Error("error starting edit session", slog.String(logkey.TraceID, traceId), slog.Int(logkey.OrderID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not start editing the order.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/orders/"+strconv.Itoa(id)+"/edit")
}

// AddDraftProduct appends a product to the session's draft. With an order_id
// form value the user is sent back to that order's edit page, otherwise to
// the create page.
func (h *Handler) AddDraftProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Product not found.")
		return
	}

	product, err := h.flow.AddProduct(c.Request.Context(), sessionId, productID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Product not found.")
			return
		}
		slog.Error("error adding product to draft", slog.String(logkey.TraceID, traceId),
			slog.Int(logkey.ProductID, productID), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not add the product.")
		return
	}

	slog.Info("product added to draft", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.SessionID, sessionId), slog.Int(logkey.ProductID, product.ID))

	c.Redirect(http.StatusSeeOther, draftReturnPath(c))
}

// RemoveDraftProduct removes the first matching entry from the session's
// draft. A product that is not in the draft is a no-op.
func (h *Handler) RemoveDraftProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Product not found.")
		return
	}

	if err := h.flow.RemoveProduct(c.Request.Context(), sessionId, productID); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Product not found.")
			return
		}
		slog.Error("error removing product from draft", slog.String(logkey.TraceID, traceId),
			slog.Int(logkey.ProductID, productID), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not remove the product.")
		return
	}

	c.Redirect(http.StatusSeeOther, draftReturnPath(c))
}

// SaveNewOrder commits the draft as a new order and moves on to the
// checkout confirmation.
func (h *Handler) SaveNewOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	order, err := h.flow.SaveNew(c.Request.Context(), sessionId, authSubject(c))
	if err != nil {
		slog.Error("error saving new order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.SessionID, sessionId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not save the order.")
		return
	}

	slog.Info("order saved", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.SessionID, sessionId), slog.Int(logkey.OrderID, order.ID))

	h.publishOrderCreated(order, traceId)

	c.Redirect(http.StatusSeeOther, "/orders/"+strconv.Itoa(order.ID)+"/checkout")
}

// SaveEditedOrder commits the draft into the order an edit session targets.
func (h *Handler) SaveEditedOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Order not found.")
		return
	}

	order, err := h.flow.SaveEdit(c.Request.Context(), sessionId, id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Order not found.")
			return
		}
		slog.Error("error saving edited order", slog.String(logkey.TraceID, traceId),
			slog.Int(logkey.OrderID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not save the order.")
		return
	}

	slog.Info("order updated", slog.String(logkey.TraceID, traceId), slog.Int(logkey.OrderID, order.ID))
	c.Redirect(http.StatusSeeOther, "/orders")
}

// CancelNewOrder discards the draft and returns to the order list.
func (h *Handler) CancelNewOrder(c *gin.Context) {
	h.flow.Cancel(ctxmanage.GetSessionIdOfRequest(c))
	c.Redirect(http.StatusSeeOther, "/orders")
}

// CancelEditedOrder discards the draft and returns to the order that was
// being edited.
func (h *Handler) CancelEditedOrder(c *gin.Context) {
	h.flow.Cancel(ctxmanage.GetSessionIdOfRequest(c))
	c.Redirect(http.StatusSeeOther, "/orders/"+c.Param("id"))
}

// OrderCheckoutPage promotes a saved order into a transaction shell for the
// user to confirm.
func (h *Handler) OrderCheckoutPage(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Order not found.")
		return
	}

	transaction, order, err := h.flow.Promote(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Order not found.")
			return
		}
		slog.Error("error promoting order", slog.String(logkey.TraceID, traceId),
			slog.Int(logkey.OrderID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not prepare the checkout.")
		return
	}

	var customer models.Customer
	if order.CustomerID != 0 {
		customer, err = h.gw.Customer(c.Request.Context(), order.CustomerID)
		if err != nil && !errors.Is(err, gateway.ErrNotFound) {
			slog.Error("error loading checkout customer", slog.String(logkey.TraceID, traceId),
				slog.Int(logkey.OrderID, id), slog.String(logkey.ERROR, err.Error()))
		}
	}

	c.HTML(http.StatusOK, "order_checkout.html", gin.H{
		"Order":       order,
		"Transaction": transaction,
		"Products":    order.Products,
		"Customer":    customer,
	})
}

// SaveTransaction persists the confirmed transaction for an order. Cost and
// discount are recomputed server side rather than trusted from the form.
func (h *Handler) SaveTransaction(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Order not found.")
		return
	}

	transaction, _, err := h.flow.Promote(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Order not found.")
			return
		}
		slog.Error("error promoting order", slog.String(logkey.TraceID, traceId),
			slog.Int(logkey.OrderID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not check out the order.")
		return
	}

	created, err := h.flow.SaveTransaction(c.Request.Context(), id, transaction)
	if err != nil {
		slog.Error("error saving transaction", slog.String(logkey.TraceID, traceId),
			slog.Int(logkey.OrderID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not check out the order.")
		return
	}

	slog.Info("transaction saved", slog.String(logkey.TraceID, traceId),
		slog.Int(logkey.OrderID, id), slog.Int(logkey.TransactionID, created.ID))

	h.publishTransactionCreated(created, traceId)

	c.Redirect(http.StatusSeeOther, "/orders")
}

// DeleteOrder removes an order.
func (h *Handler) DeleteOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Order not found.")
		return
	}

	if err := h.gw.DeleteOrder(c.Request.Context(), id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Order not found.")
			return
		}
		slog.Error("error deleting order", slog.String(logkey.TraceID, traceId),
			slog.Int(logkey.OrderID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not delete the order.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/orders")
}

// draftReturnPath decides where a draft mutation sends the user back to: the
// edit page when the form names the order being edited, the create page
// otherwise.
func draftReturnPath(c *gin.Context) string {
	if orderID := c.PostForm("order_id"); orderID != "" {
		if id, err := strconv.Atoi(orderID); err == nil && id > 0 {
			return "/orders/" + strconv.Itoa(id) + "/edit"
		}
	}
	return "/orders/new"
}

func (h *Handler) publishOrderCreated(order models.Order, traceId string) {
	if h.k == nil {
		return
	}
	go func() {
		data, err := json.Marshal(kafka.OrderCreatedEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Cost:       order.Cost,
			Products:   len(order.Products),
			CreatedAt:  time.Now().UTC(),
		})
		if err != nil {
			slog.Error("failed to marshal order event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(kafka.TopicOrderCreated, []byte(strconv.Itoa(order.ID)), data); err != nil {
			slog.Error("failed to produce order event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		}
	}()
}

func (h *Handler) publishTransactionCreated(transaction models.Transaction, traceId string) {
	if h.k == nil {
		return
	}
	go func() {
		data, err := json.Marshal(kafka.TransactionCreatedEvent{
			TransactionID: transaction.ID,
			OrderID:       transaction.OrderID,
			CustomerID:    transaction.CustomerID,
			Cost:          transaction.Cost,
			Discount:      transaction.Discount,
			CreatedAt:     time.Now().UTC(),
		})
		if err != nil {
			slog.Error("failed to marshal transaction event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(kafka.TopicTransactionCreated, []byte(strconv.Itoa(transaction.ID)), data); err != nil {
			slog.Error("failed to produce transaction event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		}
	}()
}

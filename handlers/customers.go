package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"snackbar-web/internal/gateway"
	"snackbar-web/internal/models"
	"snackbar-web/pkg/ctxmanage"
	"snackbar-web/pkg/logkey"
)

func (h *Handler) CustomersIndex(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customers, err := h.gw.Customers(c.Request.Context())
	if err != nil {
		slog.Error("error listing customers", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the customers.")
		return
	}

	c.HTML(http.StatusOK, "customers_index.html", gin.H{"Customers": customers})
}

func (h *Handler) CustomerDetails(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Customer not found.")
		return
	}

	customer, err := h.gw.Customer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Customer not found.")
			return
		}
		slog.Error("error loading customer", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the customer.")
		return
	}

	orders, err := h.gw.CustomerOrders(c.Request.Context(), customer.ID)
	if err != nil {
		slog.Error("error listing customer orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
	}

	c.HTML(http.StatusOK, "customer_details.html", gin.H{
		"Customer": customer,
		"Orders":   orders,
	})
}

// CustomerCreatePage shows an empty customer form, pre-filling the
// authentication id with the caller's own subject the way first-time
// registration does.
func (h *Handler) CustomerCreatePage(c *gin.Context) {
	c.HTML(http.StatusOK, "customer_form.html", gin.H{
		"Customer": models.Customer{AuthenticationID: authSubject(c)},
		"Action":   "/customers",
	})
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customer := models.Customer{
		AuthenticationID: c.PostForm("authenticationId"),
		Name:             c.PostForm("name"),
		Email:            c.PostForm("email"),
		Phone:            c.PostForm("phone"),
	}
	if err := h.validate.Struct(customer); err != nil {
		slog.Error("customer form validation failed", slog.String(logkey.TraceID, traceId))
		c.HTML(http.StatusBadRequest, "customer_form.html", gin.H{
			"Customer": customer,
			"Action":   "/customers",
			"Errors":   validationMessages(err),
		})
		return
	}

	if _, err := h.gw.CreateCustomer(c.Request.Context(), customer); err != nil {
		slog.Error("error creating customer", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not create the customer.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/customers")
}

func (h *Handler) CustomerEditPage(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Customer not found.")
		return
	}

	customer, err := h.gw.Customer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Customer not found.")
			return
		}
		slog.Error("error loading customer", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the customer.")
		return
	}

	c.HTML(http.StatusOK, "customer_form.html", gin.H{
		"Customer": customer,
		"Action":   "/customers/" + strconv.Itoa(id),
	})
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Customer not found.")
		return
	}

	current, err := h.gw.Customer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Customer not found.")
			return
		}
		slog.Error("error loading customer", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the customer.")
		return
	}

	customer := models.Customer{
		ID:               id,
		AuthenticationID: current.AuthenticationID,
		Name:             c.PostForm("name"),
		Email:            c.PostForm("email"),
		Phone:            c.PostForm("phone"),
	}
	if err := h.validate.Struct(customer); err != nil {
		slog.Error("customer form validation failed", slog.String(logkey.TraceID, traceId))
		c.HTML(http.StatusBadRequest, "customer_form.html", gin.H{
			"Customer": customer,
			"Action":   "/customers/" + strconv.Itoa(id),
			"Errors":   validationMessages(err),
		})
		return
	}

	if _, err := h.gw.UpdateCustomer(c.Request.Context(), customer, id); err != nil {
		slog.Error("error updating customer", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not update the customer.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/customers")
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Customer not found.")
		return
	}

	if err := h.gw.DeleteCustomer(c.Request.Context(), id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Customer not found.")
			return
		}
		slog.Error("error deleting customer", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not delete the customer.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/customers")
}

// DeleteCustomerByAuthID removes the customer record correlated to an
// identity-provider account, used when that account is closed.
func (h *Handler) DeleteCustomerByAuthID(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	authID := c.Param("authId")
	if authID == "" {
		h.renderError(c, http.StatusNotFound, "Customer not found.")
		return
	}

	if err := h.gw.DeleteCustomerByAuthID(c.Request.Context(), authID); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Customer not found.")
			return
		}
		slog.Error("error deleting customer", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not delete the customer.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/customers")
}

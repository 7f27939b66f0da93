package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"snackbar-web/internal/gateway"
	"snackbar-web/pkg/ctxmanage"
	"snackbar-web/pkg/logkey"
)

func (h *Handler) TransactionsIndex(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	transactions, err := h.gw.Transactions(c.Request.Context())
	if err != nil {
		slog.Error("error listing transactions", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the transactions.")
		return
	}

	c.HTML(http.StatusOK, "transactions_index.html", gin.H{"Transactions": transactions})
}

func (h *Handler) TransactionDetails(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Transaction not found.")
		return
	}

	transaction, err := h.gw.Transaction(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Transaction not found.")
			return
		}
		slog.Error("error loading transaction", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the transaction.")
		return
	}

	c.HTML(http.StatusOK, "transaction_details.html", gin.H{"Transaction": transaction})
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Transaction not found.")
		return
	}

	if err := h.gw.DeleteTransaction(c.Request.Context(), id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Transaction not found.")
			return
		}
		slog.Error("error deleting transaction", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not delete the transaction.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/transactions")
}

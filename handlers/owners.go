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

func (h *Handler) OwnersIndex(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	owners, err := h.gw.Owners(c.Request.Context())
	if err != nil {
		slog.Error("error listing owners", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the owners.")
		return
	}

	c.HTML(http.StatusOK, "owners_index.html", gin.H{"Owners": owners})
}

func (h *Handler) OwnerDetails(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Owner not found.")
		return
	}

	owner, err := h.gw.Owner(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Owner not found.")
			return
		}
		slog.Error("error loading owner", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the owner.")
		return
	}

	c.HTML(http.StatusOK, "owner_details.html", gin.H{"Owner": owner})
}

func (h *Handler) OwnerCreatePage(c *gin.Context) {
	c.HTML(http.StatusOK, "owner_form.html", gin.H{"Owner": models.Owner{}, "Action": "/owners"})
}

func (h *Handler) CreateOwner(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	owner := models.Owner{
		Name:  c.PostForm("name"),
		Email: c.PostForm("email"),
	}
	if err := h.validate.Struct(owner); err != nil {
		slog.Error("owner form validation failed", slog.String(logkey.TraceID, traceId))
		c.HTML(http.StatusBadRequest, "owner_form.html", gin.H{
			"Owner":  owner,
			"Action": "/owners",
			"Errors": validationMessages(err),
		})
		return
	}

	if _, err := h.gw.CreateOwner(c.Request.Context(), owner); err != nil {
		slog.Error("error creating owner", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not create the owner.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/owners")
}

func (h *Handler) OwnerEditPage(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Owner not found.")
		return
	}

	owner, err := h.gw.Owner(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Owner not found.")
			return
		}
		slog.Error("error loading owner", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the owner.")
		return
	}

	c.HTML(http.StatusOK, "owner_form.html", gin.H{
		"Owner":  owner,
		"Action": "/owners/" + strconv.Itoa(id),
	})
}

func (h *Handler) UpdateOwner(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Owner not found.")
		return
	}

	owner := models.Owner{
		ID:    id,
		Name:  c.PostForm("name"),
		Email: c.PostForm("email"),
	}
	if err := h.validate.Struct(owner); err != nil {
		slog.Error("owner form validation failed", slog.String(logkey.TraceID, traceId))
		c.HTML(http.StatusBadRequest, "owner_form.html", gin.H{
			"Owner":  owner,
			"Action": "/owners/" + strconv.Itoa(id),
			"Errors": validationMessages(err),
		})
		return
	}

	if _, err := h.gw.UpdateOwner(c.Request.Context(), owner, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Owner not found.")
			return
		}
		slog.Error("error updating owner", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not update the owner.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/owners")
}

func (h *Handler) DeleteOwner(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Owner not found.")
		return
	}

	if err := h.gw.DeleteOwner(c.Request.Context(), id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Owner not found.")
			return
		}
		slog.Error("error deleting owner", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not delete the owner.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/owners")
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", nil)
}

func (h *Handler) Privacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", nil)
}

func (h *Handler) ErrorPage(c *gin.Context) {
	h.renderError(c, http.StatusInternalServerError, "Something went wrong.")
}

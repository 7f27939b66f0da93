package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"snackbar-web/internal/gateway"
	"snackbar-web/internal/models"
	"snackbar-web/pkg/ctxmanage"
	"snackbar-web/pkg/logkey"
)

func (h *Handler) ProductsIndex(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	products, err := h.gw.Products(c.Request.Context())
	if err != nil {
		slog.Error("error listing products", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the products.")
		return
	}

	c.HTML(http.StatusOK, "products_index.html", gin.H{"Products": products})
}

func (h *Handler) ProductDetails(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Product not found.")
		return
	}

	product, err := h.gw.Product(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Product not found.")
			return
		}
		slog.Error("error loading product", slog.String(logkey.TraceID, traceId), slog.Int(logkey.ProductID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the product.")
		return
	}

	c.HTML(http.StatusOK, "product_details.html", gin.H{"Product": product})
}

func (h *Handler) ProductCreatePage(c *gin.Context) {
	c.HTML(http.StatusOK, "product_form.html", gin.H{"Product": models.Product{}, "Action": "/products"})
}

func (h *Handler) CreateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	product, formErrors := parseProductForm(c)
	if err := h.validate.Struct(product); err != nil {
		formErrors = append(formErrors, validationMessages(err)...)
	}
	if len(formErrors) > 0 {
		slog.Error("product form validation failed", slog.String(logkey.TraceID, traceId))
		c.HTML(http.StatusBadRequest, "product_form.html", gin.H{
			"Product": product,
			"Action":  "/products",
			"Errors":  formErrors,
		})
		return
	}

	created, err := h.gw.CreateProduct(c.Request.Context(), product)
	if err != nil {
		slog.Error("error creating product", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not create the product.")
		return
	}

	slog.Info("product created", slog.String(logkey.TraceID, traceId), slog.Int(logkey.ProductID, created.ID))
	c.Redirect(http.StatusSeeOther, "/products")
}

func (h *Handler) ProductEditPage(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Product not found.")
		return
	}

	product, err := h.gw.Product(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Product not found.")
			return
		}
		slog.Error("error loading product", slog.String(logkey.TraceID, traceId), slog.Int(logkey.ProductID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not load the product.")
		return
	}

	c.HTML(http.StatusOK, "product_form.html", gin.H{
		"Product": product,
		"Action":  "/products/" + strconv.Itoa(id),
	})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Product not found.")
		return
	}

	product, formErrors := parseProductForm(c)
	product.ID = id
	if err := h.validate.Struct(product); err != nil {
		formErrors = append(formErrors, validationMessages(err)...)
	}
	if len(formErrors) > 0 {
		slog.Error("product form validation failed", slog.String(logkey.TraceID, traceId), slog.Int(logkey.ProductID, id))
		c.HTML(http.StatusBadRequest, "product_form.html", gin.H{
			"Product": product,
			"Action":  "/products/" + strconv.Itoa(id),
			"Errors":  formErrors,
		})
		return
	}

	if _, err := h.gw.UpdateProduct(c.Request.Context(), product, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Product not found.")
			return
		}
		slog.Error("error updating product", slog.String(logkey.TraceID, traceId), slog.Int(logkey.ProductID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not update the product.")
		return
	}

	slog.Info("product updated", slog.String(logkey.TraceID, traceId), slog.Int(logkey.ProductID, id))
	c.Redirect(http.StatusSeeOther, "/products")
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusNotFound, "Product not found.")
		return
	}

	if err := h.gw.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			h.renderError(c, http.StatusNotFound, "Product not found.")
			return
		}
		slog.Error("error deleting product", slog.String(logkey.TraceID, traceId), slog.Int(logkey.ProductID, id), slog.String(logkey.ERROR, err.Error()))
		h.renderError(c, http.StatusBadGateway, "Could not delete the product.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/products")
}

// parseProductForm reads the posted product fields, collecting parse
// problems so the form can be redisplayed with everything the user typed.
func parseProductForm(c *gin.Context) (models.Product, []string) {
	var formErrors []string

	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil {
		formErrors = append(formErrors, "Price must be a number")
	}
	discount, err := strconv.Atoi(c.DefaultPostForm("discount", "0"))
	if err != nil {
		formErrors = append(formErrors, "Discount must be a whole number")
	}
	stock, err := strconv.Atoi(c.DefaultPostForm("stock", "0"))
	if err != nil {
		formErrors = append(formErrors, "Stock must be a whole number")
	}

	return models.Product{
		Name:        c.PostForm("name"),
		Price:       price,
		Discount:    discount,
		Stock:       stock,
		ImgPath:     c.PostForm("img_path"),
		Description: c.PostForm("description"),
	}, formErrors
}

// validationMessages turns validator errors into user-facing lines.
func validationMessages(err error) []string {
	var messages []string
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, vErr := range vErrs {
			switch vErr.Tag() {
			case "required":
				messages = append(messages, vErr.Field()+" is required")
			case "min":
				messages = append(messages, vErr.Field()+" must be at least "+vErr.Param())
			case "email":
				messages = append(messages, vErr.Field()+" must be a valid email address")
			default:
				messages = append(messages, vErr.Field()+" is invalid")
			}
		}
		return messages
	}
	return []string{"Validation failed"}
}

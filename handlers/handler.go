package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"snackbar-web/internal/auth"
	"snackbar-web/internal/draft"
	"snackbar-web/internal/gateway"
	"snackbar-web/internal/stores/kafka"
	"snackbar-web/middleware"
	"snackbar-web/pkg/ctxmanage"
)

type Handler struct {
	gw       *gateway.Client
	flow     *draft.Workflow
	k        *kafka.Conf // nil disables event publishing
	validate *validator.Validate
}

func NewHandler(gw *gateway.Client, flow *draft.Workflow, k *kafka.Conf) *Handler {
	return &Handler{
		gw:       gw,
		flow:     flow,
		k:        k,
		validate: validator.New(),
	}
}

// API builds the router: public catalog and order pages, admin-gated
// management pages, and the draft actions that mutate a session's
// in-progress order. templatesGlob points at the html templates, e.g.
// "templates/*.html".
func API(a *auth.Keys, gw *gateway.Client, flow *draft.Workflow, k *kafka.Conf, templatesGlob string) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(a)
	if err != nil {
		panic(err)
	}
	h := NewHandler(gw, flow, k)

	r.Use(middleware.Logger(), gin.Recovery(), middleware.Session())
	if templatesGlob != "" {
		r.LoadHTMLGlob(templatesGlob)
	}

	r.GET("/ping", healthCheck)
	r.GET("/", h.Home)
	r.GET("/privacy", h.Privacy)
	r.GET("/error", middleware.NoCache(), h.ErrorPage)

	orders := r.Group("/orders")
	orders.Use(m.OptionalAuthentication())
	{
		orders.GET("", h.OrdersIndex)
		orders.GET("/new", h.OrderCreatePage)
		orders.GET("/:id", h.OrderDetails)
		orders.GET("/:id/edit", h.OrderEditPage)
		orders.POST("/:id/edit/start", h.StartEditOrder)
		orders.GET("/:id/checkout", h.OrderCheckoutPage)
		orders.POST("/:id/checkout", h.SaveTransaction)
		orders.POST("/:id/delete", h.DeleteOrder)

		orders.POST("/draft/add/:productId", h.AddDraftProduct)
		orders.POST("/draft/remove/:productId", h.RemoveDraftProduct)
		orders.POST("/draft/save", h.SaveNewOrder)
		orders.POST("/draft/save/:id", h.SaveEditedOrder)
		orders.POST("/draft/cancel", h.CancelNewOrder)
		orders.POST("/draft/cancel/:id", h.CancelEditedOrder)
	}

	products := r.Group("/products")
	{
		products.GET("", h.ProductsIndex)
		products.GET("/:id", h.ProductDetails)

		admin := products.Group("")
		admin.Use(m.Authentication())
		{
			admin.GET("/new", m.Authorize(h.ProductCreatePage, auth.RoleAdmin))
			admin.POST("", m.Authorize(h.CreateProduct, auth.RoleAdmin))
			admin.GET("/:id/edit", m.Authorize(h.ProductEditPage, auth.RoleAdmin))
			admin.POST("/:id", m.Authorize(h.UpdateProduct, auth.RoleAdmin))
			admin.POST("/:id/delete", m.Authorize(h.DeleteProduct, auth.RoleAdmin))
		}
	}

	transactions := r.Group("/transactions")
	transactions.Use(m.Authentication())
	{
		transactions.GET("", m.Authorize(h.TransactionsIndex, auth.RoleAdmin))
		transactions.GET("/:id", m.Authorize(h.TransactionDetails, auth.RoleAdmin))
		transactions.POST("/:id/delete", m.Authorize(h.DeleteTransaction, auth.RoleAdmin))
	}

	customers := r.Group("/customers")
	customers.Use(m.Authentication())
	{
		customers.GET("", m.Authorize(h.CustomersIndex, auth.RoleAdmin))
		customers.GET("/new", m.Authorize(h.CustomerCreatePage, auth.RoleAdmin))
		customers.POST("", m.Authorize(h.CreateCustomer, auth.RoleAdmin))
		customers.GET("/:id", m.Authorize(h.CustomerDetails, auth.RoleAdmin))
		customers.GET("/:id/edit", m.Authorize(h.CustomerEditPage, auth.RoleAdmin))
		customers.POST("/:id", m.Authorize(h.UpdateCustomer, auth.RoleAdmin))
		customers.POST("/:id/delete", m.Authorize(h.DeleteCustomer, auth.RoleAdmin))
		customers.POST("/auth/:authId/delete", m.Authorize(h.DeleteCustomerByAuthID, auth.RoleAdmin))
	}

	owners := r.Group("/owners")
	owners.Use(m.Authentication())
	{
		owners.GET("", m.Authorize(h.OwnersIndex, auth.RoleAdmin))
		owners.GET("/new", m.Authorize(h.OwnerCreatePage, auth.RoleAdmin))
		owners.POST("", m.Authorize(h.CreateOwner, auth.RoleAdmin))
		owners.GET("/:id", m.Authorize(h.OwnerDetails, auth.RoleAdmin))
		owners.GET("/:id/edit", m.Authorize(h.OwnerEditPage, auth.RoleAdmin))
		owners.POST("/:id", m.Authorize(h.UpdateOwner, auth.RoleAdmin))
		owners.POST("/:id/delete", m.Authorize(h.DeleteOwner, auth.RoleAdmin))
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// authSubject returns the external authentication id of the logged-in
// principal, or "" for a guest.
func authSubject(c *gin.Context) string {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		return ""
	}
	return claims.Subject
}

// renderError shows the generic error page.
func (h *Handler) renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"Status":  status,
		"Message": message,
		"TraceID": ctxmanage.GetTraceIdOfRequest(c),
	})
}

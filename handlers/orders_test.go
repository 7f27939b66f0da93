package handlers

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackbar-web/internal/auth"
	"snackbar-web/internal/draft"
	"snackbar-web/internal/gateway"
	"snackbar-web/internal/models"
	"snackbar-web/middleware"
)

const testSession = "test-session"

// remoteState is the in-memory backing for the fake remote API the router
// tests run against.
type remoteState struct {
	mu           sync.Mutex
	products     map[int]models.Product
	orders       map[int]models.Order
	orderRows    map[int][]models.OrderProduct
	transactions []models.Transaction
	customers    []models.Customer
	nextOrderID  int
}

func fakeRemote() (*remoteState, http.Handler) {
	state := &remoteState{
		products:    make(map[int]models.Product),
		orders:      make(map[int]models.Order),
		orderRows:   make(map[int][]models.OrderProduct),
		nextOrderID: 1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/Products/{id}", func(w http.ResponseWriter, r *http.Request) {
		state.mu.Lock()
		defer state.mu.Unlock()
		for id, product := range state.products {
			if r.PathValue("id") == strconv.Itoa(id) {
				json.NewEncoder(w).Encode(product)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("GET /api/Products/", func(w http.ResponseWriter, r *http.Request) {
		state.mu.Lock()
		defer state.mu.Unlock()
		var products []models.Product
		for _, product := range state.products {
			products = append(products, product)
		}
		json.NewEncoder(w).Encode(products)
	})
	mux.HandleFunc("GET /api/Orders/SpecificOrder/{id}", func(w http.ResponseWriter, r *http.Request) {
		state.mu.Lock()
		defer state.mu.Unlock()
		for id, order := range state.orders {
			if r.PathValue("id") == strconv.Itoa(id) {
				order.Products = nil
				json.NewEncoder(w).Encode(order)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("GET /api/OrderProducts/{id}", func(w http.ResponseWriter, r *http.Request) {
		state.mu.Lock()
		defer state.mu.Unlock()
		for id, rows := range state.orderRows {
			if r.PathValue("id") == strconv.Itoa(id) {
				json.NewEncoder(w).Encode(rows)
				return
			}
		}
		json.NewEncoder(w).Encode([]models.OrderProduct{})
	})
	mux.HandleFunc("POST /api/Orders", func(w http.ResponseWriter, r *http.Request) {
		var order models.Order
		json.NewDecoder(r.Body).Decode(&order)
		state.mu.Lock()
		order.ID = state.nextOrderID
		state.nextOrderID++
		var rows []models.OrderProduct
		for _, product := range order.Products {
			rows = append(rows, models.OrderProduct{OrderID: order.ID, ProductID: product.ID, Amount: 1})
		}
		state.orderRows[order.ID] = rows
		order.Products = nil
		state.orders[order.ID] = order
		state.mu.Unlock()
		json.NewEncoder(w).Encode(order)
	})
	mux.HandleFunc("POST /api/Transactions", func(w http.ResponseWriter, r *http.Request) {
		var transaction models.Transaction
		json.NewDecoder(r.Body).Decode(&transaction)
		state.mu.Lock()
		transaction.ID = 100 + len(state.transactions)
		state.transactions = append(state.transactions, transaction)
		state.mu.Unlock()
		json.NewEncoder(w).Encode(transaction)
	})
	mux.HandleFunc("GET /api/Customers/Authentication/{authId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("POST /api/Customers/", func(w http.ResponseWriter, r *http.Request) {
		var customer models.Customer
		json.NewDecoder(r.Body).Decode(&customer)
		state.mu.Lock()
		customer.ID = 200 + len(state.customers)
		state.customers = append(state.customers, customer)
		state.mu.Unlock()
		json.NewEncoder(w).Encode(customer)
	})

	return state, mux
}

type testApp struct {
	router *gin.Engine
	flow   *draft.Workflow
	remote *remoteState
	signer *rsa.PrivateKey
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	keys, err := auth.NewKeys(publicPEM)
	require.NoError(t, err)

	remote, handler := fakeRemote()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gw := gateway.NewClient(gateway.StaticBase(srv.URL), 5*time.Second)
	flow := draft.NewWorkflow(draft.NewStore(time.Hour), gw)

	return &testApp{
		router: API(keys, gw, flow, nil, "../templates/*.html"),
		flow:   flow,
		remote: remote,
		signer: key,
	}
}

func (a *testApp) token(t *testing.T, subject string, roles ...string) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: roles,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.signer)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: testSession})
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestSessionCookieIsMintedOnFirstContact(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	var minted bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie && cookie.Value != "" {
			minted = true
		}
	}
	assert.True(t, minted)
}

func TestAddDraftProduct(t *testing.T) {
	app := newTestApp(t)
	app.remote.products[1] = models.Product{ID: 1, Name: "cola", Price: decimal.RequireFromString("2.50")}

	rec := app.do(http.MethodPost, "/orders/draft/add/1", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/orders/new", rec.Header().Get("Location"))
	assert.Len(t, app.flow.Draft(testSession).Products, 1)
}

func TestAddDraftProduct_UnknownProduct(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/orders/draft/add/99", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, app.flow.Draft(testSession).Products)
}

func TestAddDraftProduct_ReturnsToEditPageWhenEditing(t *testing.T) {
	app := newTestApp(t)
	app.remote.products[1] = models.Product{ID: 1, Name: "cola", Price: decimal.RequireFromString("2.50")}

	rec := app.do(http.MethodPost, "/orders/draft/add/1", url.Values{"order_id": {"42"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/orders/42/edit", rec.Header().Get("Location"))
}

func TestRemoveDraftProduct(t *testing.T) {
	app := newTestApp(t)
	app.remote.products[1] = models.Product{ID: 1, Name: "cola", Price: decimal.RequireFromString("2.50")}

	app.do(http.MethodPost, "/orders/draft/add/1", nil)
	app.do(http.MethodPost, "/orders/draft/add/1", nil)
	rec := app.do(http.MethodPost, "/orders/draft/remove/1", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, app.flow.Draft(testSession).Products, 1, "only the first matching entry is removed")
}

func TestSaveNewOrder_RedirectsToCheckoutAndClearsDraft(t *testing.T) {
	app := newTestApp(t)
	app.remote.products[1] = models.Product{ID: 1, Name: "cola", Price: decimal.RequireFromString("2.50")}

	app.do(http.MethodPost, "/orders/draft/add/1", nil)
	rec := app.do(http.MethodPost, "/orders/draft/save", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/orders/1/checkout", rec.Header().Get("Location"))
	assert.Empty(t, app.flow.Draft(testSession).Products)

	order := app.remote.orders[1]
	assert.Equal(t, "2.50", order.Cost.StringFixed(2))
	assert.Equal(t, models.StatusNotOrdered, order.Status)
}

func TestCancelNewOrder(t *testing.T) {
	app := newTestApp(t)
	app.remote.products[1] = models.Product{ID: 1, Name: "cola", Price: decimal.RequireFromString("2.50")}

	app.do(http.MethodPost, "/orders/draft/add/1", nil)
	rec := app.do(http.MethodPost, "/orders/draft/cancel", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/orders", rec.Header().Get("Location"))
	assert.Empty(t, app.flow.Draft(testSession).Products)
	assert.Empty(t, app.remote.orders, "cancel persists nothing")
}

func TestCheckout_SavesTransaction(t *testing.T) {
	app := newTestApp(t)
	app.remote.products[1] = models.Product{ID: 1, Name: "cola", Price: decimal.RequireFromString("2.50"), Discount: 1}

	app.do(http.MethodPost, "/orders/draft/add/1", nil)
	app.do(http.MethodPost, "/orders/draft/save", nil)
	rec := app.do(http.MethodPost, "/orders/1/checkout", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/orders", rec.Header().Get("Location"))

	require.Len(t, app.remote.transactions, 1)
	transaction := app.remote.transactions[0]
	assert.Equal(t, 1, transaction.OrderID)
	assert.Equal(t, "2.50", transaction.Cost.StringFixed(2))
	assert.Equal(t, 1, transaction.Discount)
}

func TestOrderDetails_UnknownOrderRendersNotFound(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodGet, "/orders/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutes_RequireAuthenticationAndRole(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/products/new", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no token")

	userToken := app.token(t, "ext-1", auth.RoleUser)
	rec = app.do(http.MethodGet, "/products/new", nil, &http.Cookie{Name: middleware.TokenCookie, Value: userToken})
	assert.Equal(t, http.StatusForbidden, rec.Code, "wrong role")

	adminToken := app.token(t, "ext-2", auth.RoleUser, auth.RoleAdmin)
	rec = app.do(http.MethodGet, "/products/new", nil, &http.Cookie{Name: middleware.TokenCookie, Value: adminToken})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDraftsAreScopedPerSession(t *testing.T) {
	app := newTestApp(t)
	app.remote.products[1] = models.Product{ID: 1, Name: "cola", Price: decimal.RequireFromString("2.50")}

	req := httptest.NewRequest(http.MethodPost, "/orders/draft/add/1", strings.NewReader(""))
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "other-session"})
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Len(t, app.flow.Draft("other-session").Products, 1)
	assert.Empty(t, app.flow.Draft(testSession).Products)
}

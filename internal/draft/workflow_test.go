package draft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackbar-web/internal/gateway"
	"snackbar-web/internal/models"
)

// fakeAPI is an in-memory stand-in for the remote snackbar data API.
type fakeAPI struct {
	mu           sync.Mutex
	products     map[int]models.Product
	orders       map[int]models.Order
	orderRows    map[int][]models.OrderProduct
	customers    map[string]models.Customer
	transactions []models.Transaction
	nextOrderID  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		products:    make(map[int]models.Product),
		orders:      make(map[int]models.Order),
		orderRows:   make(map[int][]models.OrderProduct),
		customers:   make(map[string]models.Customer),
		nextOrderID: 1,
	}
}

func (f *fakeAPI) server() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/Products/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		f.mu.Lock()
		product, ok := f.products[id]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(product)
	})

	mux.HandleFunc("GET /api/Orders/SpecificOrder/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		f.mu.Lock()
		order, ok := f.orders[id]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		order.Products = nil // the association rows carry the products
		json.NewEncoder(w).Encode(order)
	})

	mux.HandleFunc("GET /api/OrderProducts/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		f.mu.Lock()
		rows := f.orderRows[id]
		f.mu.Unlock()
		if rows == nil {
			rows = []models.OrderProduct{}
		}
		json.NewEncoder(w).Encode(rows)
	})

	mux.HandleFunc("POST /api/Orders", func(w http.ResponseWriter, r *http.Request) {
		var order models.Order
		json.NewDecoder(r.Body).Decode(&order)
		f.mu.Lock()
		order.ID = f.nextOrderID
		f.nextOrderID++
		f.orderRows[order.ID] = toRows(order.ID, order.Products)
		order.Products = nil // persisted orders strip the product list
		f.orders[order.ID] = order
		f.mu.Unlock()
		json.NewEncoder(w).Encode(order)
	})

	mux.HandleFunc("PUT /api/Orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		var order models.Order
		json.NewDecoder(r.Body).Decode(&order)
		f.mu.Lock()
		_, ok := f.orders[id]
		if ok {
			f.orderRows[id] = toRows(id, order.Products)
			order.ID = id
			order.Products = nil
			f.orders[id] = order
		}
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/Customers/Authentication/{authId}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		customer, ok := f.customers[r.PathValue("authId")]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(customer)
	})

	mux.HandleFunc("POST /api/Transactions", func(w http.ResponseWriter, r *http.Request) {
		var transaction models.Transaction
		json.NewDecoder(r.Body).Decode(&transaction)
		f.mu.Lock()
		transaction.ID = 100 + len(f.transactions)
		f.transactions = append(f.transactions, transaction)
		f.mu.Unlock()
		json.NewEncoder(w).Encode(transaction)
	})

	return httptest.NewServer(mux)
}

// toRows folds a repeated product list into association rows with amounts.
func toRows(orderID int, products []models.Product) []models.OrderProduct {
	amounts := make(map[int]int)
	var order []int
	for _, p := range products {
		if amounts[p.ID] == 0 {
			order = append(order, p.ID)
		}
		amounts[p.ID]++
	}
	var rows []models.OrderProduct
	for _, id := range order {
		rows = append(rows, models.OrderProduct{OrderID: orderID, ProductID: id, Amount: amounts[id]})
	}
	return rows
}

func newTestWorkflow(t *testing.T) (*Workflow, *Store, *fakeAPI) {
	t.Helper()
	fake := newFakeAPI()
	srv := fake.server()
	t.Cleanup(srv.Close)

	gw := gateway.NewClient(gateway.StaticBase(srv.URL), 5*time.Second)
	store := NewStore(time.Hour)
	return NewWorkflow(store, gw), store, fake
}

func priced(id int, name, price string, discount int) models.Product {
	return models.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Discount: discount}
}

func TestWorkflow_AddProduct_UnknownIDSurfacesNotFound(t *testing.T) {
	w, store, _ := newTestWorkflow(t)

	_, err := w.AddProduct(context.Background(), "sess", 99)
	require.ErrorIs(t, err, gateway.ErrNotFound)
	assert.Empty(t, store.Get("sess").Products)
}

func TestWorkflow_RemoveProduct_AbsentFromDraftIsNoOp(t *testing.T) {
	w, store, fake := newTestWorkflow(t)
	fake.products[1] = priced(1, "cola", "2.50", 0)
	fake.products[2] = priced(2, "chips", "1.00", 1)

	_, err := w.AddProduct(context.Background(), "sess", 1)
	require.NoError(t, err)

	// Product 2 exists remotely but is not in the draft.
	require.NoError(t, w.RemoveProduct(context.Background(), "sess", 2))
	assert.Len(t, store.Get("sess").Products, 1)
}

func TestWorkflow_SaveNew(t *testing.T) {
	w, store, fake := newTestWorkflow(t)
	fake.products[1] = priced(1, "cola", "2.50", 0)
	fake.products[2] = priced(2, "chips", "1.00", 1)
	fake.customers["ext-1"] = models.Customer{ID: 7, AuthenticationID: "ext-1", Name: "Alice"}

	ctx := context.Background()
	_, err := w.AddProduct(ctx, "sess", 1)
	require.NoError(t, err)
	_, err = w.AddProduct(ctx, "sess", 2)
	require.NoError(t, err)

	order, err := w.SaveNew(ctx, "sess", "ext-1")
	require.NoError(t, err)

	assert.Equal(t, "3.50", order.Cost.StringFixed(2))
	assert.Equal(t, 7, order.CustomerID)
	assert.Equal(t, models.StatusNotOrdered, order.Status)
	assert.False(t, order.IsFavorited)
	assert.Len(t, order.Products, 2, "saved order keeps its product list")

	assert.Empty(t, store.Get("sess").Products, "draft is cleared after save")
	assert.Len(t, fake.orderRows[order.ID], 2, "both products recorded against the order")
}

func TestWorkflow_SaveNew_GuestAndUnknownPrincipalStayAnonymous(t *testing.T) {
	w, _, fake := newTestWorkflow(t)
	fake.products[1] = priced(1, "cola", "2.50", 0)

	ctx := context.Background()
	_, err := w.AddProduct(ctx, "sess", 1)
	require.NoError(t, err)

	// A principal without a customer record behaves like a guest.
	order, err := w.SaveNew(ctx, "sess", "nobody")
	require.NoError(t, err)
	assert.Zero(t, order.CustomerID)
}

func TestWorkflow_Promote(t *testing.T) {
	w, _, fake := newTestWorkflow(t)
	fake.products[1] = priced(1, "cola", "2.50", 0)
	fake.products[2] = priced(2, "chips", "1.00", 1)

	ctx := context.Background()
	_, err := w.AddProduct(ctx, "sess", 1)
	require.NoError(t, err)
	_, err = w.AddProduct(ctx, "sess", 2)
	require.NoError(t, err)

	order, err := w.SaveNew(ctx, "sess", "")
	require.NoError(t, err)

	promotedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return promotedAt }

	transaction, loaded, err := w.Promote(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, "3.50", transaction.Cost.StringFixed(2))
	assert.Equal(t, 1, transaction.Discount)
	assert.Equal(t, promotedAt, transaction.DateOfTransaction, "timestamp is the promotion instant, not the order date")
	assert.Equal(t, order.ID, transaction.OrderID)
	assert.Len(t, loaded.Products, 2)
}

func TestWorkflow_StartEditAndSaveEdit(t *testing.T) {
	w, store, fake := newTestWorkflow(t)
	fake.products[3] = priced(3, "candy", "1.25", 0)
	fake.orders[42] = models.Order{
		ID: 42, Status: "Ordered", IsFavorited: true, CustomerID: 9,
		Cost: decimal.RequireFromString("2.50"),
	}
	fake.orderRows[42] = []models.OrderProduct{{OrderID: 42, ProductID: 3, Amount: 2}}

	ctx := context.Background()
	require.NoError(t, w.StartEdit(ctx, "sess", 42))

	d := store.Get("sess")
	assert.Equal(t, 42, d.OrderID)
	require.Len(t, d.Products, 2, "amount 2 expands to two draft entries")
	assert.Equal(t, 3, d.Products[0].ID)
	assert.Equal(t, 3, d.Products[1].ID)

	updated, err := w.SaveEdit(ctx, "sess", 42)
	require.NoError(t, err)

	assert.Equal(t, "2.50", updated.Cost.StringFixed(2))
	assert.Equal(t, "Ordered", updated.Status)
	assert.True(t, updated.IsFavorited)
	assert.Equal(t, 9, updated.CustomerID)
	assert.Len(t, updated.Products, 2)
	assert.Empty(t, store.Get("sess").Products, "draft is cleared after save")
}

func TestWorkflow_StartEdit_UnknownOrder(t *testing.T) {
	w, _, _ := newTestWorkflow(t)
	err := w.StartEdit(context.Background(), "sess", 404)
	require.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestWorkflow_Cancel(t *testing.T) {
	w, store, fake := newTestWorkflow(t)
	fake.products[1] = priced(1, "cola", "2.50", 0)

	_, err := w.AddProduct(context.Background(), "sess", 1)
	require.NoError(t, err)

	w.Cancel("sess")
	d := store.Get("sess")
	assert.Empty(t, d.Products)
	assert.Zero(t, d.OrderID)
}

func TestWorkflow_SaveTransaction(t *testing.T) {
	w, _, fake := newTestWorkflow(t)
	fake.products[1] = priced(1, "cola", "2.50", 0)

	ctx := context.Background()
	_, err := w.AddProduct(ctx, "sess", 1)
	require.NoError(t, err)
	order, err := w.SaveNew(ctx, "sess", "")
	require.NoError(t, err)

	savedAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	w.now = func() time.Time { return savedAt }

	transaction, _, err := w.Promote(ctx, order.ID)
	require.NoError(t, err)

	created, err := w.SaveTransaction(ctx, order.ID, transaction)
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, order.ID, created.OrderID)
	assert.True(t, created.DateOfTransaction.Equal(savedAt))
	require.Len(t, fake.transactions, 1)
}

func TestCostAndTotalDiscount(t *testing.T) {
	products := []models.Product{
		priced(1, "cola", "2.50", 0),
		priced(2, "chips", "1.00", 1),
		priced(2, "chips", "1.00", 1),
	}
	assert.Equal(t, "4.50", Cost(products).StringFixed(2))
	assert.Equal(t, 2, TotalDiscount(products))

	assert.True(t, Cost(nil).IsZero())
	assert.Zero(t, TotalDiscount(nil))
}

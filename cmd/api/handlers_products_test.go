package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendahub/tienda/internal/auth"
	"github.com/tiendahub/tienda/internal/category"
	"github.com/tiendahub/tienda/internal/product"
	"github.com/tiendahub/tienda/internal/tenant"
)

const testTenantID = "11111111-1111-1111-1111-111111111111"

// withTestTenant injects an authenticated tenant, standing in for the
// Authenticate middleware chain.
func withTestTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.SetTenant(c, &tenant.Tenant{ID: testTenantID, Status: tenant.StatusActive})
	}
}

// stubProducts implements product.Repository in memory.
type stubProducts struct {
	items map[string]*product.Product
}

func newStubProducts() *stubProducts {
	return &stubProducts{items: make(map[string]*product.Product)}
}

func (s *stubProducts) List(ctx context.Context, tenantID string, q product.Query) ([]product.Product, int, error) {
	var out []product.Product
	for _, p := range s.items {
		if p.TenantID != tenantID {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
			continue
		}
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		if q.ActiveOnly && p.Status != product.StatusActive {
			continue
		}
		out = append(out, *p)
	}
	total := len(out)
	if q.Offset > len(out) {
		out = nil
	} else if q.Offset > 0 {
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

func (s *stubProducts) GetByID(ctx context.Context, tenantID, id string) (*product.Product, error) {
	p, ok := s.items[id]
	if !ok || p.TenantID != tenantID {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProducts) GetBySlug(ctx context.Context, tenantID, slug string, activeOnly bool) (*product.Product, error) {
	for _, p := range s.items {
		if p.TenantID == tenantID && p.Slug == slug && (!activeOnly || p.Status == product.StatusActive) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, product.ErrNotFound
}

func (s *stubProducts) Create(ctx context.Context, p *product.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *stubProducts) Update(ctx context.Context, p *product.Product, inventory *int, trackInventory, isFeatured *bool) error {
	cur, ok := s.items[p.ID]
	if !ok {
		return product.ErrNotFound
	}
	cp := *p
	if inventory != nil {
		cp.Inventory = *inventory
	} else {
		cp.Inventory = cur.Inventory
	}
	if trackInventory != nil {
		cp.TrackInventory = *trackInventory
	} else {
		cp.TrackInventory = cur.TrackInventory
	}
	if isFeatured != nil {
		cp.IsFeatured = *isFeatured
	} else {
		cp.IsFeatured = cur.IsFeatured
	}
	s.items[p.ID] = &cp
	return nil
}

func (s *stubProducts) Delete(ctx context.Context, tenantID, id string) (bool, error) {
	p, ok := s.items[id]
	if !ok || p.TenantID != tenantID {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *stubProducts) BulkUpdateStatus(ctx context.Context, tenantID string, ids []string, status string) error {
	for _, id := range ids {
		if p, ok := s.items[id]; ok && p.TenantID == tenantID {
			p.Status = status
		}
	}
	return nil
}

func (s *stubProducts) IncrementViewCount(ctx context.Context, tenantID, id string) error {
	if p, ok := s.items[id]; ok && p.TenantID == tenantID {
		p.ViewCount++
	}
	return nil
}

func (s *stubProducts) SKUExists(ctx context.Context, tenantID, sku, excludeID string) (bool, error) {
	for _, p := range s.items {
		if p.TenantID == tenantID && p.SKU == sku && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubProducts) LowStock(ctx context.Context, tenantID string, threshold, limit int) ([]product.Product, error) {
	var out []product.Product
	for _, p := range s.items {
		if p.TenantID == tenantID && p.TrackInventory && p.Inventory <= threshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

// stubCategories implements category.Repository in memory.
type stubCategories struct {
	items map[string]*category.Category
}

func newStubCategories() *stubCategories {
	return &stubCategories{items: make(map[string]*category.Category)}
}

func (s *stubCategories) List(ctx context.Context, tenantID string, q category.Query) ([]category.Category, int, error) {
	var out []category.Category
	for _, c := range s.items {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (s *stubCategories) GetByID(ctx context.Context, tenantID, id string) (*category.Category, error) {
	c, ok := s.items[id]
	if !ok || c.TenantID != tenantID {
		return nil, category.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *stubCategories) Create(ctx context.Context, c *category.Category) error {
	cp := *c
	s.items[c.ID] = &cp
	return nil
}

func (s *stubCategories) Update(ctx context.Context, c *category.Category, sortOrder *int, isActive *bool) error {
	cur, ok := s.items[c.ID]
	if !ok {
		return category.ErrNotFound
	}
	cp := *c
	if sortOrder != nil {
		cp.SortOrder = *sortOrder
	} else {
		cp.SortOrder = cur.SortOrder
	}
	if isActive != nil {
		cp.IsActive = *isActive
	} else {
		cp.IsActive = cur.IsActive
	}
	s.items[c.ID] = &cp
	return nil
}

func (s *stubCategories) Delete(ctx context.Context, tenantID, id string) (bool, error) {
	c, ok := s.items[id]
	if !ok || c.TenantID != tenantID {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *stubCategories) SlugExists(ctx context.Context, tenantID, slug, excludeID string) (bool, error) {
	for _, c := range s.items {
		if c.TenantID == tenantID && c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func newProductsRouter(repo product.Repository, categories category.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withTestTenant())
	r.GET("/products", listProductsHandler(repo))
	r.GET("/products/:id", getProductHandler(repo))
	r.POST("/products", createProductHandler(repo, categories))
	r.PUT("/products/:id", updateProductHandler(repo, categories))
	r.DELETE("/products/:id", deleteProductHandler(repo))
	r.PUT("/products/bulk-status", bulkStatusHandler(repo))
	return r
}

func seedStubCategory(cats *stubCategories) string {
	id := uuid.NewString()
	_ = cats.Create(context.Background(), &category.Category{
		ID: id, TenantID: testTenantID, Name: "Audio", Slug: "audio", IsActive: true,
	})
	return id
}

func TestListProductsPagination(t *testing.T) {
	repo := newStubProducts()
	cats := newStubCategories()
	catID := seedStubCategory(cats)
	for i := 1; i <= 3; i++ {
		_ = repo.Create(context.Background(), &product.Product{
			TenantID: testTenantID, CategoryID: catID,
			Name: fmt.Sprintf("Prod %d", i), SKU: fmt.Sprintf("SKU-%d", i),
			Status: product.StatusActive,
		})
	}
	r := newProductsRouter(repo, cats)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products?page=2&limit=2", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got struct {
		Products   []product.Product `json:"products"`
		Pagination struct {
			Page  int `json:"page"`
			Total int `json:"total"`
			Pages int `json:"pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Products, 1)
	assert.Equal(t, 2, got.Pagination.Page)
	assert.Equal(t, 3, got.Pagination.Total)
	assert.Equal(t, 2, got.Pagination.Pages)
}

func TestGetProductIncrementsViews(t *testing.T) {
	repo := newStubProducts()
	cats := newStubCategories()
	p := &product.Product{ID: "x", TenantID: testTenantID, Name: "Headset", SKU: "HS-1", Status: product.StatusActive}
	_ = repo.Create(context.Background(), p)
	r := newProductsRouter(repo, cats)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/x", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, repo.items["x"].ViewCount)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProduct(t *testing.T) {
	repo := newStubProducts()
	cats := newStubCategories()
	catID := seedStubCategory(cats)
	r := newProductsRouter(repo, cats)

	body := fmt.Sprintf(`{"name":"Mechanical Keyboard","sku":"KEYB-1","price":"199.90","category_id":%q,"inventory":10}`, catID)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, repo.items, 1)
	for _, p := range repo.items {
		assert.Equal(t, testTenantID, p.TenantID)
		assert.Equal(t, "mechanical-keyboard", p.Slug)
		assert.Equal(t, product.StatusDraft, p.Status)
		assert.True(t, p.TrackInventory)
		assert.Equal(t, 10, p.Inventory)
	}

	// duplicate SKU
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductValidation(t *testing.T) {
	repo := newStubProducts()
	cats := newStubCategories()
	catID := seedStubCategory(cats)
	r := newProductsRouter(repo, cats)

	for name, body := range map[string]string{
		"missing fields":   `{"name":"X"}`,
		"bad price":        fmt.Sprintf(`{"name":"X","sku":"S1","price":"abc","category_id":%q}`, catID),
		"negative price":   fmt.Sprintf(`{"name":"X","sku":"S1","price":"-5","category_id":%q}`, catID),
		"unknown category": `{"name":"X","sku":"S1","price":"5.00","category_id":"nope"}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
	assert.Empty(t, repo.items)
}

func TestBulkStatus(t *testing.T) {
	repo := newStubProducts()
	cats := newStubCategories()
	_ = repo.Create(context.Background(), &product.Product{ID: "a", TenantID: testTenantID, Name: "A", SKU: "A", Status: product.StatusDraft})
	_ = repo.Create(context.Background(), &product.Product{ID: "b", TenantID: testTenantID, Name: "B", SKU: "B", Status: product.StatusDraft})
	r := newProductsRouter(repo, cats)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/bulk-status",
		strings.NewReader(`{"product_ids":["a","b"],"status":"active"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, product.StatusActive, repo.items["a"].Status)
	assert.Equal(t, product.StatusActive, repo.items["b"].Status)

	// unknown status rejected
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/products/bulk-status",
		strings.NewReader(`{"product_ids":["a"],"status":"bogus"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProduct(t *testing.T) {
	repo := newStubProducts()
	cats := newStubCategories()
	_ = repo.Create(context.Background(), &product.Product{ID: "a", TenantID: testTenantID, Name: "A", SKU: "A"})
	r := newProductsRouter(repo, cats)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/products/a", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, repo.items)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/products/a", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package sale

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	saleapp "salesvc/application/sale"
	"salesvc/infrastructure/persistence/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := mocks.NewMockSaleRepository()
	publisher := mocks.NewMockEventPublisher()
	svc := saleapp.NewService(repo, publisher)
	controller := NewController(svc)

	engine := gin.New()
	apiGroup := engine.Group("/api/v1")
	controller.RegisterRoutes(apiGroup)
	return engine
}

func createSaleBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"customer": "John Doe",
		"branch":   "Downtown",
		"items": []map[string]any{
			{"product": "Beer", "quantity": 5, "unit_price": "10.00"},
			{"product": "Wine", "quantity": 3, "unit_price": "20.00"},
		},
	})
	return body
}

func doRequest(engine *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func createSaleViaAPI(t *testing.T, engine *gin.Engine) saleapp.SaleResponse {
	t.Helper()
	w := doRequest(engine, http.MethodPost, "/api/v1/sales", createSaleBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	var resp saleapp.SaleResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp
}

func TestCreateSaleEndpoint(t *testing.T) {
	engine := setupTestRouter()

	w := doRequest(engine, http.MethodPost, "/api/v1/sales", createSaleBody())
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	var resp saleapp.SaleResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "105.00", resp.TotalAmount)
	assert.Equal(t, "Active", resp.Status)
	assert.Len(t, resp.Items, 2)
}

func TestCreateSaleBindingFailure(t *testing.T) {
	engine := setupTestRouter()

	w := doRequest(engine, http.MethodPost, "/api/v1/sales", []byte(`{"customer":"John"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
}

func TestCreateSaleDomainRuleViolation(t *testing.T) {
	engine := setupTestRouter()

	body, _ := json.Marshal(map[string]any{
		"customer": "John Doe",
		"branch":   "Downtown",
		"items": []map[string]any{
			{"product": "Beer", "quantity": 21, "unit_price": "10.00"},
		},
	})

	w := doRequest(engine, http.MethodPost, "/api/v1/sales", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, "DOMAIN_RULE_VIOLATION", env.Error)
	assert.Equal(t, "cannot sell more than 20 identical items", env.Message)
}

func TestGetSaleEndpoint(t *testing.T) {
	engine := setupTestRouter()
	created := createSaleViaAPI(t, engine)

	w := doRequest(engine, http.MethodGet, "/api/v1/sales/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var resp saleapp.SaleResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, created.SaleNumber, resp.SaleNumber)
}

func TestGetSaleNotFound(t *testing.T) {
	engine := setupTestRouter()

	w := doRequest(engine, http.MethodGet, "/api/v1/sales/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, "SALE_NOT_FOUND", env.Error)
}

func TestListSalesEndpoint(t *testing.T) {
	engine := setupTestRouter()
	createSaleViaAPI(t, engine)
	createSaleViaAPI(t, engine)

	w := doRequest(engine, http.MethodGet, "/api/v1/sales?page=1&size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var paginated struct {
		Success    bool                   `json:"success"`
		Data       []saleapp.SaleResponse `json:"data"`
		Pagination map[string]json.Number `json:"pagination"`
	}
	decoder := json.NewDecoder(bytes.NewReader(w.Body.Bytes()))
	decoder.UseNumber()
	require.NoError(t, decoder.Decode(&paginated))
	assert.True(t, paginated.Success)
	assert.Len(t, paginated.Data, 2)
	assert.Equal(t, "2", paginated.Pagination["total_items"].String())
}

func TestCancelSaleEndpoint(t *testing.T) {
	engine := setupTestRouter()
	created := createSaleViaAPI(t, engine)

	w := doRequest(engine, http.MethodPost, "/api/v1/sales/"+created.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Cancellation is terminal: the second attempt is a rule violation.
	w = doRequest(engine, http.MethodPost, "/api/v1/sales/"+created.ID+"/cancel", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, "sale is already cancelled", env.Message)
}

func TestCancelItemEndpointCascade(t *testing.T) {
	engine := setupTestRouter()
	created := createSaleViaAPI(t, engine)

	path := fmt.Sprintf("/api/v1/sales/%s/items/%s", created.ID, created.Items[0].ID)
	w := doRequest(engine, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var resp CancelItemResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.False(t, resp.WasAutoCancelled)
	assert.Equal(t, "60.00", resp.Sale.TotalAmount)

	path = fmt.Sprintf("/api/v1/sales/%s/items/%s", created.ID, created.Items[1].ID)
	w = doRequest(engine, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env = decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.True(t, resp.WasAutoCancelled)
	assert.Equal(t, "Cancelled", resp.Sale.Status)
	assert.Equal(t, "0.00", resp.Sale.TotalAmount)
}

func TestCancelItemNotFound(t *testing.T) {
	engine := setupTestRouter()
	created := createSaleViaAPI(t, engine)

	w := doRequest(engine, http.MethodDelete, "/api/v1/sales/"+created.ID+"/items/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, "ITEM_NOT_FOUND", env.Error)
	assert.Contains(t, env.Message, "Available items: ")
}

func TestDeleteSaleEndpoint(t *testing.T) {
	engine := setupTestRouter()
	created := createSaleViaAPI(t, engine)

	w := doRequest(engine, http.MethodDelete, "/api/v1/sales/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/sales/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

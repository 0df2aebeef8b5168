package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx/internal/history"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/server"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	return server.NewServer(&server.Config{
		Address:     ":0",
		HistoryFile: filepath.Join(t.TempDir(), "invoice_history.json"),
		Profile:     model.ProfileEN16931,
	}, zerolog.Nop())
}

const validPayload = `{
	"id": "INV-2026-001",
	"issue_date": "2026-03-15",
	"seller": {
		"name": "My Company GmbH",
		"address_lines": ["Main Street 1", "12345 Berlin"],
		"tax_id": "DE123456789"
	},
	"buyer": {
		"name": "Client Corp",
		"address_lines": ["Side Street 2", "54321 Hamburg"]
	},
	"payment": {"iban": "DE89370400440532013000"},
	"items": [
		{"name": "Consulting", "qty": 10, "price": 100, "vat_percent": 19}
	]
}`

func doRequest(s *server.Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestServer(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestGenerateXML(t *testing.T) {
	w := doRequest(newTestServer(t), http.MethodPost, "/api/v1/generate/xml", validPayload)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=factur-x.xml", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "rsm:CrossIndustryInvoice")
	assert.Contains(t, w.Body.String(), "1190.00")
}

func TestGenerateXML_EmptyItems(t *testing.T) {
	payload := strings.Replace(validPayload,
		`"items": [
		{"name": "Consulting", "qty": 10, "price": 100, "vat_percent": 19}
	]`,
		`"items": []`, 1)

	w := doRequest(newTestServer(t), http.MethodPost, "/api/v1/generate/xml", payload)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least one item")
}

func TestGenerateXML_MissingID(t *testing.T) {
	payload := strings.Replace(validPayload, `"id": "INV-2026-001"`, `"id": ""`, 1)

	w := doRequest(newTestServer(t), http.MethodPost, "/api/v1/generate/xml", payload)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateXML_BadDate(t *testing.T) {
	payload := strings.Replace(validPayload, `"issue_date": "2026-03-15"`, `"issue_date": "15.03.2026"`, 1)

	w := doRequest(newTestServer(t), http.MethodPost, "/api/v1/generate/xml", payload)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
}

func TestGenerateXML_InvalidJSON(t *testing.T) {
	w := doRequest(newTestServer(t), http.MethodPost, "/api/v1/generate/xml", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeneratePDF(t *testing.T) {
	w := doRequest(newTestServer(t), http.MethodPost, "/api/v1/generate/pdf", validPayload)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestGenerateZUGFeRD(t *testing.T) {
	w := doRequest(newTestServer(t), http.MethodPost, "/api/v1/generate/zugferd", validPayload)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "INV-2026-001-zugferd.pdf")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestHistory_RecordsAfterGenerate(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var before history.History
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &before))
	assert.Empty(t, before.Senders)

	require.Equal(t, http.StatusOK,
		doRequest(s, http.MethodPost, "/api/v1/generate/xml", validPayload).Code)

	w = doRequest(s, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var after history.History
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	require.Len(t, after.Senders, 1)
	assert.Equal(t, "DE123456789", after.Senders[0].TaxID)
}

func TestNextID(t *testing.T) {
	w := doRequest(newTestServer(t), http.MethodGet, "/api/v1/next-id", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp server.NextIDResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.ID, "INV-"))
	assert.True(t, strings.HasSuffix(resp.ID, "-001"))
}

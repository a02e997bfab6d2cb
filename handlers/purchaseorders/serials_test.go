package purchaseorders

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-server/models"

	"github.com/stretchr/testify/require"
)

func TestMarkSerialAsUsed(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	store := seedStore(t, db, "Main Branch")

	w := doJSON(r, http.MethodPost, "/purchase-orders", orderPayload(store.ID, 2, []string{"SN500", "SN501"}))
	require.Equal(t, http.StatusCreated, w.Code)

	// Lowercase input resolves to the stored uppercase serial
	w = doJSON(r, http.MethodPost, "/serial-numbers/mark-used", map[string]string{
		"serialNumber": "sn500",
		"leadId":       "lead-1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var serial models.MTokenSerialNumber
	require.NoError(t, db.Where("serial_number = ?", "SN500").First(&serial).Error)
	require.True(t, serial.IsUsed)
	require.Equal(t, "lead-1", serial.UsedInLeadID)

	// A used serial no longer shows up in the allocation search
	req := httptest.NewRequest(http.MethodGet, "/serial-numbers/search?query=SN50", nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	var search struct {
		Results []models.MTokenSerialNumber `json:"results"`
		Total   int                         `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &search))
	require.Equal(t, 1, search.Total)
	require.Equal(t, "SN501", search.Results[0].SerialNumber)
}

func TestMarkSerialAsUsedAlreadyUsed(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	store := seedStore(t, db, "Main Branch")

	w := doJSON(r, http.MethodPost, "/purchase-orders", orderPayload(store.ID, 1, []string{"SN600"}))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/serial-numbers/mark-used", map[string]string{
		"serialNumber": "SN600",
		"leadId":       "lead-1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Re-marking is rejected and the original binding is kept
	w = doJSON(r, http.MethodPost, "/serial-numbers/mark-used", map[string]string{
		"serialNumber": "SN600",
		"leadId":       "lead-2",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "Serial number SN600 is already used")

	var serial models.MTokenSerialNumber
	require.NoError(t, db.Where("serial_number = ?", "SN600").First(&serial).Error)
	require.Equal(t, "lead-1", serial.UsedInLeadID)
}

func TestMarkSerialAsUsedValidation(t *testing.T) {
	setupTestDB(t)
	r := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/serial-numbers/mark-used", map[string]string{"serialNumber": "SN700"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Serial number and lead ID are required")

	w = doJSON(r, http.MethodPost, "/serial-numbers/mark-used", map[string]string{
		"serialNumber": "NOPE",
		"leadId":       "lead-1",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Serial number not found")
}

func TestGetAllSerialNumbersFilters(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t)
	main := seedStore(t, db, "Main Branch")
	city := seedStore(t, db, "City Branch")

	require.Equal(t, http.StatusCreated,
		doJSON(r, http.MethodPost, "/purchase-orders", orderPayload(main.ID, 2, []string{"SN800", "SN801"})).Code)
	require.Equal(t, http.StatusCreated,
		doJSON(r, http.MethodPost, "/purchase-orders", orderPayload(city.ID, 1, []string{"SN900"})).Code)

	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/serial-numbers/mark-used", map[string]string{
		"serialNumber": "SN800",
		"leadId":       "lead-1",
	}).Code)

	fetch := func(path string) (results []models.MTokenSerialNumber) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Serials []models.MTokenSerialNumber `json:"serials"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Serials
	}

	require.Len(t, fetch("/serial-numbers"), 3)
	require.Len(t, fetch("/serial-numbers?storeId="+main.ID), 2)

	used := fetch("/serial-numbers?isUsed=true")
	require.Len(t, used, 1)
	require.Equal(t, "SN800", used[0].SerialNumber)

	unused := fetch("/serial-numbers?isUsed=false&storeId="+main.ID)
	require.Len(t, unused, 1)
	require.Equal(t, "SN801", unused[0].SerialNumber)
}

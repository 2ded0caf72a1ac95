package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osiedle/internal/core/apperror"
	"osiedle/internal/schema"
)

func newTestRecord(t *testing.T, raw string) *schema.Record {
	t.Helper()
	var r schema.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return &r
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestListSendsCacheBuster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/budynek", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("t"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id_budynku":1,"adres":"ul. Polna 3"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithClock(fixedClock()))
	rows, err := c.List(context.Background(), "budynek")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ul. Polna 3", rows[0].StringValue("adres"))

	key, ok := rows[0].PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, "id_budynku", key)
}

func TestSearchSendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/czlonek/search", r.URL.Path)
		assert.Equal(t, "kowal", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.URL.Query().Get("t"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	rows, err := c.Search(context.Background(), "czlonek", "kowal")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{"validation", 400, `{"code":"VALIDATION_ERROR","message":"Nieprawidłowa tabela"}`,
			apperror.CodeValidation, "Nieprawidłowa tabela"},
		{"unprocessable", 422, `{"message":"brak klucza"}`, apperror.CodeValidation, "brak klucza"},
		{"unauthorized", 401, `{"message":"Nieprawidłowe dane logowania"}`,
			apperror.CodeUnauthorized, "Nieprawidłowe dane logowania"},
		{"server failure", 500, `{"message":"Database error"}`, apperror.CodeNetwork, "Database error"},
		{"opaque body", 502, `gateway exploded`, apperror.CodeNetwork, "serwer zwrócił status 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL)
			_, err := c.List(context.Background(), "budynek")
			require.Error(t, err)

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestTransportErrorIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	c := New(srv.URL)
	_, err := c.List(context.Background(), "budynek")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNetwork, appErr.Code)
}

func TestBulkDeleteNeverStopsEarly(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/data/oplata/id_oplaty/2" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"Database error"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.BulkDelete(context.Background(), "oplata", "id_oplaty", []string{"1", "2", "3"})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Message, "1 z 3")
}

func TestBulkDeleteAllSucceed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.BulkDelete(context.Background(), "oplata", "id_oplaty", []string{"1", "2"}))
}

func TestLoginAdminInstallsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "admin", body["login"])
			assert.Equal(t, "tajne", body["haslo"])
			_, _ = w.Write([]byte(`{"success":true,"user":{"id":1,"login":"admin"},"role":"admin","token":"tok-123"}`))
		case "/data/budynek":
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.LoginAdmin(context.Background(), "admin", "tajne")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "admin", resp.Role)

	_, err = c.List(context.Background(), "budynek")
	require.NoError(t, err)
}

func TestAddFeePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/procedures/add-fee", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(7), body["id_mieszkania"])
		assert.Equal(t, float64(2), body["id_uslugi"])
		assert.Equal(t, 12.5, body["zuzycie"])
		_, _ = w.Write([]byte(`{"success":true,"message":"Dodano opłatę 100.00 PLN dla mieszkania 7"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.AddFee(context.Background(), 7, 2, 12.5)
	require.NoError(t, err)
	assert.Contains(t, res.Message, "100.00 PLN")
}

func TestInsertWrapsRecordInDataEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ul. Polna 3", body.Data["adres"])
	}))
	defer srv.Close()

	rec := newTestRecord(t, `{"adres":"ul. Polna 3","liczba_pieter":4}`)
	c := New(srv.URL)
	require.NoError(t, c.Insert(context.Background(), "budynek", rec))
}

func TestMyDataDecodesDashboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/resident/my-data/7", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("t"))
		_, _ = w.Write([]byte(`{
			"oplaty":[{"id_oplaty":1,"kwota":100,"status_oplaty":"Wystawiono"}],
			"naprawy":[],
			"spotkania":[{"id_spotkania":3,"temat":"Zebranie roczne"}],
			"umowy":[],
			"suma_oplat":350.5
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	out, err := c.MyData(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 350.5, out.FeesTotal)
	require.Len(t, out.Fees, 1)
	require.Len(t, out.Meetings, 1)
	assert.Equal(t, "Zebranie roczne", out.Meetings[0].StringValue("temat"))
}

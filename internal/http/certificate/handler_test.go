package certificate_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgercert/internal/certificate"
	certHandler "github.com/MrJamesThe3rd/ledgercert/internal/http/certificate"
	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
	"github.com/MrJamesThe3rd/ledgercert/internal/signer"
)

type fixedProfile risk.Profile

func (p fixedProfile) Profile(context.Context, *risk.Month) (risk.Profile, error) {
	return risk.Profile(p), nil
}

type fixedIdentity struct{}

func (fixedIdentity) Get(context.Context) (identity.Identity, error) {
	return identity.Identity{Name: "Asha", Occupation: "Tailor"}, nil
}

func newRouter(income float64) (http.Handler, *certificate.Certifier) {
	certifier := certificate.NewCertifier(signer.NewECDSA(&signer.MemoryKeyStore{}),
		certificate.WithClock(func() time.Time { return time.Unix(1767225600, 0) }),
	)

	profile := fixedProfile{
		Period:         risk.PeriodAllTime,
		TotalIncome:    income,
		NetSavings:     income,
		StabilityLabel: risk.LabelCollectingData,
	}

	r := chi.NewRouter()
	r.Route("/certificate", certHandler.NewHandler(certifier, profile, fixedIdentity{}).Routes)

	return r, certifier
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	return w
}

func TestHandler_CertifyAndQR(t *testing.T) {
	router, _ := newRouter(50000)

	w := do(t, router, http.MethodPost, "/certificate/?wait=true")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		State    string          `json:"state"`
		Document json.RawMessage `json:"document"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "signed", resp.State)

	doc, err := certificate.ParseDocument(string(resp.Document))
	require.NoError(t, err)
	assert.Equal(t, "Asha (Tailor)", doc.UID)
	assert.NotEmpty(t, doc.Security.Signature)

	w = do(t, router, http.MethodGet, "/certificate/qr?scale=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	_, err = png.Decode(bytes.NewReader(w.Body.Bytes()))
	assert.NoError(t, err)
}

func TestHandler_CertifyAsync(t *testing.T) {
	router, certifier := newRouter(50000)

	w := do(t, router, http.MethodPost, "/certificate/")
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		return certifier.Current().IsSigned()
	}, 2*time.Second, 10*time.Millisecond)

	w = do(t, router, http.MethodGet, "/certificate/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"signed"`)
}

func TestHandler_InsufficientData(t *testing.T) {
	router, _ := newRouter(0)

	w := do(t, router, http.MethodPost, "/certificate/")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, router, http.MethodPost, "/certificate/")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodGet, "/certificate/qr")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPost, "/certificate/reset")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, "/certificate/")
	assert.Contains(t, w.Body.String(), `"state":"unsigned"`)
}

func TestHandler_HistoryWithoutStore(t *testing.T) {
	router, _ := newRouter(50000)

	w := do(t, router, http.MethodGet, "/certificate/history?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, router, http.MethodGet, "/certificate/history?limit=zero")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgercert/internal/auth"
	"github.com/MrJamesThe3rd/ledgercert/internal/certificate"
	apphttp "github.com/MrJamesThe3rd/ledgercert/internal/http"
	authMiddleware "github.com/MrJamesThe3rd/ledgercert/internal/http/auth"
	certHandler "github.com/MrJamesThe3rd/ledgercert/internal/http/certificate"
	riskHandler "github.com/MrJamesThe3rd/ledgercert/internal/http/risk"
	"github.com/MrJamesThe3rd/ledgercert/internal/metrics"
	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
	"github.com/MrJamesThe3rd/ledgercert/internal/signer"
)

func TestRouter_MetricsAndCORS(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	certifier := certificate.NewCertifier(signer.NewECDSA(&signer.MemoryKeyStore{}), certificate.WithRecorder(m))

	router := apphttp.New(apphttp.Handlers{
		Risk:        riskHandler.NewHandler(risk.NewService(risk.NewAggregator(time.UTC), nil)),
		Certificate: certHandler.NewHandler(certifier, nil, nil),
	}, apphttp.Options{
		AllowedOrigins: []string{"http://lender.test"},
		Gatherer:       reg,
	})

	m.ObserveCertification(certificate.OutcomeRejected, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `ledgercert_certification_outcomes_total{outcome="rejected"} 1`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificate/", nil)
	req.Header.Set("Origin", "http://lender.test")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://lender.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Authentication(t *testing.T) {
	svc := auth.NewService("s3cret", "ledgercert")

	token, err := svc.Issue("asha", time.Hour)
	require.NoError(t, err)

	certifier := certificate.NewCertifier(signer.NewECDSA(&signer.MemoryKeyStore{}))

	router := apphttp.New(apphttp.Handlers{
		Certificate: certHandler.NewHandler(certifier, nil, nil),
	}, apphttp.Options{
		Gatherer:     prometheus.NewRegistry(),
		Authenticate: authMiddleware.Middleware(svc),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/certificate/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificate/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

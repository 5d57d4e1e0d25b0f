package request_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgercert/internal/http/request"
)

type sample struct {
	Kind string `json:"kind" validate:"required,oneof=INCOME EXPENSE"`
	Note string `json:"note" validate:"max=5"`
}

func TestDecode(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		wantOK     bool
		wantFields []string
	}

	tests := []testCase{
		{name: "Valid", body: `{"kind":"INCOME","note":"ok"}`, wantOK: true},
		{name: "BadJSON", body: `{`},
		{name: "MissingKind", body: `{"note":"ok"}`, wantFields: []string{"kind"}},
		{name: "TwoFailures", body: `{"kind":"REFUND","note":"too long"}`, wantFields: []string{"kind", "note"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var dst sample
			ok := request.Decode(w, r, &dst)
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				return
			}

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp request.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

			fields := make([]string, 0, len(resp.Fields))
			for _, f := range resp.Fields {
				fields = append(fields, f.Field)
			}

			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgercert/internal/counterparty/store"
	"github.com/MrJamesThe3rd/ledgercert/internal/database/databasetest"
)

func TestStore_FindMatch(t *testing.T) {
	s := store.New(databasetest.New(t))
	ctx := context.Background()

	for _, m := range []struct{ pattern, name string }{
		{"SWIGGY", "Swiggy"},
		{"swiggy instamart", "Instamart"},
		{"50%", "Half Off Store"},
		{"PAYTM", "Paytm Old"},
		{"PAYTM", "Paytm"},
	} {
		require.NoError(t, s.CreateMapping(ctx, m.pattern, m.name))
	}

	tests := []struct {
		name        string
		description string
		want        string
	}{
		{name: "CaseInsensitive", description: "upi/swiggy/8812", want: "Swiggy"},
		{name: "LongestPatternWins", description: "UPI/SWIGGY INSTAMART/991", want: "Instamart"},
		{name: "NewestWinsTie", description: "PAYTM*QR", want: "Paytm"},
		{name: "PercentIsLiteral", description: "SHOP 500 MART", want: ""},
		{name: "PercentMatchesItself", description: "FLAT 50% SALE", want: "Half Off Store"},
		{name: "NoMatch", description: "NEFT SALARY", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindMatch(ctx, tt.description)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

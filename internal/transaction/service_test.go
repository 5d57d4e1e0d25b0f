package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: transaction.CreateParams{
					Amount:     decimal.NewFromInt(1000),
					Kind:       transaction.KindIncome,
					OccurredAt: time.Date(2023, 10, 27, 0, 0, 0, 0, time.UTC),
					Category:   "Salary",
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.Equal(t, transaction.DefaultCounterparty, tx.Counterparty)
						tx.ID = 7
						tx.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "NegativeAmount",
			args: args{
				params: transaction.CreateParams{
					Amount: decimal.NewFromInt(-5),
					Kind:   transaction.KindExpense,
				},
			},
			wantErr: transaction.ErrMalformed,
		},
		{
			name: "MoreThanTwoDecimals",
			args: args{
				params: transaction.CreateParams{
					Amount: decimal.RequireFromString("10.005"),
					Kind:   transaction.KindIncome,
				},
			},
			wantErr: transaction.ErrMalformed,
		},
		{
			name: "TrailingZerosKept",
			args: args{
				params: transaction.CreateParams{
					Amount: decimal.RequireFromString("10.500"),
					Kind:   transaction.KindExpense,
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.True(t, decimal.RequireFromString("10.5").Equal(tx.Amount))
						tx.ID = 7
						return nil
					})
			},
		},
		{
			name: "UnknownKind",
			args: args{
				params: transaction.CreateParams{
					Amount: decimal.NewFromInt(5),
					Kind:   "REFUND",
				},
			},
			wantErr: transaction.ErrMalformed,
		},
		{
			name: "RepoError",
			args: args{
				params: transaction.CreateParams{
					Amount: decimal.NewFromInt(500),
					Kind:   transaction.KindExpense,
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, transaction.ErrMalformed) {
					assert.ErrorIs(t, err, transaction.ErrMalformed)
				}

				return
			}

			assert.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, int64(7), got.ID)
		})
	}
}

func TestService_ImportBatch(t *testing.T) {
	day := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)

	row := func(hash string, amount int64) transaction.CreateParams {
		return transaction.CreateParams{
			Amount:       decimal.NewFromInt(amount),
			Kind:         transaction.KindIncome,
			OccurredAt:   day,
			Category:     "Statement Import",
			Counterparty: "Bank Statement",
			Verified:     true,
			SourceHash:   hash,
		}
	}

	t.Run("SkipsKnownAndRepeatedHashes", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		repo := transaction.NewMockRepository(ctrl)
		itx := transaction.NewMockImportTx(ctrl)

		repo.EXPECT().BeginImport(gomock.Any()).Return(itx, nil)
		itx.EXPECT().
			ExistingHashes(gomock.Any(), []string{"a", "b", "b"}).
			Return(map[string]struct{}{"a": {}}, nil)
		itx.EXPECT().
			CreateTransactions(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
				require.Len(t, txs, 1)
				assert.Equal(t, "b", txs[0].SourceHash)
				return nil
			})
		itx.EXPECT().Commit().Return(nil)
		itx.EXPECT().Rollback().Return(nil)

		svc := transaction.NewService(repo)
		changes, cancel := svc.Subscribe()
		defer cancel()

		res, err := svc.ImportBatch(context.Background(), []transaction.CreateParams{
			row("a", 100), row("b", 200), row("b", 200),
		})
		require.NoError(t, err)
		assert.Len(t, res.Imported, 1)
		assert.Len(t, res.Duplicates, 2)

		select {
		case <-changes:
		default:
			t.Fatal("expected a change notification")
		}
	})

	t.Run("AllDuplicatesDoesNotNotify", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		repo := transaction.NewMockRepository(ctrl)
		itx := transaction.NewMockImportTx(ctrl)

		repo.EXPECT().BeginImport(gomock.Any()).Return(itx, nil)
		itx.EXPECT().
			ExistingHashes(gomock.Any(), gomock.Any()).
			Return(map[string]struct{}{"a": {}}, nil)
		itx.EXPECT().Commit().Return(nil)
		itx.EXPECT().Rollback().Return(nil)

		svc := transaction.NewService(repo)
		changes, cancel := svc.Subscribe()
		defer cancel()

		res, err := svc.ImportBatch(context.Background(), []transaction.CreateParams{row("a", 100)})
		require.NoError(t, err)
		assert.Empty(t, res.Imported)

		select {
		case <-changes:
			t.Fatal("unexpected change notification")
		default:
		}
	})

	t.Run("MalformedRowRejectedBeforeStore", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		svc := transaction.NewService(repo)
		_, err := svc.ImportBatch(context.Background(), []transaction.CreateParams{row("a", -1)})
		assert.ErrorIs(t, err, transaction.ErrMalformed)
	})

	t.Run("SubCentRowRejectedBeforeStore", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		bad := row("c", 0)
		bad.Amount = decimal.RequireFromString("99.999")

		svc := transaction.NewService(repo)
		_, err := svc.ImportBatch(context.Background(), []transaction.CreateParams{row("a", 100), bad})
		assert.ErrorIs(t, err, transaction.ErrMalformed)
	})

	t.Run("Empty", func(t *testing.T) {
		svc := transaction.NewService(nil)
		res, err := svc.ImportBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, res.Imported)
	})
}

func TestService_SubscribeCoalesces(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().DeleteTransaction(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	svc := transaction.NewService(repo)
	changes, cancel := svc.Subscribe()

	for i := range 3 {
		require.NoError(t, svc.Delete(context.Background(), int64(i)))
	}

	<-changes

	select {
	case <-changes:
		t.Fatal("signals should coalesce into one")
	default:
	}

	cancel()
	cancel()

	_, open := <-changes
	assert.False(t, open)
}

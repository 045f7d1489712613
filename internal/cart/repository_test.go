package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO carts").
			WithArgs("principal-1", uint64(7), int64(2)).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Upsert(ctx, AddItemParams{Principal: "principal-1", ProductID: 7, Quantity: 2})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO carts").
			WillReturnError(errors.New("db error"))

		err := repo.Upsert(ctx, AddItemParams{Principal: "principal-1", ProductID: 7, Quantity: 2})
		assert.Error(t, err)
	})
}

func TestRepository_UpdateQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE carts").
			WithArgs(int64(5), "principal-1", uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateQuantity(ctx, UpdateItemParams{Principal: "principal-1", ProductID: 7, Quantity: 5})
		assert.NoError(t, err)
	})

	t.Run("NotInCart", func(t *testing.T) {
		mock.ExpectExec("UPDATE carts").
			WithArgs(int64(5), "principal-1", uint64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateQuantity(ctx, UpdateItemParams{Principal: "principal-1", ProductID: 99, Quantity: 5})
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestRepository_Remove(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM carts").
			WithArgs("principal-1", uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Remove(ctx, "principal-1", 7))
	})

	t.Run("NotInCart", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM carts").
			WithArgs("principal-1", uint64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Remove(ctx, "principal-1", 99), ErrItemNotFound)
	})
}

func TestRepository_GetItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT c.customer_principal, c.product_id, c.quantity").
			WithArgs("principal-1").
			WillReturnRows(sqlmock.NewRows(
				[]string{"customer_principal", "product_id", "quantity", "created_at", "updated_at", "name", "price_cents"}).
				AddRow("principal-1", 7, 2, now, now, "Tomatoes", 5000).
				AddRow("principal-1", 8, 1, now, now, "Basil", 1500))

		items, err := repo.GetItems(context.Background(), "principal-1")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Tomatoes", items[0].Name)
		assert.Equal(t, int64(5000), items[0].PriceCents)
		assert.Equal(t, uint64(8), items[1].ProductID)
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT c.customer_principal, c.product_id, c.quantity").
			WithArgs("principal-2").
			WillReturnRows(sqlmock.NewRows(
				[]string{"customer_principal", "product_id", "quantity", "created_at", "updated_at", "name", "price_cents"}))

		items, err := repo.GetItems(context.Background(), "principal-2")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

package postgres_test

import (
	"context"
	"shoptogether/pkg/domain"
	"shoptogether/pkg/storage"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPgSQL_Products(t *testing.T) {
	pg := setupTestDB(t)

	ctx := context.Background()

	apple, err := pg.StoreProduct(ctx, domain.Product{Name: "Apple", Category: "fruit", PriceCents: 50, Stock: 2})
	require.NoError(t, err)
	require.False(t, apple.CreatedAt.IsZero())
	bread, err := pg.StoreProduct(ctx, domain.Product{Name: "Bread", Category: "bakery", PriceCents: 300, Stock: 5})
	require.NoError(t, err)

	all, err := pg.Products(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Apple", all[0].Name)

	found, err := pg.Products(ctx, domain.ProductFilter{Search: "BRE"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, bread.ID, found[0].ID)

	byIDs, err := pg.ProductsByIDs(ctx, []domain.ProductID{apple.ID, bread.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)

	ok, err := pg.AdjustStock(ctx, apple.ID, -2)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = pg.AdjustStock(ctx, apple.ID, -1)
	require.NoError(t, err)
	require.False(t, ok)

	name := "Green apple"
	updated, err := pg.UpdateProduct(ctx, apple.ID, storage.ProductUpdates{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Equal(t, 0, updated.Stock)

	deleted, err := pg.DeleteProduct(ctx, apple.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	missing, err := pg.ProductByID(ctx, apple.ID)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestPgSQL_UsersAndFamilies(t *testing.T) {
	pg := setupTestDB(t)

	ctx := context.Background()

	ann, err := pg.StoreUser(ctx, domain.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	_, err = pg.StoreUser(ctx, domain.User{Name: "Ann 2", Email: "ann@example.com", PasswordHash: "x"})
	require.ErrorIs(t, err, storage.ErrDuplicate)
	bob, err := pg.StoreUser(ctx, domain.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	byEmail, err := pg.UserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, bob.ID, byEmail.ID)

	fam, err := pg.StoreFamily(ctx, domain.Family{Name: "Smiths", OwnerID: ann.ID})
	require.NoError(t, err)

	err = pg.WithTx(ctx, func(s storage.AllStorage) error {
		if err := s.SetUserFamily(ctx, ann.ID, &fam.ID); err != nil {
			return err
		}

		return s.SetUserFamily(ctx, bob.ID, &fam.ID)
	})
	require.NoError(t, err)

	got, err := pg.FamilyByID(ctx, fam.ID)
	require.NoError(t, err)
	require.Equal(t, []domain.UserID{ann.ID, bob.ID}, got.Members)

	require.NoError(t, pg.SetFamilyOwner(ctx, fam.ID, bob.ID))
	require.NoError(t, pg.SetUserFamily(ctx, ann.ID, nil))
	got, err = pg.FamilyByID(ctx, fam.ID)
	require.NoError(t, err)
	require.Equal(t, bob.ID, got.OwnerID)
	require.Equal(t, []domain.UserID{bob.ID}, got.Members)

	users, err := pg.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestPgSQL_Orders(t *testing.T) {
	pg := setupTestDB(t)

	ctx := context.Background()

	ann, err := pg.StoreUser(ctx, domain.User{Email: "ann@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	apple, err := pg.StoreProduct(ctx, domain.Product{Name: "Apple", PriceCents: 50, Stock: 10})
	require.NoError(t, err)

	items := []domain.OrderItem{{ProductID: apple.ID, Name: apple.Name, Quantity: 3, UnitPriceCents: 50}}
	ord, err := pg.StoreOrder(ctx, domain.Order{
		Number:     1,
		UserID:     ann.ID,
		Items:      items,
		TotalCents: domain.Total(items),
		Status:     domain.OrderStatusPending,
	})
	require.NoError(t, err)
	require.Equal(t, int64(150), ord.TotalCents)
	require.Equal(t, items, ord.Items)

	list, err := pg.UserOrders(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	moved, err := pg.TransitionOrder(ctx, ord.ID, domain.OrderStatusPending, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusConfirmed, moved.Status)

	again, err := pg.TransitionOrder(ctx, ord.ID, domain.OrderStatusPending, domain.OrderStatusCancelled)
	require.NoError(t, err)
	require.Nil(t, again)
}

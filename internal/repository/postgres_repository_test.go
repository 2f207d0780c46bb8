package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) (*PostgresOrderRepository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewPostgresOrderRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestPostgres_CreateAndGet(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	productID := int64(12)
	order := newTestOrder(domain.Registered("user-123"))
	order.OrderItems[0].ProductID = &productID

	require.NoError(t, repo.Create(ctx, order))
	_, err := uuid.Parse(order.ID)
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	id, ok := fetched.User.UserID()
	assert.True(t, ok)
	assert.Equal(t, "user-123", id)
	assert.Equal(t, domain.PaymentMethodCard, fetched.PaymentMethod)
	assert.Equal(t, 2500.0, fetched.TotalPrice)
	require.Len(t, fetched.OrderItems, 1)
	require.NotNil(t, fetched.OrderItems[0].ProductID)
	assert.Equal(t, productID, *fetched.OrderItems[0].ProductID)
	assert.Equal(t, "Ann", fetched.ShippingAddress.Name)
	assert.Nil(t, fetched.PaidAt)
}

func TestPostgres_GuestOwnerStoredAsNull(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder(domain.Guest())
	require.NoError(t, repo.Create(ctx, order))

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, fetched.User.IsGuest())
}

func TestPostgres_GetByID_NotFound(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = repo.GetByID(ctx, "64f0c2aa11")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPostgres_ListByUser(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user-list-test"

	order1 := newTestOrder(domain.Registered(userID))
	require.NoError(t, repo.Create(ctx, order1))

	// Small sleep to ensure different created_at timestamps
	time.Sleep(10 * time.Millisecond)

	order2 := newTestOrder(domain.Registered(userID))
	require.NoError(t, repo.Create(ctx, order2))

	orders, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, order2.ID, orders[0].ID)
	assert.Equal(t, order1.ID, orders[1].ID)

	empty, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostgres_UpdateMarkPaid(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder(domain.Guest())
	require.NoError(t, repo.Create(ctx, order))

	result := domain.PaymentResult{ID: "pi_1", Status: "succeeded", EmailAddress: "a@b.c"}
	_, err := repo.Update(ctx, order.ID, func(o *domain.Order) {
		o.ApplyPayment(result, time.Now().UTC())
	})
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsPaid)
	require.NotNil(t, fetched.PaidAt)
	assert.Equal(t, result, fetched.PaymentResult)

	_, err = repo.Update(ctx, uuid.NewString(), func(*domain.Order) {})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPostgres_Delete(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder(domain.Guest())
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.Delete(ctx, order.ID))
	assert.ErrorIs(t, repo.Delete(ctx, order.ID), ErrOrderNotFound)
}

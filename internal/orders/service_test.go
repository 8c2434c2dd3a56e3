package orders

import (
	"context"
	"fmt"
	"maps"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekeep/storekeep/internal/shared"
)

type snapshotSource struct {
	HubID       int64
	Name        string
	SKU         *string
	Description *string
	Currency    string
	// price level id -> cents
	Rates map[int64]int64
}

// mockRepository keeps orders, lines and the snapshot source data in
// memory. WithTx clones state and commits only on success.
type mockRepository struct {
	orders     map[int64]Order
	lines      map[int64][]Line // by order id
	products   map[int64]snapshotSource
	nextID     int64
	nextLineID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		orders:     make(map[int64]Order),
		lines:      make(map[int64][]Line),
		products:   make(map[int64]snapshotSource),
		nextID:     1,
		nextLineID: 1,
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	tx := &mockRepository{
		orders:     maps.Clone(m.orders),
		lines:      make(map[int64][]Line, len(m.lines)),
		products:   maps.Clone(m.products),
		nextID:     m.nextID,
		nextLineID: m.nextLineID,
	}
	for id, ls := range m.lines {
		tx.lines[id] = append([]Line(nil), ls...)
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.orders = tx.orders
	m.lines = tx.lines
	m.nextID = tx.nextID
	m.nextLineID = tx.nextLineID
	return nil
}

func (m *mockRepository) List(ctx context.Context, hubID int64, filters shared.ListFilters) ([]Order, int, error) {
	var out []Order
	for _, o := range m.orders {
		if o.HubID == hubID {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, hubID, id int64) (Order, error) {
	o, ok := m.orders[id]
	if !ok || o.HubID != hubID {
		return Order{}, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	o.Lines = append([]Line(nil), m.lines[id]...)
	return o, nil
}

func (m *mockRepository) Insert(ctx context.Context, o Order) (Order, error) {
	o.ID = m.nextID
	m.nextID++
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockRepository) Update(ctx context.Context, hubID, id int64, o Order) error {
	existing, ok := m.orders[id]
	if !ok || existing.HubID != hubID {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	o.ID = id
	o.HubID = hubID
	o.CreatedAt = existing.CreatedAt
	o.UpdatedAt = time.Now()
	o.Lines = nil
	m.orders[id] = o
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, hubID, id int64) error {
	o, ok := m.orders[id]
	if !ok || o.HubID != hubID {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	delete(m.orders, id)
	return nil
}

func (m *mockRepository) DeleteLines(ctx context.Context, orderID int64) error {
	delete(m.lines, orderID)
	return nil
}

func (m *mockRepository) InsertLines(ctx context.Context, orderID int64, lines []Line) error {
	for _, l := range lines {
		l.ID = m.nextLineID
		m.nextLineID++
		l.OrderID = orderID
		m.lines[orderID] = append(m.lines[orderID], l)
	}
	return nil
}

func (m *mockRepository) ListLines(ctx context.Context, orderID int64) ([]Line, error) {
	return append([]Line(nil), m.lines[orderID]...), nil
}

func (m *mockRepository) ResolveSnapshot(ctx context.Context, hubID, productID, priceLevelID int64) (ProductSnapshot, error) {
	p, ok := m.products[productID]
	if !ok || p.HubID != hubID {
		return ProductSnapshot{}, fmt.Errorf("product %d: %w", productID, shared.ErrNotFound)
	}
	cents, ok := p.Rates[priceLevelID]
	if !ok {
		return ProductSnapshot{}, fmt.Errorf("product %d with price level %d: %w", productID, priceLevelID, shared.ErrNotFound)
	}
	return ProductSnapshot{
		ProductID:   productID,
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		Currency:    p.Currency,
		PriceCents:  cents,
	}, nil
}

func ptr[T any](v T) *T { return &v }

func seedProduct(repo *mockRepository, id, hubID int64, name string, rates map[int64]int64) {
	repo.products[id] = snapshotSource{HubID: hubID, Name: name, Currency: "USD", Rates: rates}
}

func TestCreateSnapshotsLines(t *testing.T) {
	repo := newMockRepository()
	seedProduct(repo, 100, 1, "Widget", map[int64]int64{10: 1250})
	svc := NewService(repo)

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Reference: "SO-1",
		Lines:     []LineInput{{ProductID: 100, PriceLevelID: 10, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, o.Status)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, "Widget", o.Lines[0].Name)
	assert.Equal(t, int64(1250), o.Lines[0].PriceCents)
	assert.Equal(t, int64(3), o.Lines[0].Quantity)
}

func TestCreateRollsBackOnBadLine(t *testing.T) {
	repo := newMockRepository()
	seedProduct(repo, 100, 1, "Widget", map[int64]int64{10: 1250})
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Reference: "SO-1",
		Lines: []LineInput{
			{ProductID: 100, PriceLevelID: 10, Quantity: 1},
			{ProductID: 999, PriceLevelID: 10, Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, repo.orders, "failed create leaves no order behind")
	assert.Empty(t, repo.lines)
}

func TestCreateRejectsForeignProduct(t *testing.T) {
	repo := newMockRepository()
	seedProduct(repo, 100, 2, "Widget", map[int64]int64{10: 1250})
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Reference: "SO-1",
		Lines:     []LineInput{{ProductID: 100, PriceLevelID: 10, Quantity: 1}},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSnapshotsAreImmutable(t *testing.T) {
	repo := newMockRepository()
	seedProduct(repo, 100, 1, "Widget", map[int64]int64{10: 1250})
	svc := NewService(repo)

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Reference: "SO-1",
		Lines:     []LineInput{{ProductID: 100, PriceLevelID: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	// Rename the product and change its rate after the order exists.
	seedProduct(repo, 100, 1, "Renamed", map[int64]int64{10: 9999})

	got, err := svc.Get(context.Background(), 1, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Widget", got.Lines[0].Name)
	assert.Equal(t, int64(1250), got.Lines[0].PriceCents)
}

func TestUpdateAbsentLinesUntouched(t *testing.T) {
	repo := newMockRepository()
	seedProduct(repo, 100, 1, "Widget", map[int64]int64{10: 1250})
	svc := NewService(repo)

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Reference: "SO-1",
		Lines:     []LineInput{{ProductID: 100, PriceLevelID: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), 1, o.ID, UpdateOrderRequest{Status: ptr(StatusFulfilled)})
	require.NoError(t, err)
	assert.Equal(t, StatusFulfilled, got.Status)
	assert.Len(t, got.Lines, 1, "absent line set must not touch lines")
}

func TestUpdateEmptyLinesClearsAll(t *testing.T) {
	repo := newMockRepository()
	seedProduct(repo, 100, 1, "Widget", map[int64]int64{10: 1250})
	svc := NewService(repo)

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Reference: "SO-1",
		Lines:     []LineInput{{ProductID: 100, PriceLevelID: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), 1, o.ID, UpdateOrderRequest{Lines: LinesPatch{Set: true}})
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
}

func TestUpdateReplacesLines(t *testing.T) {
	repo := newMockRepository()
	seedProduct(repo, 100, 1, "Widget", map[int64]int64{10: 1250})
	seedProduct(repo, 101, 1, "Gadget", map[int64]int64{10: 500})
	svc := NewService(repo)

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Reference: "SO-1",
		Lines:     []LineInput{{ProductID: 100, PriceLevelID: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), 1, o.ID, UpdateOrderRequest{
		Lines: LinesPatch{Set: true, Lines: []LineInput{{ProductID: 101, PriceLevelID: 10, Quantity: 2}}},
	})
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Gadget", got.Lines[0].Name)
}

func TestUpdateBadLineRollsBackClear(t *testing.T) {
	repo := newMockRepository()
	seedProduct(repo, 100, 1, "Widget", map[int64]int64{10: 1250})
	svc := NewService(repo)

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Reference: "SO-1",
		Lines:     []LineInput{{ProductID: 100, PriceLevelID: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 1, o.ID, UpdateOrderRequest{
		Lines: LinesPatch{Set: true, Lines: []LineInput{{ProductID: 999, PriceLevelID: 10, Quantity: 1}}},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	got, err := svc.Get(context.Background(), 1, o.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1, "failed replace must keep the old lines")
}

func TestUpdateWrongHubIsNotFound(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{Reference: "SO-1"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 2, o.ID, UpdateOrderRequest{Status: ptr(StatusCancelled)})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteWrongHubKeepsLines(t *testing.T) {
	repo := newMockRepository()
	seedProduct(repo, 100, 1, "Widget", map[int64]int64{10: 1250})
	svc := NewService(repo)

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Reference: "SO-1",
		Lines:     []LineInput{{ProductID: 100, PriceLevelID: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 2, o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	got, err := svc.Get(context.Background(), 1, o.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1, "rolled-back delete keeps the lines")
}

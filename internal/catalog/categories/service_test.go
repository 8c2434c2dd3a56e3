package categories

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

// mockRepository keeps categories in memory. WithTx works on a copy and
// commits only on success, so rollback behaviour matches the real store.
type mockRepository struct {
	cats   map[int64]Category
	nextID int64

	listAllErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{cats: make(map[int64]Category), nextID: 1}
}

func (m *mockRepository) seed(hubID int64, parentID *int64, name string) Category {
	c := Category{
		ID:        m.nextID,
		HubID:     hubID,
		ParentID:  parentID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.cats[c.ID] = c
	m.nextID++
	return c
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	tx := &mockRepository{
		cats:       maps.Clone(m.cats),
		nextID:     m.nextID,
		listAllErr: m.listAllErr,
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.cats = tx.cats
	m.nextID = tx.nextID
	return nil
}

func (m *mockRepository) List(ctx context.Context, hubID int64, filters shared.ListFilters) ([]Category, int, error) {
	var out []Category
	for _, c := range m.cats {
		if c.HubID != hubID {
			continue
		}
		if c.IsArchived && !filters.IncludeArchived {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockRepository) ListAll(ctx context.Context, hubID int64) ([]Category, error) {
	if m.listAllErr != nil {
		return nil, m.listAllErr
	}
	var out []Category
	for _, c := range m.cats {
		if c.HubID == hubID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, hubID, id int64) (Category, error) {
	c, ok := m.cats[id]
	if !ok || c.HubID != hubID {
		return Category{}, fmt.Errorf("category %d: %w", id, shared.ErrNotFound)
	}
	return c, nil
}

func (m *mockRepository) Create(ctx context.Context, c Category) (Category, error) {
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.cats[c.ID] = c
	return c, nil
}

func (m *mockRepository) Update(ctx context.Context, hubID, id int64, c Category) (Category, error) {
	existing, ok := m.cats[id]
	if !ok || existing.HubID != hubID {
		return Category{}, fmt.Errorf("category %d: %w", id, shared.ErrNotFound)
	}
	existing.Name = c.Name
	existing.Description = c.Description
	existing.IsArchived = c.IsArchived
	existing.UpdatedAt = time.Now()
	m.cats[id] = existing
	return existing, nil
}

func (m *mockRepository) SetParent(ctx context.Context, hubID int64, ids []int64, parentID *int64, now time.Time) error {
	for _, id := range ids {
		c, ok := m.cats[id]
		if !ok || c.HubID != hubID {
			continue
		}
		c.ParentID = parentID
		c.UpdatedAt = now
		m.cats[id] = c
	}
	return nil
}

func (m *mockRepository) DetachChildren(ctx context.Context, hubID, parentID int64, now time.Time) error {
	for id, c := range m.cats {
		if c.HubID == hubID && c.ParentID != nil && *c.ParentID == parentID {
			c.ParentID = nil
			c.UpdatedAt = now
			m.cats[id] = c
		}
	}
	return nil
}

func (m *mockRepository) Touch(ctx context.Context, hubID, id int64, now time.Time) error {
	c, ok := m.cats[id]
	if !ok || c.HubID != hubID {
		return nil
	}
	c.UpdatedAt = now
	m.cats[id] = c
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, hubID, id int64) error {
	c, ok := m.cats[id]
	if !ok || c.HubID != hubID {
		return fmt.Errorf("category %d: %w", id, shared.ErrNotFound)
	}
	delete(m.cats, id)
	return nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, nil, nil)
}

func ptr[T any](v T) *T { return &v }

func TestCreateVerifiesParentHub(t *testing.T) {
	repo := newMockRepository()
	parent := repo.seed(1, nil, "Root")
	foreign := repo.seed(2, nil, "Other Hub Root")
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), 1, CreateCategoryRequest{Name: "Child", ParentID: ptr(parent.ID)})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, CreateCategoryRequest{Name: "Bad", ParentID: ptr(foreign.ID)})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Create(context.Background(), 1, CreateCategoryRequest{Name: "Bad", ParentID: ptr(int64(999))})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReparentRejectsSelf(t *testing.T) {
	repo := newMockRepository()
	a := repo.seed(1, nil, "A")
	svc := newTestService(repo)

	_, err := svc.Reparent(context.Background(), 1, a.ID, ptr(a.ID))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestReparentRejectsDescendant(t *testing.T) {
	// A -> B -> C; moving A under C would close a cycle.
	repo := newMockRepository()
	a := repo.seed(1, nil, "A")
	b := repo.seed(1, ptr(a.ID), "B")
	c := repo.seed(1, ptr(b.ID), "C")
	svc := newTestService(repo)

	_, err := svc.Reparent(context.Background(), 1, a.ID, ptr(c.ID))
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Reparent(context.Background(), 1, a.ID, ptr(b.ID))
	assert.ErrorIs(t, err, shared.ErrValidation)

	// Tree unchanged after the rejections.
	got, err := svc.Get(context.Background(), 1, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
}

func TestReparentAcceptsValidMove(t *testing.T) {
	repo := newMockRepository()
	a := repo.seed(1, nil, "A")
	b := repo.seed(1, ptr(a.ID), "B")
	c := repo.seed(1, nil, "C")
	svc := newTestService(repo)

	got, err := svc.Reparent(context.Background(), 1, b.ID, ptr(c.ID))
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, c.ID, *got.ParentID)

	// Detach to root.
	got, err = svc.Reparent(context.Background(), 1, b.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
	_ = a
}

func TestReparentForeignParentIsNotFound(t *testing.T) {
	repo := newMockRepository()
	a := repo.seed(1, nil, "A")
	foreign := repo.seed(2, nil, "Foreign")
	svc := newTestService(repo)

	_, err := svc.Reparent(context.Background(), 1, a.ID, ptr(foreign.ID))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAssignChildrenReplacesFullSet(t *testing.T) {
	repo := newMockRepository()
	p := repo.seed(1, nil, "P")
	a := repo.seed(1, ptr(p.ID), "A")
	b := repo.seed(1, ptr(p.ID), "B")
	c := repo.seed(1, nil, "C")
	svc := newTestService(repo)

	_, err := svc.AssignChildren(context.Background(), 1, p.ID, []int64{b.ID, c.ID})
	require.NoError(t, err)

	gotA, _ := repo.Get(context.Background(), 1, a.ID)
	gotB, _ := repo.Get(context.Background(), 1, b.ID)
	gotC, _ := repo.Get(context.Background(), 1, c.ID)
	assert.Nil(t, gotA.ParentID, "previous child must be detached")
	require.NotNil(t, gotB.ParentID)
	require.NotNil(t, gotC.ParentID)
	assert.Equal(t, p.ID, *gotB.ParentID)
	assert.Equal(t, p.ID, *gotC.ParentID)

	// Children and parent share one timestamp.
	gotP, _ := repo.Get(context.Background(), 1, p.ID)
	assert.Equal(t, gotP.UpdatedAt, gotB.UpdatedAt)
	assert.Equal(t, gotP.UpdatedAt, gotC.UpdatedAt)
}

func TestAssignChildrenIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	p := repo.seed(1, nil, "P")
	a := repo.seed(1, nil, "A")
	b := repo.seed(1, nil, "B")
	svc := newTestService(repo)

	_, err := svc.AssignChildren(context.Background(), 1, p.ID, []int64{a.ID, b.ID})
	require.NoError(t, err)
	first := parentsOf(repo, 1)

	_, err = svc.AssignChildren(context.Background(), 1, p.ID, []int64{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, first, parentsOf(repo, 1))
}

func TestAssignChildrenRollsBackOnMissingChild(t *testing.T) {
	// Seed parent P with children {A, B}; assign(P, [A, X]) with X missing
	// must fail entirely and leave A and B attached exactly as before.
	repo := newMockRepository()
	p := repo.seed(1, nil, "P")
	a := repo.seed(1, ptr(p.ID), "A")
	b := repo.seed(1, ptr(p.ID), "B")
	svc := newTestService(repo)

	_, err := svc.AssignChildren(context.Background(), 1, p.ID, []int64{a.ID, 999})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	gotA, _ := repo.Get(context.Background(), 1, a.ID)
	gotB, _ := repo.Get(context.Background(), 1, b.ID)
	require.NotNil(t, gotA.ParentID)
	require.NotNil(t, gotB.ParentID)
	assert.Equal(t, p.ID, *gotA.ParentID)
	assert.Equal(t, p.ID, *gotB.ParentID)
}

func TestAssignChildrenRejectsForeignHubChild(t *testing.T) {
	repo := newMockRepository()
	p := repo.seed(1, nil, "P")
	foreign := repo.seed(2, nil, "Foreign")
	svc := newTestService(repo)

	_, err := svc.AssignChildren(context.Background(), 1, p.ID, []int64{foreign.ID})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	got, _ := repo.Get(context.Background(), 2, foreign.ID)
	assert.Nil(t, got.ParentID)
}

func TestAssignChildrenRejectsAncestorChild(t *testing.T) {
	// G -> P; attaching G as a child of P would close a cycle.
	repo := newMockRepository()
	g := repo.seed(1, nil, "G")
	p := repo.seed(1, ptr(g.ID), "P")
	svc := newTestService(repo)

	_, err := svc.AssignChildren(context.Background(), 1, p.ID, []int64{g.ID})
	assert.ErrorIs(t, err, shared.ErrValidation)

	got, _ := repo.Get(context.Background(), 1, g.ID)
	assert.Nil(t, got.ParentID)
}

func TestAssignChildrenEmptySetDetachesAll(t *testing.T) {
	repo := newMockRepository()
	p := repo.seed(1, nil, "P")
	a := repo.seed(1, ptr(p.ID), "A")
	svc := newTestService(repo)

	_, err := svc.AssignChildren(context.Background(), 1, p.ID, nil)
	require.NoError(t, err)

	got, _ := repo.Get(context.Background(), 1, a.ID)
	assert.Nil(t, got.ParentID)
}

func TestAssignChildrenParentNotFound(t *testing.T) {
	repo := newMockRepository()
	a := repo.seed(1, nil, "A")
	svc := newTestService(repo)

	_, err := svc.AssignChildren(context.Background(), 1, 999, []int64{a.ID})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteDetachesChildren(t *testing.T) {
	repo := newMockRepository()
	p := repo.seed(1, nil, "P")
	a := repo.seed(1, ptr(p.ID), "A")
	svc := newTestService(repo)

	require.NoError(t, svc.Delete(context.Background(), 1, p.ID))

	_, err := svc.Get(context.Background(), 1, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	got, err := svc.Get(context.Background(), 1, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
}

func TestDeleteWrongHubIsNotFoundAndRollsBack(t *testing.T) {
	repo := newMockRepository()
	p := repo.seed(1, nil, "P")
	a := repo.seed(1, ptr(p.ID), "A")
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), 2, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	got, err := svc.Get(context.Background(), 1, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID, "failed delete must not detach children")
	assert.Equal(t, p.ID, *got.ParentID)
}

func TestUpdateWrongHubIsNotFound(t *testing.T) {
	repo := newMockRepository()
	c := repo.seed(1, nil, "A")
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), 2, c.ID, UpdateCategoryRequest{Name: "B"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateFailureLeavesCategoryUnchanged(t *testing.T) {
	repo := newMockRepository()
	c := repo.seed(1, nil, "A")
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), 1, c.ID, UpdateCategoryRequest{Name: "   "})
	assert.ErrorIs(t, err, shared.ErrValidation)

	got, err := svc.Get(context.Background(), 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name, "rejected update must roll back")
}

func TestTreeExcludesArchived(t *testing.T) {
	repo := newMockRepository()
	root := repo.seed(1, nil, "Root")
	repo.seed(1, ptr(root.ID), "Visible")
	archived := repo.seed(1, ptr(root.ID), "Archived")
	c := archived
	c.IsArchived = true
	repo.cats[c.ID] = c

	svc := newTestService(repo)
	tree, err := svc.Tree(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Visible", tree[0].Children[0].Name)
}

func parentsOf(repo *mockRepository, hubID int64) map[int64]int64 {
	out := make(map[int64]int64)
	for id, c := range repo.cats {
		if c.HubID != hubID {
			continue
		}
		if c.ParentID != nil {
			out[id] = *c.ParentID
		} else {
			out[id] = 0
		}
	}
	return out
}

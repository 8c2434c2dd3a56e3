package categories

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/storekeep/storekeep/internal/shared"
	"github.com/storekeep/storekeep/internal/textx"
)

// Service is the category tree manager. It keeps each hub's parent/child
// graph a forest: every reparent path runs a descendant check first, and
// batch reparenting executes as a single transaction so a failed validation
// never leaves children detached.
type Service struct {
	repo   Repository
	cache  *TreeCache
	logger *slog.Logger
}

// NewService constructs the tree manager. cache may be nil.
func NewService(repo Repository, cache *TreeCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) List(ctx context.Context, hubID int64, filters shared.ListFilters) ([]Category, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, hubID, filters)
}

func (s *Service) Get(ctx context.Context, hubID, id int64) (Category, error) {
	return s.repo.Get(ctx, hubID, id)
}

// Tree returns the hub's category forest with archived nodes excluded,
// serving from the cache when possible.
func (s *Service) Tree(ctx context.Context, hubID int64) ([]*TreeNode, error) {
	if s.cache != nil {
		if tree, ok := s.cache.Get(ctx, hubID); ok {
			return tree, nil
		}
	}
	all, err := s.repo.ListAll(ctx, hubID)
	if err != nil {
		return nil, err
	}
	tree := buildTree(all)
	if s.cache != nil {
		s.cache.Set(ctx, hubID, tree)
	}
	return tree, nil
}

func (s *Service) Create(ctx context.Context, hubID int64, req CreateCategoryRequest) (Category, error) {
	if req.ParentID != nil {
		if _, err := s.repo.Get(ctx, hubID, *req.ParentID); err != nil {
			return Category{}, fmt.Errorf("verify parent: %w", err)
		}
	}
	c := Category{
		HubID:       hubID,
		ParentID:    req.ParentID,
		Name:        textx.CleanInline(req.Name),
		Description: cleanDescription(req.Description),
	}
	if c.Name == "" {
		return Category{}, fmt.Errorf("category name is required: %w", shared.ErrValidation)
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return Category{}, err
	}
	s.invalidate(ctx, hubID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, hubID, id int64, req UpdateCategoryRequest) (Category, error) {
	var updated Category
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		current, err := repo.Get(ctx, hubID, id)
		if err != nil {
			return err
		}
		current.Name = textx.CleanInline(req.Name)
		current.Description = cleanDescription(req.Description)
		if req.IsArchived != nil {
			current.IsArchived = *req.IsArchived
		}
		if current.Name == "" {
			return fmt.Errorf("category name is required: %w", shared.ErrValidation)
		}
		updated, err = repo.Update(ctx, hubID, id, current)
		return err
	})
	if err != nil {
		return Category{}, err
	}
	s.invalidate(ctx, hubID)
	return updated, nil
}

// Reparent moves a category under newParentID (nil detaches it to the
// root). The move is rejected when it would close a cycle: a category may
// not become its own parent, and may not move under any of its own
// descendants.
func (s *Service) Reparent(ctx context.Context, hubID, id int64, newParentID *int64) (Category, error) {
	var result Category
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		all, err := repo.ListAll(ctx, hubID)
		if err != nil {
			return err
		}
		byID := indexByID(all)
		if _, ok := byID[id]; !ok {
			return fmt.Errorf("category %d: %w", id, shared.ErrNotFound)
		}
		if newParentID != nil {
			if err := checkReparent(all, id, *newParentID); err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		if err := repo.SetParent(ctx, hubID, []int64{id}, newParentID, now); err != nil {
			return err
		}
		result, err = repo.Get(ctx, hubID, id)
		return err
	})
	if err != nil {
		return Category{}, err
	}
	s.invalidate(ctx, hubID)
	return result, nil
}

// AssignChildren atomically replaces the full child set of parentID with
// exactly childIDs. The caller must have deduplicated the ids and removed
// the parent id and any non-positive ids. Steps run in one transaction:
// verify parent, detach all current children, validate the new set, attach
// it, touch every affected row with one timestamp. A validation failure
// after the detach rolls the detach back.
func (s *Service) AssignChildren(ctx context.Context, hubID, parentID int64, childIDs []int64) (Category, error) {
	var result Category
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		all, err := repo.ListAll(ctx, hubID)
		if err != nil {
			return err
		}
		byID := indexByID(all)
		if _, ok := byID[parentID]; !ok {
			return fmt.Errorf("parent category %d: %w", parentID, shared.ErrNotFound)
		}

		now := time.Now().UTC()
		if err := repo.DetachChildren(ctx, hubID, parentID, now); err != nil {
			return err
		}

		if len(childIDs) > 0 {
			for _, id := range childIDs {
				if _, ok := byID[id]; !ok {
					return fmt.Errorf("child category %d: %w", id, shared.ErrNotFound)
				}
			}
			// Attaching an ancestor of the parent as a child would close a
			// cycle through the parent's own chain.
			ancestors := ancestorSet(byID, parentID)
			for _, id := range childIDs {
				if _, ok := ancestors[id]; ok {
					return fmt.Errorf("category %d is an ancestor of %d: %w", id, parentID, shared.ErrValidation)
				}
			}
			if err := repo.SetParent(ctx, hubID, childIDs, &parentID, now); err != nil {
				return err
			}
		}

		if err := repo.Touch(ctx, hubID, parentID, now); err != nil {
			return err
		}
		result, err = repo.Get(ctx, hubID, parentID)
		return err
	})
	if err != nil {
		return Category{}, err
	}
	s.invalidate(ctx, hubID)
	return result, nil
}

// Delete hard-deletes a category. Its children, if any, are detached to the
// root in the same transaction rather than cascade-deleted.
func (s *Service) Delete(ctx context.Context, hubID, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		now := time.Now().UTC()
		if err := repo.DetachChildren(ctx, hubID, id, now); err != nil {
			return err
		}
		return repo.Delete(ctx, hubID, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, hubID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, hubID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, hubID); err != nil && s.logger != nil {
		s.logger.Warn("invalidate category tree cache", slog.Int64("hub_id", hubID), slog.Any("error", err))
	}
}

// checkReparent rejects a parent change that would break the forest
// invariant. The descendant walk is O(hub category count); hub trees are
// small, so the full scan beats maintaining a persistent graph index.
func checkReparent(all []Category, id, newParentID int64) error {
	if newParentID == id {
		return fmt.Errorf("category %d cannot be its own parent: %w", id, shared.ErrValidation)
	}
	byID := indexByID(all)
	if _, ok := byID[newParentID]; !ok {
		return fmt.Errorf("parent category %d: %w", newParentID, shared.ErrNotFound)
	}
	if _, ok := descendantSet(all, id)[newParentID]; ok {
		return fmt.Errorf("category %d is a descendant of %d: %w", newParentID, id, shared.ErrValidation)
	}
	return nil
}

// descendantSet walks child edges breadth-first from rootID and collects
// every transitive descendant.
func descendantSet(all []Category, rootID int64) map[int64]struct{} {
	children := make(map[int64][]int64, len(all))
	for _, c := range all {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}
	seen := make(map[int64]struct{})
	queue := append([]int64(nil), children[rootID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		queue = append(queue, children[id]...)
	}
	return seen
}

// ancestorSet follows parent pointers upward from id.
func ancestorSet(byID map[int64]Category, id int64) map[int64]struct{} {
	seen := make(map[int64]struct{})
	cur, ok := byID[id]
	for ok && cur.ParentID != nil {
		pid := *cur.ParentID
		if _, dup := seen[pid]; dup {
			break
		}
		seen[pid] = struct{}{}
		cur, ok = byID[pid]
	}
	return seen
}

func indexByID(all []Category) map[int64]Category {
	byID := make(map[int64]Category, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	return byID
}

func buildTree(all []Category) []*TreeNode {
	nodes := make(map[int64]*TreeNode, len(all))
	for _, c := range all {
		if c.IsArchived {
			continue
		}
		nodes[c.ID] = &TreeNode{Category: c, Children: []*TreeNode{}}
	}
	var roots []*TreeNode
	for _, n := range nodes {
		if n.ParentID != nil {
			if parent, ok := nodes[*n.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	sortTree(roots)
	return roots
}

func sortTree(nodes []*TreeNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].ID < nodes[j].ID
	})
	for _, n := range nodes {
		sortTree(n.Children)
	}
}

func cleanDescription(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := textx.CleanMultiline(*s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

package service

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// CreateFolder adds a folder under parentID, or at the root when parentID is nil.
func (s *Service) CreateFolder(ctx context.Context, name string, parentID *string) (Result, error) {
	if _, err := user(ctx); err != nil {
		return Result{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, domain.Validationf("folder name is required")
	}
	parent := strings.TrimSpace(domain.Deref(parentID))

	return s.fenced(ctx, "create_folder", func(snap *domain.Snapshot) (*domain.Batch, []string, error) {
		tree := domain.NewFolderTree(snap.Folders)
		if parent != "" {
			if _, ok := tree.Get(parent); !ok {
				return nil, nil, domain.Validationf("parent folder %s does not exist", parent)
			}
		}
		if tree.SiblingNameTaken(parent, name, "") {
			return nil, nil, domain.Validationf("a folder named %q already exists here", name)
		}

		now := s.stamp()
		var b domain.Batch
		b.CreateFolder(domain.Folder{
			Name:      name,
			ParentID:  domain.StringPtr(parent),
			Order:     0,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return &b, nil, nil
	})
}

// RenameFolder changes the name of folder id.
func (s *Service) RenameFolder(ctx context.Context, id, name string) (Result, error) {
	if _, err := user(ctx); err != nil {
		return Result{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, domain.Validationf("folder name is required")
	}

	return s.fenced(ctx, "rename_folder", func(snap *domain.Snapshot) (*domain.Batch, []string, error) {
		tree := domain.NewFolderTree(snap.Folders)
		if _, ok := tree.Get(id); !ok {
			return nil, nil, domain.NotFoundf("folder %s", id)
		}
		if tree.SiblingNameTaken(tree.Parent(id), name, id) {
			return nil, nil, domain.Validationf("a folder named %q already exists here", name)
		}

		now := s.stamp()
		var b domain.Batch
		b.UpdateFolder(id, domain.FolderPatch{Name: &name, UpdatedAt: &now})
		return &b, []string{id}, nil
	})
}

// DeleteFolder removes folder id. Its subfolders move to the root and its
// bookmarks are handled by policy, which is required when the folder is not
// empty. Everything happens in one batch.
func (s *Service) DeleteFolder(ctx context.Context, id string, policy domain.CascadePolicy) (Result, error) {
	uid, err := user(ctx)
	if err != nil {
		return Result{}, err
	}

	res, err := s.fenced(ctx, "delete_folder", func(snap *domain.Snapshot) (*domain.Batch, []string, error) {
		tree := domain.NewFolderTree(snap.Folders)
		if _, ok := tree.Get(id); !ok {
			return nil, nil, domain.NotFoundf("folder %s", id)
		}

		var members []string
		for i := range snap.Bookmarks {
			if snap.Bookmarks[i].InFolder(id) {
				members = append(members, snap.Bookmarks[i].ID)
			}
		}
		if len(members) > 0 && policy == domain.CascadeNone {
			return nil, nil, domain.Validationf("folder %s holds %d bookmarks: choose trash, root or delete", id, len(members))
		}

		now := s.stamp()
		var b domain.Batch
		for _, m := range members {
			switch policy {
			case domain.CascadeTrash:
				b.UpdateBookmark(m, domain.TrashPatch(now))
			case domain.CascadeRoot:
				b.UpdateBookmark(m, domain.UnfilePatch())
			case domain.CascadeDelete:
				b.DeleteBookmark(m)
			default:
				return nil, nil, domain.Validationf("unknown cascade policy %q", policy)
			}
		}
		for _, child := range tree.Children(id) {
			b.UpdateFolder(child, domain.FolderPatch{SetParent: true, ParentID: nil, UpdatedAt: &now})
		}
		b.DeleteFolder(id)
		return &b, append([]string{id}, members...), nil
	})
	if err != nil {
		return Result{}, err
	}
	s.state.FolderDeleted(uid, id)
	return res, nil
}

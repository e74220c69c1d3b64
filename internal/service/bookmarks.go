package service

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// CreateBookmark saves a new link or text bookmark.
func (s *Service) CreateBookmark(ctx context.Context, d domain.BookmarkDraft) (Result, error) {
	uid, err := user(ctx)
	if err != nil {
		return Result{}, err
	}
	d, err = d.Normalize()
	if err != nil {
		return Result{}, err
	}

	now := s.stamp()
	var b domain.Batch
	if d.FolderID != nil {
		b.AssertFolder(*d.FolderID)
	}
	b.CreateBookmark(domain.Bookmark{
		Type:        d.Type,
		Title:       d.Title,
		URL:         d.URL,
		TextContent: d.TextContent,
		Notes:       d.Notes,
		Thumbnail:   d.Thumbnail,
		Tags:        d.Tags,
		IsFavorite:  d.IsFavorite,
		FolderID:    d.FolderID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return s.commit(ctx, "create_bookmark", uid, &b, nil)
}

// UpdateBookmark replaces the editable fields of bookmark id. Filing it into
// a folder also takes it out of the trash.
func (s *Service) UpdateBookmark(ctx context.Context, id string, d domain.BookmarkDraft) (Result, error) {
	uid, err := user(ctx)
	if err != nil {
		return Result{}, err
	}
	if id = strings.TrimSpace(id); id == "" {
		return Result{}, domain.Validationf("bookmark id is required")
	}
	d, err = d.Normalize()
	if err != nil {
		return Result{}, err
	}

	now := s.stamp()
	p := domain.BookmarkPatch{
		Type:        &d.Type,
		Title:       &d.Title,
		URL:         &d.URL,
		TextContent: &d.TextContent,
		Notes:       &d.Notes,
		Thumbnail:   &d.Thumbnail,
		IsFavorite:  &d.IsFavorite,
		SetFolder:   true,
		FolderID:    d.FolderID,
		SetTags:     true,
		Tags:        d.Tags,
		UpdatedAt:   &now,
	}
	if d.FolderID != nil {
		filed := domain.FilePatch(*d.FolderID)
		p.IsTrashed = filed.IsTrashed
		p.TrashedAt = filed.TrashedAt
	}

	var b domain.Batch
	if d.FolderID != nil {
		b.AssertFolder(*d.FolderID)
	}
	b.UpdateBookmark(id, p)
	return s.commit(ctx, "update_bookmark", uid, &b, []string{id})
}

// ToggleFavorite flips the favorite flag of bookmark id.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (Result, error) {
	return s.patchOne(ctx, "toggle_favorite", id, domain.BookmarkPatch{ToggleFavorite: true})
}

// TrashBookmark moves bookmark id to the trash, unfiling it.
func (s *Service) TrashBookmark(ctx context.Context, id string) (Result, error) {
	return s.patchOne(ctx, "trash_bookmark", id, domain.TrashPatch(s.stamp()))
}

// RestoreBookmark takes bookmark id out of the trash. It lands unfiled.
func (s *Service) RestoreBookmark(ctx context.Context, id string) (Result, error) {
	p := domain.UnfilePatch()
	trashed := true
	p.RequireTrashed = &trashed
	return s.patchOne(ctx, "restore_bookmark", id, p)
}

// DeleteBookmark removes bookmark id permanently.
func (s *Service) DeleteBookmark(ctx context.Context, id string) (Result, error) {
	uid, err := user(ctx)
	if err != nil {
		return Result{}, err
	}
	if id = strings.TrimSpace(id); id == "" {
		return Result{}, domain.Validationf("bookmark id is required")
	}
	var b domain.Batch
	b.DeleteBookmark(id)
	return s.commit(ctx, "delete_bookmark", uid, &b, []string{id})
}

func (s *Service) patchOne(ctx context.Context, op, id string, p domain.BookmarkPatch) (Result, error) {
	uid, err := user(ctx)
	if err != nil {
		return Result{}, err
	}
	if id = strings.TrimSpace(id); id == "" {
		return Result{}, domain.Validationf("bookmark id is required")
	}
	var b domain.Batch
	b.UpdateBookmark(id, p)
	return s.commit(ctx, op, uid, &b, []string{id})
}

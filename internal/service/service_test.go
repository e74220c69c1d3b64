package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/auramark/internal/domain"
	"github.com/MrSnakeDoc/auramark/internal/identity"
	"github.com/MrSnakeDoc/auramark/internal/logger"
	redisstore "github.com/MrSnakeDoc/auramark/internal/store/redis"
)

const uid = "u1"

// storeState reads snapshots straight from the store so every operation
// sees the previous one's effects.
type storeState struct {
	store   *redisstore.Store
	deleted []string
}

func (s *storeState) Current(ctx context.Context, uid string) (*domain.Snapshot, error) {
	return s.store.LoadSnapshot(ctx, uid)
}

func (s *storeState) FolderDeleted(_, folderID string) {
	s.deleted = append(s.deleted, folderID)
}

type fixture struct {
	svc   *Service
	store *redisstore.Store
	state *storeState
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redisstore.NewStore(client)
	state := &storeState{store: store}
	svc := New(store, state, logger.New("error", false))
	return &fixture{
		svc:   svc,
		store: store,
		state: state,
		ctx:   identity.WithUser(context.Background(), uid),
	}
}

func (f *fixture) snapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	snap, err := f.store.LoadSnapshot(context.Background(), uid)
	require.NoError(t, err)
	return snap
}

func (f *fixture) bookmark(t *testing.T, id string) domain.Bookmark {
	t.Helper()
	for _, b := range f.snapshot(t).Bookmarks {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("bookmark %s not found", id)
	return domain.Bookmark{}
}

func (f *fixture) folder(t *testing.T, id string) (domain.Folder, bool) {
	t.Helper()
	for _, fo := range f.snapshot(t).Folders {
		if fo.ID == id {
			return fo, true
		}
	}
	return domain.Folder{}, false
}

func (f *fixture) createLink(t *testing.T, url string, tags ...string) string {
	t.Helper()
	res, err := f.svc.CreateBookmark(f.ctx, domain.BookmarkDraft{URL: url, Tags: tags})
	require.NoError(t, err)
	require.Len(t, res.IDs, 1)
	return res.IDs[0]
}

func (f *fixture) createFolder(t *testing.T, name string, parent *string) string {
	t.Helper()
	res, err := f.svc.CreateFolder(f.ctx, name, parent)
	require.NoError(t, err)
	require.Len(t, res.IDs, 1)
	return res.IDs[0]
}

func TestRequiresUser(t *testing.T) {
	f := newFixture(t)
	anon := context.Background()

	_, err := f.svc.CreateBookmark(anon, domain.BookmarkDraft{URL: "https://a"})
	assert.ErrorIs(t, err, domain.ErrPermission)
	_, err = f.svc.CreateFolder(anon, "x", nil)
	assert.ErrorIs(t, err, domain.ErrPermission)
	_, err = f.svc.BulkTrash(anon, []string{"a"})
	assert.ErrorIs(t, err, domain.ErrPermission)

	assert.Empty(t, f.snapshot(t).Bookmarks)
}

func TestCreateBookmark(t *testing.T) {
	f := newFixture(t)

	id := f.createLink(t, "  https://go.dev  ", "go", " go ", "")
	b := f.bookmark(t, id)
	assert.Equal(t, "https://go.dev", b.Title)
	assert.Equal(t, []string{"go"}, b.Tags)
	assert.False(t, b.IsTrashed)
	assert.Equal(t, b.CreatedAt, b.UpdatedAt)

	_, err := f.svc.CreateBookmark(f.ctx, domain.BookmarkDraft{Type: domain.TypeText})
	assert.ErrorIs(t, err, domain.ErrValidation)

	gone := "gone"
	_, err = f.svc.CreateBookmark(f.ctx, domain.BookmarkDraft{URL: "https://b", FolderID: &gone})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, f.snapshot(t).Bookmarks, 1, "failed create writes nothing")
}

func TestUpdateBookmark(t *testing.T) {
	f := newFixture(t)
	id := f.createLink(t, "https://a", "x")
	folder := f.createFolder(t, "F", nil)

	_, err := f.svc.TrashBookmark(f.ctx, id)
	require.NoError(t, err)

	_, err = f.svc.UpdateBookmark(f.ctx, id, domain.BookmarkDraft{
		Title:    "A",
		URL:      "https://a",
		Tags:     []string{"y"},
		FolderID: &folder,
	})
	require.NoError(t, err)

	b := f.bookmark(t, id)
	assert.Equal(t, "A", b.Title)
	assert.Equal(t, []string{"y"}, b.Tags)
	assert.True(t, b.InFolder(folder))
	assert.False(t, b.IsTrashed, "filing a trashed bookmark restores it")

	_, err = f.svc.UpdateBookmark(f.ctx, "missing", domain.BookmarkDraft{URL: "https://b"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	gone := "gone"
	_, err = f.svc.UpdateBookmark(f.ctx, id, domain.BookmarkDraft{URL: "https://a", FolderID: &gone})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, f.bookmark(t, id).InFolder(folder), "failed update changes nothing")
}

func TestTrashRestoreDelete(t *testing.T) {
	f := newFixture(t)
	folder := f.createFolder(t, "F", nil)
	id := f.createLink(t, "https://a")
	_, err := f.svc.Move(f.ctx, domain.DragSource{Kind: domain.ItemBookmark, ID: id}, domain.InFolder(folder))
	require.NoError(t, err)

	_, err = f.svc.RestoreBookmark(f.ctx, id)
	assert.ErrorIs(t, err, domain.ErrNoOp)

	_, err = f.svc.TrashBookmark(f.ctx, id)
	require.NoError(t, err)
	b := f.bookmark(t, id)
	assert.True(t, b.IsTrashed)
	assert.Nil(t, b.FolderID)

	_, err = f.svc.RestoreBookmark(f.ctx, id)
	require.NoError(t, err)
	b = f.bookmark(t, id)
	assert.False(t, b.IsTrashed)
	assert.Nil(t, b.FolderID, "restored bookmarks land unfiled")

	_, err = f.svc.DeleteBookmark(f.ctx, id)
	require.NoError(t, err)
	assert.Empty(t, f.snapshot(t).Bookmarks)

	_, err = f.svc.DeleteBookmark(f.ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t)
	id := f.createLink(t, "https://a")

	_, err := f.svc.ToggleFavorite(f.ctx, id)
	require.NoError(t, err)
	assert.True(t, f.bookmark(t, id).IsFavorite)

	_, err = f.svc.ToggleFavorite(f.ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateFolder_Validation(t *testing.T) {
	f := newFixture(t)
	work := f.createFolder(t, "Work", nil)

	tests := []struct {
		name   string
		folder string
		parent *string
	}{
		{"blank name", "  ", nil},
		{"duplicate at root", "work", nil},
		{"unknown parent", "X", domain.StringPtr("nope")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateFolder(f.ctx, tt.folder, tt.parent)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	// Same name is fine under another parent.
	child := f.createFolder(t, "Work", &work)
	got, ok := f.folder(t, child)
	require.True(t, ok)
	assert.Equal(t, work, domain.Deref(got.ParentID))
	assert.Equal(t, 0, got.Order)
}

func TestRenameFolder(t *testing.T) {
	f := newFixture(t)
	a := f.createFolder(t, "A", nil)
	f.createFolder(t, "B", nil)

	_, err := f.svc.RenameFolder(f.ctx, a, "b")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.RenameFolder(f.ctx, a, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.RenameFolder(f.ctx, "missing", "C")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.RenameFolder(f.ctx, a, "a")
	require.NoError(t, err, "case change of the folder itself is allowed")
	got, _ := f.folder(t, a)
	assert.Equal(t, "a", got.Name)
}

func TestDeleteFolder_Cascade(t *testing.T) {
	policies := []domain.CascadePolicy{domain.CascadeTrash, domain.CascadeRoot, domain.CascadeDelete}
	for _, policy := range policies {
		t.Run(string(policy), func(t *testing.T) {
			f := newFixture(t)
			parent := f.createFolder(t, "P", nil)
			child := f.createFolder(t, "C", &parent)
			id := f.createLink(t, "https://a")
			_, err := f.svc.BulkMove(f.ctx, []string{id}, parent)
			require.NoError(t, err)

			_, err = f.svc.DeleteFolder(f.ctx, parent, domain.CascadeNone)
			require.ErrorIs(t, err, domain.ErrValidation, "a non-empty folder needs a policy")

			res, err := f.svc.DeleteFolder(f.ctx, parent, policy)
			require.NoError(t, err)
			assert.Contains(t, res.IDs, parent)
			assert.Equal(t, []string{parent}, f.state.deleted)

			_, ok := f.folder(t, parent)
			assert.False(t, ok)
			c, ok := f.folder(t, child)
			require.True(t, ok)
			assert.True(t, c.IsRoot(), "children move to the root")

			snap := f.snapshot(t)
			switch policy {
			case domain.CascadeDelete:
				assert.Empty(t, snap.Bookmarks)
			case domain.CascadeTrash:
				require.Len(t, snap.Bookmarks, 1)
				assert.True(t, snap.Bookmarks[0].IsTrashed)
				assert.Nil(t, snap.Bookmarks[0].FolderID)
			case domain.CascadeRoot:
				require.Len(t, snap.Bookmarks, 1)
				assert.False(t, snap.Bookmarks[0].IsTrashed)
				assert.Nil(t, snap.Bookmarks[0].FolderID)
			}
		})
	}
}

func TestDeleteFolder_EmptyNeedsNoPolicy(t *testing.T) {
	f := newFixture(t)
	id := f.createFolder(t, "Empty", nil)
	_, err := f.svc.DeleteFolder(f.ctx, id, domain.CascadeNone)
	require.NoError(t, err)
	assert.Empty(t, f.snapshot(t).Folders)

	_, err = f.svc.DeleteFolder(f.ctx, id, domain.CascadeNone)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRenameTag(t *testing.T) {
	f := newFixture(t)
	a := f.createLink(t, "https://a", "old", "keep")
	b := f.createLink(t, "https://b", "old")
	f.createLink(t, "https://c", "taken")

	for _, bad := range []string{"", "old", "taken"} {
		_, err := f.svc.RenameTag(f.ctx, "old", bad)
		assert.ErrorIs(t, err, domain.ErrValidation, "new name %q", bad)
	}

	res, err := f.svc.RenameTag(f.ctx, "old", "new")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, res.IDs)

	assert.Equal(t, []string{"keep", "new"}, f.bookmark(t, a).Tags)
	assert.Equal(t, []string{"new"}, f.bookmark(t, b).Tags)
	assert.Equal(t, []string{"keep", "new", "taken"}, domain.UniqueTags(f.snapshot(t).Bookmarks))
}

func TestDeleteTag(t *testing.T) {
	f := newFixture(t)
	a := f.createLink(t, "https://a", "x", "y")

	_, err := f.svc.DeleteTag(f.ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, f.bookmark(t, a).Tags)

	res, err := f.svc.DeleteTag(f.ctx, "unused")
	require.NoError(t, err)
	assert.Empty(t, res.IDs)
}

func TestBulkOperations(t *testing.T) {
	f := newFixture(t)
	folder := f.createFolder(t, "F", nil)
	a := f.createLink(t, "https://a", "t1")
	b := f.createLink(t, "https://b")

	_, err := f.svc.BulkTrash(f.ctx, nil)
	assert.ErrorIs(t, err, domain.ErrNoOp)
	_, err = f.svc.BulkMove(f.ctx, []string{a}, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.BulkMove(f.ctx, nil, folder)
	assert.ErrorIs(t, err, domain.ErrNoOp)
	_, err = f.svc.BulkAddTags(f.ctx, []string{a}, []string{" "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.BulkAddTags(f.ctx, nil, []string{"t"})
	assert.ErrorIs(t, err, domain.ErrNoOp)

	_, err = f.svc.BulkTrash(f.ctx, []string{a, b, a})
	require.NoError(t, err)
	assert.True(t, f.bookmark(t, a).IsTrashed)
	assert.True(t, f.bookmark(t, b).IsTrashed)

	_, err = f.svc.BulkMove(f.ctx, []string{a, b}, folder)
	require.NoError(t, err)
	for _, id := range []string{a, b} {
		got := f.bookmark(t, id)
		assert.False(t, got.IsTrashed)
		assert.True(t, got.InFolder(folder))
	}

	_, err = f.svc.BulkAddTags(f.ctx, []string{a, b}, []string{"t1", "t2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, f.bookmark(t, a).Tags)
	assert.Equal(t, []string{"t1", "t2"}, f.bookmark(t, b).Tags)

	_, err = f.svc.BulkMove(f.ctx, []string{a}, "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, f.bookmark(t, a).InFolder(folder), "failed batch changes nothing")
}

func TestMove(t *testing.T) {
	f := newFixture(t)
	root := f.createFolder(t, "Root", nil)
	mid := f.createFolder(t, "Mid", &root)
	leaf := f.createFolder(t, "Leaf", &mid)
	other := f.createFolder(t, "Other", nil)
	bk := f.createLink(t, "https://a")

	folderSrc := func(id string) domain.DragSource { return domain.DragSource{Kind: domain.ItemFolder, ID: id} }
	bookmarkSrc := domain.DragSource{Kind: domain.ItemBookmark, ID: bk}

	t.Run("folder into descendant is rejected", func(t *testing.T) {
		_, err := f.svc.Move(f.ctx, folderSrc(root), domain.InFolder(leaf))
		assert.ErrorIs(t, err, domain.ErrNoOp)
		_, err = f.svc.Move(f.ctx, folderSrc(root), domain.InFolder(root))
		assert.ErrorIs(t, err, domain.ErrNoOp)
		got, _ := f.folder(t, root)
		assert.True(t, got.IsRoot())
	})

	t.Run("folder on static views other than all is rejected", func(t *testing.T) {
		_, err := f.svc.Move(f.ctx, folderSrc(mid), domain.Static(domain.ViewTrash))
		assert.ErrorIs(t, err, domain.ErrNoOp)
	})

	t.Run("folder under another folder", func(t *testing.T) {
		_, err := f.svc.Move(f.ctx, folderSrc(mid), domain.InFolder(other))
		require.NoError(t, err)
		got, _ := f.folder(t, mid)
		assert.Equal(t, other, domain.Deref(got.ParentID))
	})

	t.Run("folder to root", func(t *testing.T) {
		_, err := f.svc.Move(f.ctx, folderSrc(mid), domain.AllBookmarks)
		require.NoError(t, err)
		got, _ := f.folder(t, mid)
		assert.True(t, got.IsRoot())
	})

	t.Run("bookmark into folder, trash, back to all", func(t *testing.T) {
		_, err := f.svc.Move(f.ctx, bookmarkSrc, domain.InFolder(leaf))
		require.NoError(t, err)
		assert.True(t, f.bookmark(t, bk).InFolder(leaf))

		_, err = f.svc.Move(f.ctx, bookmarkSrc, domain.Static(domain.ViewTrash))
		require.NoError(t, err)
		got := f.bookmark(t, bk)
		assert.True(t, got.IsTrashed)
		assert.Nil(t, got.FolderID)

		_, err = f.svc.Move(f.ctx, bookmarkSrc, domain.Static(domain.ViewFavorites))
		require.NoError(t, err)
		got = f.bookmark(t, bk)
		assert.False(t, got.IsTrashed)
		assert.Nil(t, got.FolderID)
	})

	t.Run("bookmark into missing folder fails", func(t *testing.T) {
		_, err := f.svc.Move(f.ctx, bookmarkSrc, domain.InFolder("gone"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestImport_Merges(t *testing.T) {
	f := newFixture(t)
	id := f.createLink(t, "https://a")
	_, err := f.svc.UpdateBookmark(f.ctx, id, domain.BookmarkDraft{URL: "https://a", Notes: "mine"})
	require.NoError(t, err)
	before := f.bookmark(t, id)

	title := "Imported"
	var b domain.Batch
	b.UpsertFolder("f-imp", domain.FolderPatch{Name: &title})
	b.UpsertBookmark(id, domain.BookmarkPatch{Title: &title})
	res, err := f.svc.Import(f.ctx, &b)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"f-imp", id}, res.IDs)

	after := f.bookmark(t, id)
	assert.Equal(t, "Imported", after.Title)
	assert.Equal(t, "mine", after.Notes)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))

	folder, ok := f.folder(t, "f-imp")
	require.True(t, ok)
	assert.False(t, folder.CreatedAt.IsZero())

	_, err = f.svc.Import(f.ctx, &domain.Batch{})
	assert.ErrorIs(t, err, domain.ErrNoOp)
}

func TestPurgeTrash(t *testing.T) {
	f := newFixture(t)
	old := f.createLink(t, "https://old")
	fresh := f.createLink(t, "https://fresh")
	kept := f.createLink(t, "https://kept")

	f.svc.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	_, err := f.svc.TrashBookmark(f.ctx, old)
	require.NoError(t, err)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	_, err = f.svc.TrashBookmark(f.ctx, fresh)
	require.NoError(t, err)

	res, err := f.svc.PurgeTrash(f.ctx, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{old}, res.IDs)

	var ids []string
	for _, b := range f.snapshot(t).Bookmarks {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []string{fresh, kept}, ids)
}

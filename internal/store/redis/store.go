package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

const (
	// maxCommitAttempts bounds how often a batch is re-evaluated when a
	// watched document changes between its precondition reads and EXEC.
	maxCommitAttempts = 3
	// maxSnapshotAttempts bounds snapshot re-reads racing with commits.
	maxSnapshotAttempts = 5
	// changeMessage is published on the user's channel after each commit.
	changeMessage = "commit"
)

// Store implements the per-user bookmark and folder collections on Redis.
//
// Documents are hashes, tags are sets, ordering comes from sorted sets scored
// by createdAt. A batch is one MULTI/EXEC that also bumps the user's revision
// and publishes a change notification.
type Store struct {
	client *redis.Client
	newID  func() string
	now    func() time.Time
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// Client exposes the underlying client for health checks.
func (s *Store) Client() *redis.Client {
	return s.client
}

// docState is what a batch needs to know about a document before writing it.
type docState struct {
	exists     bool
	isFavorite bool
	isTrashed  bool
	createdAt  time.Time
}

// Commit applies b atomically for user uid.
func (s *Store) Commit(ctx context.Context, uid string, b *domain.Batch) (domain.CommitResult, error) {
	if uid == "" {
		return domain.CommitResult{}, domain.ErrPermission
	}
	if b == nil || b.Len() == 0 {
		return domain.CommitResult{}, domain.NoOpf("empty batch")
	}

	writes, created := s.assignIDs(b.Writes)
	watched := watchedKeys(uid, writes)
	if b.IfRevision != nil {
		watched = append(watched, RevisionKey(uid))
	}

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		var rev *redis.IntCmd
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			if b.IfRevision != nil {
				if err := checkRevision(ctx, tx, uid, *b.IfRevision); err != nil {
					return err
				}
			}
			states, err := s.readStates(ctx, tx, uid, writes)
			if err != nil {
				return err
			}
			if err := checkPreconditions(writes, states); err != nil {
				return err
			}

			now := s.now().UTC()
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for i := range writes {
					queueWrite(ctx, pipe, uid, &writes[i], states[i], now)
				}
				rev = pipe.Incr(ctx, RevisionKey(uid))
				pipe.SAdd(ctx, UsersKey(), uid)
				pipe.Publish(ctx, ChangesChannel(uid), changeMessage)
				return nil
			})
			return err
		}, watched...)

		switch {
		case err == nil:
			return domain.CommitResult{Revision: rev.Val(), CreatedIDs: created}, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoOp), errors.Is(err, domain.ErrValidation),
			errors.Is(err, domain.ErrStaleRevision):
			return domain.CommitResult{}, err
		default:
			return domain.CommitResult{}, domain.Transport("commit batch", err)
		}
	}

	return domain.CommitResult{}, domain.Transport("commit batch",
		fmt.Errorf("documents kept changing after %d attempts", maxCommitAttempts))
}

// checkRevision fails with ErrStaleRevision when the user's revision differs
// from want. A missing revision key reads as 0.
func checkRevision(ctx context.Context, tx *redis.Tx, uid string, want int64) error {
	got, err := tx.Get(ctx, RevisionKey(uid)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: planned on %d, store at %d", domain.ErrStaleRevision, want, got)
	}
	return nil
}

// assignIDs copies writes, giving every create without an id a fresh one.
func (s *Store) assignIDs(in []domain.Write) ([]domain.Write, []string) {
	writes := make([]domain.Write, len(in))
	copy(writes, in)

	var created []string
	for i := range writes {
		if writes[i].Kind != domain.WriteCreate {
			continue
		}
		if writes[i].ID == "" {
			writes[i].ID = s.newID()
		}
		created = append(created, writes[i].ID)
	}
	return writes, created
}

func docKey(uid string, w *domain.Write) string {
	if w.Collection == domain.CollectionFolders {
		return FolderKey(uid, w.ID)
	}
	return BookmarkKey(uid, w.ID)
}

func needsState(w *domain.Write) bool {
	return w.Kind != domain.WriteCreate
}

func watchedKeys(uid string, writes []domain.Write) []string {
	seen := make(map[string]struct{}, len(writes))
	keys := make([]string, 0, len(writes))
	for i := range writes {
		if !needsState(&writes[i]) {
			continue
		}
		k := docKey(uid, &writes[i])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// readStates loads, in one round trip, the current state of every document
// a write depends on.
func (s *Store) readStates(ctx context.Context, tx *redis.Tx, uid string, writes []domain.Write) ([]docState, error) {
	states := make([]docState, len(writes))
	cmds := make([]*redis.SliceCmd, len(writes))

	_, err := tx.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i := range writes {
			if !needsState(&writes[i]) {
				continue
			}
			cmds[i] = pipe.HMGet(ctx, docKey(uid, &writes[i]),
				fieldCreatedAt, fieldIsFavorite, fieldIsTrashed, fieldName, fieldType)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, cmd := range cmds {
		if cmd == nil {
			continue
		}
		vals := cmd.Val()
		str := func(j int) string {
			if j >= len(vals) || vals[j] == nil {
				return ""
			}
			v, _ := vals[j].(string)
			return v
		}
		// Every document carries createdAt and either a name or a type.
		exists := str(0) != "" || str(3) != "" || str(4) != ""
		states[i] = docState{
			exists:     exists,
			createdAt:  decodeTime(str(0)),
			isFavorite: decodeBool(str(1)),
			isTrashed:  decodeBool(str(2)),
		}
	}
	return states, nil
}

func checkPreconditions(writes []domain.Write, states []docState) error {
	for i := range writes {
		w := &writes[i]
		switch w.Kind {
		case domain.WriteUpdate, domain.WriteDelete, domain.WriteAssert:
			if !states[i].exists {
				return domain.NotFoundf("%s %s", singular(w.Collection), w.ID)
			}
		}
		if w.Bookmark != nil && w.Bookmark.RequireTrashed != nil && states[i].exists &&
			states[i].isTrashed != *w.Bookmark.RequireTrashed {
			if *w.Bookmark.RequireTrashed {
				return domain.NoOpf("bookmark %s is not in the trash", w.ID)
			}
			return domain.NoOpf("bookmark %s is in the trash", w.ID)
		}
	}
	return nil
}

func singular(c domain.Collection) string {
	if c == domain.CollectionFolders {
		return "folder"
	}
	return "bookmark"
}

// queueWrite adds the commands of a single write to the transaction.
func queueWrite(ctx context.Context, pipe redis.Pipeliner, uid string, w *domain.Write, st docState, now time.Time) {
	key := docKey(uid, w)
	indexKey := BookmarksIndexKey(uid)
	if w.Collection == domain.CollectionFolders {
		indexKey = FoldersIndexKey(uid)
	}

	if w.Kind == domain.WriteDelete {
		pipe.Del(ctx, key)
		if w.Collection == domain.CollectionBookmarks {
			pipe.Del(ctx, BookmarkTagsKey(uid, w.ID))
		}
		pipe.ZRem(ctx, indexKey, w.ID)
		return
	}
	if w.Kind == domain.WriteAssert {
		return
	}

	var fields map[string]any
	var createdAt *time.Time
	switch w.Collection {
	case domain.CollectionFolders:
		p := w.Folder
		if p == nil {
			p = &domain.FolderPatch{}
		}
		fields = encodeFolderPatch(p)
		createdAt = p.CreatedAt
		if !st.exists {
			if _, ok := fields[fieldOrder]; !ok {
				fields[fieldOrder] = "0"
			}
		}
	default:
		p := w.Bookmark
		if p == nil {
			p = &domain.BookmarkPatch{}
		}
		fields = encodeBookmarkPatch(p)
		createdAt = p.CreatedAt
		if p.ToggleFavorite {
			fields[fieldIsFavorite] = encodeBool(!st.isFavorite)
		}
		if !st.exists {
			if _, ok := fields[fieldType]; !ok {
				fields[fieldType] = string(domain.TypeLink)
			}
		}
		queueTagWrites(ctx, pipe, BookmarkTagsKey(uid, w.ID), p)
	}

	// New documents always get both timestamps and an index entry.
	if !st.exists {
		created := now
		if createdAt != nil && !createdAt.IsZero() {
			created = *createdAt
		}
		fields[fieldCreatedAt] = encodeTime(created)
		if _, ok := fields[fieldUpdatedAt]; !ok {
			fields[fieldUpdatedAt] = encodeTime(created)
		}
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(created.UnixMilli()), Member: w.ID})
	} else {
		switch {
		case createdAt != nil && !createdAt.IsZero():
			pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(createdAt.UnixMilli()), Member: w.ID})
		case w.Kind == domain.WriteUpsert:
			pipe.ZAddNX(ctx, indexKey, redis.Z{Score: float64(st.createdAt.UnixMilli()), Member: w.ID})
		}
	}

	if len(fields) > 0 {
		pipe.HSet(ctx, key, fields)
	}
}

func queueTagWrites(ctx context.Context, pipe redis.Pipeliner, key string, p *domain.BookmarkPatch) {
	if p.SetTags {
		pipe.Del(ctx, key)
		if len(p.Tags) > 0 {
			pipe.SAdd(ctx, key, toAny(p.Tags)...)
		}
	}
	if len(p.RemoveTags) > 0 {
		pipe.SRem(ctx, key, toAny(p.RemoveTags)...)
	}
	if len(p.AddTags) > 0 {
		pipe.SAdd(ctx, key, toAny(p.AddTags)...)
	}
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

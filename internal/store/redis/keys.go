package redis

const (
	// KeyPrefix namespaces every key written by auramark.
	KeyPrefix = "auramark:"
	// KeyPrefixUser is the prefix of all per-user keys.
	KeyPrefixUser = KeyPrefix + "user:"
	// KeyPrefixMetadata is the prefix for cached page metadata.
	KeyPrefixMetadata = KeyPrefix + "metadata:"
	// KeyUsers is the set of user ids that ever committed a batch.
	KeyUsers = KeyPrefix + "users"
)

func userKey(uid, suffix string) string {
	return KeyPrefixUser + uid + ":" + suffix
}

// BookmarkKey returns the hash key of a bookmark.
func BookmarkKey(uid, id string) string {
	return userKey(uid, "bookmark:"+id)
}

// BookmarkTagsKey returns the set key holding a bookmark's tags.
func BookmarkTagsKey(uid, id string) string {
	return userKey(uid, "bookmark:"+id+":tags")
}

// BookmarksIndexKey returns the sorted set of bookmark ids scored by createdAt.
func BookmarksIndexKey(uid string) string {
	return userKey(uid, "bookmarks")
}

// FolderKey returns the hash key of a folder.
func FolderKey(uid, id string) string {
	return userKey(uid, "folder:"+id)
}

// FoldersIndexKey returns the sorted set of folder ids scored by createdAt.
func FoldersIndexKey(uid string) string {
	return userKey(uid, "folders")
}

// RevisionKey returns the counter bumped by every committed batch.
func RevisionKey(uid string) string {
	return userKey(uid, "rev")
}

// ChangesChannel returns the pub/sub channel notified after each commit.
func ChangesChannel(uid string) string {
	return userKey(uid, "changes")
}

// MetadataKey returns the cache key of a page's metadata.
func MetadataKey(url string) string {
	return KeyPrefixMetadata + url
}

// UsersKey returns the key of the known users set.
func UsersKey() string {
	return KeyUsers
}

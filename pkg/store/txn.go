package store

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"wikid/pkg/codec"
	"wikid/pkg/history"
	"wikid/pkg/logger"
	"wikid/pkg/models"
	"wikid/pkg/wikierr"
)

// Named transactional operations. Each one stages every record it touches
// in a single indexed batch and commits synchronously, so readers never
// observe a history record without its version bump, a page update without
// its history record, or a namespace member the user's own record does not
// reflect. txnMu serializes them; on any failure the batch is dropped and
// nothing becomes visible.

// AnonymousAuthor is recorded on edits made without a session.
const AnonymousAuthor = "anonymous"

func batchSet(b *pebble.Batch, key string, v any) error {
	data, err := codec.Encode(v)
	if err != nil {
		return err
	}
	if err := b.Set([]byte(key), data, nil); err != nil {
		return wikierr.Io("store.batch_set "+key, err)
	}
	return nil
}

// batchGet reads one record through the indexed batch, so writes staged
// earlier in the same transaction are visible. Missing records return
// (false, nil).
func batchGet(b *pebble.Batch, key string, v any) (bool, error) {
	raw, closer, err := b.Get([]byte(key))
	switch {
	case err == nil:
		derr := codec.Decode(key, raw, v)
		closer.Close()
		if derr != nil {
			return false, derr
		}
		return true, nil
	case errors.Is(err, pebble.ErrNotFound):
		return false, nil
	default:
		return false, wikierr.Io("store.batch_get "+key, err)
	}
}

// CommitEdit records one content-changing edit of a page: it writes the
// history record for the transition, bumps the version counter and stores
// the new content, all in one transaction. The returned version is the one
// the edit was recorded under; the first edit of a page gets version 0.
// Versions are gapless and strictly increasing even under concurrent
// editors; content is last-writer-wins.
func CommitEdit(namespace string, page *models.Page, author, newContent string) (uint64, error) {
	if db == nil {
		return 0, notOpen()
	}
	if author == "" {
		author = AnonymousAuthor
	}

	txnMu.Lock()
	defer txnMu.Unlock()

	b := db.NewIndexedBatch()
	defer b.Close()

	// absent counter reads as the zero record: first edit of this page
	versionKey := HistoryVersionKey(namespace, page.Slug)
	var counter models.HistoryVersionRecord
	if _, err := batchGet(b, versionKey, &counter); err != nil {
		return 0, err
	}

	version := counter.NextVersion
	rec := models.HistoryRecord{
		Author: author,
		Delta:  history.Diff(page.Slug, page.Content, newContent),
	}
	if err := batchSet(b, HistoryKey(namespace, page.Slug, version), rec); err != nil {
		return 0, err
	}
	if err := batchSet(b, versionKey, counter.Next()); err != nil {
		return 0, err
	}
	page.Content = newContent
	if err := batchSet(b, PageKey(namespace, page.Slug), page); err != nil {
		return 0, err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		logger.Error("commit_edit_failed", "namespace", namespace, "slug", page.Slug, "error", err)
		return 0, wikierr.Io("store.commit_edit", err)
	}
	logger.Info("edit_committed", "namespace", namespace, "slug", page.Slug, "version", version, "author", author)
	return version, nil
}

// JoinNamespace adds the named user to the namespace's member set and the
// namespace to the user's set, persisting both records atomically so
// neither side can be observed without the other. Both records are
// re-read under the transaction lock before mutation; concurrent joins
// compose instead of overwriting each other from stale copies. The
// returned records reflect the committed state.
func JoinNamespace(userName, nsName string) (*models.User, *models.Namespace, error) {
	if db == nil {
		return nil, nil, notOpen()
	}

	txnMu.Lock()
	defer txnMu.Unlock()

	b := db.NewIndexedBatch()
	defer b.Close()

	var u models.User
	if ok, err := batchGet(b, UserKey(userName), &u); err != nil {
		return nil, nil, err
	} else if !ok {
		return nil, nil, wikierr.InvalidArgument("store.join_namespace", fmt.Errorf("user %q not found", userName))
	}
	var ns models.Namespace
	if ok, err := batchGet(b, NamespaceKey(nsName), &ns); err != nil {
		return nil, nil, err
	} else if !ok {
		return nil, nil, wikierr.InvalidArgument("store.join_namespace", fmt.Errorf("namespace %q not found", nsName))
	}

	u.Join(ns.Name)
	ns.AddMember(u.Name)

	if err := batchSet(b, UserKey(u.Name), &u); err != nil {
		return nil, nil, err
	}
	if err := batchSet(b, NamespaceKey(ns.Name), &ns); err != nil {
		return nil, nil, err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		logger.Error("join_namespace_failed", "user", userName, "namespace", nsName, "error", err)
		return nil, nil, wikierr.Io("store.join_namespace", err)
	}
	logger.Info("namespace_joined", "user", userName, "namespace", nsName)
	return &u, &ns, nil
}

// CreateUser writes a fresh user together with their personal namespace
// (mode 0700, owned and membered by the user) in one transaction.
// Duplicate names are refused.
func CreateUser(name, passwordHash string) (*models.User, error) {
	if db == nil {
		return nil, notOpen()
	}
	if _, exists, err := GetUser(name); err != nil {
		return nil, err
	} else if exists {
		return nil, wikierr.InvalidArgument("store.create_user", fmt.Errorf("user %q already exists", name))
	}
	if _, exists, err := GetNamespace(name); err != nil {
		return nil, err
	} else if exists {
		return nil, wikierr.InvalidArgument("store.create_user", fmt.Errorf("namespace %q already exists", name))
	}

	u := models.NewUser(name, passwordHash)
	ns := models.NewNamespace(name, name, 0o700)
	ns.AddMember(name)

	txnMu.Lock()
	defer txnMu.Unlock()

	b := db.NewIndexedBatch()
	defer b.Close()
	if err := batchSet(b, UserKey(u.Name), u); err != nil {
		return nil, err
	}
	if err := batchSet(b, NamespaceKey(ns.Name), ns); err != nil {
		return nil, err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		logger.Error("create_user_failed", "user", name, "error", err)
		return nil, wikierr.Io("store.create_user", err)
	}
	logger.Info("user_created", "user", name)
	return u, nil
}

// Package store owns every persisted record of the wiki: users,
// namespaces, pages and edit history, all byte-keyed in one ordered Pebble
// database. Keyspaces are emulated with key prefixes; within a keyspace
// the key layout is stable and documented on keys.go. Multi-record
// mutations go through the transactional operations in txn.go.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"

	"wikid/pkg/codec"
	"wikid/pkg/logger"
	"wikid/pkg/models"
	"wikid/pkg/utils"
	"wikid/pkg/wikierr"
)

var (
	db *pebble.DB

	// txnMu serializes multi-record transactions (edits, joins, signups) so
	// version counters stay gapless and both sides of a join land together.
	txnMu sync.Mutex
)

// Open opens (or creates) a Pebble database at the given path and keeps a
// global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return wikierr.Io("store.open", err)
	}
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return wikierr.Io("store.close", err)
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func notOpen() error {
	return wikierr.Io("store", fmt.Errorf("pebble not opened; call store.Open first"))
}

// get loads and decodes one record. Missing records return (false, nil).
func get(key string, v any) (bool, error) {
	if db == nil {
		return false, notOpen()
	}
	raw, closer, err := db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		logger.Error("get_key_failed", "key", key, "error", err)
		return false, wikierr.Io("store.get "+key, err)
	}
	defer closer.Close()
	if err := codec.Decode(key, raw, v); err != nil {
		return false, err
	}
	return true, nil
}

// set encodes and writes one record synchronously.
func set(key string, v any) error {
	if db == nil {
		return notOpen()
	}
	data, err := codec.Encode(v)
	if err != nil {
		return err
	}
	if err := db.Set([]byte(key), data, pebble.Sync); err != nil {
		logger.Error("set_key_failed", "key", key, "error", err)
		return wikierr.Io("store.set "+key, err)
	}
	return nil
}

// GetUser loads a user record. Missing users are a normal outcome reported
// through the boolean, not an error.
func GetUser(name string) (*models.User, bool, error) {
	var u models.User
	ok, err := get(UserKey(name), &u)
	if !ok || err != nil {
		return nil, false, err
	}
	return &u, true, nil
}

// PutUser persists a user record.
func PutUser(u *models.User) error {
	return set(UserKey(u.Name), u)
}

// ListUsers returns all user records.
func ListUsers() ([]models.User, error) {
	var out []models.User
	err := scan(userPrefix, func(key string, raw []byte) error {
		var u models.User
		if err := codec.Decode(key, raw, &u); err != nil {
			return err
		}
		out = append(out, u)
		return nil
	})
	return out, err
}

// GetNamespace loads a namespace record.
func GetNamespace(name string) (*models.Namespace, bool, error) {
	var ns models.Namespace
	ok, err := get(NamespaceKey(name), &ns)
	if !ok || err != nil {
		return nil, false, err
	}
	return &ns, true, nil
}

// PutNamespace persists a namespace record.
func PutNamespace(ns *models.Namespace) error {
	return set(NamespaceKey(ns.Name), ns)
}

// ListNamespaces returns all namespace records.
func ListNamespaces() ([]models.Namespace, error) {
	var out []models.Namespace
	err := scan(nspcPrefix, func(key string, raw []byte) error {
		var ns models.Namespace
		if err := codec.Decode(key, raw, &ns); err != nil {
			return err
		}
		out = append(out, ns)
		return nil
	})
	return out, err
}

// CreateNamespace writes a fresh namespace with the given mode and
// page-creation umask, refusing to clobber an existing one.
func CreateNamespace(name, owner string, mode, umask uint16) (*models.Namespace, error) {
	if _, exists, err := GetNamespace(name); err != nil {
		return nil, err
	} else if exists {
		return nil, wikierr.InvalidArgument("store.create_namespace", fmt.Errorf("namespace %q already exists", name))
	}
	ns := models.NewNamespace(name, owner, mode)
	ns.Umask = umask
	if err := PutNamespace(ns); err != nil {
		return nil, err
	}
	logger.Info("namespace_created", "namespace", name, "owner", owner, "mode", fmt.Sprintf("%o", mode))
	return ns, nil
}

// GetPage loads a page record by (namespace, slug).
func GetPage(namespace, slug string) (*models.Page, bool, error) {
	var p models.Page
	ok, err := get(PageKey(namespace, slug), &p)
	if !ok || err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

// PutPage persists a page record under its namespace.
func PutPage(namespace string, p *models.Page) error {
	return set(PageKey(namespace, p.Slug), p)
}

// CreatePage writes a fresh page into the namespace. The page mode is the
// default masked by the namespace umask. Duplicate slugs within a
// namespace are refused rather than silently overwritten.
func CreatePage(ns *models.Namespace, title, owner, content string) (*models.Page, error) {
	p := &models.Page{
		Title:   title,
		Slug:    utils.Slugify(title),
		Mode:    models.PageDefaultMode &^ ns.Umask,
		Owner:   owner,
		Content: content,
	}
	if p.Slug == "" {
		return nil, wikierr.InvalidArgument("store.create_page", fmt.Errorf("title %q yields an empty slug", title))
	}
	if _, exists, err := GetPage(ns.Name, p.Slug); err != nil {
		return nil, err
	} else if exists {
		return nil, wikierr.InvalidArgument("store.create_page", fmt.Errorf("page %s/%s already exists", ns.Name, p.Slug))
	}
	if err := PutPage(ns.Name, p); err != nil {
		return nil, err
	}
	logger.Info("page_created", "namespace", ns.Name, "slug", p.Slug, "mode", fmt.Sprintf("%o", p.Mode))
	return p, nil
}

// ListPages returns all pages in a namespace, in slug order.
func ListPages(namespace string) ([]models.Page, error) {
	var out []models.Page
	err := scan(pagePrefix+namespace+"/", func(key string, raw []byte) error {
		var p models.Page
		if err := codec.Decode(key, raw, &p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

// ScanPages walks every page in the store under a consistent iterator
// snapshot, passing each page with its namespace. Used to rebuild the
// search index from the source of truth.
func ScanPages(fn func(namespace string, p *models.Page) error) error {
	return scan(pagePrefix, func(key string, raw []byte) error {
		body := strings.TrimPrefix(key, pagePrefix)
		namespace, _, ok := strings.Cut(body, "/")
		if !ok {
			return wikierr.Corrupt("store.scan_pages "+key, fmt.Errorf("malformed page key"))
		}
		var p models.Page
		if err := codec.Decode(key, raw, &p); err != nil {
			return err
		}
		return fn(namespace, &p)
	})
}

// ListHistory returns every recorded edit of a page, newest first. The
// VERSION counter key shares the prefix and is skipped; versions are
// parsed from the key suffix.
func ListHistory(namespace, slug string) ([]models.HistoryEntry, error) {
	prefix := histPrefix + namespace + "/" + slug + "/"
	var out []models.HistoryEntry
	err := scan(prefix, func(key string, raw []byte) error {
		suffix := strings.TrimPrefix(key, prefix)
		if suffix == versionSuffix || strings.Contains(suffix, "/") {
			return nil
		}
		version, perr := strconv.ParseUint(suffix, 10, 64)
		if perr != nil {
			return wikierr.Corrupt("store.list_history "+key, perr)
		}
		var rec models.HistoryRecord
		if err := codec.Decode(key, raw, &rec); err != nil {
			return err
		}
		out = append(out, models.HistoryEntry{Version: version, Record: rec})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

// HistoryVersion returns the version counter for a page; absent counters
// read as the zero record.
func HistoryVersion(namespace, slug string) (models.HistoryVersionRecord, error) {
	var v models.HistoryVersionRecord
	_, err := get(HistoryVersionKey(namespace, slug), &v)
	return v, err
}

// scan iterates all keys with the given prefix over a consistent snapshot.
func scan(prefix string, fn func(key string, raw []byte) error) error {
	if db == nil {
		return notOpen()
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return wikierr.Io("store.scan "+prefix, err)
	}
	defer iter.Close()
	pfx := []byte(prefix)
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		v := append([]byte(nil), iter.Value()...)
		if err := fn(string(iter.Key()), v); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return wikierr.Io("store.scan "+prefix, err)
	}
	return nil
}

// ListKeys returns all keys (as strings) that start with the given prefix.
// If prefix is empty it returns all keys in the DB. Used by the inspect
// utility.
func ListKeys(prefix string) ([]string, error) {
	if db == nil {
		return nil, notOpen()
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, wikierr.Io("store.list_keys", err)
	}
	defer iter.Close()
	var out []string
	pfx := []byte(prefix)
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if len(pfx) > 0 && !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, string(append([]byte(nil), iter.Key()...)))
	}
	if err := iter.Error(); err != nil {
		return nil, wikierr.Io("store.list_keys", err)
	}
	return out, nil
}

// GetRaw returns the raw value for a key. Used by the inspect utility.
func GetRaw(key string) ([]byte, error) {
	if db == nil {
		return nil, notOpen()
	}
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		return nil, wikierr.Io("store.get_raw "+key, err)
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

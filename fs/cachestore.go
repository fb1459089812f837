// Package fs provides file-based storage for option corpora.
package fs

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zstd"
	"github.com/mvil/nox"
	"github.com/vmihailenco/msgpack/v5"
)

// Ensure CacheStore implements nox.CacheStore at compile time.
var _ nox.CacheStore = (*CacheStore)(nil)

const (
	entryExt = ".nox"
	lockExt  = ".lock"
	tempExt  = ".tmp"

	magic = "NOX1"

	lockRetryDelay = 25 * time.Millisecond
)

// header is stored uncompressed ahead of the records so that entry
// metadata can be read without decoding the records.
type header struct {
	Identity    string    `msgpack:"identity"`
	Version     string    `msgpack:"version"`
	URL         string    `msgpack:"url"`
	FetchedAt   time.Time `msgpack:"fetched_at"`
	ContentHash uint64    `msgpack:"content_hash"`
	Count       int       `msgpack:"count"`
}

// EntryInfo describes a cache file without its records.
type EntryInfo struct {
	Identity  string
	Version   string
	URL       string
	FetchedAt time.Time
	Count     int
	Size      int64
}

// CacheStore implements nox.CacheStore with one file per source identity
// under a root directory. Files are replaced by writing a temporary file
// in the same directory and renaming it over the old one, so readers see
// either the previous entry or the new one.
type CacheStore struct {
	root string
	enc  *zstd.Encoder
	dec  *zstd.Decoder

	// Logger receives a warning for every entry that cannot be decoded.
	Logger *slog.Logger
}

// NewCacheStore creates a CacheStore rooted at dir. The directory is
// created on first write.
func NewCacheStore(dir string) (*CacheStore, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &CacheStore{
		root:   dir,
		enc:    enc,
		dec:    dec,
		Logger: slog.New(slog.DiscardHandler),
	}, nil
}

// Root returns the cache directory.
func (s *CacheStore) Root() string {
	return s.root
}

// Close releases the compression resources.
func (s *CacheStore) Close() error {
	s.dec.Close()
	return s.enc.Close()
}

// Path returns the cache file path for identity.
func (s *CacheStore) Path(identity string) string {
	return filepath.Join(s.root, identity+entryExt)
}

func (s *CacheStore) lockPath(identity string) string {
	return filepath.Join(s.root, identity+lockExt)
}

// Get returns the entry for identity, or nil if there is none. Files that
// cannot be decoded are logged and reported as absent.
func (s *CacheStore) Get(ctx context.Context, identity string) (*nox.CacheEntry, error) {
	if err := validIdentity(identity); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(identity))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry, err := s.decode(data)
	if err == nil && entry.Identity != identity {
		err = nox.Errorf(nox.ECORRUPT, "entry belongs to %q", entry.Identity)
	}
	if err != nil {
		s.Logger.Warn("cache corrupt", "identity", identity, "path", s.Path(identity), "error", err)
		return nil, nil
	}
	return entry, nil
}

// Put writes entry to a temporary file and renames it over the previous
// entry while holding the identity's lock file.
func (s *CacheStore) Put(ctx context.Context, entry *nox.CacheEntry) error {
	if err := validIdentity(entry.Identity); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.encode(entry)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}

	tmp, err := writeTemp(s.root, entry.Identity, data)
	if err != nil {
		return err
	}

	unlock, err := s.lock(ctx, entry.Identity)
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	defer unlock()

	if err := os.Rename(tmp, s.Path(entry.Identity)); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	syncDir(s.root)
	return nil
}

// Delete removes the entry for identity. A missing entry is not an error.
func (s *CacheStore) Delete(ctx context.Context, identity string) error {
	if err := validIdentity(identity); err != nil {
		return err
	}
	if _, err := os.Stat(s.root); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	unlock, err := s.lock(ctx, identity)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(s.Path(identity)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every cache entry along with leftover temporary and lock
// files.
func (s *CacheStore) Clear(ctx context.Context) error {
	dirents, err := os.ReadDir(s.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, de := range dirents {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := de.Name()
		switch {
		case strings.HasSuffix(name, entryExt):
			if err := s.Delete(ctx, strings.TrimSuffix(name, entryExt)); err != nil {
				return err
			}
		case strings.HasSuffix(name, tempExt):
			if err := os.Remove(filepath.Join(s.root, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
	}

	locks, err := filepath.Glob(filepath.Join(s.root, "*"+lockExt))
	if err != nil {
		return err
	}
	for _, name := range locks {
		_ = os.Remove(name)
	}
	return nil
}

// Stat returns the metadata of the entry for identity without decoding its
// records. Returns ENOTFOUND if there is no entry and ECORRUPT if the
// file cannot be read as an entry.
func (s *CacheStore) Stat(ctx context.Context, identity string) (*EntryInfo, error) {
	if err := validIdentity(identity); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path(identity))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nox.Errorf(nox.ENOTFOUND, "no cache entry for %q", identity)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	// The header is small; the records follow it.
	buf := make([]byte, min(fi.Size(), 64<<10))
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, nox.Errorf(nox.ECORRUPT, "read %s: %v", identity, err)
	}
	h, _, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}
	return &EntryInfo{
		Identity:  h.Identity,
		Version:   h.Version,
		URL:       h.URL,
		FetchedAt: h.FetchedAt.UTC(),
		Count:     h.Count,
		Size:      fi.Size(),
	}, nil
}

// lock takes the advisory writer lock for identity.
func (s *CacheStore) lock(ctx context.Context, identity string) (func(), error) {
	fl := flock.New(s.lockPath(identity))
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nox.Errorf(nox.EINTERNAL, "could not lock cache entry %q", identity)
	}
	return func() { _ = fl.Unlock() }, nil
}

func (s *CacheStore) encode(entry *nox.CacheEntry) ([]byte, error) {
	hdr, err := msgpack.Marshal(&header{
		Identity:    entry.Identity,
		Version:     entry.Version,
		URL:         entry.URL,
		FetchedAt:   entry.FetchedAt.UTC(),
		ContentHash: entry.ContentHash,
		Count:       len(entry.Records),
	})
	if err != nil {
		return nil, err
	}
	records, err := msgpack.Marshal(entry.Records)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString(magic)
	b.Write(binary.AppendUvarint(nil, uint64(len(hdr))))
	b.Write(hdr)
	b.Write(s.enc.EncodeAll(records, nil))
	return b.Bytes(), nil
}

func (s *CacheStore) decode(data []byte) (*nox.CacheEntry, error) {
	h, body, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	entry := &nox.CacheEntry{
		Identity:    h.Identity,
		Version:     h.Version,
		URL:         h.URL,
		FetchedAt:   h.FetchedAt.UTC(),
		ContentHash: h.ContentHash,
	}
	raw, err := s.dec.DecodeAll(body, nil)
	if err != nil {
		return nil, nox.Errorf(nox.ECORRUPT, "decompress records: %v", err)
	}
	if err := msgpack.Unmarshal(raw, &entry.Records); err != nil {
		return nil, nox.Errorf(nox.ECORRUPT, "decode records: %v", err)
	}
	if len(entry.Records) != h.Count {
		return nil, nox.Errorf(nox.ECORRUPT, "expected %d records, found %d", h.Count, len(entry.Records))
	}
	return entry, nil
}

// decodeHeader reads the magic and header, returning the remaining bytes.
func decodeHeader(data []byte) (*header, []byte, error) {
	if !bytes.HasPrefix(data, []byte(magic)) {
		return nil, nil, nox.Errorf(nox.ECORRUPT, "bad magic")
	}
	rest := data[len(magic):]
	n, k := binary.Uvarint(rest)
	if k <= 0 || n > uint64(len(rest)-k) {
		return nil, nil, nox.Errorf(nox.ECORRUPT, "bad header length")
	}
	var h header
	if err := msgpack.Unmarshal(rest[k:k+int(n)], &h); err != nil {
		return nil, nil, nox.Errorf(nox.ECORRUPT, "decode header: %v", err)
	}
	return &h, rest[k+int(n):], nil
}

// writeTemp writes data to a new temporary file in dir and syncs it.
func writeTemp(dir, identity string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, identity+".*"+tempExt)
	if err != nil {
		return "", err
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// syncDir flushes the directory entry of a rename where the platform allows it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func validIdentity(identity string) error {
	if !nox.ValidIdentity(identity) {
		return nox.Errorf(nox.EINVALID, "invalid cache identity %q", identity)
	}
	return nil
}

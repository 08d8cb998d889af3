// Package store persists one collection's records as individual files
// under a single directory. Disk is the durability source of truth for
// the layers above; everything here is deterministic per (dir, id).
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/fictorial/filesysdb/filesysdb_errors"
	"github.com/fictorial/filesysdb/records"
)

const enumBatch = 256

type Store struct {
	dir   string
	ext   string
	codec records.Codec
}

// New opens (creating if needed) the record directory for one collection.
func New(dir string, codec records.Codec) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create collection dir %q: %w", dir, err)
	}
	return &Store{dir: dir, ext: codec.Extension(), codec: codec}, nil
}

// Dir returns the collection's base directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the canonical file the given id maps to. Pure function of
// the directory and the id; safe to expose as a read-only diagnostic.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, EncodeId(id)+"."+s.ext)
}

// Write persists the encoded bytes atomically: the data lands under a
// temporary name first and becomes visible via rename, so a concurrent
// Read sees either the previous bytes or the new ones, never a prefix.
func (s *Store) Write(id string, data []byte) error {
	path := s.Path(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %q: %w", path, err)
	}
	return nil
}

// Read returns the stored bytes for id.
func (s *Store) Read(id string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Join(filesysdb_errors.ErrNotFound, fmt.Errorf("id %q", id))
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", s.Path(id), err)
	}
	return data, nil
}

// ReadRecord reads and decodes the record stored under id.
func (s *Store) ReadRecord(id string) (records.Record, error) {
	data, err := s.Read(id)
	if err != nil {
		return nil, err
	}
	rec, err := s.codec.Decode(data)
	if err != nil {
		return nil, errors.Join(filesysdb_errors.ErrCorrupt, fmt.Errorf("id %q: %v", id, err))
	}
	return rec, nil
}

func (s *Store) readRecordFile(path string) (records.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	rec, err := s.codec.Decode(data)
	if err != nil {
		return nil, errors.Join(filesysdb_errors.ErrCorrupt, fmt.Errorf("file %q: %v", path, err))
	}
	return rec, nil
}

func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Delete removes the record file. Deleting an absent id reports
// ErrNotFound; delete is deliberately not idempotent.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Join(filesysdb_errors.ErrNotFound, fmt.Errorf("id %q", id))
	}
	if err != nil {
		return fmt.Errorf("delete %q: %w", s.Path(id), err)
	}
	return nil
}

// EachId lazily enumerates the ids currently on disk, in directory order.
// The sequence is restartable (re-ranging reopens the directory) and is
// not a snapshot: entries added or removed mid-iteration may or may not
// be observed. Ids whose encoding was length-bounded are recovered by
// decoding the record itself.
func (s *Store) EachId() iter.Seq2[string, error] {
	suffix := "." + s.ext
	return func(yield func(string, error) bool) {
		dir, err := os.Open(s.dir)
		if err != nil {
			yield("", fmt.Errorf("open %q: %w", s.dir, err))
			return
		}
		defer dir.Close()
		for {
			entries, err := dir.ReadDir(enumBatch)
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() || len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
					continue
				}
				id, ok := DecodeName(name[:len(name)-len(suffix)])
				if !ok {
					// hashed name, the id only survives inside the record
					rec, rerr := s.readRecordFile(filepath.Join(s.dir, name))
					if rerr != nil {
						if !yield("", rerr) {
							return
						}
						continue
					}
					if id, ok = rec.Id(); !ok {
						continue
					}
				}
				if !yield(id, nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("scan %q: %w", s.dir, err))
				return
			}
		}
	}
}

// Count scans the directory and counts record files. O(n) by contract.
func (s *Store) Count() (int, error) {
	n := 0
	for _, err := range s.EachId() {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

/*
Package files implements the file system used for both user files and
system files like fee schedules and exchange rates. File attributes and
contents are stored separately, deleted files keep their attributes.
*/
package files

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/fcmap"
	"github.com/nspcc-dev/ledger-services/pkg/core/storage"
	"go.uber.org/zap"
)

var (
	// ErrUnknownFile is returned for files that were never created.
	ErrUnknownFile = errors.New("unknown file")
	// ErrDeletedFile is returned when deleted file is used.
	ErrDeletedFile = errors.New("file is deleted")
	// ErrOversizeContents is returned when contents exceed the limit.
	ErrOversizeContents = errors.New("file contents are too big")
	// ErrFileExists is returned by CreateAt for existing files.
	ErrFileExists = errors.New("file already exists")
)

// UpdateHook is called after the file contents are changed.
type UpdateHook func(id entity.ID, contents []byte)

// FS is a file system over storage.Store.
type FS struct {
	store   storage.Store
	meta    *fcmap.StoreMap[entity.ID, *entity.FileMeta]
	ids     entity.IDSource
	maxSize int
	hooks   map[entity.ID][]UpdateHook
	log     *zap.Logger
}

// New creates a file system, maxSize limits file contents size in bytes.
func New(store storage.Store, ids entity.IDSource, maxSize int, log *zap.Logger) *FS {
	if log == nil {
		log = zap.NewNop()
	}
	return &FS{
		store: store,
		meta: fcmap.NewStoreMap[entity.ID, *entity.FileMeta](store, storage.STFileMeta,
			func() *entity.FileMeta { return new(entity.FileMeta) }, entity.IDFromBytes, log),
		ids:     ids,
		maxSize: maxSize,
		hooks:   make(map[entity.ID][]UpdateHook),
		log:     log,
	}
}

// OnUpdate registers a hook for the given file. Hooks are not called for
// file creation.
func (fs *FS) OnUpdate(id entity.ID, h UpdateHook) {
	fs.hooks[id] = append(fs.hooks[id], h)
}

// Purge drops cached attributes, it must be called after the underlying
// store is reset.
func (fs *FS) Purge() {
	fs.meta.Purge()
}

func dataKey(id entity.ID) []byte {
	return storage.STFileData.AppendKey(id.Bytes())
}

// Exists checks whether the file was ever created (deleted files exist).
func (fs *FS) Exists(id entity.ID) bool {
	return fs.meta.ContainsKey(id)
}

func (fs *FS) usable(id entity.ID) (*entity.FileMeta, error) {
	m, ok := fs.meta.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFile, id)
	}
	if m.Deleted {
		return nil, fmt.Errorf("%w: %s", ErrDeletedFile, id)
	}
	return m, nil
}

// Cat returns file contents.
func (fs *FS) Cat(id entity.ID) ([]byte, error) {
	if _, err := fs.usable(id); err != nil {
		return nil, err
	}
	data, err := fs.store.Get(dataKey(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []byte{}, nil
	}
	return data, err
}

// GetAttr returns file attributes, it works for deleted files too.
func (fs *FS) GetAttr(id entity.ID) (*entity.FileMeta, error) {
	m, ok := fs.meta.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFile, id)
	}
	return m, nil
}

// SetAttr replaces file attributes.
func (fs *FS) SetAttr(id entity.ID, meta *entity.FileMeta) error {
	if _, err := fs.usable(id); err != nil {
		return err
	}
	return fs.meta.Replace(id, meta)
}

func (fs *FS) checkSize(n int) error {
	if n > fs.maxSize {
		return fmt.Errorf("%w: %d > %d", ErrOversizeContents, n, fs.maxSize)
	}
	return nil
}

// Create creates a new file with a fresh id.
func (fs *FS) Create(contents []byte, meta *entity.FileMeta, sponsor entity.ID) (entity.ID, error) {
	if err := fs.checkSize(len(contents)); err != nil {
		return entity.ID{}, err
	}
	id := fs.ids.NewFileID(sponsor)
	err := fs.write(id, contents, meta)
	if err != nil {
		fs.ids.ReclaimLastID()
		return entity.ID{}, err
	}
	fs.log.Debug("file created", zap.Stringer("id", id), zap.Int("size", len(contents)))
	return id, nil
}

// CreateAt creates a file with the given id, it's used for system files.
func (fs *FS) CreateAt(id entity.ID, contents []byte, meta *entity.FileMeta) error {
	if fs.Exists(id) {
		return fmt.Errorf("%w: %s", ErrFileExists, id)
	}
	if err := fs.checkSize(len(contents)); err != nil {
		return err
	}
	return fs.write(id, contents, meta)
}

func (fs *FS) write(id entity.ID, contents []byte, meta *entity.FileMeta) error {
	err := fs.meta.Put(id, meta)
	if err != nil {
		return err
	}
	return fs.store.PutChangeSet(map[string][]byte{string(dataKey(id)): contents})
}

// Overwrite replaces file contents.
func (fs *FS) Overwrite(id entity.ID, contents []byte) error {
	if _, err := fs.usable(id); err != nil {
		return err
	}
	if err := fs.checkSize(len(contents)); err != nil {
		return err
	}
	err := fs.store.PutChangeSet(map[string][]byte{string(dataKey(id)): contents})
	if err != nil {
		return err
	}
	fs.notify(id, contents)
	return nil
}

// Append adds data to the end of the file.
func (fs *FS) Append(id entity.ID, more []byte) error {
	data, err := fs.Cat(id)
	if err != nil {
		return err
	}
	if err := fs.checkSize(len(data) + len(more)); err != nil {
		return err
	}
	data = append(append(make([]byte, 0, len(data)+len(more)), data...), more...)
	err = fs.store.PutChangeSet(map[string][]byte{string(dataKey(id)): data})
	if err != nil {
		return err
	}
	fs.notify(id, data)
	return nil
}

// Delete marks the file as deleted and drops its contents.
func (fs *FS) Delete(id entity.ID) error {
	m, err := fs.usable(id)
	if err != nil {
		return err
	}
	m.Deleted = true
	if err := fs.meta.Replace(id, m); err != nil {
		return err
	}
	return fs.store.PutChangeSet(map[string][]byte{string(dataKey(id)): nil})
}

func (fs *FS) notify(id entity.ID, contents []byte) {
	for _, h := range fs.hooks[id] {
		h(id, contents)
	}
}

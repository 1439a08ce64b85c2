package testhelpers

import (
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"

	"stackit.dev/gitrewrite/internal/config"
	"stackit.dev/gitrewrite/internal/git"
)

// Epoch is the timestamp of the first commit made by a MemoryRepo
var Epoch = time.Unix(1700000000, 0).UTC()

// MemoryRepo is an in-memory go-git repository with helpers to build
// commits from file maps. Its backend merges trees with FileMerger, so no git
// binary is needed.
type MemoryRepo struct {
	t       *testing.T
	Repo    *gogit.Repository
	Backend *git.Repository
	clock   time.Time
}

// NewMemoryRepo creates an empty in-memory repository with a test identity configured
func NewMemoryRepo(t *testing.T) *MemoryRepo {
	t.Helper()

	repo, err := gogit.Init(memory.NewStorage(), nil)
	require.NoError(t, err)

	m := &MemoryRepo{
		t:     t,
		Repo:  repo,
		clock: Epoch,
	}
	m.Backend = git.NewRepository(repo, NewFileMerger(repo))
	m.SetConfig("user.name", "Test User")
	m.SetConfig("user.email", "test@example.com")
	return m
}

// SetConfig writes a dotted key into the repository configuration
func (m *MemoryRepo) SetConfig(key, value string) {
	m.t.Helper()

	section, subsection, name, err := config.SplitKey(key)
	require.NoError(m.t, err)

	cfg, err := m.Repo.Config()
	require.NoError(m.t, err)
	if subsection == "" {
		cfg.Raw.Section(section).SetOption(name, value)
	} else {
		cfg.Raw.Section(section).Subsection(subsection).SetOption(name, value)
	}
	require.NoError(m.t, m.Repo.SetConfig(cfg))
}

// Signature returns a test identity one minute later than the previous one
func (m *MemoryRepo) Signature() object.Signature {
	m.clock = m.clock.Add(time.Minute)
	return object.Signature{Name: "Test User", Email: "test@example.com", When: m.clock}
}

// WriteTree stores files (path to content) as a tree and returns its id
func (m *MemoryRepo) WriteTree(files map[string]string) plumbing.Hash {
	m.t.Helper()
	hash, err := WriteTree(m.Repo.Storer, files)
	require.NoError(m.t, err)
	return hash
}

// Commit stores a commit whose tree is exactly files
func (m *MemoryRepo) Commit(message string, files map[string]string, parents ...plumbing.Hash) plumbing.Hash {
	m.t.Helper()
	return m.CommitTree(message, m.WriteTree(files), parents...)
}

// CommitTree stores a commit for an existing tree
func (m *MemoryRepo) CommitTree(message string, tree plumbing.Hash, parents ...plumbing.Hash) plumbing.Hash {
	m.t.Helper()

	sig := m.Signature()
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     tree,
		ParentHashes: parents,
	}
	obj := m.Repo.Storer.NewEncodedObject()
	require.NoError(m.t, c.Encode(obj))
	hash, err := m.Repo.Storer.SetEncodedObject(obj)
	require.NoError(m.t, err)
	return hash
}

// CommitObject reads a commit, failing the test if it is missing
func (m *MemoryRepo) CommitObject(hash plumbing.Hash) *object.Commit {
	m.t.Helper()
	c, err := m.Repo.CommitObject(hash)
	require.NoError(m.t, err)
	return c
}

// Files returns the flattened content of a commit's tree
func (m *MemoryRepo) Files(commit plumbing.Hash) map[string]string {
	m.t.Helper()
	files, err := TreeFiles(m.Repo, m.CommitObject(commit).TreeHash)
	require.NoError(m.t, err)
	return files
}

// SetRef points name at hash
func (m *MemoryRepo) SetRef(name string, hash plumbing.Hash) {
	m.t.Helper()
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), hash)
	require.NoError(m.t, m.Repo.Storer.SetReference(ref))
}

// Ref returns the id name points at, or the zero hash when it is missing
func (m *MemoryRepo) Ref(name string) plumbing.Hash {
	ref, err := m.Repo.Reference(plumbing.ReferenceName(name), true)
	if err != nil {
		return plumbing.ZeroHash
	}
	return ref.Hash()
}

// ObjectCount returns the number of objects in the store
func (m *MemoryRepo) ObjectCount() int {
	m.t.Helper()
	iter, err := m.Repo.Storer.IterEncodedObjects(plumbing.AnyObject)
	require.NoError(m.t, err)
	count := 0
	require.NoError(m.t, iter.ForEach(func(plumbing.EncodedObject) error {
		count++
		return nil
	}))
	return count
}

// TreeFiles flattens a tree into a path to content map. The zero hash and
// the empty tree yield an empty map even when not stored.
func TreeFiles(repo *gogit.Repository, hash plumbing.Hash) (map[string]string, error) {
	files := make(map[string]string)
	if hash.IsZero() || hash == git.EmptyTreeHash {
		return files, nil
	}
	tree, err := repo.TreeObject(hash)
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", hash, err)
	}
	err = tree.Files().ForEach(func(f *object.File) error {
		content, err := f.Contents()
		if err != nil {
			return err
		}
		files[f.Name] = content
		return nil
	})
	return files, err
}

// WriteTree stores nested trees for files and returns the root tree id
func WriteTree(s storer.EncodedObjectStorer, files map[string]string) (plumbing.Hash, error) {
	var entries []object.TreeEntry
	subdirs := make(map[string]map[string]string)

	for path, content := range files {
		if dir, rest, nested := strings.Cut(path, "/"); nested {
			if subdirs[dir] == nil {
				subdirs[dir] = make(map[string]string)
			}
			subdirs[dir][rest] = content
			continue
		}
		hash, err := writeBlob(s, content)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{Name: path, Mode: filemode.Regular, Hash: hash})
	}
	for dir, sub := range subdirs {
		hash, err := WriteTree(s, sub)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{Name: dir, Mode: filemode.Dir, Hash: hash})
	}

	// git orders directories as if their name ended in a slash
	sortKey := func(e object.TreeEntry) string {
		if e.Mode == filemode.Dir {
			return e.Name + "/"
		}
		return e.Name
	}
	sort.Slice(entries, func(i, j int) bool {
		return sortKey(entries[i]) < sortKey(entries[j])
	})

	obj := s.NewEncodedObject()
	if err := (&object.Tree{Entries: entries}).Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	return s.SetEncodedObject(obj)
}

func writeBlob(s storer.EncodedObjectStorer, content string) (plumbing.Hash, error) {
	obj := s.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := w.Write([]byte(content)); err != nil {
		return plumbing.ZeroHash, err
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, err
	}
	return s.SetEncodedObject(obj)
}

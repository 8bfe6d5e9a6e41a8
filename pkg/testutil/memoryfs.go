package testutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFS implements types.FS with in-memory storage, including
// symlinks and renames, so the linker and mirror packages can be
// tested without touching the host.
type MemoryFS struct {
	mu    sync.RWMutex
	nodes map[string]*fileNode

	// errorPaths injects errors for specific paths
	errorPaths map[string]error
}

// fileNode represents a file, directory or symlink in memory
type fileNode struct {
	name     string
	mode     fs.FileMode
	modTime  time.Time
	content  []byte
	isDir    bool
	isLink   bool
	linkDest string
}

// NewMemoryFS creates a new in-memory filesystem with a root directory.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		nodes: map[string]*fileNode{
			"/": {name: "/", mode: 0755 | fs.ModeDir, modTime: time.Now(), isDir: true},
		},
		errorPaths: make(map[string]error),
	}
}

// InjectError makes any operation on path fail with err.
func (m *MemoryFS) InjectError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorPaths[filepath.Clean(path)] = err
}

func (m *MemoryFS) check(path string) (string, error) {
	path = filepath.Clean(path)
	if err, ok := m.errorPaths[path]; ok {
		return path, err
	}
	return path, nil
}

func (m *MemoryFS) get(path string) (*fileNode, error) {
	path, err := m.check(path)
	if err != nil {
		return nil, err
	}
	node, ok := m.nodes[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return node, nil
}

// resolve follows symlinks to the final node.
func (m *MemoryFS) resolve(path string) (*fileNode, error) {
	node, err := m.get(path)
	if err != nil {
		return nil, err
	}
	for depth := 0; node.isLink; depth++ {
		if depth > 16 {
			return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrInvalid}
		}
		dest := node.linkDest
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(path), dest)
		}
		path = dest
		node, err = m.get(path)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	node, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	return node.info(), nil
}

func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	node, err := m.get(name)
	if err != nil {
		return nil, err
	}
	return node.info(), nil
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	node, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	out := make([]byte, len(node.content))
	copy(out, node.content)
	return out, nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, err := m.check(name)
	if err != nil {
		return err
	}
	// Parent must exist, matching os.WriteFile
	dir := filepath.Dir(name)
	parent, ok := m.nodes[dir]
	if !ok || !parent.isDir {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if existing, ok := m.nodes[name]; ok && existing.isDir {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	content := make([]byte, len(data))
	copy(content, data)
	m.nodes[name] = &fileNode{
		name:    filepath.Base(name),
		mode:    perm,
		modTime: time.Now(),
		content: content,
	}
	return nil
}

func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path, err := m.check(path)
	if err != nil {
		return err
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	current := "/"
	for _, part := range parts {
		if part == "" {
			continue
		}
		current = filepath.Join(current, part)
		if node, ok := m.nodes[current]; ok {
			if !node.isDir {
				return &fs.PathError{Op: "mkdir", Path: current, Err: fs.ErrExist}
			}
			continue
		}
		m.nodes[current] = &fileNode{
			name:    part,
			mode:    perm | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		}
	}
	return nil
}

func (m *MemoryFS) Symlink(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	newname, err := m.check(newname)
	if err != nil {
		return err
	}
	if _, ok := m.nodes[newname]; ok {
		return &fs.PathError{Op: "symlink", Path: newname, Err: fs.ErrExist}
	}
	dir := filepath.Dir(newname)
	parent, ok := m.nodes[dir]
	if !ok || !parent.isDir {
		return &fs.PathError{Op: "symlink", Path: newname, Err: fs.ErrNotExist}
	}
	m.nodes[newname] = &fileNode{
		name:     filepath.Base(newname),
		mode:     0777 | fs.ModeSymlink,
		modTime:  time.Now(),
		isLink:   true,
		linkDest: oldname,
	}
	return nil
}

func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	node, err := m.get(name)
	if err != nil {
		return "", err
	}
	if !node.isLink {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	return node.linkDest, nil
}

func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldpath, err := m.check(oldpath)
	if err != nil {
		return err
	}
	newpath, err = m.check(newpath)
	if err != nil {
		return err
	}
	node, ok := m.nodes[oldpath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}

	// Move the node and, for directories, everything under it.
	moved := map[string]*fileNode{newpath: node}
	if node.isDir {
		prefix := oldpath + "/"
		for p, n := range m.nodes {
			if strings.HasPrefix(p, prefix) {
				moved[filepath.Join(newpath, strings.TrimPrefix(p, prefix))] = n
			}
		}
	}
	for p := range m.nodes {
		if p == oldpath || strings.HasPrefix(p, oldpath+"/") {
			delete(m.nodes, p)
		}
	}
	for p, n := range moved {
		n.name = filepath.Base(p)
		m.nodes[p] = n
	}
	return nil
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, err := m.check(name)
	if err != nil {
		return err
	}
	node, ok := m.nodes[name]
	if !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	if node.isDir {
		for p := range m.nodes {
			if strings.HasPrefix(p, name+"/") {
				return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrInvalid}
			}
		}
	}
	delete(m.nodes, name)
	return nil
}

func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path, err := m.check(path)
	if err != nil {
		return err
	}
	for p := range m.nodes {
		if p == path || strings.HasPrefix(p, path+"/") {
			delete(m.nodes, p)
		}
	}
	return nil
}

// Paths returns every path in the filesystem, sorted, for assertions.
func (m *MemoryFS) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.nodes))
	for p := range m.nodes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (n *fileNode) info() fs.FileInfo {
	return &fileInfo{node: n}
}

// fileInfo adapts fileNode to fs.FileInfo
type fileInfo struct {
	node *fileNode
}

func (fi *fileInfo) Name() string       { return fi.node.name }
func (fi *fileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *fileInfo) Mode() fs.FileMode  { return fi.node.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.node.isDir }
func (fi *fileInfo) Sys() interface{}   { return nil }

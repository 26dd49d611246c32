// Package node models the file tree produced by replaying a branch's
// patchsets in commit order, so cmd/cvsgraph's --manifest flag can report
// which files exist at a branch's current head without walking CVS itself.
package node

import "strings"

// Node is one directory (or file) entry in a branch's file tree. The root
// of a tree is a Node with an empty Name.
type Node struct {
	Name     string
	Path     string
	IsFile   bool
	Children map[string]*Node
}

// AddFile records path as present, creating any intermediate directory
// entries that don't already exist. Adding a path twice is a no-op.
func (n *Node) AddFile(path string) {
	n.addFile(path, path)
}

func (n *Node) addFile(fullPath, subPath string) {
	name, rest, isLeaf := cutPath(subPath)
	if n.Children == nil {
		n.Children = make(map[string]*Node)
	}
	child, ok := n.Children[name]
	if !ok {
		child = &Node{Name: name}
		n.Children[name] = child
	}
	if isLeaf {
		child.IsFile = true
		child.Path = fullPath
		return
	}
	child.addFile(fullPath, rest)
}

// DeleteFile removes path if present. Deleting a path that was never added
// is a no-op, since a branch's patchsets can delete a file it inherited
// from its parent branch without ever having modified it itself.
func (n *Node) DeleteFile(path string) {
	name, rest, isLeaf := cutPath(path)
	child, ok := n.Children[name]
	if !ok {
		return
	}
	if isLeaf {
		delete(n.Children, name)
		return
	}
	child.DeleteFile(rest)
}

// GetFiles returns every file path under dir, or the whole tree if dir is
// "".
func (n *Node) GetFiles(dir string) []string {
	if dir == "" {
		return n.childFiles()
	}
	name, rest, isLeaf := cutPath(dir)
	child, ok := n.Children[name]
	if !ok {
		return nil
	}
	if isLeaf {
		if child.IsFile {
			return []string{child.Path}
		}
		return child.childFiles()
	}
	return child.GetFiles(rest)
}

func (n *Node) childFiles() []string {
	var files []string
	for _, c := range n.Children {
		if c.IsFile {
			files = append(files, c.Path)
		} else {
			files = append(files, c.childFiles()...)
		}
	}
	return files
}

// cutPath splits subPath on its first "/", reporting whether name is
// already the final path component.
func cutPath(path string) (name, rest string, isLeaf bool) {
	i := strings.IndexByte(path, '/')
	if i < 0 {
		return path, "", true
	}
	return path[:i], path[i+1:], false
}

package metadata

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Tree is the nested GROUP structure of an MTL file. Values are either
// strings (leaf fields) or nested Trees.
type Tree map[string]any

// Get returns the leaf value at a '/' separated path.
func (t Tree) Get(path string) (string, bool) {
	node, ok := t.lookup(path)
	if !ok {
		return "", false
	}
	s, ok := node.(string)
	return s, ok
}

// Group returns the subtree at path.
func (t Tree) Group(path string) (Tree, bool) {
	node, ok := t.lookup(path)
	if !ok {
		return nil, false
	}
	g, ok := node.(Tree)
	return g, ok
}

func (t Tree) Has(path string) bool {
	_, ok := t.lookup(path)
	return ok
}

func (t Tree) lookup(path string) (any, bool) {
	var node any = t
	for _, key := range strings.Split(path, "/") {
		g, ok := node.(Tree)
		if !ok {
			return nil, false
		}
		node, ok = g[key]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// ReadTree reads an MTL file, choosing the XML or ODL text reader by extension.
func ReadTree(path string) (Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return ReadXML(f)
	case ".txt":
		return ReadODL(f)
	default:
		return nil, fmt.Errorf("unrecognised metadata extension %q", filepath.Ext(path))
	}
}

// ReadXML parses an MTL.xml document. Elements with children become groups,
// elements without children become string values.
func ReadXML(r io.Reader) (Tree, error) {
	type frame struct {
		name string
		tree Tree
		text strings.Builder
	}
	root := Tree{}
	stack := []*frame{{tree: root}}

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding xml: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			stack = append(stack, &frame{name: el.Name.Local, tree: Tree{}})
		case xml.CharData:
			stack[len(stack)-1].text.Write(el)
		case xml.EndElement:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1].tree
			if len(top.tree) > 0 {
				parent[top.name] = top.tree
			} else {
				parent[top.name] = strings.TrimSpace(top.text.String())
			}
		}
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("decoding xml: unbalanced document")
	}
	return root, nil
}

// ReadODL parses the legacy "GROUP = X / NAME = VALUE / END_GROUP = X / END" text format.
func ReadODL(r io.Reader) (Tree, error) {
	root := Tree{}
	stack := []Tree{root}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "END" {
			break
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected NAME = VALUE, got %q", lineNo, line)
		}
		name = strings.TrimSpace(name)
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch name {
		case "GROUP":
			g := Tree{}
			stack[len(stack)-1][value] = g
			stack = append(stack, g)
		case "END_GROUP":
			if len(stack) == 1 {
				return nil, fmt.Errorf("line %d: END_GROUP %s without GROUP", lineNo, value)
			}
			stack = stack[:len(stack)-1]
		default:
			stack[len(stack)-1][name] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return root, nil
}

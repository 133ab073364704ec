package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsMetadataFile reports whether name looks like an MTL file.
func IsMetadataFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, "_mtl.xml") || strings.HasSuffix(lower, "_mtl.txt")
}

// Locate resolves a scene path to its metadata file. A file is returned as is;
// in a folder the MTL.xml file is preferred over MTL.txt.
func Locate(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}
	var xmls, txts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lower := strings.ToLower(e.Name())
		switch {
		case strings.HasSuffix(lower, "_mtl.xml"):
			xmls = append(xmls, e.Name())
		case strings.HasSuffix(lower, "_mtl.txt"):
			txts = append(txts, e.Name())
		}
	}
	sort.Strings(xmls)
	sort.Strings(txts)
	if len(xmls) > 0 {
		return filepath.Join(path, xmls[0]), nil
	}
	if len(txts) > 0 {
		return filepath.Join(path, txts[0]), nil
	}
	return "", fmt.Errorf("no MTL metadata file in %s", path)
}

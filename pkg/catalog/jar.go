package catalog

import (
	"archive/zip"
	"fmt"
	"strings"
	"sync"
)

// jar: URIs (jar:file:///path/to/archive.jar!/entry/path) wrap a zip
// archive, adapted from the teacher's EPUB zip-backed file table
// (pkg/epub.Open/ReadFile): the archive opens once and its file table is
// cached, then named entries are opened individually.

var jarArchives sync.Map // map[string]*zip.ReadCloser, keyed by archive path

func openJarEntry(uri string) (ReadCloser, string, error) {
	archivePath, entryName, err := splitJarURI(uri)
	if err != nil {
		return nil, "", err
	}

	zr, err := openArchive(archivePath)
	if err != nil {
		return nil, "", err
	}

	for _, f := range zr.File {
		if f.Name == entryName {
			rc, err := f.Open()
			if err != nil {
				return nil, "", fmt.Errorf("opening jar entry %s: %w", entryName, err)
			}
			return rc, uri, nil
		}
	}
	return nil, "", fmt.Errorf("jar entry not found: %s!/%s", archivePath, entryName)
}

func openArchive(path string) (*zip.ReadCloser, error) {
	if cached, ok := jarArchives.Load(path); ok {
		return cached.(*zip.ReadCloser), nil
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening jar archive %s: %w", path, err)
	}
	actual, loaded := jarArchives.LoadOrStore(path, zr)
	if loaded {
		zr.Close()
		return actual.(*zip.ReadCloser), nil
	}
	return zr, nil
}

// splitJarURI splits "jar:file:///a/b.jar!/path/in/jar" into the local
// filesystem path of the archive to pass to zip.OpenReader ("/a/b.jar")
// and the in-archive entry name ("path/in/jar").
func splitJarURI(uri string) (archivePath, entryName string, err error) {
	rest := strings.TrimPrefix(uri, "jar:")
	archiveURI, entryName, ok := strings.Cut(rest, "!/")
	if !ok {
		return "", "", &MalformedURIError{URI: uri}
	}
	archivePath = strings.TrimPrefix(archiveURI, "file://")
	return archivePath, entryName, nil
}

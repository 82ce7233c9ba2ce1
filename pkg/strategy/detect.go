package strategy

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type archiveType int

const (
	// archiveNone is anything the build step consumes as-is: single-file
	// payloads, installers, jars.
	archiveNone archiveType = iota
	archiveZip
	archiveTar
)

// magicTable maps leading bytes to archive types. Gzip, bzip2, and legacy
// compress all land on the tar branch: tar handles decompression and
// unpacking in one step.
var magicTable = []struct {
	prefix []byte
	kind   archiveType
}{
	{[]byte{0x50, 0x4b, 0x03, 0x04}, archiveZip},
	{[]byte{0x1f, 0x8b}, archiveTar},
	{[]byte("BZh"), archiveTar},
	{[]byte{0x1f, 0x9d}, archiveTar},
}

// detectArchive classifies the file at path by its first four bytes. Jar
// files skip the sniff entirely: they are zip-compatible but must reach the
// build step unextracted.
func detectArchive(path string) (archiveType, error) {
	if strings.EqualFold(filepath.Ext(path), ".jar") {
		return archiveNone, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return archiveNone, err
	}
	defer f.Close()

	buf := make([]byte, 4)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return archiveNone, err
	}

	for _, m := range magicTable {
		if n >= len(m.prefix) && bytes.HasPrefix(buf[:n], m.prefix) {
			return m.kind, nil
		}
	}
	return archiveNone, nil
}

// archiveExt picks the extension for an archive cache file. GitHub's
// zipball/tarball download URLs carry no useful extension of their own, so
// those are forced; everything else keeps the URL's extension, with tar
// double extensions recognized as a unit.
func archiveExt(rawURL string) string {
	if strings.Contains(rawURL, "github.com/") {
		if strings.Contains(rawURL, "/zipball/") {
			return ".zip"
		}
		if strings.Contains(rawURL, "/tarball/") {
			return ".tgz"
		}
	}

	base := urlBasename(rawURL)
	for _, double := range []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tar.Z"} {
		if strings.HasSuffix(base, double) {
			return double
		}
	}
	return filepath.Ext(base)
}

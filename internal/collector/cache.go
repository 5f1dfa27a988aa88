package collector

import (
	"archive/zip"
	"bytes"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// cacheEntry is the gob payload stored for one source.
type cacheEntry struct {
	Source    string
	FetchedAt time.Time
	Content   []byte
}

// Cache keeps fetched CSV content as gob-encoded, zip-compressed files, one
// per source location.
type Cache struct {
	Dir string
}

// Path returns the cache file used for source.
func (c Cache) Path(source string) string {
	sum := sha1.Sum([]byte(source))
	return filepath.Join(c.Dir, hex.EncodeToString(sum[:])+".zip.gob")
}

// Exists checks if a cache file exists for source.
func (c Cache) Exists(source string) bool {
	_, err := os.Stat(c.Path(source))
	return !os.IsNotExist(err)
}

// Save stores content for source.
func (c Cache) Save(source string, content []byte) error {
	cacheFile := c.Path(source)
	if err := os.MkdirAll(filepath.Dir(cacheFile), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", filepath.Dir(cacheFile), err)
	}

	var buf bytes.Buffer
	entry := cacheEntry{Source: source, FetchedAt: time.Now().UTC(), Content: content}
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return fmt.Errorf("failed to gob-encode cache entry: %w", err)
	}

	zipFile, err := os.Create(cacheFile)
	if err != nil {
		return fmt.Errorf("failed to create zip cache file %s: %w", cacheFile, err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)
	dataWriter, err := zipWriter.Create("data.gob")
	if err != nil {
		return fmt.Errorf("failed to create data.gob entry in zip: %w", err)
	}
	if _, err := dataWriter.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write gob data to zip entry: %w", err)
	}
	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("failed to close zip writer: %w", err)
	}
	return nil
}

// Load returns the cached content for source.
func (c Cache) Load(source string) ([]byte, error) {
	cacheFile := c.Path(source)
	zipReader, err := zip.OpenReader(cacheFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip cache file %s: %w", cacheFile, err)
	}
	defer zipReader.Close()

	if len(zipReader.File) == 0 || zipReader.File[0].Name != "data.gob" {
		return nil, fmt.Errorf("invalid cache file format: data.gob not found")
	}

	dataFile, err := zipReader.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open data.gob from zip: %w", err)
	}
	defer dataFile.Close()

	var entry cacheEntry
	if err := gob.NewDecoder(dataFile).Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to gob-decode cache entry: %w", err)
	}
	if entry.Source != source {
		return nil, fmt.Errorf("cache file %s belongs to %s", cacheFile, entry.Source)
	}
	return entry.Content, nil
}

// Clear removes the cache file for source. A missing file is not an error.
func (c Cache) Clear(source string) error {
	cacheFile := c.Path(source)
	err := os.Remove(cacheFile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file %s: %w", cacheFile, err)
	}
	return nil
}

// Package snapshot reads and writes ranklist exports. Files ending in .zst
// are zstd compressed JSON, anything else is plain JSON.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/contester/api"
)

func Write(w io.Writer, snap api.RanklistSnapshot) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return enc.Close()
}

func Read(r io.Reader) (api.RanklistSnapshot, error) {
	var snap api.RanklistSnapshot
	d, err := zstd.NewReader(r)
	if err != nil {
		return snap, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer d.Close()
	if err := json.NewDecoder(d).Decode(&snap); err != nil {
		return snap, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

func WriteFile(path string, snap api.RanklistSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}

	if filepath.Ext(path) == ".zst" {
		err = Write(f, snap)
	} else {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(snap)
	}
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close file %s: %w", path, closeErr)
	}
	return nil
}

func ReadFile(path string) (api.RanklistSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return api.RanklistSnapshot{}, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	if filepath.Ext(path) == ".zst" {
		return Read(f)
	}
	var snap api.RanklistSnapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return snap, fmt.Errorf("failed to decode file %s: %w", path, err)
	}
	return snap, nil
}

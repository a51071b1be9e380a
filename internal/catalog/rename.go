package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/genricoloni/hueplay/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrEmptyName is returned when the proposed name is blank
	ErrEmptyName = errors.New("empty file name")
	// ErrSameName is returned when the proposed name equals the current one
	ErrSameName = errors.New("name unchanged")
)

var invalidNameChars = strings.NewReplacer(
	`\`, "_", "/", "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// ExistsFunc reports whether a path is taken
type ExistsFunc func(path string) bool

// FileExists is the ExistsFunc backed by the filesystem
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SanitizeName replaces characters that are not allowed in file names
func SanitizeName(name string) string {
	return invalidNameChars.Replace(name)
}

// ProposeRename computes the destination path for renaming oldPath to
// proposedName. The original extension is kept, and collisions get a
// _1, _2, ... suffix before the extension.
func ProposeRename(oldPath, proposedName string, exists ExistsFunc) (string, error) {
	name := strings.TrimSpace(proposedName)
	if name == "" {
		return "", ErrEmptyName
	}
	name = SanitizeName(name)

	ext := filepath.Ext(filepath.Base(oldPath))
	if !strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		name += ext
	}
	if name == filepath.Base(oldPath) {
		return "", ErrSameName
	}

	dir := filepath.Dir(oldPath)
	newPath := filepath.Join(dir, name)
	if !exists(newPath) {
		return newPath, nil
	}

	nameExt := filepath.Ext(name)
	stem := strings.TrimSuffix(name, nameExt)
	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, stem+"_"+strconv.Itoa(counter)+nameExt)
		if !exists(candidate) {
			return candidate, nil
		}
	}
}

// Rename renames a catalog track on disk, moves its cached artwork along
// with it and updates the catalog entry in place. A failed artwork rename
// is logged and reported alongside the new track.
func (c *Catalog) Rename(oldPath, proposedName string) (domain.Track, error) {
	old, ok := c.Find(oldPath)
	if !ok {
		return domain.Track{}, fmt.Errorf("%w: %s", domain.ErrTrackNotFound, oldPath)
	}

	newPath, err := ProposeRename(old.Path, proposedName, FileExists)
	if err != nil {
		return old, err
	}

	if err := os.Rename(old.Path, newPath); err != nil {
		return old, fmt.Errorf("failed to rename track: %w", err)
	}

	renamed := domain.NewTrack(newPath)
	c.Replace(old.Path, renamed)

	var errs error
	oldArt := filepath.Join(c.artworkDir, old.BaseName()+".png")
	if FileExists(oldArt) {
		newArt := filepath.Join(c.artworkDir, renamed.BaseName()+".png")
		if err := os.Rename(oldArt, newArt); err != nil {
			c.logger.Warn("Failed to rename artwork file",
				zap.String("path", oldArt),
				zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("failed to rename artwork: %w", err))
		}
	}

	c.logger.Info("Track renamed",
		zap.String("from", old.Path),
		zap.String("to", renamed.Path))

	return renamed, errs
}

package framebuffer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rmcsoft/emote"
)

// ErrMissingFrames is returned when an emote has no frames to show.
var ErrMissingFrames = errors.New("missing emote frames")

// Frame series suffixes. <emote>_entry and <emote>_exit are optional
// transition frames; <emote>_hold is built from the last frame of <emote>
// and shown while the emote is frozen.
const (
	EntrySuffix = "_entry"
	ExitSuffix  = "_exit"
	HoldSuffix  = "_hold"
)

// HoldAnimation names the single frame animation of a frozen emote.
func HoldAnimation(name string) string {
	return name + HoldSuffix
}

// SeriesDir is a frame series and the directory holding its frames.
type SeriesDir struct {
	Name string
	Path string
	// Emote is empty for transition series.
	Emote string
}

// FrameSeriesDirs lists the frame series directories of catalog under
// dir: <emote> for every emote, plus <emote>_entry and <emote>_exit when
// present. Other directories are ignored.
func FrameSeriesDirs(catalog *emote.Catalog, dir string) ([]SeriesDir, error) {
	var dirs []SeriesDir
	for _, def := range catalog.Emotes() {
		path := filepath.Join(dir, def.Name)
		if !isDir(path) {
			return nil, fmt.Errorf("%w: no directory for emote '%s' in %s", ErrMissingFrames, def.Name, dir)
		}
		dirs = append(dirs, SeriesDir{Name: def.Name, Path: path, Emote: def.Name})

		for _, suffix := range []string{EntrySuffix, ExitSuffix} {
			if path := filepath.Join(dir, def.Name+suffix); isDir(path) {
				dirs = append(dirs, SeriesDir{Name: def.Name + suffix, Path: path})
			}
		}
	}
	return dirs, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

package animation

import (
	"fmt"
	"image"
	"path/filepath"
	"sort"

	"github.com/rmcsoft/chanim"
	"github.com/rmcsoft/emote"
	"github.com/rmcsoft/emote/framebuffer"
	"github.com/sirupsen/logrus"
)

// loadFrames maps every *.ppixmap of dir, in name order, as one frame.
func loadFrames(dir string) ([]chanim.Frame, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.ppixmap"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	frames := make([]chanim.Frame, len(paths))
	for i, path := range paths {
		pixmap, err := chanim.MMapPackedPixmap(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		frames[i].DrawOperations = []chanim.DrawOperation{
			chanim.NewDrawPackedPixmapOperation(image.Point{}, pixmap),
		}
	}
	return frames, nil
}

// LoadFrameSeries loads the frame series of every catalog emote from dir,
// see framebuffer.FrameSeriesDirs, and adds a <emote>_hold series made of
// the emote's last frame.
func LoadFrameSeries(catalog *emote.Catalog, dir string) ([]chanim.FrameSeries, error) {
	dirs, err := framebuffer.FrameSeriesDirs(catalog, dir)
	if err != nil {
		return nil, err
	}

	var allFrameSeries, holds []chanim.FrameSeries
	for _, sd := range dirs {
		frames, err := loadFrames(sd.Path)
		if err != nil {
			return nil, err
		}
		if len(frames) == 0 {
			if sd.Emote != "" {
				return nil, fmt.Errorf("%w: emote '%s' has no frames", framebuffer.ErrMissingFrames, sd.Emote)
			}
			continue
		}
		allFrameSeries = append(allFrameSeries, chanim.FrameSeries{Name: sd.Name, Frames: frames})

		if sd.Emote == "" {
			continue
		}
		if def, _ := catalog.Lookup(sd.Emote); len(frames) != def.NumFrames {
			logrus.Warnf("Framebuffer: emote '%s' has %d frames, catalog says %d", sd.Emote, len(frames), def.NumFrames)
		}
		last := frames[len(frames)-1]
		holds = append(holds, chanim.FrameSeries{
			Name:   framebuffer.HoldAnimation(sd.Emote),
			Frames: []chanim.Frame{{DrawOperations: last.DrawOperations}},
		})
	}

	return append(allFrameSeries, holds...), nil
}

func findFrameSeries(name string, allFrameSeries []chanim.FrameSeries) *chanim.FrameSeries {
	for i := range allFrameSeries {
		if allFrameSeries[i].Name == name {
			return &allFrameSeries[i]
		}
	}
	return nil
}

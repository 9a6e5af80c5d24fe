package emote

import (
	_ "embed"
	"errors"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/tidwall/gjson"
)

// FillMode tells a renderer what to show outside of a clip's active time.
type FillMode string

// Fill modes understood by the renderers
const (
	FillNone      FillMode = "none"
	FillForwards  FillMode = "forwards"
	FillBackwards FillMode = "backwards"
	FillBoth      FillMode = "both"
)

// ErrInvalidCatalog is returned for malformed sprite metadata.
var ErrInvalidCatalog = errors.New("invalid emote catalog")

//go:embed metadata/default.json
var defaultCatalogData []byte

// EmoteDefinition is one sprite sheet clip.
type EmoteDefinition struct {
	Name      string
	RowIndex  int
	NumFrames int
	Duration  time.Duration
	FillMode  FillMode
}

// FrameDuration is the time one frame stays on screen.
func (d EmoteDefinition) FrameDuration() time.Duration {
	return d.Duration / time.Duration(d.NumFrames)
}

// LastFrame is the index of the final frame of the clip.
func (d EmoteDefinition) LastFrame() int {
	return d.NumFrames - 1
}

// SheetGeometry describes the sprite sheet shared by all emotes.
type SheetGeometry struct {
	Path         string
	SpriteWidth  int
	SpriteHeight int
	SheetWidth   int
}

// Catalog is the immutable set of emotes a character knows.
type Catalog struct {
	Sheet  SheetGeometry
	emotes []EmoteDefinition
	byName map[string]int
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogData)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog reads sprite metadata from a JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog parses sprite metadata of the form
//
//	{"spriteSheetPath": "...", "spriteWidth": 124, "spriteHeight": 93,
//	 "sheetWidth": 3348, "emotes": [{"name": "blink", "rowIndex": 0,
//	 "numFrames": 2, "duration": 500, "fillMode": "forwards"}]}
//
// Durations are in milliseconds.
func ParseCatalog(data []byte) (*Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidCatalog)
	}

	root := gjson.ParseBytes(data)
	c := &Catalog{
		Sheet: SheetGeometry{
			Path:         root.Get("spriteSheetPath").String(),
			SpriteWidth:  int(root.Get("spriteWidth").Int()),
			SpriteHeight: int(root.Get("spriteHeight").Int()),
			SheetWidth:   int(root.Get("sheetWidth").Int()),
		},
		byName: make(map[string]int),
	}

	if c.Sheet.SpriteWidth <= 0 || c.Sheet.SpriteHeight <= 0 {
		return nil, fmt.Errorf("%w: sprite size must be positive", ErrInvalidCatalog)
	}
	if c.Sheet.SheetWidth < c.Sheet.SpriteWidth {
		return nil, fmt.Errorf("%w: sheetWidth smaller than spriteWidth", ErrInvalidCatalog)
	}

	emotes := root.Get("emotes")
	if !emotes.IsArray() || len(emotes.Array()) == 0 {
		return nil, fmt.Errorf("%w: no emotes", ErrInvalidCatalog)
	}

	var parseErr error
	emotes.ForEach(func(_, v gjson.Result) bool {
		def, err := parseEmote(v)
		if err == nil {
			err = c.add(def)
		}
		parseErr = err
		return err == nil
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return c, nil
}

func parseEmote(v gjson.Result) (EmoteDefinition, error) {
	def := EmoteDefinition{
		Name:      v.Get("name").String(),
		RowIndex:  int(v.Get("rowIndex").Int()),
		NumFrames: int(v.Get("numFrames").Int()),
		Duration:  time.Duration(v.Get("duration").Int()) * time.Millisecond,
		FillMode:  FillNone,
	}
	if fm := v.Get("fillMode"); fm.Exists() && fm.String() != "" {
		def.FillMode = FillMode(fm.String())
	}

	switch {
	case def.Name == "":
		return def, fmt.Errorf("%w: emote without a name", ErrInvalidCatalog)
	case def.RowIndex < 0:
		return def, fmt.Errorf("%w: emote '%s': negative rowIndex", ErrInvalidCatalog, def.Name)
	case def.NumFrames < 1:
		return def, fmt.Errorf("%w: emote '%s': numFrames must be at least 1", ErrInvalidCatalog, def.Name)
	case def.Duration <= 0:
		return def, fmt.Errorf("%w: emote '%s': duration must be positive", ErrInvalidCatalog, def.Name)
	}

	switch def.FillMode {
	case FillNone, FillForwards, FillBackwards, FillBoth:
	default:
		return def, fmt.Errorf("%w: emote '%s': unknown fillMode '%s'", ErrInvalidCatalog, def.Name, def.FillMode)
	}

	return def, nil
}

func (c *Catalog) add(def EmoteDefinition) error {
	if _, ok := c.byName[def.Name]; ok {
		return fmt.Errorf("%w: duplicate emote '%s'", ErrInvalidCatalog, def.Name)
	}
	c.byName[def.Name] = len(c.emotes)
	c.emotes = append(c.emotes, def)
	return nil
}

// Lookup finds an emote by name.
func (c *Catalog) Lookup(name string) (EmoteDefinition, bool) {
	i, ok := c.byName[name]
	if !ok {
		return EmoteDefinition{}, false
	}
	return c.emotes[i], true
}

// Has reports whether the catalog defines name.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Names returns emote names in asset order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.emotes))
	for i, def := range c.emotes {
		names[i] = def.Name
	}
	return names
}

// Emotes returns a copy of all definitions in asset order.
func (c *Catalog) Emotes() []EmoteDefinition {
	return append([]EmoteDefinition(nil), c.emotes...)
}

// FrameOffset returns the translation that brings frame n of def into the
// sprite viewport.
func (c *Catalog) FrameOffset(def EmoteDefinition, frame int, scale float64) (x, y float64) {
	x = 0 - float64(c.Sheet.SpriteWidth)*scale*float64(frame)
	y = 0 - float64(c.Sheet.SpriteHeight)*scale*float64(def.RowIndex)
	return x, y
}

// KeyframePercent returns the position of frame n on the clip timeline.
// The last frame is pinned to 100.
func KeyframePercent(def EmoteDefinition, frame int) float64 {
	if frame >= def.LastFrame() {
		return 100
	}
	return float64(frame) * 100 / float64(def.NumFrames)
}

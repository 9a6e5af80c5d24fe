package style

import (
	"fmt"
	"strings"

	"github.com/rmcsoft/emote"
)

// SpriteStyleID is the registry id of the sprite style sheet.
const SpriteStyleID = "emote-sprite-v1"

// Class names used by the sprite markup
const (
	ContainerClass  = "emote"
	SheetClass      = "emote-spritesheet"
	AnimClassPrefix = "anim_"
)

// AnimClass is the class that plays the named emote.
func AnimClass(name string) string {
	return AnimClassPrefix + name
}

// RegisterSprite registers the sprite sheet of catalog in r once.
func RegisterSprite(r *Registry, catalog *emote.Catalog, scale float64) bool {
	return r.Register(SpriteStyleID, func() string {
		return SpriteStylesheet(catalog, scale)
	})
}

// SpriteStylesheet renders the CSS animating catalog's sprite sheet:
// a viewport sized to one sprite, one class per emote stepping through its
// row, and the matching keyframes.
func SpriteStylesheet(catalog *emote.Catalog, scale float64) string {
	if scale <= 0 {
		scale = 1
	}

	var b strings.Builder
	sheet := catalog.Sheet
	fmt.Fprintf(&b, ".%s {\n", ContainerClass)
	fmt.Fprintf(&b, "  height: %spx;\n", num(float64(sheet.SpriteHeight)*scale))
	fmt.Fprintf(&b, "  width: %spx;\n", num(float64(sheet.SpriteWidth)*scale))
	b.WriteString("  overflow: hidden;\n}\n\n")
	fmt.Fprintf(&b, ".%s {\n", SheetClass)
	fmt.Fprintf(&b, "  width: %spx;\n", num(float64(sheet.SheetWidth)*scale))
	b.WriteString("  image-rendering: pixelated;\n}\n")

	for _, def := range catalog.Emotes() {
		b.WriteString("\n")
		writeAnimClass(&b, def)
	}
	for _, def := range catalog.Emotes() {
		b.WriteString("\n")
		writeKeyframes(&b, catalog, def, scale)
	}
	return b.String()
}

func writeAnimClass(b *strings.Builder, def emote.EmoteDefinition) {
	fmt.Fprintf(b, ".%s {\n", AnimClass(def.Name))
	fmt.Fprintf(b, "  animation: %s %dms steps(2, jump-none);\n", def.Name, def.Duration.Milliseconds())
	if def.FillMode != "" && def.FillMode != emote.FillNone {
		fmt.Fprintf(b, "  animation-fill-mode: %s;\n", def.FillMode)
	}
	b.WriteString("}\n")
}

func writeKeyframes(b *strings.Builder, catalog *emote.Catalog, def emote.EmoteDefinition, scale float64) {
	fmt.Fprintf(b, "@keyframes %s {\n", def.Name)
	for n := 0; n < def.NumFrames; n++ {
		x, y := catalog.FrameOffset(def, n, scale)
		fmt.Fprintf(b, "  %s%% { transform: translate3d(%spx, %spx, 0); }\n",
			num(emote.KeyframePercent(def, n)), num(x), num(y))
	}
	b.WriteString("}\n")
}

func num(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

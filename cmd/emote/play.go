package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rmcsoft/emote"
	"github.com/rmcsoft/emote/dialogue"
	"github.com/rmcsoft/emote/events"
	"github.com/rmcsoft/emote/framebuffer"
	"github.com/rmcsoft/emote/framebuffer/animation"
	"github.com/rmcsoft/emote/headless"
	"github.com/rmcsoft/emote/tui"
	"github.com/sirupsen/logrus"
)

const (
	rendererHeadless = "headless"
	rendererTUI      = "tui"
)

type playCommand struct {
	Metadata   string        `short:"m" long:"metadata" description:"Sprite metadata JSON (built-in catalog if empty)"`
	Start      string        `long:"start" description:"Emote played at start (first emote of the catalog if empty)"`
	Idle       string        `long:"idle" default:"blink" description:"Emote return-to-blink sequences settle on"`
	Renderer   string        `short:"r" long:"renderer" default:"headless" choice:"headless" choice:"tui" choice:"sdl" choice:"kmsdrm" description:"Renderer"`
	Speed      float64       `long:"speed" default:"1" description:"Playback speed of the headless and tui renderers"`
	ImageDir   string        `short:"i" long:"image-dir" description:"Packed image directory for the sdl and kmsdrm renderers"`
	Width      int           `long:"width" default:"600" description:"SDL window width"`
	Height     int           `long:"height" default:"1024" description:"SDL window height"`
	Deck       string        `short:"d" long:"deck" description:"Dialogue deck: 'trivia' or a JSON file"`
	IdleEmotes []string      `long:"idle-emote" description:"Emote played now and then while idle (repeatable)"`
	IdlePeriod time.Duration `long:"idle-period" default:"10s" description:"Time between idle emotes"`
	GpioPins   []string      `long:"gpio-pin" description:"Presence sensor pin (repeatable)"`
	GpioPoll   time.Duration `long:"gpio-poll" default:"500ms" description:"Presence sensor poll period"`
	Reaction   string        `long:"presence-reaction" default:"greet,wave" description:"Emotes played when presence is detected"`
}

func (c *playCommand) Execute(args []string) error {
	closeLog, err := setupLogging(c.Renderer == rendererTUI)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logrus.StandardLogger()

	catalog, err := loadCatalog(c.Metadata)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var surface emote.Surface
	var screen *tui.Screen
	switch c.Renderer {
	case rendererTUI:
		tscreen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := tscreen.Init(); err != nil {
			return err
		}
		defer tscreen.Fini()
		screen = tui.NewScreen(tscreen, catalog, log, headless.WithSpeed(c.Speed))
		surface = screen
	case animation.EngineSDL, animation.EngineKMSDRM:
		fb, err := c.framebufferSurface(catalog, log)
		if err != nil {
			return err
		}
		defer fb.Close()
		surface = fb
	default:
		surface = headless.New(headless.WithLogger(log), headless.WithSpeed(c.Speed))
	}

	charOpts := emote.CharacterOptions{
		StartEmote: c.Start,
		IdleEmote:  c.Idle,
		IdleEmotes: c.IdleEmotes,
		IdlePeriod: c.IdlePeriod,
		Logger:     log,
	}
	var sources events.EventSources
	if len(c.GpioPins) > 0 {
		pins, err := events.OpenPins(c.GpioPins)
		if err != nil {
			return err
		}
		reaction, err := parseQueueArgs([]string{c.Reaction, "blink", "now"})
		if err != nil {
			return err
		}
		sources = append(sources, events.NewGpioEventSource(pins, c.GpioPoll))
		charOpts.Reactions = map[string]emote.SequenceRequest{events.GpioEventName: reaction}
	}

	character, err := emote.NewCharacter(catalog, surface, charOpts, sources)
	if err != nil {
		return err
	}
	runErr := make(chan error, 1)
	go func() { runErr <- character.Run(ctx) }()
	defer func() {
		character.Stop()
		<-character.Done()
	}()
	go func() {
		if err := <-runErr; err != nil {
			log.WithError(err).Error("Character stopped")
		}
		stop()
	}()

	var player *dialogue.Player
	if c.Deck != "" {
		var presenter dialogue.Presenter = dialogue.NewTextPresenter(os.Stdout)
		if screen != nil {
			presenter = screen
		}
		if player, err = c.startDialogue(catalog, character, presenter, log); err != nil {
			return err
		}
	}

	if screen != nil {
		controls := &tui.Controls{
			Character: character,
			Emotes:    catalog.Names(),
			Log:       log,
		}
		if player != nil {
			controls.Dialogue = player
		}
		screen.Run(ctx, controls.HandleKey)
		return nil
	}

	con := &console{
		character: character,
		out:       os.Stdout,
	}
	if player != nil {
		con.dialogue = player
	}
	return con.run(ctx, os.Stdin)
}

func (c *playCommand) framebufferSurface(catalog *emote.Catalog, log logrus.FieldLogger) (*framebuffer.Surface, error) {
	if c.ImageDir == "" {
		return nil, fmt.Errorf("the %s renderer needs --image-dir", c.Renderer)
	}
	dir, err := filepath.Abs(c.ImageDir)
	if err != nil {
		return nil, err
	}

	paintEngine, err := animation.NewPaintEngine(c.Renderer, c.Width, c.Height)
	if err != nil {
		return nil, err
	}
	animator, err := animation.NewAnimator(paintEngine, catalog, dir)
	if err != nil {
		return nil, err
	}
	return framebuffer.NewSurface(animator, log), nil
}

func (c *playCommand) startDialogue(catalog *emote.Catalog, driver dialogue.Driver, presenter dialogue.Presenter, log logrus.FieldLogger) (*dialogue.Player, error) {
	var deck *dialogue.Deck
	if c.Deck == "trivia" {
		deck = dialogue.TriviaDeck()
	} else {
		var err error
		if deck, err = dialogue.LoadDeck(c.Deck); err != nil {
			return nil, err
		}
	}

	player, err := dialogue.NewPlayer(deck, catalog, driver, presenter, log)
	if err != nil {
		return nil, err
	}
	return player, player.Start()
}

package main

import (
	"os"

	"github.com/rmcsoft/emote/style"
)

type cssCommand struct {
	Metadata string  `short:"m" long:"metadata" description:"Sprite metadata JSON (built-in catalog if empty)"`
	Scale    float64 `short:"s" long:"scale" default:"1" description:"Sprite scale factor"`
}

func (c *cssCommand) Execute(args []string) error {
	closeLog, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	catalog, err := loadCatalog(c.Metadata)
	if err != nil {
		return err
	}

	registry := style.Default()
	style.RegisterSprite(registry, catalog, c.Scale)
	_, err = registry.WriteTo(os.Stdout)
	return err
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"
)

type listCommand struct {
	Metadata string `short:"m" long:"metadata" description:"Sprite metadata JSON (built-in catalog if empty)"`
}

func (c *listCommand) Execute(args []string) error {
	closeLog, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	catalog, err := loadCatalog(c.Metadata)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tROW\tFRAMES\tDURATION\tFILL")
	for _, def := range catalog.Emotes() {
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%s\n", def.Name, def.RowIndex, def.NumFrames, def.Duration, def.FillMode)
	}
	return w.Flush()
}

package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rmcsoft/emote"
	"github.com/sirupsen/logrus"
)

type globalOptions struct {
	LogLevel string `short:"l" long:"log-level" default:"info" description:"Log level (trace, debug, info, warn, error)"`
	LogFile  string `long:"log-file" description:"Write logs to this file instead of stderr"`
	Config   string `short:"c" long:"config" description:"INI file with default option values"`
}

var opts globalOptions

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("list", "List emotes", "Lists the emotes of the sprite catalog.", &listCommand{})
	parser.AddCommand("css", "Print the sprite stylesheet", "Prints the CSS animating the sprite sheet.", &cssCommand{})
	parser.AddCommand("play", "Play the character", "Runs the character with a renderer and an optional dialogue.", &playCommand{})
	return parser
}

// loadConfig applies the INI file named by --config before the command
// line is parsed, so flags win over the file.
func loadConfig(parser *flags.Parser, args []string) error {
	var pre globalOptions
	if _, err := flags.NewParser(&pre, flags.IgnoreUnknown).ParseArgs(args); err != nil {
		return err
	}
	if pre.Config == "" {
		return nil
	}
	return flags.NewIniParser(parser).ParseFile(pre.Config)
}

func setupLogging(discard bool) (func(), error) {
	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(level)

	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		logrus.SetOutput(f)
		return func() {
			logrus.SetOutput(os.Stderr)
			f.Close()
		}, nil
	}
	if discard {
		logrus.SetOutput(ioutil.Discard)
	}
	return func() {}, nil
}

func loadCatalog(path string) (*emote.Catalog, error) {
	if path == "" {
		return emote.DefaultCatalog(), nil
	}
	return emote.LoadCatalog(path)
}

func main() {
	parser := newParser()
	if err := loadConfig(parser, os.Args[1:]); err != nil {
		fail(err)
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

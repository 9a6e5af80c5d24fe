package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rmcsoft/emote"
	"github.com/rmcsoft/emote/tui"
)

var errQuit = errors.New("quit")

type characterControl interface {
	QueueNext(req emote.SequenceRequest) error
	Snapshot(ctx context.Context) (emote.SequencerState, error)
}

// console drives the character from text commands:
//
//	queue <emote,emote...> [loop|stop|blink] [now]
//	next
//	answer <n>
//	state
//	quit
type console struct {
	character characterControl
	dialogue  tui.Stepper
	out       io.Writer
}

func (c *console) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Fprint(c.out, "> ")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := c.exec(ctx, line)
			if err == errQuit {
				return nil
			}
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
			fmt.Fprint(c.out, "> ")
		}
	}
}

func (c *console) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "queue", "q":
		req, err := parseQueueArgs(args)
		if err != nil {
			return err
		}
		return c.character.QueueNext(req)

	case "next", "n":
		if c.dialogue == nil {
			return errors.New("no dialogue")
		}
		return c.dialogue.Next()

	case "answer", "a":
		if c.dialogue == nil {
			return errors.New("no dialogue")
		}
		if len(args) != 1 {
			return errors.New("usage: answer <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bad answer '%s'", args[0])
		}
		_, err = c.dialogue.Answer(n)
		return err

	case "state", "s":
		st, err := c.character.Snapshot(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s %s [%s] #%d end=%s", st.Status, st.Current, strings.Join(st.Emotes, ","), st.Index, st.End)
		if st.Queued != nil {
			fmt.Fprintf(c.out, " queued=[%s]", strings.Join(st.Queued, ","))
		}
		fmt.Fprintln(c.out)
		return nil

	case "quit", "exit":
		return errQuit
	}
	return fmt.Errorf("unknown command '%s'", fields[0])
}

// parseQueueArgs reads "<emote,emote...> [end behavior] [now]".
func parseQueueArgs(args []string) (emote.SequenceRequest, error) {
	if len(args) == 0 {
		return emote.SequenceRequest{}, errors.New("usage: queue <emote,emote...> [loop|stop|blink] [now]")
	}

	var req emote.SequenceRequest
	for _, name := range strings.Split(args[0], ",") {
		if name = strings.TrimSpace(name); name != "" {
			req.Emotes = append(req.Emotes, name)
		}
	}

	for _, arg := range args[1:] {
		if arg == "now" {
			req.Immediate = true
			continue
		}
		end, err := emote.ParseEndBehavior(arg)
		if err != nil {
			return req, err
		}
		req.End = end
	}
	return req, nil
}

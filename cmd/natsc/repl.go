package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/kartikbazzad/natsio"
)

const historyFile = ".natsc_history"

// runREPL drops into an interactive session: pub/sub/request typed at a
// prompt instead of one-shot subcommands. Falls back to a plain
// line-by-line reader when stdin isn't a terminal (e.g. piped input).
func runREPL() error {
	c, err := connectClient(context.Background())
	if err != nil {
		return err
	}
	defer c.Close()

	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return runScriptedInput(c)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("natsc interactive session. Commands: pub <subject> <msg>, sub <subject>, request <subject> <msg>, quit")
	for {
		input, err := line.Prompt("natsc> ")
		if err != nil { // io.EOF on ctrl-d, liner.ErrPromptAborted on ctrl-c
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if input == "quit" || input == "exit" {
			return nil
		}
		if err := dispatch(c, input); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func runScriptedInput(c *natsio.Client) error {
	var buf [4096]byte
	var pending string
	for {
		n, err := os.Stdin.Read(buf[:])
		pending += string(buf[:n])
		for {
			i := strings.IndexByte(pending, '\n')
			if i < 0 {
				break
			}
			cmdLine := strings.TrimSpace(pending[:i])
			pending = pending[i+1:]
			if cmdLine == "" {
				continue
			}
			if derr := dispatch(c, cmdLine); derr != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", derr)
			}
		}
		if err != nil {
			return nil
		}
	}
}

func dispatch(c *natsio.Client, line string) error {
	fields := strings.SplitN(line, " ", 3)
	switch fields[0] {
	case "pub":
		if len(fields) < 3 {
			return fmt.Errorf("usage: pub <subject> <message>")
		}
		return c.Publish(natsio.PubCmd{Subject: fields[1], Data: []byte(fields[2])})

	case "sub":
		if len(fields) < 2 {
			return fmt.Errorf("usage: sub <subject>")
		}
		sub, err := c.Subscribe(natsio.SubCmd{Subject: fields[1]})
		if err != nil {
			return err
		}
		go func() {
			for msg := range sub.Messages() {
				fmt.Printf("[%s] %s\n", msg.Subject, msg.Data)
			}
		}()
		return nil

	case "request":
		if len(fields) < 3 {
			return fmt.Errorf("usage: request <subject> <message>")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		reply, err := c.Request(ctx, fields[1], []byte(fields[2]))
		if err != nil {
			return err
		}
		fmt.Println(string(reply.Data))
		return nil

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

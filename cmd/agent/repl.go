package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/petasbytes/job-agent/internal/agent"
	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/runner"
	"github.com/petasbytes/job-agent/memory"
)

// session is the part of app the REPL drives.
type session interface {
	Chat(ctx context.Context, text string) (runner.Outcome, error)
	Reset()
	History() []conversation.Message
	save(history []conversation.Message)
}

const replHelp = "Commands: /reset clears the conversation, /history prints it, /quit exits."

func runREPL(ctx context.Context, s session, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Job assistant (Ctrl-C to quit)")
	fmt.Fprintln(out, replHelp)

	// Lines arrive on a channel so Ctrl-C can interrupt a blocked read.
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		fmt.Fprint(out, "\u001b[94mYou\u001b[0m: ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nExiting...")
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			select {
			case err := <-scanErr:
				return err
			default:
				return nil
			}
		}

		input := strings.TrimSpace(line)
		switch input {
		case "":
			continue
		case "/quit", "/exit", "exit", "quit":
			return nil
		case "/reset":
			s.Reset()
			s.save(nil)
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		case "/history":
			for _, m := range memory.FromHistory(s.History()) {
				fmt.Fprintf(out, "%s: %s\n", m.Role, m.Text)
			}
			continue
		case "/help":
			fmt.Fprintln(out, replHelp)
			continue
		}

		o, err := s.Chat(ctx, input)
		s.save(s.History())
		if err != nil && ctx.Err() != nil {
			fmt.Fprintln(out, "\nExiting...")
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "\u001b[91mError\u001b[0m: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "\u001b[93mAgent\u001b[0m: %s\n", agent.Reply(o))
	}
}

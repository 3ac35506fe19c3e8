// Package agent implements the interactive AI assistant of the shl tool: a
// facilitator model orchestrating domain experts, one of which can read the
// shareholder registry through function tools.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w           io.Writer
	r           *bufio.Reader
	Facilitator *Expert
	Experts     []*Expert
}

// New creates a new Agent over the given experts. It takes an io.Writer for
// the agent's output (e.g. os.Stdout) and an io.Reader for user input.
func New(w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: newFacilitator(experts...),
	}
}

// Start creates the chat sessions for all experts.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.Facilitator.Start(ctx, client)
}

const prompt = "assist> "

// Run starts the interactive REPL session for the agent. Initial prompts,
// if any, are answered before reading from the input.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to shl assist. Type 'bye' to exit.")

	ask := func(input string) error {
		content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		for _, part := range content.Parts {
			fmt.Fprintln(a.w, part.Text)
		}
		return nil
	}

	for _, p := range prompts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		fmt.Fprintln(a.w, prompt, p)
		if err := ask(p); err != nil {
			return err
		}
	}

	for {
		fmt.Fprint(a.w, prompt)
		input, err := a.r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "bye", "exit", "quit":
			fmt.Fprintln(a.w, "Goodbye.")
			return nil
		}
		if err := ask(input); err != nil {
			return err
		}
	}
}

// Command petclinicctl talks to the petclinic services from the shell.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KamdynS/petclinic-genai/mcp"
	"github.com/KamdynS/petclinic-genai/rest"
	"github.com/KamdynS/petclinic-genai/visits"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}
	if err := run(context.Background(), os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, out io.Writer) error {
	switch command {
	case "visits":
		return handleVisits(ctx, args, out)
	case "tools":
		return handleTools(ctx, args, out)
	case "call":
		return handleCall(ctx, args, out)
	case "chat":
		return handleChat(ctx, args, out)
	case "version":
		fmt.Fprintf(out, "petclinicctl version %s\n", version)
		return nil
	case "help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "petclinicctl - CLI for the petclinic genai services %s\n\n", version)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  petclinicctl visits --host <visits-url> --pets 1,2   Fetch visits for pets")
	fmt.Fprintln(w, "  petclinicctl tools --host <genai-url>                List assistant tools")
	fmt.Fprintln(w, "  petclinicctl call --host <genai-url> --name <tool> [--args '{...}']")
	fmt.Fprintln(w, "  petclinicctl chat --host <genai-url> --message <text> [--session <id>]")
	fmt.Fprintln(w, "  petclinicctl version                                 Show version information")
	fmt.Fprintln(w, "  petclinicctl help                                    Show this help message")
}

func handleVisits(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("visits", flag.ContinueOnError)
	host := fs.String("host", visits.DefaultHostname, "Base URL of the visits service")
	pets := fs.String("pets", "", "Comma separated pet ids")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parsePetIDs(*pets)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	c := visits.NewClient(visits.Config{Hostname: *host, Timeout: *timeout})
	result, err := c.GetVisitsForPets(ctx, ids).Await(ctx)
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

func handleTools(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tools", flag.ContinueOnError)
	host := fs.String("host", "http://localhost:8084", "Base URL of the genai service")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := mcp.NewClient(mcp.ClientConfig{BaseURL: *host}).ListTools(ctx)
	if err != nil {
		return err
	}
	for _, t := range list {
		fmt.Fprintf(out, "%-22s %s\n", t.Name, strings.Join(strings.Fields(t.Description), " "))
	}
	return nil
}

func handleCall(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	host := fs.String("host", "http://localhost:8084", "Base URL of the genai service")
	name := fs.String("name", "", "Tool name")
	input := fs.String("args", "{}", "Tool arguments as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	if !json.Valid([]byte(*input)) {
		return fmt.Errorf("--args must be valid JSON")
	}
	result, err := mcp.NewClient(mcp.ClientConfig{BaseURL: *host, Timeout: time.Minute}).ExecuteTool(ctx, *name, *input)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result)
	return nil
}

type chatMessage struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

func handleChat(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	host := fs.String("host", "http://localhost:8084", "Base URL of the genai service")
	message := fs.String("message", "", "Question for the assistant")
	session := fs.String("session", "", "Session id to continue a conversation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *message == "" {
		return fmt.Errorf("--message is required")
	}
	var resp chatMessage
	err := rest.New(2*time.Minute).DoJSON(ctx, http.MethodPost, rest.JoinURL(*host, "chatclient"),
		chatMessage{Message: *message, SessionID: *session}, &resp)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n\n(session %s)\n", resp.Message, resp.SessionID)
	return nil
}

func parsePetIDs(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid pet id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"toolhub/internal/client"
	"toolhub/internal/model"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var buildVersion = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	client *client.Client
	out    io.Writer
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage(out)
		return errors.New("missing command")
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "version", "--version", "-v":
		fmt.Fprintln(out, strings.TrimSpace(buildVersion))
		return nil
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)
	apiBase := fs.String("api", envOr("TOOLHUB_API", "http://localhost:8080"), "API base URL")
	sessionPath := fs.String("session", os.Getenv("TOOLHUB_SESSION"), "session file (default under the user config dir)")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	firstName := fs.String("first-name", "", "First name (signup)")
	lastName := fs.String("last-name", "", "Last name (signup)")
	company := fs.String("company", "", "Company (signup, optional)")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	if *sessionPath == "" {
		path, err := client.DefaultSessionPath()
		if err != nil {
			return fmt.Errorf("locate session file: %w", err)
		}
		*sessionPath = path
	}
	c, err := client.New(*apiBase, client.NewFileStore(*sessionPath))
	if err != nil {
		return err
	}
	a := &app{client: c, out: out}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch cmd {
	case "signup":
		secret, err := passwordOrPrompt(*password, out)
		if err != nil {
			return err
		}
		req := model.SignupRequest{Email: *email, Password: secret, FirstName: *firstName, LastName: *lastName}
		if strings.TrimSpace(*company) != "" {
			req.Company = company
		}
		return a.signup(ctx, req)
	case "login":
		if strings.TrimSpace(*email) == "" {
			return errors.New("--email is required")
		}
		secret, err := passwordOrPrompt(*password, out)
		if err != nil {
			return err
		}
		return a.login(ctx, *email, secret)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami()
	case "dashboard":
		return a.dashboard(ctx)
	case "tools":
		return a.tools(ctx)
	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func passwordOrPrompt(password string, out io.Writer) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(out, "Password: ")
	bytes, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(bytes), nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func printUsage(out io.Writer) {
	fmt.Fprintf(out, "toolhub CLI %s\n\n", buildVersion)
	fmt.Fprint(out, `Usage:
	toolhub signup --email user@example.com --first-name Ann --last-name Lee [--company Acme] [--password secret]
	toolhub login --email user@example.com [--password secret]
	toolhub logout
	toolhub whoami
	toolhub dashboard
	toolhub tools
	toolhub version

Common flags: --api http://localhost:8080 --session /path/to/session.json
`)
}

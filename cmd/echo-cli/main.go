package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/echo-journal/echo/internal/client"
	"github.com/echo-journal/echo/internal/common"
)

const usage = `echo-cli - journal from the terminal

Usage:
  echo-cli [flags] write <text> [tags...]   create an entry (queued offline without a session)
  echo-cli [flags] login <email>            sign in and cache a token
  echo-cli [flags] sync                     replay the offline queue
  echo-cli [flags] list                     show recent entries
  echo-cli [flags] insights                 show emotion shares for the last 30 days
  echo-cli [flags] coping [action ...]      show or replace the coping kit
  echo-cli [flags] status                   show session and queue state

Flags:
  -api URL     API base URL (default ECHO_API_URL or http://localhost:8080)
  -offline     force offline queueing for write
`

func main() {
	apiURL := flag.String("api", "", "API base URL")
	offline := flag.Bool("offline", false, "force offline queueing for write")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *apiURL == "" {
		*apiURL = os.Getenv("ECHO_API_URL")
	}
	if *apiURL == "" {
		*apiURL = "http://localhost:8080"
	}

	logger := common.NewDefaultLogger()
	cli := &cliState{
		apiURL:  *apiURL,
		offline: *offline,
		logger:  logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var err error
	switch flag.Arg(0) {
	case "write":
		err = cli.write(ctx, flag.Args()[1:])
	case "login":
		err = cli.login(ctx, flag.Args()[1:])
	case "sync":
		err = cli.sync(ctx)
	case "list":
		err = cli.list(ctx)
	case "insights":
		err = cli.insights(ctx)
	case "coping":
		err = cli.coping(ctx, flag.Args()[1:])
	case "status":
		err = cli.status(ctx)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type cliState struct {
	apiURL  string
	offline bool
	logger  *common.Logger
}

// stateDir returns the directory holding the cached token and offline queue.
func (c *cliState) stateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve config dir: %w", err)
	}
	dir := filepath.Join(base, "echo")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("cannot create config dir: %w", err)
	}
	return dir, nil
}

func (c *cliState) tokenPath() (string, error) {
	dir, err := c.stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "token"), nil
}

func (c *cliState) queue() (*client.Queue, error) {
	dir, err := c.stateDir()
	if err != nil {
		return nil, err
	}
	return client.NewQueue(filepath.Join(dir, "offline.json"), c.logger), nil
}

func (c *cliState) loadToken() string {
	path, err := c.tokenPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (c *cliState) api() (*client.Client, error) {
	return client.NewClient(c.apiURL, c.loadToken(), c.logger)
}

func (c *cliState) write(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("write requires the entry text")
	}
	text := args[0]
	tags := args[1:]

	token := c.loadToken()
	if token == "" || c.offline {
		q, err := c.queue()
		if err != nil {
			return err
		}
		if err := q.Enqueue(client.OfflineEntry{Text: text, Tags: tags, CreatedAt: time.Now().UTC()}); err != nil {
			return err
		}
		fmt.Println("Saved offline. Run 'echo-cli sync' after logging in.")
		return nil
	}

	api, err := c.api()
	if err != nil {
		return err
	}
	entry, oneLiner, err := api.CreateEntry(ctx, text, tags)
	if err != nil {
		// Network trouble should not lose the entry.
		q, qerr := c.queue()
		if qerr == nil {
			if qerr = q.Enqueue(client.OfflineEntry{Text: text, Tags: tags, CreatedAt: time.Now().UTC()}); qerr == nil {
				fmt.Println("Server unreachable; saved offline.")
				return nil
			}
		}
		return err
	}

	if entry.TopEmotion != nil {
		fmt.Printf("Logged. Top emotion: %s\n", entry.TopEmotion.Label)
	}
	if oneLiner != "" {
		fmt.Println(oneLiner)
	}
	return nil
}

func (c *cliState) login(ctx context.Context, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		email = strings.TrimSpace(line)
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	api, err := client.NewClient(c.apiURL, "", c.logger)
	if err != nil {
		return err
	}
	token, err := api.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	path, err := c.tokenPath()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	fmt.Println("Logged in.")

	// A fresh session triggers a sync pass, mirroring the mobile client.
	return c.sync(ctx)
}

func (c *cliState) sync(ctx context.Context) error {
	token := c.loadToken()
	if token == "" {
		return fmt.Errorf("not logged in; run 'echo-cli login' first")
	}

	api, err := c.api()
	if err != nil {
		return err
	}
	q, err := c.queue()
	if err != nil {
		return err
	}

	attempted, failed, err := q.Sync(ctx, api)
	if err != nil {
		return err
	}
	if attempted == 0 {
		fmt.Println("Nothing to sync.")
		return nil
	}
	fmt.Printf("Synced %d of %d offline entries.\n", attempted-failed, attempted)
	if failed > 0 {
		fmt.Printf("%d entries failed and were dropped.\n", failed)
	}
	return nil
}

func (c *cliState) list(ctx context.Context) error {
	api, err := c.api()
	if err != nil {
		return err
	}
	entries, err := api.ListEntries(ctx, 20)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No entries yet.")
		return nil
	}
	for _, entry := range entries {
		label := "-"
		if entry.TopEmotion != nil {
			label = entry.TopEmotion.Label
		}
		text := entry.Text
		if len([]rune(text)) > 60 {
			text = string([]rune(text)[:57]) + "..."
		}
		fmt.Printf("%s  %-10s  %s\n", entry.CreatedAt.Local().Format("2006-01-02 15:04"), label, text)
	}
	return nil
}

func (c *cliState) insights(ctx context.Context) error {
	api, err := c.api()
	if err != nil {
		return err
	}
	summary, err := api.Insights(ctx, 30)
	if err != nil {
		return err
	}
	if len(summary.TopEmotions) == 0 {
		fmt.Println("No entries in the last 30 days.")
		return nil
	}

	fmt.Println("Top emotions (30 days):")
	for _, share := range summary.TopEmotions {
		fmt.Printf("  %-12s %5.1f%%\n", share.Label, share.Pct)
	}
	if len(summary.Keywords) > 0 {
		words := make([]string, 0, 8)
		for _, kw := range summary.Keywords {
			if len(words) == 8 {
				break
			}
			words = append(words, kw.Word)
		}
		fmt.Printf("Recurring words: %s\n", strings.Join(words, ", "))
	}
	return nil
}

func (c *cliState) coping(ctx context.Context, args []string) error {
	api, err := c.api()
	if err != nil {
		return err
	}

	actions := args
	if len(args) > 0 {
		if actions, err = api.SaveCopingKit(ctx, args); err != nil {
			return err
		}
		fmt.Println("Coping kit saved.")
	} else if actions, err = api.CopingKit(ctx); err != nil {
		return err
	}

	if len(actions) == 0 {
		fmt.Println("No coping actions pinned. Add up to 3 with 'echo-cli coping <action> ...'")
		return nil
	}
	for _, action := range actions {
		fmt.Printf("  - %s\n", action)
	}
	return nil
}

func (c *cliState) status(ctx context.Context) error {
	token := c.loadToken()
	if token == "" {
		fmt.Println("Session: not logged in")
	} else {
		fmt.Println("Session: token cached")
	}

	q, err := c.queue()
	if err != nil {
		return err
	}
	pending, err := q.ListPending()
	if err != nil {
		return err
	}
	fmt.Printf("Offline queue: %d pending\n", len(pending))

	api, err := client.NewClient(c.apiURL, token, c.logger)
	if err != nil {
		return err
	}
	if err := api.Health(ctx); err != nil {
		fmt.Printf("Server: unreachable (%v)\n", err)
	} else {
		fmt.Println("Server: ok")
	}
	return nil
}

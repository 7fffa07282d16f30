// ABOUTME: Operator CLI for a running taskdesk server
// ABOUTME: Talks HTTP with a bearer token to review requests and inspect users, positions and tasks

package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const banner = `
  _            _       _           _                  _           _
 | |_ __ _ ___| | ____| | ___  ___| | __      __ _  __| |_ __ ___ (_)_ __
 | __/ _' / __| |/ / _' |/ _ \/ __| |/ /____ / _' |/ _' | '_ ' _ \| | '_ \
 | || (_| \__ \   < (_| |  __/\__ \   <_____| (_| | (_| | | | | | | | | | |
  \__\__,_|___/_|\_\__,_|\___||___/_|\_\     \__,_|\__,_|_| |_| |_|_|_| |_|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := newClient(strings.TrimRight(getEnv("TASKDESK_URL", "http://localhost:8080"), "/"), getToken())

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "login":
		err = cmdLogin(ctx, c, args)
	case "me":
		err = cmdMe(ctx, c)
	case "status":
		err = cmdStatus(ctx, c)
	case "users":
		err = cmdUsers(ctx, c)
	case "requests":
		err = cmdRequests(ctx, c, args)
	case "approve":
		err = cmdReview(ctx, c, "approve", args)
	case "reject":
		err = cmdReview(ctx, c, "reject", args)
	case "positions":
		err = cmdPositions(ctx, c)
	case "tasks":
		err = cmdTasks(ctx, c, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: taskdesk-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  login [email]             Sign in and save the session token")
	fmt.Println("  me                        Show your account")
	fmt.Println("  status                    Show server readiness and your identity")
	fmt.Println("  users                     List all accounts (admin)")
	fmt.Println("  requests [status]         List profile change requests (default: pending)")
	fmt.Println("  approve <id>              Approve a profile change request")
	fmt.Println("  reject <id> [reason]      Reject a profile change request")
	fmt.Println("  positions                 List positions")
	fmt.Println("  tasks [--status S] [--priority P] [--assigned-to ID]")
	fmt.Println("                            List tasks")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  TASKDESK_URL     Server URL (default: http://localhost:8080)")
	fmt.Println("  TASKDESK_TOKEN   Session token (default: ~/.config/taskdesk/token)")
	fmt.Println()
}

func requireToken(c *client) error {
	if c.token == "" {
		return fmt.Errorf("no session token: run taskdesk-admin login or set TASKDESK_TOKEN")
	}
	return nil
}

func cmdLogin(ctx context.Context, c *client, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		fmt.Print("Email: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("login needs an interactive terminal for the password prompt")
	}
	fmt.Print("Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	var u user
	resp, _, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": string(password),
	}, &u)
	if err != nil {
		return err
	}

	var token string
	for _, ck := range resp.Cookies() {
		if ck.Name == "token" {
			token = ck.Value
		}
	}
	if token == "" {
		return fmt.Errorf("server did not return a session cookie")
	}

	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	color.New(color.FgGreen).Printf("  ✓ Signed in as %s\n", u.Username)
	fmt.Printf("  Token saved to %s\n", path)
	return nil
}

func cmdMe(ctx context.Context, c *client) error {
	if err := requireToken(c); err != nil {
		return err
	}

	var u user
	if _, _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Account")
	cyan.Println("  -------")
	fmt.Printf("  ID:        %d\n", u.ID)
	fmt.Printf("  Email:     %s\n", u.Email)
	fmt.Printf("  Username:  %s\n", u.Username)
	fmt.Printf("  Name:      %s\n", fullName(u.FirstName, u.LastName))
	color.New(color.FgGreen).Printf("  Role:      %s\n", u.Role)
	if u.PositionName != nil {
		fmt.Printf("  Position:  %s\n", *u.PositionName)
	}
	fmt.Println()
	return nil
}

func cmdStatus(ctx context.Context, c *client) error {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	color.New(color.FgCyan).Print(banner)
	fmt.Println()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/ready", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	switch {
	case err != nil:
		yellow.Printf("  Server:   ")
		color.Red("UNREACHABLE (%v)\n", err)
		return nil
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		yellow.Printf("  Server:   ")
		color.Red("NOT READY (%d)\n", resp.StatusCode)
	default:
		resp.Body.Close()
		green.Printf("  Server:   ")
		fmt.Printf("ready at %s\n", c.baseURL)
	}

	if c.token == "" {
		yellow.Printf("  Identity: ")
		fmt.Println("(no token - run taskdesk-admin login)")
		fmt.Println()
		return nil
	}

	var u user
	if _, _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		yellow.Printf("  Identity: ")
		color.Red("auth failed (%v)\n", err)
	} else {
		green.Printf("  Identity: ")
		fmt.Printf("%s (%s)\n", u.Username, u.Role)
	}
	fmt.Println()
	return nil
}

func cmdUsers(ctx context.Context, c *client) error {
	if err := requireToken(c); err != nil {
		return err
	}

	var users []user
	if _, _, err := c.do(ctx, http.MethodGet, "/admin/users", nil, &users); err != nil {
		return err
	}

	printHeader("Users")
	if len(users) == 0 {
		fmt.Println("  (no users)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tUSERNAME\tEMAIL\tNAME\tROLE\tCREATED")
	fmt.Fprintln(w, "  --\t--------\t-----\t----\t----\t-------")
	for _, u := range users {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, truncate(u.Email, 28), truncate(fullName(u.FirstName, u.LastName), 24),
			u.Role, u.CreatedAt.Local().Format("Jan 02 15:04"))
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdRequests(ctx context.Context, c *client, args []string) error {
	if err := requireToken(c); err != nil {
		return err
	}

	status := "pending"
	if len(args) > 0 {
		status = args[0]
	}

	var reqs []profileRequest
	path := "/profile-requests?status=" + url.QueryEscape(status)
	if _, _, err := c.do(ctx, http.MethodGet, path, nil, &reqs); err != nil {
		return err
	}

	printHeader("Profile Requests (" + status + ")")
	if len(reqs) == 0 {
		fmt.Println("  (no requests)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tUSER\tREQUESTED NAME\tSTATUS\tSUBMITTED")
	fmt.Fprintln(w, "  --\t----\t--------------\t------\t---------")
	for _, r := range reqs {
		who := strconv.FormatInt(r.UserID, 10)
		if r.Username != nil {
			who = *r.Username
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n",
			r.ID, who, truncate(fullName(r.FirstName, r.LastName), 32), r.Status,
			r.CreatedAt.Local().Format("Jan 02 15:04"))
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdReview(ctx context.Context, c *client, action string, args []string) error {
	if err := requireToken(c); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: taskdesk-admin %s <id>", action)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid request id: %s", args[0])
	}

	body := map[string]string{"action": action}
	if action == "reject" && len(args) > 1 {
		body["reject_reason"] = strings.Join(args[1:], " ")
	}

	var r profileRequest
	_, env, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/profile-requests/%d", id), body, &r)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Printf("  ✓ %s: %s\n", env.Message, fullName(r.FirstName, r.LastName))
	return nil
}

func cmdPositions(ctx context.Context, c *client) error {
	if err := requireToken(c); err != nil {
		return err
	}

	var positions []position
	if _, _, err := c.do(ctx, http.MethodGet, "/positions", nil, &positions); err != nil {
		return err
	}

	printHeader("Positions")
	if len(positions) == 0 {
		fmt.Println("  (no positions)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tLEVEL\tDESCRIPTION")
	fmt.Fprintln(w, "  --\t----\t-----\t-----------")
	for _, p := range positions {
		desc := ""
		if p.Description != nil {
			desc = truncate(*p.Description, 40)
		}
		fmt.Fprintf(w, "  %d\t%s\t%d\t%s\n", p.ID, p.Name, p.Level, desc)
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdTasks(ctx context.Context, c *client, args []string) error {
	if err := requireToken(c); err != nil {
		return err
	}

	q := url.Values{}
	for i := 0; i < len(args); i++ {
		name := strings.TrimPrefix(args[i], "--")
		switch name {
		case "status", "priority", "assigned-to":
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
		if i+1 >= len(args) {
			return fmt.Errorf("%s requires a value", args[i])
		}
		q.Set(strings.ReplaceAll(name, "-", "_"), args[i+1])
		i++
	}

	path := "/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var tasks []task
	if _, _, err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return err
	}

	printHeader("Tasks")
	if len(tasks) == 0 {
		fmt.Println("  (no tasks)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tTITLE\tSTATUS\tPRIORITY\tASSIGNEE\tDUE")
	fmt.Fprintln(w, "  --\t-----\t------\t--------\t--------\t---")
	for _, t := range tasks {
		assignee, due := "-", "-"
		if t.AssignedToName != nil {
			assignee = *t.AssignedToName
		}
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, truncate(t.Title, 40), t.StatusName, t.Priority, assignee, due)
	}
	w.Flush()
	fmt.Println()
	return nil
}

func printHeader(title string) {
	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  " + title)
	cyan.Println("  " + strings.Repeat("-", len([]rune(title))))
}

func fullName(first, last string) string {
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		return "-"
	}
	return name
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func tokenPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "taskdesk", "token"), nil
}

// getToken returns the session token from TASKDESK_TOKEN or the token file.
func getToken() string {
	if token := os.Getenv("TASKDESK_TOKEN"); token != "" {
		return token
	}

	path, err := tokenPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ABOUTME: First-run commands: init writes a starter config, bootstrap creates the first admin
// ABOUTME: Bootstrap also saves a session token next to the config for taskdesk-admin

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/2389/taskdesk/internal/auth"
	"github.com/2389/taskdesk/internal/config"
	"github.com/2389/taskdesk/internal/store"
)

// starterConfig holds the answers that go into a generated config file.
type starterConfig struct {
	HTTPAddr  string
	Driver    string
	DBPath    string
	DSN       string
	JWTSecret string
	Tailscale bool
	Hostname  string
	LogLevel  string
	LogFormat string
}

func (c starterConfig) render(generatedBy string) string {
	var b strings.Builder
	b.WriteString("# taskdesk configuration\n")
	fmt.Fprintf(&b, "# Generated by taskdesk %s\n\n", generatedBy)

	b.WriteString("server:\n")
	fmt.Fprintf(&b, "  http_addr: %q\n\n", c.HTTPAddr)

	b.WriteString("database:\n")
	fmt.Fprintf(&b, "  driver: %q\n", c.Driver)
	if c.Driver == config.DriverPostgres {
		fmt.Fprintf(&b, "  dsn: %q\n\n", c.DSN)
	} else {
		fmt.Fprintf(&b, "  path: %q\n\n", c.DBPath)
	}

	b.WriteString("auth:\n")
	fmt.Fprintf(&b, "  jwt_secret: %q\n\n", c.JWTSecret)

	b.WriteString("rate_limit:\n")
	b.WriteString("  enabled: true\n")
	b.WriteString("  requests_per_minute: 10\n")
	b.WriteString("  burst: 5\n\n")

	b.WriteString("tailscale:\n")
	fmt.Fprintf(&b, "  enabled: %t\n", c.Tailscale)
	if c.Tailscale {
		fmt.Fprintf(&b, "  hostname: %q\n", c.Hostname)
	}
	b.WriteString("\n")

	b.WriteString("logging:\n")
	fmt.Fprintf(&b, "  level: %q\n", c.LogLevel)
	fmt.Fprintf(&b, "  format: %q\n", c.LogFormat)
	return b.String()
}

func generateSecret() (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(secret), nil
}

func writeConfigFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	// The file carries the signing secret.
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func runInit(args []string) error {
	f, err := parseFlags(args, "config")
	if err != nil {
		return err
	}
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("taskdesk configuration setup")
	fmt.Println("============================")
	fmt.Println()

	outputFile := prompt(reader, "Config file path", getConfigPath(f["config"]))
	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, "File exists. Overwrite?", "no")) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	secret, err := generateSecret()
	if err != nil {
		return err
	}
	sc := starterConfig{JWTSecret: secret}

	fmt.Println("\n--- Server Configuration ---")
	sc.HTTPAddr = prompt(reader, "HTTP address", "localhost:8080")

	fmt.Println("\n--- Database Configuration ---")
	sc.Driver = prompt(reader, "Driver (sqlite/postgres)", config.DriverSQLite)
	switch sc.Driver {
	case config.DriverSQLite:
		sc.DBPath = prompt(reader, "SQLite database path", filepath.Join(getDataPath(), "taskdesk.db"))
	case config.DriverPostgres:
		sc.DSN = prompt(reader, "Postgres DSN", "postgres://taskdesk@localhost:5432/taskdesk?sslmode=disable")
	default:
		return fmt.Errorf("unknown driver %q", sc.Driver)
	}

	fmt.Println("\n--- Tailscale Configuration ---")
	sc.Tailscale = yes(prompt(reader, "Enable Tailscale?", "no"))
	if sc.Tailscale {
		sc.Hostname = prompt(reader, "Tailscale hostname", "taskdesk")
		fmt.Println("  Set TS_AUTHKEY in the environment before starting the server.")
	}

	fmt.Println("\n--- Logging Configuration ---")
	sc.LogLevel = prompt(reader, "Log level (debug/info/warn/error)", "info")
	sc.LogFormat = prompt(reader, "Log format (text/json)", "text")

	if err := writeConfigFile(outputFile, sc.render("init")); err != nil {
		return err
	}
	if sc.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(sc.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nNext steps:")
	fmt.Println("  taskdesk bootstrap --email you@example.com --username you")
	fmt.Println("  taskdesk serve")
	return nil
}

// runBootstrap creates the first admin account, writing a starter config
// first when none exists. It refuses to run once any admin exists.
func runBootstrap(ctx context.Context, args []string) error {
	f, err := parseFlags(args, "config", "email", "username", "password", "first-name", "last-name")
	if err != nil {
		return err
	}

	email := store.NormalizeEmail(f["email"])
	username := strings.TrimSpace(f["username"])
	if email == "" || username == "" {
		return errors.New("--email and --username are required")
	}

	password := f["password"]
	if password == "" {
		password, err = promptNewPassword()
		if err != nil {
			return err
		}
	}
	if len(password) < auth.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
	}

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	configPath := getConfigPath(f["config"])
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		secret, err := generateSecret()
		if err != nil {
			return err
		}
		sc := starterConfig{
			HTTPAddr:  "localhost:8080",
			Driver:    config.DriverSQLite,
			DBPath:    filepath.Join(getDataPath(), "taskdesk.db"),
			JWTSecret: secret,
			LogLevel:  "info",
			LogFormat: "text",
		}
		if err := writeConfigFile(configPath, sc.render("bootstrap")); err != nil {
			return err
		}
		green.Printf("  ✓ Created config: %s\n", configPath)
	} else {
		cyan.Printf("  Using existing config: %s\n", configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := store.Open(ctx, storeOptions(cfg))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()
	green.Printf("  ✓ Database: %s\n", cfg.Database.Driver)

	admins, err := s.CountUsersByRole(ctx, store.RoleAdmin)
	if err != nil {
		return fmt.Errorf("checking admins: %w", err)
	}
	if admins > 0 {
		return fmt.Errorf("bootstrap already complete: %d admin(s) exist", admins)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u := &store.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(f["first-name"]),
		LastName:     strings.TrimSpace(f["last-name"]),
		Role:         store.RoleAdmin,
	}
	if err := s.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}
	green.Printf("  ✓ Created admin: %s\n", username)

	if err := s.AppendAuditLog(ctx, &store.AuditEntry{
		ActorUserID: u.ID,
		Action:      store.AuditBootstrapAdmin,
		TargetType:  "user",
		TargetID:    strconv.FormatInt(u.ID, 10),
		Detail:      map[string]any{"email": email, "username": username},
	}); err != nil {
		yellow.Printf("  ! Audit entry not written: %v\n", err)
	}

	tokens, err := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}
	token, err := tokens.Issue(u.ID, u.Email, u.Username)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}
	tokenPath := filepath.Join(filepath.Dir(configPath), "token")
	if err := os.WriteFile(tokenPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	green.Printf("  ✓ Saved token: %s\n", tokenPath)

	expiresAt := time.Now().Add(auth.SessionTTL)
	fmt.Println()
	green.Println("  Bootstrap complete!")
	fmt.Println()
	cyan.Println("  Admin Account")
	cyan.Println("  -------------")
	fmt.Printf("  ID:       %d\n", u.ID)
	fmt.Printf("  Email:    %s\n", u.Email)
	fmt.Printf("  Username: %s\n", u.Username)
	fmt.Printf("  Token:    %s (expires %s)\n", tokenPath, expiresAt.Format("Jan 02, 2006"))
	fmt.Println()

	yellow.Println("  Ready to go:")
	fmt.Println("    taskdesk serve         # start the server")
	fmt.Println("    taskdesk-admin me      # verify your identity")
	fmt.Println()
	return nil
}

func promptNewPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}

	fmt.Print("Admin password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func yes(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes"
}

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/tally-app/tally/internal/identity"
	"github.com/tally-app/tally/internal/infra"
	"github.com/tally-app/tally/internal/logging"
	"github.com/tally-app/tally/internal/password"
)

const defaultDBPath = "tally.db"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	dbPath := fs.String("db", defaultDBPath, "Path to SQLite database file")
	databaseURL := fs.String("database-url", "", "PostgreSQL URL (overrides -db)")
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> -email <email> [-password <password>] [-db <db_path> | -database-url <url>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user, email")
	}

	pw := *passwordFlag
	if pw == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		pw, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	// Environment fills in whatever the flags left at their defaults.
	if *databaseURL == "" {
		*databaseURL = os.Getenv("DATABASE_URL")
	}
	if path := os.Getenv("SQLITE_PATH"); path != "" && *dbPath == defaultDBPath {
		*dbPath = path
	}

	ctx := context.Background()
	repo, closeRepo, err := openRepository(ctx, *databaseURL, *dbPath)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc := identity.NewService(repo, password.NewBcrypt(*cost), nil, logging.NewWithWriter(stderr, "warn"))
	user, err := svc.Register(ctx, identity.RegisterInput{Username: *username, Email: *email, Password: pw})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Username, user.ID)
	return nil
}

func openRepository(ctx context.Context, databaseURL, dbPath string) (identity.Repository, func(), error) {
	if databaseURL != "" {
		pool, err := infra.NewPostgresPool(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return identity.NewPostgresRepository(pool), pool.Close, nil
	}
	db, err := infra.OpenSQLite(ctx, dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return identity.NewSQLiteRepository(db), func() { db.Close() }, nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Pipes and tests.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/docuchat/docuchat-server/internal/auth"
)

func main() {
	email := flag.String("email", "", "user email (required)")
	userName := flag.String("user-name", "", "display name for a newly created user")
	name := flag.String("name", "", "human-friendly token name (required)")
	env := flag.String("env", "prod", "environment prefix")
	rpm := flag.Int("rpm", 0, "per-token requests per minute (0 = server default)")
	expires := flag.String("expires", "365d", "expiry duration (e.g., 365d, 720h)")
	dbURL := flag.String("db-url", "", "database URL (overrides env)")
	flag.Parse()

	if *email == "" || *name == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "\nerror: -email and -name are required")
		os.Exit(1)
	}

	// Generate token
	rawToken, err := auth.GenerateToken(*env)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	tokenHash := auth.HashToken(rawToken)
	tokenPrefix := auth.TokenPrefix(rawToken)

	// Parse expiry
	dur, err := auth.ParseDuration(*expires)
	if err != nil {
		log.Fatalf("invalid expires: %v", err)
	}
	expiresAt := time.Now().Add(dur)

	// Connect to database
	dsn := *dbURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		host := envOrDefault("DB_HOST", "localhost")
		port := envOrDefault("DB_PORT", "5432")
		u := envOrDefault("DB_USER", "docuchat")
		pass := envOrDefault("DB_PASSWORD", "docuchat-dev")
		dbname := envOrDefault("DB_NAME", "docuchat")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", u, pass, host, port, dbname)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	// Find or create the user
	var userID string
	err = conn.QueryRow(ctx, `
		INSERT INTO users (email, name)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id
	`, *email, *userName).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to find or create user: %v", err)
	}

	// Insert token
	var tokenID string
	err = conn.QueryRow(ctx, `
		INSERT INTO access_tokens (user_id, token_hash, token_prefix, name, rpm_limit, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, userID, tokenHash, tokenPrefix, *name, nilIfZero(*rpm), expiresAt).Scan(&tokenID)
	if err != nil {
		log.Fatalf("failed to insert token: %v", err)
	}

	fmt.Println("=== DocuChat Access Token Generated ===")
	fmt.Println()
	fmt.Printf("  Token ID:     %s\n", tokenID)
	fmt.Printf("  Token Prefix: %s\n", tokenPrefix)
	fmt.Printf("  User:         %s (%s)\n", *email, userID)
	if *rpm > 0 {
		fmt.Printf("  RPM Limit:    %d\n", *rpm)
	}
	fmt.Printf("  Expires:      %s\n", expiresAt.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("  Access Token (save this — it will NOT be shown again):")
	fmt.Printf("  %s\n", rawToken)
	fmt.Println()
	fmt.Println("=======================================")
}

func nilIfZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

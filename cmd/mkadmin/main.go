// Command mkadmin grants or revokes the admin flag on a user account,
// addressed by email, directly against the database file. Admins cannot be
// minted through the web surface, so the first admin has to come from
// here.
//
// Usage:
//
//	mkadmin -db data/catalog.db -email someone@example.com
//	mkadmin -db data/catalog.db -email someone@example.com -revoke
//
// Run it while the server is stopped, or rely on the busy timeout for a
// quick one-off toggle.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

func main() {
	var (
		dbPath = flag.String("db", "data/catalog.db", "path to the SQLite database")
		email  = flag.String("email", "", "email of the user to modify")
		revoke = flag.Bool("revoke", false, "revoke admin instead of granting it")
	)
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "mkadmin: -email is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*dbPath, *email, !*revoke); err != nil {
		fmt.Fprintf(os.Stderr, "mkadmin: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, email string, admin bool) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("database %s: %w", dbPath, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("setting busy timeout: %w", err)
	}

	adminVal := 0
	if admin {
		adminVal = 1
	}

	result, err := db.Exec(`UPDATE users SET admin = ? WHERE email = ?`, adminVal, email)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no user with email %s (they must log in once first)", email)
	}

	verb := "granted to"
	if !admin {
		verb = "revoked from"
	}
	fmt.Printf("admin %s %s\n", verb, email)
	return nil
}

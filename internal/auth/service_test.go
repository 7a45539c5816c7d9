package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupUserDB creates an in-memory SQLite database with the users table.
func setupUserDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT    NOT NULL UNIQUE,
			password_hash TEXT    NOT NULL,
			role          TEXT    NOT NULL DEFAULT 'player',
			registered_by INTEGER REFERENCES users(id),
			created_at    TEXT    NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("creating users table: %v", err)
	}
	return db
}

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewUserRepository(setupUserDB(t)), testSecret, 24)
}

func TestRegister_DefaultsToPlayer(t *testing.T) {
	svc := testService(t)

	user, err := svc.Register(context.Background(), "bob", "hunter2hunter2", "", nil)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != RolePlayer {
		t.Errorf("Role = %q, want player", user.Role)
	}
	if user.ID == 0 {
		t.Error("ID should be assigned")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "pw-one-long-enough", RolePlayer, nil); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(ctx, "alice", "pw-two-long-enough", RolePlayer, nil)
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("second Register() err = %v, want ErrUsernameExists", err)
	}

	// First registration still retrievable.
	user, _, err := svc.Authenticate(ctx, "alice", "pw-one-long-enough")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q", user.Username)
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bad name!", "pw", "", nil); !errors.Is(err, ErrInvalidUsername) {
		t.Errorf("bad username: err = %v, want ErrInvalidUsername", err)
	}
	if _, err := svc.Register(ctx, "carol", "pw", "wizard", nil); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("bad role: err = %v, want ErrInvalidRole", err)
	}
}

func TestAuthenticate_DoesNotDistinguishMismatch(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dave", "right-password", RolePlayer, nil); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, _, errWrongPassword := svc.Authenticate(ctx, "dave", "wrong-password")
	_, _, errNoUser := svc.Authenticate(ctx, "nobody", "whatever")

	if !errors.Is(errWrongPassword, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v", errWrongPassword)
	}
	if !errors.Is(errNoUser, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v", errNoUser)
	}
	if errWrongPassword.Error() != errNoUser.Error() {
		t.Error("mismatch errors must be indistinguishable")
	}
}

func TestAuthenticate_IssuesValidToken(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "erin", "super-secret-pw", RoleGM, nil)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, token, err := svc.Authenticate(ctx, "erin", "super-secret-pw")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	p, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if p.UserID != reg.ID || p.Role != RoleGM {
		t.Errorf("principal = %+v", p)
	}
}

func TestSeedGM_CreatesOnceOnly(t *testing.T) {
	db := setupUserDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	logger := slog.Default()

	password, err := SeedGM(ctx, repo, "admin", "", logger)
	if err != nil {
		t.Fatalf("SeedGM() error = %v", err)
	}
	if password == "" {
		t.Fatal("generated password should be returned")
	}

	gm, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if gm.Role != RoleGM {
		t.Errorf("seeded role = %q, want gm", gm.Role)
	}

	// Second call is a no-op.
	again, err := SeedGM(ctx, repo, "admin", "", logger)
	if err != nil {
		t.Fatalf("second SeedGM() error = %v", err)
	}
	if again != "" {
		t.Error("second SeedGM() should skip")
	}
	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("user count = %d, want 1", count)
	}
}

func TestSeedGM_UsesProvidedPassword(t *testing.T) {
	repo := NewUserRepository(setupUserDB(t))
	ctx := context.Background()

	if _, err := SeedGM(ctx, repo, "gamemaster", "chosen-password", slog.Default()); err != nil {
		t.Fatalf("SeedGM() error = %v", err)
	}

	gm, err := repo.GetByUsername(ctx, "gamemaster")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	ok, err := VerifyPassword("chosen-password", gm.PasswordHash)
	if err != nil || !ok {
		t.Errorf("VerifyPassword() = %v, %v", ok, err)
	}
}

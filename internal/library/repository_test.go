package library

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupLibraryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE token_folders (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id INTEGER REFERENCES token_folders(id),
		name      TEXT NOT NULL
	);
	CREATE TABLE token_assets (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		folder_id INTEGER NOT NULL REFERENCES token_folders(id) ON DELETE CASCADE,
		name      TEXT NOT NULL,
		path      TEXT NOT NULL,
		width     INTEGER,
		height    INTEGER
	);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

func TestFolders_TreeLifecycle(t *testing.T) {
	repo := NewSQLiteRepository(setupLibraryDB(t))
	ctx := context.Background()

	root := &Folder{Name: "Monsters"}
	if err := repo.CreateFolder(ctx, root); err != nil {
		t.Fatalf("CreateFolder(root) error = %v", err)
	}
	child := &Folder{ParentID: &root.ID, Name: "Goblins"}
	if err := repo.CreateFolder(ctx, child); err != nil {
		t.Fatalf("CreateFolder(child) error = %v", err)
	}

	folders, err := repo.ListFolders(ctx)
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("folder count = %d, want 2", len(folders))
	}
	if folders[1].ParentID == nil || *folders[1].ParentID != root.ID {
		t.Errorf("child parent = %v, want %d", folders[1].ParentID, root.ID)
	}

	// A folder with children cannot be deleted.
	if err := repo.DeleteFolder(ctx, root.ID); !errors.Is(err, ErrFolderNotEmpty) {
		t.Errorf("delete non-empty folder error = %v, want ErrFolderNotEmpty", err)
	}
	if err := repo.DeleteFolder(ctx, child.ID); err != nil {
		t.Errorf("delete leaf folder error = %v", err)
	}
	if err := repo.DeleteFolder(ctx, root.ID); err != nil {
		t.Errorf("delete emptied root error = %v", err)
	}
}

func TestCreateFolder_UnknownParent(t *testing.T) {
	repo := NewSQLiteRepository(setupLibraryDB(t))
	missing := int64(999)
	f := &Folder{ParentID: &missing, Name: "Orphans"}
	if err := repo.CreateFolder(context.Background(), f); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("err = %v, want ErrFolderNotFound", err)
	}
}

func TestAssets_Lifecycle(t *testing.T) {
	repo := NewSQLiteRepository(setupLibraryDB(t))
	ctx := context.Background()

	folder := &Folder{Name: "Monsters"}
	if err := repo.CreateFolder(ctx, folder); err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}

	w, h := 140, 140
	a := &Asset{FolderID: folder.ID, Name: "Goblin", Path: "uploads/goblin.png", Width: &w, Height: &h}
	if err := repo.CreateAsset(ctx, a); err != nil {
		t.Fatalf("CreateAsset() error = %v", err)
	}
	if a.ID == 0 {
		t.Fatal("asset ID should be assigned")
	}

	assets, err := repo.ListAssets(ctx, folder.ID)
	if err != nil {
		t.Fatalf("ListAssets() error = %v", err)
	}
	if len(assets) != 1 || assets[0].Name != "Goblin" {
		t.Fatalf("assets = %+v", assets)
	}
	if assets[0].Width == nil || *assets[0].Width != 140 {
		t.Errorf("width = %v, want 140", assets[0].Width)
	}

	if err := repo.DeleteAsset(ctx, a.ID); err != nil {
		t.Errorf("DeleteAsset() error = %v", err)
	}
	if err := repo.DeleteAsset(ctx, a.ID); !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("double delete error = %v, want ErrAssetNotFound", err)
	}
}

func TestCreateAsset_UnknownFolder(t *testing.T) {
	repo := NewSQLiteRepository(setupLibraryDB(t))
	a := &Asset{FolderID: 42, Name: "Stray", Path: "uploads/stray.png"}
	if err := repo.CreateAsset(context.Background(), a); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("err = %v, want ErrFolderNotFound", err)
	}
}

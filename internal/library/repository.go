package library

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Repository persists the asset folder tree and its assets.
type Repository interface {
	CreateFolder(ctx context.Context, f *Folder) error
	ListFolders(ctx context.Context) ([]Folder, error)
	DeleteFolder(ctx context.Context, id int64) error

	CreateAsset(ctx context.Context, a *Asset) error
	ListAssets(ctx context.Context, folderID int64) ([]Asset, error)
	DeleteAsset(ctx context.Context, id int64) error
}

// SQLiteRepository is the SQLite-backed Repository.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a library repository on the given database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateFolder stores a folder and fills in its ID. The parent, when
// set, must exist.
func (r *SQLiteRepository) CreateFolder(ctx context.Context, f *Folder) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO token_folders (parent_id, name) VALUES (?, ?)`,
		f.ParentID, f.Name,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrFolderNotFound
		}
		return fmt.Errorf("inserting token folder: %w", err)
	}
	f.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading folder id: %w", err)
	}
	return nil
}

// ListFolders returns every folder; callers rebuild the tree from the
// parent references.
func (r *SQLiteRepository) ListFolders(ctx context.Context) ([]Folder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, parent_id, name FROM token_folders ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing token folders: %w", err)
	}
	defer rows.Close()

	folders := []Folder{}
	for rows.Next() {
		var f Folder
		var parent sql.NullInt64
		if err := rows.Scan(&f.ID, &parent, &f.Name); err != nil {
			return nil, fmt.Errorf("scanning token folder: %w", err)
		}
		if parent.Valid {
			f.ParentID = &parent.Int64
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// DeleteFolder removes an empty folder. Folders still holding child
// folders are refused; assets cascade with the folder.
func (r *SQLiteRepository) DeleteFolder(ctx context.Context, id int64) error {
	var children int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM token_folders WHERE parent_id = ?`, id,
	).Scan(&children)
	if err != nil {
		return fmt.Errorf("checking folder children: %w", err)
	}
	if children > 0 {
		return ErrFolderNotEmpty
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM token_folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting token folder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return ErrFolderNotFound
	}
	return nil
}

// CreateAsset stores an asset and fills in its ID.
func (r *SQLiteRepository) CreateAsset(ctx context.Context, a *Asset) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO token_assets (folder_id, name, path, width, height) VALUES (?, ?, ?, ?, ?)`,
		a.FolderID, a.Name, a.Path, a.Width, a.Height,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrFolderNotFound
		}
		return fmt.Errorf("inserting token asset: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading asset id: %w", err)
	}
	return nil
}

// ListAssets returns the assets in one folder.
func (r *SQLiteRepository) ListAssets(ctx context.Context, folderID int64) ([]Asset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, folder_id, name, path, width, height FROM token_assets
		 WHERE folder_id = ? ORDER BY name`,
		folderID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing token assets: %w", err)
	}
	defer rows.Close()

	assets := []Asset{}
	for rows.Next() {
		var a Asset
		var width, height sql.NullInt64
		if err := rows.Scan(&a.ID, &a.FolderID, &a.Name, &a.Path, &width, &height); err != nil {
			return nil, fmt.Errorf("scanning token asset: %w", err)
		}
		if width.Valid {
			w := int(width.Int64)
			a.Width = &w
		}
		if height.Valid {
			h := int(height.Int64)
			a.Height = &h
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// DeleteAsset removes an asset record. The backing file is the caller's
// concern.
func (r *SQLiteRepository) DeleteAsset(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM token_assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting token asset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

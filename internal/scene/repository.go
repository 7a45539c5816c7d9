package scene

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Repository defines the interface for scene persistence.
type Repository interface {
	CreateScene(ctx context.Context, name string, ownerID int64) (*Scene, error)
	ListScenes(ctx context.Context, activeOnly bool) ([]Scene, error)
	GetScene(ctx context.Context, id int64) (*Scene, error)
	GetSceneDetail(ctx context.Context, id int64) (*SceneDetail, error)
	Activate(ctx context.Context, id int64) (*Scene, error)
	GetLayer(ctx context.Context, id int64) (*Layer, error)
	CreateToken(ctx context.Context, token *Token) error
	MoveToken(ctx context.Context, move TokenMove) error
	CreateDrawing(ctx context.Context, drawing *Drawing) error
	CreateText(ctx context.Context, text *TextElement) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed scene repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sceneColumns = "id, name, thumbnail_path, active, owner_id, background_layer_id, foreground_layer_id"

// CreateScene inserts a scene and its three default layers in one
// transaction: Background (type background, order 0), Player (type player,
// order 1), Foreground (type custom, order 2). The scene's background and
// foreground layer references are wired to the first and third.
func (r *SQLiteRepository) CreateScene(ctx context.Context, name string, ownerID int64) (*Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidScene)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx,
		"INSERT INTO scenes (name, active, owner_id) VALUES (?, 0, ?)",
		name, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting scene: %w", err)
	}
	sceneID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading scene id: %w", err)
	}

	defaults := []struct {
		name  string
		typ   LayerType
		order int
	}{
		{"Background", LayerBackground, 0},
		{"Player", LayerPlayer, 1},
		{"Foreground", LayerCustom, 2},
	}

	layerIDs := make([]int64, len(defaults))
	for i, d := range defaults {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO layers (scene_id, name, order_index, type, visible) VALUES (?, ?, ?, ?, 1)",
			sceneID, d.name, d.order, string(d.typ),
		)
		if err != nil {
			return nil, fmt.Errorf("inserting %s layer: %w", d.name, err)
		}
		layerIDs[i], err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading layer id: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE scenes SET background_layer_id = ?, foreground_layer_id = ? WHERE id = ?",
		layerIDs[0], layerIDs[2], sceneID,
	); err != nil {
		return nil, fmt.Errorf("wiring layer references: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing scene: %w", err)
	}

	return &Scene{
		ID:                sceneID,
		Name:              name,
		OwnerID:           ownerID,
		BackgroundLayerID: &layerIDs[0],
		ForegroundLayerID: &layerIDs[2],
	}, nil
}

// ListScenes returns all scenes, or only active ones when activeOnly is set.
func (r *SQLiteRepository) ListScenes(ctx context.Context, activeOnly bool) ([]Scene, error) {
	query := "SELECT " + sceneColumns + " FROM scenes ORDER BY id ASC"
	if activeOnly {
		query = "SELECT " + sceneColumns + " FROM scenes WHERE active = 1 ORDER BY id ASC"
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing scenes: %w", err)
	}
	defer rows.Close()

	scenes := []Scene{}
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scenes: %w", err)
	}
	return scenes, nil
}

// GetScene retrieves a scene header by id.
func (r *SQLiteRepository) GetScene(ctx context.Context, id int64) (*Scene, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sceneColumns+" FROM scenes WHERE id = ?", id)
	return scanScene(row)
}

// GetSceneDetail retrieves a scene with its full layer stack and all child
// elements, layers ordered by order_index.
func (r *SQLiteRepository) GetSceneDetail(ctx context.Context, id int64) (*SceneDetail, error) {
	s, err := r.GetScene(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, scene_id, name, order_index, type, visible
		 FROM layers WHERE scene_id = ? ORDER BY order_index ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("listing layers: %w", err)
	}
	defer rows.Close()

	detail := &SceneDetail{Scene: *s, Layers: []LayerDetail{}}
	for rows.Next() {
		var l Layer
		var typ string
		var visible int
		if err := rows.Scan(&l.ID, &l.SceneID, &l.Name, &l.OrderIndex, &typ, &visible); err != nil {
			return nil, fmt.Errorf("scanning layer: %w", err)
		}
		l.Type = LayerType(typ)
		l.Visible = visible != 0
		detail.Layers = append(detail.Layers, LayerDetail{Layer: l})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating layers: %w", err)
	}

	for i := range detail.Layers {
		ld := &detail.Layers[i]
		if ld.Tokens, err = r.layerTokens(ctx, ld.ID); err != nil {
			return nil, err
		}
		if ld.Drawings, err = r.layerDrawings(ctx, ld.ID); err != nil {
			return nil, err
		}
		if ld.TextElements, err = r.layerTexts(ctx, ld.ID); err != nil {
			return nil, err
		}
	}

	return detail, nil
}

// Activate marks the scene active and clears the flag on every other
// scene, in one transaction. At most one scene is active afterwards.
func (r *SQLiteRepository) Activate(ctx context.Context, id int64) (*Scene, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "UPDATE scenes SET active = 0"); err != nil {
		return nil, fmt.Errorf("deactivating scenes: %w", err)
	}

	result, err := tx.ExecContext(ctx, "UPDATE scenes SET active = 1 WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("activating scene: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking activation: %w", err)
	}
	if affected == 0 {
		return nil, ErrSceneNotFound
	}

	row := tx.QueryRowContext(ctx, "SELECT "+sceneColumns+" FROM scenes WHERE id = ?", id)
	s, err := scanScene(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing activation: %w", err)
	}
	return s, nil
}

// GetLayer retrieves a layer by id.
func (r *SQLiteRepository) GetLayer(ctx context.Context, id int64) (*Layer, error) {
	var l Layer
	var typ string
	var visible int
	err := r.db.QueryRowContext(ctx,
		"SELECT id, scene_id, name, order_index, type, visible FROM layers WHERE id = ?", id,
	).Scan(&l.ID, &l.SceneID, &l.Name, &l.OrderIndex, &typ, &visible)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLayerNotFound
		}
		return nil, fmt.Errorf("getting layer: %w", err)
	}
	l.Type = LayerType(typ)
	l.Visible = visible != 0
	return &l, nil
}

// CreateToken inserts a token and fills in the generated ID.
func (r *SQLiteRepository) CreateToken(ctx context.Context, token *Token) error {
	metadata, err := marshalMetadata(token.Metadata)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (layer_id, image_path, x, y, scale, rotation, z_index, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		token.LayerID, token.ImagePath, token.X, token.Y, token.Scale,
		token.Rotation, token.ZIndex, metadata,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrLayerNotFound
		}
		return fmt.Errorf("inserting token: %w", err)
	}

	token.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading token id: %w", err)
	}
	return nil
}

// MoveToken updates a token's position. Rotation and scale are updated
// only when present in the move; absent fields keep their stored values.
// Fails with ErrTokenNotFound for an unknown id.
func (r *SQLiteRepository) MoveToken(ctx context.Context, move TokenMove) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx,
		"UPDATE tokens SET x = ?, y = ? WHERE id = ?",
		move.X, move.Y, move.TokenID,
	)
	if err != nil {
		return fmt.Errorf("moving token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking move: %w", err)
	}
	if affected == 0 {
		return ErrTokenNotFound
	}

	if move.Rotation != nil {
		if _, err := tx.ExecContext(ctx,
			"UPDATE tokens SET rotation = ? WHERE id = ?", *move.Rotation, move.TokenID,
		); err != nil {
			return fmt.Errorf("rotating token: %w", err)
		}
	}
	if move.Scale != nil {
		if _, err := tx.ExecContext(ctx,
			"UPDATE tokens SET scale = ? WHERE id = ?", *move.Scale, move.TokenID,
		); err != nil {
			return fmt.Errorf("scaling token: %w", err)
		}
	}

	return tx.Commit()
}

// CreateDrawing inserts a drawing and fills in the generated ID.
func (r *SQLiteRepository) CreateDrawing(ctx context.Context, drawing *Drawing) error {
	points, err := json.Marshal(drawing.Points)
	if err != nil {
		return fmt.Errorf("encoding points: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO drawings (layer_id, type, points, color, stroke_width)
		 VALUES (?, ?, ?, ?, ?)`,
		drawing.LayerID, string(drawing.Type), string(points), drawing.Color, drawing.StrokeWidth,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrLayerNotFound
		}
		return fmt.Errorf("inserting drawing: %w", err)
	}

	drawing.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading drawing id: %w", err)
	}
	return nil
}

// CreateText inserts a text element and fills in the generated ID.
func (r *SQLiteRepository) CreateText(ctx context.Context, text *TextElement) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO text_elements (layer_id, x, y, text, font_size, color, style)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		text.LayerID, text.X, text.Y, text.Text, text.FontSize, text.Color, string(text.Style),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrLayerNotFound
		}
		return fmt.Errorf("inserting text element: %w", err)
	}

	text.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading text element id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) layerTokens(ctx context.Context, layerID int64) ([]Token, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, layer_id, image_path, x, y, scale, rotation, z_index, metadata
		 FROM tokens WHERE layer_id = ? ORDER BY z_index ASC, id ASC`, layerID)
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}
	defer rows.Close()

	tokens := []Token{}
	for rows.Next() {
		var tok Token
		var metadata sql.NullString
		if err := rows.Scan(&tok.ID, &tok.LayerID, &tok.ImagePath, &tok.X, &tok.Y,
			&tok.Scale, &tok.Rotation, &tok.ZIndex, &metadata); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &tok.Metadata); err != nil {
				return nil, fmt.Errorf("decoding token metadata: %w", err)
			}
		}
		tokens = append(tokens, tok)
	}
	return tokens, rows.Err()
}

func (r *SQLiteRepository) layerDrawings(ctx context.Context, layerID int64) ([]Drawing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, layer_id, type, points, color, stroke_width
		 FROM drawings WHERE layer_id = ? ORDER BY id ASC`, layerID)
	if err != nil {
		return nil, fmt.Errorf("listing drawings: %w", err)
	}
	defer rows.Close()

	drawings := []Drawing{}
	for rows.Next() {
		var d Drawing
		var typ, points string
		if err := rows.Scan(&d.ID, &d.LayerID, &typ, &points, &d.Color, &d.StrokeWidth); err != nil {
			return nil, fmt.Errorf("scanning drawing: %w", err)
		}
		d.Type = DrawingType(typ)
		if err := json.Unmarshal([]byte(points), &d.Points); err != nil {
			return nil, fmt.Errorf("decoding drawing points: %w", err)
		}
		drawings = append(drawings, d)
	}
	return drawings, rows.Err()
}

func (r *SQLiteRepository) layerTexts(ctx context.Context, layerID int64) ([]TextElement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, layer_id, x, y, text, font_size, color, style
		 FROM text_elements WHERE layer_id = ? ORDER BY id ASC`, layerID)
	if err != nil {
		return nil, fmt.Errorf("listing text elements: %w", err)
	}
	defer rows.Close()

	texts := []TextElement{}
	for rows.Next() {
		var te TextElement
		var style string
		if err := rows.Scan(&te.ID, &te.LayerID, &te.X, &te.Y, &te.Text,
			&te.FontSize, &te.Color, &style); err != nil {
			return nil, fmt.Errorf("scanning text element: %w", err)
		}
		te.Style = TextStyle(style)
		texts = append(texts, te)
	}
	return texts, rows.Err()
}

func scanScene(s interface{ Scan(...any) error }) (*Scene, error) {
	var sc Scene
	var thumbnail sql.NullString
	var active int
	var background, foreground sql.NullInt64

	err := s.Scan(&sc.ID, &sc.Name, &thumbnail, &active, &sc.OwnerID, &background, &foreground)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSceneNotFound
		}
		return nil, fmt.Errorf("scanning scene: %w", err)
	}

	sc.Active = active != 0
	if thumbnail.Valid {
		sc.ThumbnailPath = thumbnail.String
	}
	if background.Valid {
		sc.BackgroundLayerID = &background.Int64
	}
	if foreground.Valid {
		sc.ForegroundLayerID = &foreground.Int64
	}
	return &sc, nil
}

func marshalMetadata(m map[string]any) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding metadata: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// isForeignKeyViolation checks if a SQLite error is a FOREIGN KEY constraint violation.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

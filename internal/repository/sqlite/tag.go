package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/model"
	"github.com/sakif/catalog-server/internal/repository"
)

// TagStore implements repository.TagRepository.
type TagStore struct {
	db *DB
}

// NewTagStore creates a TagStore backed by db.
func NewTagStore(db *DB) *TagStore {
	return &TagStore{db: db}
}

var _ repository.TagRepository = (*TagStore)(nil)

// Create inserts a new tag. A name collision with an existing tag is
// reported as apperror.ErrDuplicateName; the insert is atomic, so nothing
// is written in that case.
func (s *TagStore) Create(ctx context.Context, tag *model.Tag) error {
	tag.ID = xid.New().String()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name, user_id) VALUES (?, ?, ?)`,
		tag.ID, tag.Name, tag.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateName("name", tag.Name)
		}
		return fmt.Errorf("sqlite: inserting tag %q: %w", tag.Name, err)
	}

	return nil
}

// GetByID retrieves a tag by id.
func (s *TagStore) GetByID(ctx context.Context, id string) (*model.Tag, error) {
	var t model.Tag
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, user_id FROM tags WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("tag", id)
		}
		return nil, fmt.Errorf("sqlite: getting tag %s: %w", id, err)
	}
	return &t, nil
}

// GetByName resolves a tag by its name and requires exactly one match.
// Zero matches is the normal miss; more than one can only mean the UNIQUE
// constraint was bypassed (data corruption); both are reported as the same
// not-found error so callers map them to one response.
func (s *TagStore) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, user_id FROM tags WHERE name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting tag by name %q: %w", name, err)
	}
	defer rows.Close()

	var matches []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.UserID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		matches = append(matches, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	if len(matches) != 1 {
		return nil, apperror.NotFound("tag", name)
	}
	return &matches[0], nil
}

// List returns all tags ordered by name.
func (s *TagStore) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, user_id FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.UserID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return tags, nil
}

// Rename changes a tag's name. A collision with a different tag's name is
// reported as apperror.ErrDuplicateName and leaves the row unchanged; the
// owning user id never changes on rename.
func (s *TagStore) Rename(ctx context.Context, id, name string) error {
	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE tags SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateName("name", name)
		}
		return fmt.Errorf("sqlite: renaming tag %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("tag", id)
	}

	return nil
}

// Delete removes the tag and every item association referencing it, in one
// transaction. The associated items themselves are untouched; the cascade
// is deliberate and explicit, not left to the schema.
func (s *TagStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tag delete: %w", err)
	}
	defer tx.Rollback()

	// Association rows go first: foreign keys are enforced per statement,
	// so deleting the tag while item_tags still references it would fail.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM item_tags WHERE tag_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting tag %s associations: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting tag %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("tag", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing tag delete: %w", err)
	}
	return nil
}

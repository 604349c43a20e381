package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/model"
	"github.com/sakif/catalog-server/internal/repository"
)

// ItemStore implements repository.ItemRepository.
type ItemStore struct {
	db *DB
}

// NewItemStore creates an ItemStore backed by db.
func NewItemStore(db *DB) *ItemStore {
	return &ItemStore{db: db}
}

var _ repository.ItemRepository = (*ItemStore)(nil)

const itemColumns = `id, name, description, picture_url, user_id, created_on, updated_on`

// Create inserts the item and its tag associations in one transaction.
//
// The association insert is an INSERT ... SELECT against the tags table, so
// only ids that exist at write time produce rows; unknown ids are silently
// dropped rather than erroring, matching the "an item's tag set contains
// only tags that exist" invariant.
func (s *ItemStore) Create(ctx context.Context, item *model.Item, tagIDs []string) error {
	item.ID = xid.New().String()
	now := time.Now().UTC()
	item.CreatedOn = now
	item.UpdatedOn = now

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning item create: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO items (id, name, description, picture_url, user_id, created_on, updated_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Name,
		item.Description,
		item.PictureURL,
		item.UserID,
		item.CreatedOn,
		item.UpdatedOn,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting item %q: %w", item.Name, err)
	}

	if err := replaceItemTags(ctx, tx, item.ID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing item create: %w", err)
	}

	return s.loadItemTags(ctx, item)
}

// GetByID retrieves a single item with its tag set.
func (s *ItemStore) GetByID(ctx context.Context, id string) (*model.Item, error) {
	var it model.Item
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	).Scan(
		&it.ID, &it.Name, &it.Description, &it.PictureURL,
		&it.UserID, &it.CreatedOn, &it.UpdatedOn,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("item", id)
		}
		return nil, fmt.Errorf("sqlite: getting item %s: %w", id, err)
	}

	if err := s.loadItemTags(ctx, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// GetByNameAndID resolves an item addressed by its name-id pair (the form
// used in catalog URLs) and requires exactly one match, treating zero and
// multiple matches alike as not found.
func (s *ItemStore) GetByNameAndID(ctx context.Context, name, id string) (*model.Item, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE name = ? AND id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting item %q-%s: %w", name, id, err)
	}
	defer rows.Close()

	var matches []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(
			&it.ID, &it.Name, &it.Description, &it.PictureURL,
			&it.UserID, &it.CreatedOn, &it.UpdatedOn,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning item row: %w", err)
		}
		matches = append(matches, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating items: %w", err)
	}

	if len(matches) != 1 {
		return nil, apperror.NotFound("item", name)
	}

	it := matches[0]
	if err := s.loadItemTags(ctx, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// List returns all items, newest first, each with its tag set.
func (s *ItemStore) List(ctx context.Context) ([]model.Item, error) {
	return s.listItems(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_on DESC`)
}

// ListByTag returns the items carrying the given tag, newest first.
func (s *ItemStore) ListByTag(ctx context.Context, tagID string) ([]model.Item, error) {
	return s.listItems(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE id IN (SELECT item_id FROM item_tags WHERE tag_id = ?)
		 ORDER BY created_on DESC`, tagID)
}

// ListRecent returns up to limit items ordered by most recent update.
// It feeds the Atom feed.
func (s *ItemStore) ListRecent(ctx context.Context, limit int) ([]model.Item, error) {
	return s.listItems(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY updated_on DESC LIMIT ?`, limit)
}

func (s *ItemStore) listItems(ctx context.Context, query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(
			&it.ID, &it.Name, &it.Description, &it.PictureURL,
			&it.UserID, &it.CreatedOn, &it.UpdatedOn,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating items: %w", err)
	}

	if err := s.attachTags(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update rewrites the item's mutable fields, replaces its tag set, and
// refreshes updated_on, all in one transaction. created_on is immutable.
func (s *ItemStore) Update(ctx context.Context, item *model.Item, tagIDs []string) error {
	item.UpdatedOn = time.Now().UTC()

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning item update: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, picture_url = ?, updated_on = ?
		 WHERE id = ?`,
		item.Name,
		item.Description,
		item.PictureURL,
		item.UpdatedOn,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating item %s: %w", item.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("item", item.ID)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM item_tags WHERE item_id = ?`, item.ID); err != nil {
		return fmt.Errorf("sqlite: clearing item %s associations: %w", item.ID, err)
	}
	if err := replaceItemTags(ctx, tx, item.ID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing item update: %w", err)
	}

	return s.loadItemTags(ctx, item)
}

// Delete removes the item and its tag associations in one transaction.
func (s *ItemStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning item delete: %w", err)
	}
	defer tx.Rollback()

	// Association rows go first: foreign keys are enforced per statement,
	// so deleting the item while item_tags still references it would fail.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM item_tags WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting item %s associations: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting item %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("item", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing item delete: %w", err)
	}
	return nil
}

// replaceItemTags inserts association rows for the given tag ids, keeping
// only ids that resolve to an existing tag.
func replaceItemTags(ctx context.Context, tx *sql.Tx, itemID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	args := make([]any, 0, len(tagIDs)+1)
	args = append(args, itemID)
	for _, id := range tagIDs {
		args = append(args, id)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO item_tags (item_id, tag_id)
		 SELECT ?, id FROM tags WHERE id IN `+inPlaceholders(len(tagIDs)),
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: associating tags with item %s: %w", itemID, err)
	}
	return nil
}

// loadItemTags fills item.Tags from the association table.
func (s *ItemStore) loadItemTags(ctx context.Context, item *model.Item) error {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT t.id, t.name, t.user_id
		 FROM tags t
		 JOIN item_tags it ON it.tag_id = t.id
		 WHERE it.item_id = ?
		 ORDER BY t.name ASC`,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading tags for item %s: %w", item.ID, err)
	}
	defer rows.Close()

	item.Tags = nil
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.UserID); err != nil {
			return fmt.Errorf("sqlite: scanning item tag row: %w", err)
		}
		item.Tags = append(item.Tags, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating item tags: %w", err)
	}
	return nil
}

// attachTags fills Tags for a slice of items with a single association query.
func (s *ItemStore) attachTags(ctx context.Context, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}

	byID := make(map[string]*model.Item, len(items))
	args := make([]any, 0, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
		args = append(args, items[i].ID)
	}

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT it.item_id, t.id, t.name, t.user_id
		 FROM tags t
		 JOIN item_tags it ON it.tag_id = t.id
		 WHERE it.item_id IN `+inPlaceholders(len(items))+`
		 ORDER BY t.name ASC`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading item tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID string
		var t model.Tag
		if err := rows.Scan(&itemID, &t.ID, &t.Name, &t.UserID); err != nil {
			return fmt.Errorf("sqlite: scanning item tag row: %w", err)
		}
		if it, ok := byID[itemID]; ok {
			it.Tags = append(it.Tags, t)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating item tags: %w", err)
	}
	return nil
}

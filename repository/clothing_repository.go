package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"armario-outfits/apperr"
	"armario-outfits/models"
	"armario-outfits/utils"
)

// ClothingRepository handles database operations for clothing items
type ClothingRepository struct {
	db *sql.DB
}

// NewClothingRepository creates a new ClothingRepository
func NewClothingRepository(db *sql.DB) *ClothingRepository {
	return &ClothingRepository{db: db}
}

// Ensure ClothingRepository implements ClothingRepositoryInterface
var _ ClothingRepositoryInterface = (*ClothingRepository)(nil)

const clothingColumns = `id, owner_id, name, category, size, color, brand, image_url, thumbnail_url, wear_count, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClothingItem(row rowScanner) (*models.ClothingItem, error) {
	var item models.ClothingItem
	var createdAt time.Time
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Name,
		&item.Category,
		&item.Size,
		&item.Color,
		&item.Brand,
		&item.ImageURL,
		&item.ThumbnailURL,
		&item.WearCount,
		&item.Status,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	item.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return &item, nil
}

// Insert creates a clothing item and fills in its id, status and created_at
func (r *ClothingRepository) Insert(ctx context.Context, item *models.ClothingItem) error {
	log.Debugf("💾 Insert clothing item: owner=%s, name=%s", item.OwnerID, item.Name)

	item.Size = utils.NormalizeSize(item.Size)
	item.Color = utils.MapColorToName(item.Color)
	if item.Status == "" {
		item.Status = models.StatusClean
	}

	query := `
		INSERT INTO clothing_items (owner_id, name, category, size, color, brand, image_url, thumbnail_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + clothingColumns

	saved, err := scanClothingItem(r.db.QueryRowContext(ctx, query,
		item.OwnerID, item.Name, item.Category, item.Size, item.Color, item.Brand,
		item.ImageURL, item.ThumbnailURL, item.Status,
	))
	if err != nil {
		log.Errorf("❌ Error inserting clothing item: %v", err)
		return fmt.Errorf("failed to insert clothing item: %w", err)
	}
	*item = *saved

	log.Infof("✓ Clothing item created: id=%d, owner=%s", item.ID, item.OwnerID)
	return nil
}

// ListByOwner retrieves every clothing item of a user. Filtering and sorting
// happen in the service over the full list.
func (r *ClothingRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.ClothingItem, error) {
	query := `SELECT ` + clothingColumns + ` FROM clothing_items WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Errorf("❌ Error listing clothing items: %v", err)
		return nil, fmt.Errorf("failed to list clothing items: %w", err)
	}
	defer rows.Close()

	items := []models.ClothingItem{}
	for rows.Next() {
		item, err := scanClothingItem(rows)
		if err != nil {
			log.Errorf("❌ Error scanning clothing item: %v", err)
			continue
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clothing items: %w", err)
	}

	log.Debugf("✓ Listed %d clothing items for %s", len(items), ownerID)
	return items, nil
}

// GetByID retrieves one of the user's clothing items
func (r *ClothingRepository) GetByID(ctx context.Context, ownerID string, id int64) (*models.ClothingItem, error) {
	query := `SELECT ` + clothingColumns + ` FROM clothing_items WHERE owner_id = $1 AND id = $2`
	item, err := scanClothingItem(r.db.QueryRowContext(ctx, query, ownerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound, "clothing item %d does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clothing item: %w", err)
	}
	return item, nil
}

// GetByIDs retrieves the user's clothing items with the given ids, in the
// order the ids were given. Unknown ids are skipped.
func (r *ClothingRepository) GetByIDs(ctx context.Context, ownerID string, ids []int64) ([]models.ClothingItem, error) {
	if len(ids) == 0 {
		return []models.ClothingItem{}, nil
	}

	query := `
		SELECT ` + clothingColumns + `
		FROM clothing_items
		WHERE owner_id = $1 AND id = ANY($2)
		ORDER BY array_position($2, id)`

	rows, err := r.db.QueryContext(ctx, query, ownerID, ids)
	if err != nil {
		log.Errorf("❌ Error fetching clothing items %v: %v", ids, err)
		return nil, fmt.Errorf("failed to get clothing items: %w", err)
	}
	defer rows.Close()

	items := make([]models.ClothingItem, 0, len(ids))
	for rows.Next() {
		item, err := scanClothingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clothing item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clothing items: %w", err)
	}
	return items, nil
}

// Update applies the non-nil fields of req
func (r *ClothingRepository) Update(ctx context.Context, ownerID string, id int64, req models.UpdateClothingItemRequest) (*models.ClothingItem, error) {
	var sets []string
	var args []interface{}
	argIndex := 1

	add := func(column string, value *string, normalize func(string) string) {
		if value == nil {
			return
		}
		v := strings.TrimSpace(*value)
		if normalize != nil {
			v = normalize(v)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, v)
		argIndex++
	}
	add("name", req.Name, nil)
	add("category", req.Category, utils.MapCategory)
	add("size", req.Size, utils.NormalizeSize)
	add("color", req.Color, utils.MapColorToName)
	add("brand", req.Brand, nil)

	if len(sets) == 0 {
		return r.GetByID(ctx, ownerID, id)
	}

	query := fmt.Sprintf(`UPDATE clothing_items SET %s WHERE owner_id = $%d AND id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argIndex, argIndex+1, clothingColumns)
	args = append(args, ownerID, id)

	item, err := scanClothingItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound, "clothing item %d does not exist", id)
	}
	if err != nil {
		log.Errorf("❌ Error updating clothing item %d: %v", id, err)
		return nil, fmt.Errorf("failed to update clothing item: %w", err)
	}

	log.Infof("✓ Clothing item %d updated (%d fields)", id, len(sets))
	return item, nil
}

// Delete removes a clothing item and returns what was removed so the caller
// can clean up its images
func (r *ClothingRepository) Delete(ctx context.Context, ownerID string, id int64) (*models.ClothingItem, error) {
	query := `DELETE FROM clothing_items WHERE owner_id = $1 AND id = $2 RETURNING ` + clothingColumns
	item, err := scanClothingItem(r.db.QueryRowContext(ctx, query, ownerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound, "clothing item %d does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete clothing item: %w", err)
	}
	log.Infof("🗑️  Clothing item %d deleted", id)
	return item, nil
}

// IncrementWear adds one to the item's wear count
func (r *ClothingRepository) IncrementWear(ctx context.Context, ownerID string, id int64) (*models.ClothingItem, error) {
	query := `
		UPDATE clothing_items SET wear_count = wear_count + 1
		WHERE owner_id = $1 AND id = $2
		RETURNING ` + clothingColumns
	item, err := scanClothingItem(r.db.QueryRowContext(ctx, query, ownerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound, "clothing item %d does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment wear count: %w", err)
	}
	log.Infof("👕 Clothing item %d worn %d times", id, item.WearCount)
	return item, nil
}

// SetStatus moves the selected items to clean or laundry and returns how
// many rows changed
func (r *ClothingRepository) SetStatus(ctx context.Context, ownerID string, ids []int64, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE clothing_items SET status = $1 WHERE owner_id = $2 AND id = ANY($3) AND status <> $1`,
		status, ownerID, ids)
	if err != nil {
		log.Errorf("❌ Error setting status %s on %v: %v", status, ids, err)
		return 0, fmt.Errorf("failed to set status: %w", err)
	}
	changed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Infof("🧺 %d clothing items moved to %s", changed, status)
	return changed, nil
}

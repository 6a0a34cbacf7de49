package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"armario-outfits/apperr"
	"armario-outfits/models"
)

// OutfitRepository handles database operations for outfits, the public feed and likes
type OutfitRepository struct {
	db    *sql.DB
	types *pgtype.Map
}

// NewOutfitRepository creates a new OutfitRepository
func NewOutfitRepository(db *sql.DB) *OutfitRepository {
	return &OutfitRepository{db: db, types: pgtype.NewMap()}
}

// Ensure OutfitRepository implements OutfitRepositoryInterface
var _ OutfitRepositoryInterface = (*OutfitRepository)(nil)

// outfitSelect returns outfit columns plus like count and whether $1 liked it
const outfitSelect = `
	SELECT o.id, o.owner_id, o.item_name, o.image_url, o.clothing_ids, o.date_uploaded, o.is_public,
	       (SELECT COUNT(*) FROM outfit_likes l WHERE l.outfit_id = o.id) AS like_count,
	       EXISTS(SELECT 1 FROM outfit_likes l WHERE l.outfit_id = o.id AND l.user_id = $1) AS liked
	FROM outfits o`

func (r *OutfitRepository) scanOutfit(row rowScanner) (*models.Outfit, error) {
	var o models.Outfit
	var ids []string
	err := row.Scan(
		&o.ID,
		&o.OwnerID,
		&o.ItemName,
		&o.Image,
		r.types.SQLScanner(&ids),
		&o.DateUploaded,
		&o.IsPublic,
		&o.LikeCount,
		&o.LikedByMe,
	)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	o.ClothingIDs = ids
	o.DateUploaded = o.DateUploaded.UTC()
	return &o, nil
}

func (r *OutfitRepository) queryOutfits(ctx context.Context, query string, args ...interface{}) ([]models.Outfit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outfits := []models.Outfit{}
	for rows.Next() {
		o, err := r.scanOutfit(rows)
		if err != nil {
			log.Errorf("❌ Error scanning outfit: %v", err)
			continue
		}
		outfits = append(outfits, *o)
	}
	return outfits, rows.Err()
}

// storedColumns are the outfit columns without the per-viewer like fields
const storedColumns = `id, owner_id, item_name, image_url, clothing_ids, date_uploaded, is_public`

func (r *OutfitRepository) scanStored(row rowScanner) (*models.Outfit, error) {
	var o models.Outfit
	var ids []string
	err := row.Scan(&o.ID, &o.OwnerID, &o.ItemName, &o.Image, r.types.SQLScanner(&ids), &o.DateUploaded, &o.IsPublic)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	o.ClothingIDs = ids
	o.DateUploaded = o.DateUploaded.UTC()
	return &o, nil
}

// InsertOutfit stores a new outfit record and returns the stored row. A
// repeated (owner, idempotency key) pair returns the record that already
// exists, unchanged.
func (r *OutfitRepository) InsertOutfit(ctx context.Context, outfit *models.Outfit) (*models.Outfit, error) {
	log.Debugf("💾 InsertOutfit: owner=%s, name=%s, items=%v", outfit.OwnerID, outfit.ItemName, outfit.ClothingIDs)

	if outfit.IdempotencyKey == "" {
		outfit.IdempotencyKey = uuid.NewString()
	}
	ids := outfit.ClothingIDs
	if ids == nil {
		ids = []string{}
	}

	query := `
		INSERT INTO outfits (id, owner_id, item_name, image_url, clothing_ids, date_uploaded, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_id, idempotency_key)
		DO UPDATE SET idempotency_key = EXCLUDED.idempotency_key
		RETURNING ` + storedColumns

	stored, err := r.scanStored(r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		outfit.OwnerID,
		outfit.ItemName,
		outfit.Image,
		ids,
		outfit.DateUploaded,
		outfit.IdempotencyKey,
	))
	if err != nil {
		log.Errorf("❌ Error inserting outfit: %v", err)
		return nil, fmt.Errorf("failed to insert outfit: %w", err)
	}
	stored.IdempotencyKey = outfit.IdempotencyKey

	log.Infof("✓ Outfit stored: id=%s, owner=%s", stored.ID, stored.OwnerID)
	return stored, nil
}

// OutfitByKey returns the outfit an owner stored under an idempotency key
func (r *OutfitRepository) OutfitByKey(ctx context.Context, ownerID, key string) (*models.Outfit, error) {
	query := `SELECT ` + storedColumns + ` FROM outfits WHERE owner_id = $1 AND idempotency_key = $2`

	o, err := r.scanStored(r.db.QueryRowContext(ctx, query, ownerID, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound, "no outfit stored under key %s", key)
	}
	if err != nil {
		log.Errorf("❌ Error looking up outfit by key: %v", err)
		return nil, fmt.Errorf("failed to look up outfit: %w", err)
	}
	o.IdempotencyKey = key
	return o, nil
}

// ListByOwner returns the user's outfits, newest first
func (r *OutfitRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Outfit, error) {
	outfits, err := r.queryOutfits(ctx, outfitSelect+` WHERE o.owner_id = $1 ORDER BY o.date_uploaded DESC`, ownerID)
	if err != nil {
		log.Errorf("❌ Error listing outfits for %s: %v", ownerID, err)
		return nil, fmt.Errorf("failed to list outfits: %w", err)
	}
	return outfits, nil
}

// GetVisible returns an outfit the viewer owns or that is public
func (r *OutfitRepository) GetVisible(ctx context.Context, viewerID string, id string) (*models.Outfit, error) {
	o, err := r.scanOutfit(r.db.QueryRowContext(ctx,
		outfitSelect+` WHERE o.id = $2 AND (o.owner_id = $1 OR o.is_public)`, viewerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound, "outfit %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outfit: %w", err)
	}
	return o, nil
}

// Delete removes one of the user's outfits and returns it
func (r *OutfitRepository) Delete(ctx context.Context, ownerID string, id string) (*models.Outfit, error) {
	o, err := r.GetVisible(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != ownerID {
		return nil, apperr.New(apperr.CodeForbidden, "outfit %s belongs to another user", id)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM outfits WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete outfit: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, apperr.New(apperr.CodeNotFound, "outfit %s does not exist", id)
	}

	log.Infof("🗑️  Outfit %s deleted", id)
	return o, nil
}

// SetPublic publishes or unpublishes one of the user's outfits
func (r *OutfitRepository) SetPublic(ctx context.Context, ownerID string, id string, public bool) (*models.Outfit, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE outfits SET is_public = $1 WHERE id = $2 AND owner_id = $3`, public, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to update outfit visibility: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, apperr.New(apperr.CodeNotFound, "outfit %s does not exist", id)
	}

	log.Infof("📣 Outfit %s public=%v", id, public)
	return r.GetVisible(ctx, ownerID, id)
}

// ListPublic returns the public feed, newest first
func (r *OutfitRepository) ListPublic(ctx context.Context, viewerID string, limit int) ([]models.Outfit, error) {
	outfits, err := r.queryOutfits(ctx,
		outfitSelect+` WHERE o.is_public ORDER BY o.date_uploaded DESC LIMIT $2`, viewerID, limit)
	if err != nil {
		log.Errorf("❌ Error listing feed: %v", err)
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	return outfits, nil
}

// Like records the user's like on a public outfit. Liking twice is a no-op.
func (r *OutfitRepository) Like(ctx context.Context, userID string, id string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var public bool
	err = tx.QueryRowContext(ctx, `SELECT is_public FROM outfits WHERE id = $1`, id).Scan(&public)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !public) {
		return 0, apperr.New(apperr.CodeNotFound, "outfit %s is not in the feed", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get outfit: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO outfit_likes (outfit_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, userID); err != nil {
		return 0, fmt.Errorf("failed to like outfit: %w", err)
	}

	count, err := likeCount(ctx, tx, id)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return count, nil
}

// Unlike removes the user's like. Unliking twice is a no-op.
func (r *OutfitRepository) Unlike(ctx context.Context, userID string, id string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM outfit_likes WHERE outfit_id = $1 AND user_id = $2`, id, userID); err != nil {
		return 0, fmt.Errorf("failed to unlike outfit: %w", err)
	}
	count, err := likeCount(ctx, tx, id)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return count, nil
}

func likeCount(ctx context.Context, tx *sql.Tx, id string) (int, error) {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM outfit_likes WHERE outfit_id = $1`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

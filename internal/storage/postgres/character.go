package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ruleforge/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterExists is returned when creating a character whose id is already stored.
var ErrCharacterExists = errors.New("character already exists")

// ErrMissingID is returned when a record to store has no "_id".
var ErrMissingID = errors.New("character record has no _id")

// StoredCharacter is a character document with its store metadata. Revision
// increases by one on every Save and Commit.
type StoredCharacter struct {
	Record    character.Record
	Revision  int64
	UpdatedAt time.Time
}

// CommitEntry is one committed batch of updates.
type CommitEntry struct {
	Revision    int64
	Updates     []character.Update
	CommittedAt time.Time
}

// CharacterRepository persists character documents. Owned items live inside
// the document under "items", so one row lock covers a character and its items.
type CharacterRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool. A nil logger disables logging.
func NewCharacterRepository(db *pgxpool.Pool, logger *zap.Logger) *CharacterRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CharacterRepository{db: db, logger: logger}
}

// prepare normalizes rec and encodes it for storage.
func prepare(rec character.Record) (id, name string, doc []byte, err error) {
	norm, _ := character.Normalize(rec)
	id, _ = norm["_id"].(string)
	if id == "" {
		return "", "", nil, ErrMissingID
	}
	name, _ = norm["name"].(string)
	doc, err = json.Marshal(norm)
	if err != nil {
		return "", "", nil, fmt.Errorf("encoding character %q: %w", id, err)
	}
	return id, name, doc, nil
}

// Create inserts a new character document. The record is normalized first.
//
// Precondition: rec must carry a non-empty "_id".
// Postcondition: Returns revision 1, ErrCharacterExists on a duplicate id, or ErrMissingID.
func (r *CharacterRepository) Create(ctx context.Context, rec character.Record) (*StoredCharacter, error) {
	id, name, doc, err := prepare(rec)
	if err != nil {
		return nil, err
	}
	var out StoredCharacter
	var stored []byte
	err = r.db.QueryRow(ctx, `
		INSERT INTO characters (id, name, document)
		VALUES ($1, $2, $3)
		RETURNING document, revision, updated_at`,
		id, name, doc,
	).Scan(&stored, &out.Revision, &out.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterExists
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	if out.Record, err = character.ParseRecord(stored); err != nil {
		return nil, fmt.Errorf("decoding character %q: %w", id, err)
	}
	return &out, nil
}

// Save replaces the whole document of a character, creating it if absent.
//
// Precondition: rec must carry a non-empty "_id".
// Postcondition: Returns the new revision or a non-nil error.
func (r *CharacterRepository) Save(ctx context.Context, rec character.Record) (int64, error) {
	id, name, doc, err := prepare(rec)
	if err != nil {
		return 0, err
	}
	var revision int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO characters (id, name, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, document = EXCLUDED.document,
		    revision = characters.revision + 1, updated_at = NOW()
		RETURNING revision`,
		id, name, doc,
	).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("saving character: %w", err)
	}
	return revision, nil
}

// Load retrieves a character document by id.
//
// Postcondition: Returns the stored character or ErrCharacterNotFound.
func (r *CharacterRepository) Load(ctx context.Context, id string) (*StoredCharacter, error) {
	var out StoredCharacter
	var doc []byte
	err := r.db.QueryRow(ctx, `
		SELECT document, revision, updated_at FROM characters WHERE id = $1`,
		id,
	).Scan(&doc, &out.Revision, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	if out.Record, err = character.ParseRecord(doc); err != nil {
		return nil, fmt.Errorf("decoding character %q: %w", id, err)
	}
	return &out, nil
}

// Commit applies updates to the stored document of id inside one transaction
// holding the row lock, so concurrent commits to the same character serialize.
// Every update's From is checked against the locked document.
//
// Postcondition: on success the document, revision and commit log advance
// together; on any error nothing changes. A stale From wraps character.ErrConflict.
func (r *CharacterRepository) Commit(ctx context.Context, id string, updates []character.Update) (*StoredCharacter, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning commit: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after Commit

	var doc []byte
	err = tx.QueryRow(ctx, `SELECT document FROM characters WHERE id = $1 FOR UPDATE`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("locking character: %w", err)
	}

	next, err := character.ApplyJSON(doc, updates)
	if err != nil {
		r.logger.Info("commit rejected", zap.String("character", id), zap.Error(err))
		return nil, fmt.Errorf("committing to character %q: %w", id, err)
	}
	batch, err := json.Marshal(updates)
	if err != nil {
		return nil, fmt.Errorf("encoding updates: %w", err)
	}

	out := StoredCharacter{}
	err = tx.QueryRow(ctx, `
		UPDATE characters SET document = $2, revision = revision + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING revision, updated_at`,
		id, next,
	).Scan(&out.Revision, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updating character: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO commit_log (character_id, revision, updates) VALUES ($1, $2, $3)`,
		id, out.Revision, batch,
	); err != nil {
		return nil, fmt.Errorf("recording commit: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	if out.Record, err = character.ParseRecord(next); err != nil {
		return nil, fmt.Errorf("decoding character %q: %w", id, err)
	}
	r.logger.Info("updates committed",
		zap.String("character", id),
		zap.Int64("revision", out.Revision),
		zap.Int("updates", len(updates)),
	)
	return &out, nil
}

// History returns the committed update batches of id, oldest first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) History(ctx context.Context, id string) ([]CommitEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT revision, updates, committed_at FROM commit_log
		WHERE character_id = $1 ORDER BY revision ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}
	defer rows.Close()

	entries := make([]CommitEntry, 0)
	for rows.Next() {
		var e CommitEntry
		var batch []byte
		if err := rows.Scan(&e.Revision, &batch, &e.CommittedAt); err != nil {
			return nil, fmt.Errorf("scanning commit row: %w", err)
		}
		if err := json.Unmarshal(batch, &e.Updates); err != nil {
			return nil, fmt.Errorf("decoding commit %d: %w", e.Revision, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes a character and its commit log.
//
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row was deleted.
func (r *CharacterRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

package cards

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Schema creates the table the postgres loader reads from.
const Schema = `
CREATE TABLE IF NOT EXISTS cards (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	card_type   TEXT NOT NULL DEFAULT '',
	card_class  TEXT NOT NULL DEFAULT '',
	rarity      TEXT NOT NULL DEFAULT '',
	cost        INTEGER NOT NULL DEFAULT 0,
	attack      INTEGER NOT NULL DEFAULT 0,
	health      INTEGER NOT NULL DEFAULT 0,
	durability  INTEGER NOT NULL DEFAULT 0,
	mechanics   TEXT NOT NULL DEFAULT '',
	rules_text  TEXT NOT NULL DEFAULT ''
)`

const selectCards = `
SELECT id, name, card_type, card_class, rarity, cost, attack, health, durability, mechanics, rules_text
FROM cards
ORDER BY id`

const insertCard = `
INSERT INTO cards (id, name, card_type, card_class, rarity, cost, attack, health, durability, mechanics, rules_text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	card_type = EXCLUDED.card_type,
	card_class = EXCLUDED.card_class,
	rarity = EXCLUDED.rarity,
	cost = EXCLUDED.cost,
	attack = EXCLUDED.attack,
	health = EXCLUDED.health,
	durability = EXCLUDED.durability,
	mechanics = EXCLUDED.mechanics,
	rules_text = EXCLUDED.rules_text`

// Querier is the subset of *pgxpool.Pool used to read cards.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Execer is the subset of *pgxpool.Pool used to prepare the schema.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TxBeginner is the subset of *pgxpool.Pool used to import cards.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EnsureSchema creates the cards table if it does not exist.
func EnsureSchema(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create cards table: %w", err)
	}
	return nil
}

// LoadPostgres reads every card definition from the cards table.
func LoadPostgres(ctx context.Context, db Querier, logger *zap.Logger) ([]*Card, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rows, err := db.Query(ctx, selectCards)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var result []*Card
	for rows.Next() {
		var (
			card                  Card
			cardType, class, mech string
		)
		if err := rows.Scan(
			&card.ID,
			&card.Name,
			&cardType,
			&class,
			&card.Rarity,
			&card.Cost,
			&card.Attack,
			&card.Health,
			&card.Durability,
			&mech,
			&card.Text,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		card.Type = ParseCardType(cardType)
		card.Class = ParseCardClass(class)
		card.Mechanics = splitMechanics(mech)
		result = append(result, &card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	logger.Info("loaded cards from database", zap.Int("cards", len(result)))
	return result, nil
}

// ImportResult summarises a SaveCards run.
type ImportResult struct {
	Imported int
	Failed   int
}

// SaveCards upserts cards in transactions of batchSize rows. A batch whose
// commit fails is counted as failed and the import moves on to the next one.
func SaveCards(ctx context.Context, db TxBeginner, cards []*Card, batchSize int, logger *zap.Logger) (ImportResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	var result ImportResult
	for i := 0; i < len(cards); i += batchSize {
		end := i + batchSize
		if end > len(cards) {
			end = len(cards)
		}
		batch := cards[i:end]

		tx, err := db.Begin(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to begin transaction: %w", err)
		}

		imported := 0
		for _, card := range batch {
			_, err := tx.Exec(ctx, insertCard,
				card.ID,
				card.Name,
				string(card.Type),
				string(card.Class),
				card.Rarity,
				card.Cost,
				card.Attack,
				card.Health,
				card.Durability,
				strings.Join(card.Mechanics, "|"),
				card.Text,
			)
			if err != nil {
				logger.Warn("failed to insert card", zap.String("card_id", card.ID), zap.Error(err))
				result.Failed++
				continue
			}
			imported++
		}

		if err := tx.Commit(ctx); err != nil {
			_ = tx.Rollback(ctx)
			logger.Warn("failed to commit card batch", zap.Int("offset", i), zap.Error(err))
			result.Failed += imported
			continue
		}
		result.Imported += imported

		logger.Debug("imported card batch",
			zap.Int("offset", i),
			zap.Int("size", len(batch)),
		)
	}

	return result, nil
}

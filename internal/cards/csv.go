package cards

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// LoadCSVFile reads a card export from disk.
func LoadCSVFile(path string, logger *zap.Logger) ([]*Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open card file: %w", err)
	}
	defer file.Close()

	return LoadCSV(file, logger)
}

// LoadCSV parses a card export. The first row is a header; recognised columns are
// id, name, type, class, rarity, cost, attack, health, durability, mechanics
// (pipe separated) and text, in any order. id and name are required. Rows that
// cannot be parsed are skipped with a warning.
func LoadCSV(r io.Reader, logger *zap.Logger) ([]*Card, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("card file is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "name"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("card file header is missing %q column", required)
		}
	}

	var result []*Card
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}

		card, err := parseRecord(record, index)
		if err != nil {
			logger.Warn("skipping card row",
				zap.Int("row", row),
				zap.Error(err),
			)
			continue
		}
		result = append(result, card)
	}

	logger.Debug("parsed card file", zap.Int("cards", len(result)))
	return result, nil
}

func parseRecord(record []string, index map[string]int) (*Card, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	number := func(name string) (int, error) {
		raw := field(name)
		if raw == "" {
			return 0, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", name, err)
		}
		return v, nil
	}

	card := &Card{
		ID:     field("id"),
		Name:   field("name"),
		Type:   ParseCardType(field("type")),
		Class:  ParseCardClass(field("class")),
		Rarity: field("rarity"),
		Text:   field("text"),
	}
	if card.ID == "" {
		return nil, fmt.Errorf("missing id")
	}

	var err error
	if card.Cost, err = number("cost"); err != nil {
		return nil, err
	}
	if card.Attack, err = number("attack"); err != nil {
		return nil, err
	}
	if card.Health, err = number("health"); err != nil {
		return nil, err
	}
	if card.Durability, err = number("durability"); err != nil {
		return nil, err
	}
	card.Mechanics = splitMechanics(field("mechanics"))

	return card, nil
}

func splitMechanics(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Tier is a difficulty band named after the word-frequency rank it covers
type Tier int

const (
	Tier100   Tier = 100
	Tier1000  Tier = 1000
	Tier3000  Tier = 3000
	Tier5000  Tier = 5000
	Tier10000 Tier = 10000
)

// DefaultTier is the band a new practice session starts on
const DefaultTier = Tier100

// AllTiers lists the valid tiers in ascending order
var AllTiers = []Tier{Tier100, Tier1000, Tier3000, Tier5000, Tier10000}

// Valid reports whether t is one of the fixed tiers
func (t Tier) Valid() bool {
	for _, v := range AllTiers {
		if t == v {
			return true
		}
	}
	return false
}

func (t Tier) String() string {
	return strconv.Itoa(int(t))
}

// ParseTier parses a tier such as "1000"
func ParseTier(s string) (Tier, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid tier %q", s)
	}
	t := Tier(n)
	if !t.Valid() {
		return 0, fmt.Errorf("invalid tier %q", s)
	}
	return t, nil
}

// UnmarshalJSON accepts both 1000 and "1000"
func (t *Tier) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Tier(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tier must be a number or numeric string")
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid tier %q", s)
	}
	*t = Tier(n)
	return nil
}

// Example is a sentence pair under a definition, enriched with the fields of
// its definition and word so a single value is enough to render a prompt.
// SourceText is shown to the learner; TargetText is the reference translation.
type Example struct {
	ID            int64  `json:"id"`
	DefinitionID  int64  `json:"definition_id"`
	SourceText    string `json:"source_text"`
	TargetText    string `json:"target_text"`
	Definition    string `json:"definition"`
	WordID        int64  `json:"word_id"`
	Word          string `json:"word"`
	WordType      string `json:"word_type"`
	Pronunciation string `json:"pronunciation"`
	Difficulty    Tier   `json:"difficulty"`
}

package models

import (
	"encoding/json"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Difficulty of a quiz item or of a whole quiz request
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyMixed  Difficulty = "mixed"
)

// ItemKind is the sub-kind of a quiz question
type ItemKind string

const (
	KindMultipleChoice ItemKind = "multiple_choice"
	KindOpen           ItemKind = "open"
	KindTechnical      ItemKind = "technical"
	KindSituational    ItemKind = "situational"
)

// ItemCategory groups quiz questions by what they assess
type ItemCategory string

const (
	CategoryTechnical  ItemCategory = "technical"
	CategoryExperience ItemCategory = "experience"
	CategoryBehavioral ItemCategory = "behavioral"
)

// ChallengeLevel is the difficulty of a coding challenge
type ChallengeLevel string

const (
	LevelBeginner     ChallengeLevel = "beginner"
	LevelIntermediate ChallengeLevel = "intermediate"
	LevelAdvanced     ChallengeLevel = "advanced"
)

// ChallengeCategory is the area a coding challenge belongs to
type ChallengeCategory string

const (
	ChallengeBackend   ChallengeCategory = "backend"
	ChallengeFrontend  ChallengeCategory = "frontend"
	ChallengeFullstack ChallengeCategory = "fullstack"
	ChallengeAlgorithm ChallengeCategory = "algorithm"
	ChallengeDatabase  ChallengeCategory = "database"
)

// Models answer in the CV's language, so French labels are accepted as well.
var difficultyAliases = map[string]Difficulty{
	"easy": DifficultyEasy, "facile": DifficultyEasy,
	"medium": DifficultyMedium, "moyen": DifficultyMedium, "intermediate": DifficultyMedium,
	"hard": DifficultyHard, "difficile": DifficultyHard,
	"mixed": DifficultyMixed, "mixte": DifficultyMixed, "mix": DifficultyMixed,
}

var kindAliases = map[string]ItemKind{
	"multiple_choice": KindMultipleChoice, "qcm": KindMultipleChoice, "mcq": KindMultipleChoice,
	"choix_multiple": KindMultipleChoice,
	"open": KindOpen, "ouverte": KindOpen, "open_ended": KindOpen,
	"technical": KindTechnical, "technique": KindTechnical,
	"situational": KindSituational, "situation": KindSituational, "mise_en_situation": KindSituational,
}

var categoryAliases = map[string]ItemCategory{
	"technical": CategoryTechnical, "technique": CategoryTechnical,
	"experience": CategoryExperience,
	"behavioral": CategoryBehavioral, "behavioural": CategoryBehavioral, "comportemental": CategoryBehavioral,
}

var levelAliases = map[string]ChallengeLevel{
	"beginner": LevelBeginner, "debutant": LevelBeginner, "easy": LevelBeginner,
	"intermediate": LevelIntermediate, "intermediaire": LevelIntermediate, "medium": LevelIntermediate,
	"advanced": LevelAdvanced, "avance": LevelAdvanced, "hard": LevelAdvanced,
}

var challengeCategoryAliases = map[string]ChallengeCategory{
	"backend":   ChallengeBackend,
	"frontend":  ChallengeFrontend,
	"fullstack": ChallengeFullstack, "full_stack": ChallengeFullstack,
	"algorithm": ChallengeAlgorithm, "algorithme": ChallengeAlgorithm, "algorithms": ChallengeAlgorithm,
	"database": ChallengeDatabase, "base_de_donnees": ChallengeDatabase, "databases": ChallengeDatabase,
}

// normalizeToken lower-cases, strips accents and joins words with underscores
func normalizeToken(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	plain = strings.ToLower(strings.TrimSpace(plain))
	return strings.Join(strings.FieldsFunc(plain, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/'
	}), "_")
}

// lookup returns the canonical value for s, or s itself when it is unknown
func lookup[T ~string](aliases map[string]T, s string) T {
	if v, ok := aliases[normalizeToken(s)]; ok {
		return v
	}
	return T(strings.TrimSpace(s))
}

func unmarshalLenient[T ~string](data []byte, aliases map[string]T, dst *T) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*dst = lookup(aliases, s)
	return nil
}

// ParseDifficulty maps user or model input onto a Difficulty
func ParseDifficulty(s string) Difficulty { return lookup(difficultyAliases, s) }

// Valid reports whether d is one of the request difficulties
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyMixed:
		return true
	}
	return false
}

func (d *Difficulty) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, difficultyAliases, d)
}

func (k *ItemKind) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, kindAliases, k)
}

func (c *ItemCategory) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, categoryAliases, c)
}

func (l *ChallengeLevel) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, levelAliases, l)
}

func (c *ChallengeCategory) UnmarshalJSON(data []byte) error {
	return unmarshalLenient(data, challengeCategoryAliases, c)
}

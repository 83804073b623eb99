package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"

	"github.com/rob637/passcpa-sub012/internal/selector"
	"github.com/rob637/passcpa-sub012/internal/store"
)

var (
	// ErrInvalidPack is returned when a pack is not valid JSON or does not
	// match the pack schema.
	ErrInvalidPack = errors.New("content: invalid pack")

	// ErrUnsupportedVersion is returned for packs outside the v1 format.
	ErrUnsupportedVersion = errors.New("content: unsupported pack version")
)

// SupportedMajor is the pack format major version this build reads.
const SupportedMajor = "v1"

// packSchema describes the on-disk pack. Legacy field spellings are allowed
// so older exports keep importing.
const packSchema = `{
	"type": "object",
	"required": ["version", "items"],
	"properties": {
		"version": {"type": "string", "minLength": 1},
		"course": {"type": "string"},
		"items": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"topic": {"type": "string"},
					"topicId": {"type": "string"},
					"topic_id": {"type": "string"},
					"section": {"type": "string"},
					"sectionId": {"type": "string"},
					"difficulty": {"type": ["string", "integer", "null"]},
					"kind": {"type": "string"},
					"prompt": {"type": "string"},
					"question": {"type": "string"},
					"answer": {"type": "string"}
				}
			}
		}
	}
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func packValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(packSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse pack schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://content-pack.json"
		if err := c.AddResource(url, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(url)
	})
	return compiledSchema, compileErr
}

// Pack is a decoded content pack.
type Pack struct {
	Version string
	Course  string
	Items   []store.ItemRecord
}

type rawPack struct {
	Version string    `json:"version"`
	Course  string    `json:"course"`
	Items   []rawItem `json:"items"`
}

type rawItem struct {
	ID           string          `json:"id"`
	Topic        string          `json:"topic"`
	TopicID      string          `json:"topicId"`
	TopicIDSnake string          `json:"topic_id"`
	Section      string          `json:"section"`
	SectionID    string          `json:"sectionId"`
	Difficulty   json.RawMessage `json:"difficulty"`
	Kind         string          `json:"kind"`
	Prompt       string          `json:"prompt"`
	Question     string          `json:"question"`
	Answer       string          `json:"answer"`
}

// Parse validates and decodes a content pack. Items repeating an earlier ID
// are dropped.
func Parse(data []byte) (*Pack, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}

	sch, err := packValidator()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}

	var raw rawPack
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}

	version, err := checkVersion(raw.Version)
	if err != nil {
		return nil, err
	}

	pack := &Pack{
		Version: version,
		Course:  strings.ToLower(strings.TrimSpace(raw.Course)),
		Items:   make([]store.ItemRecord, 0, len(raw.Items)),
	}
	seen := make(map[string]bool, len(raw.Items))
	for _, ri := range raw.Items {
		id := strings.TrimSpace(ri.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		pack.Items = append(pack.Items, ri.normalize(id, pack.Course))
	}
	return pack, nil
}

// checkVersion returns the canonical form of v ("1.2" -> "v1.2.0").
func checkVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedVersion, v)
	}
	if semver.Major(v) != SupportedMajor {
		return "", fmt.Errorf("%w: %s (want %s.x)", ErrUnsupportedVersion, v, SupportedMajor)
	}
	return semver.Canonical(v), nil
}

func (ri rawItem) normalize(id, course string) store.ItemRecord {
	return store.ItemRecord{
		ID:         id,
		Course:     course,
		Section:    strings.TrimSpace(firstNonEmpty(ri.Section, ri.SectionID)),
		Topic:      strings.TrimSpace(firstNonEmpty(ri.Topic, ri.TopicID, ri.TopicIDSnake)),
		Difficulty: string(parseDifficulty(ri.Difficulty)),
		Kind:       strings.ToLower(strings.TrimSpace(ri.Kind)),
		Prompt:     firstNonEmpty(ri.Prompt, ri.Question),
		Answer:     ri.Answer,
	}
}

// parseDifficulty accepts names ("Easy") or levels (1-3, numeric or quoted).
func parseDifficulty(raw json.RawMessage) selector.Difficulty {
	if len(raw) == 0 {
		return selector.DifficultyUnknown
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		switch n {
		case 1:
			return selector.DifficultyEasy
		case 2:
			return selector.DifficultyMedium
		case 3:
			return selector.DifficultyHard
		}
		return selector.DifficultyUnknown
	}
	return selector.ParseDifficulty(s)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

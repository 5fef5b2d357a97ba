// Package export reads and writes quest archives, YAML files that carry
// quest payloads keyed by their entry IDs.
package export

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/quest"
)

// Version is the archive format written by Write.
const Version = 1

// Archive is the on-disk layout of an export.
type Archive struct {
	Version int      `yaml:"version"`
	Quests  []Record `yaml:"quests"`
}

// Record is one exported quest.
type Record struct {
	ID    string      `yaml:"id"`
	Quest model.Quest `yaml:"quest"`
}

// Build snapshots every quest the acting user can observe, in collection
// order. Players lose GM notes and hidden content the same way the
// preview hides it.
func Build(db *quest.DB) Archive {
	user := db.User()
	quests := db.SortCollect(quest.CollectOptions{Observable: true})
	return Archive{
		Version: Version,
		Quests: quest.Transform(quests, func(q *quest.Quest) Record {
			payload := q.Clone()
			if !user.IsGM() {
				payload.GMNotes = ""
				payload.Tasks = visible(payload.Tasks, func(t model.Task) bool { return !t.Hidden })
				payload.Rewards = visible(payload.Rewards, func(r model.Reward) bool { return !r.Hidden })
			}
			return Record{ID: q.ID(), Quest: payload}
		}),
	}
}

func visible[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Write encodes the archive as YAML.
func Write(w io.Writer, a Archive) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encoding archive: %w", err)
	}
	return enc.Close()
}

// Read decodes an archive and checks its version.
func Read(r io.Reader) (Archive, error) {
	var a Archive
	if err := yaml.NewDecoder(r).Decode(&a); err != nil {
		return Archive{}, fmt.Errorf("decoding archive: %w", err)
	}
	if a.Version != Version {
		return Archive{}, fmt.Errorf("unsupported archive version %d", a.Version)
	}
	for i, rec := range a.Quests {
		if rec.ID == "" {
			return Archive{}, fmt.Errorf("archive quest %d has no id", i)
		}
	}
	return a, nil
}

// Import stores every archived quest under its archived ID, replacing
// quests that already exist. It returns the number of quests written.
func Import(ctx context.Context, db *quest.DB, a Archive) (int, error) {
	for i, rec := range a.Quests {
		if _, err := db.Import(ctx, rec.ID, rec.Quest); err != nil {
			return i, err
		}
	}
	return len(a.Quests), nil
}

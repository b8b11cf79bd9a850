// Package storage persists conversation transcripts as YAML files under the
// transcripts directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/oklog/ulid/v2"
	"github.com/valter-silva-au/eliza/pkg/models"
	"gopkg.in/yaml.v3"
)

// TranscriptStoreManager defines the interface for managing saved
// conversation transcripts.
type TranscriptStoreManager interface {
	AddTranscript(transcript models.Transcript, turns []models.TranscriptTurn) (string, error)
	GetTranscript(id string) (*models.Transcript, error)
	GetTranscriptTurns(id string) ([]models.TranscriptTurn, error)
	ListTranscripts(filter models.TranscriptFilter) ([]models.Transcript, error)
	GenerateID() string
	Load() error
	Save() error
}

type fileTranscriptStore struct {
	dir   string
	index models.TranscriptIndex
}

// NewTranscriptStoreManager creates a TranscriptStoreManager backed by YAML
// files in the given directory.
func NewTranscriptStoreManager(dir string) TranscriptStoreManager {
	return &fileTranscriptStore{
		dir: dir,
		index: models.TranscriptIndex{
			Version:     "1.0",
			Transcripts: nil,
		},
	}
}

func (s *fileTranscriptStore) indexPath() string {
	return filepath.Join(s.dir, "index.yaml")
}

func (s *fileTranscriptStore) turnsPath(id string) string {
	return filepath.Join(s.dir, id+".yaml")
}

// GenerateID returns a new lexicographically sortable transcript ID.
func (s *fileTranscriptStore) GenerateID() string {
	return ulid.Make().String()
}

// AddTranscript stores a transcript and its turns. The transcript must have
// an ID already assigned (via GenerateID).
func (s *fileTranscriptStore) AddTranscript(transcript models.Transcript, turns []models.TranscriptTurn) (string, error) {
	if transcript.ID == "" {
		return "", fmt.Errorf("adding transcript: ID must not be empty")
	}
	for _, existing := range s.index.Transcripts {
		if existing.ID == transcript.ID {
			return "", fmt.Errorf("adding transcript: %s already exists", transcript.ID)
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("adding transcript: creating directory: %w", err)
	}

	turnsWrapper := struct {
		Turns []models.TranscriptTurn `yaml:"turns"`
	}{Turns: turns}
	if err := s.saveYAML(s.turnsPath(transcript.ID), &turnsWrapper); err != nil {
		return "", fmt.Errorf("adding transcript: writing turns: %w", err)
	}

	s.index.Transcripts = append(s.index.Transcripts, transcript)

	if err := s.Save(); err != nil {
		return "", err
	}
	return transcript.ID, nil
}

// GetTranscript returns the metadata for a transcript by ID.
func (s *fileTranscriptStore) GetTranscript(id string) (*models.Transcript, error) {
	for _, transcript := range s.index.Transcripts {
		if transcript.ID == id {
			return &transcript, nil
		}
	}
	return nil, fmt.Errorf("transcript %s not found", id)
}

// GetTranscriptTurns loads the turns of a transcript from disk.
func (s *fileTranscriptStore) GetTranscriptTurns(id string) ([]models.TranscriptTurn, error) {
	if _, err := s.GetTranscript(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.turnsPath(id))
	if err != nil {
		return nil, fmt.Errorf("reading transcript turns: %w", err)
	}

	var turnsWrapper struct {
		Turns []models.TranscriptTurn `yaml:"turns"`
	}
	if err := yaml.Unmarshal(data, &turnsWrapper); err != nil {
		return nil, fmt.Errorf("parsing transcript turns: %w", err)
	}
	return turnsWrapper.Turns, nil
}

// ListTranscripts returns transcripts matching the filter, newest first.
func (s *fileTranscriptStore) ListTranscripts(filter models.TranscriptFilter) ([]models.Transcript, error) {
	var result []models.Transcript
	for _, transcript := range s.index.Transcripts {
		if filter.Script != "" && transcript.Script != filter.Script {
			continue
		}
		if filter.Since != nil && transcript.Started.Before(*filter.Since) {
			continue
		}
		result = append(result, transcript)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Started.After(result[j].Started)
	})

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Load reads the transcript index from disk. A missing index is treated as empty.
func (s *fileTranscriptStore) Load() error {
	if err := s.loadYAML(s.indexPath(), &s.index); err != nil {
		return fmt.Errorf("loading transcript index: %w", err)
	}
	if s.index.Version == "" {
		s.index.Version = "1.0"
	}
	return nil
}

// Save persists the transcript index to disk.
func (s *fileTranscriptStore) Save() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("saving transcript store: creating directory: %w", err)
	}
	if err := s.saveYAML(s.indexPath(), &s.index); err != nil {
		return fmt.Errorf("saving transcript index: %w", err)
	}
	return nil
}

func (s *fileTranscriptStore) loadYAML(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Missing files are initialized to zero values.
		}
		return err
	}
	return yaml.Unmarshal(data, target)
}

func (s *fileTranscriptStore) saveYAML(path string, source interface{}) error {
	data, err := yaml.Marshal(source)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

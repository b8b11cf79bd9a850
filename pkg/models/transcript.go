package models

import "time"

// Transcript is one saved conversation.
type Transcript struct {
	ID       string    `yaml:"id"`
	Script   string    `yaml:"script"`
	Started  time.Time `yaml:"started"`
	Ended    time.Time `yaml:"ended"`
	Turns    int       `yaml:"turns"`
	Greeting string    `yaml:"greeting"`
}

// TranscriptTurn is a single exchange within a transcript.
type TranscriptTurn struct {
	Turn     int    `yaml:"turn"`
	Input    string `yaml:"input"`
	Response string `yaml:"response"`
}

// TranscriptIndex is the on-disk index of all saved transcripts.
type TranscriptIndex struct {
	Version     string       `yaml:"version"`
	Transcripts []Transcript `yaml:"transcripts"`
}

// TranscriptFilter selects transcripts when listing.
type TranscriptFilter struct {
	Script string
	Since  *time.Time
	Limit  int
}

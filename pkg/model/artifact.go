package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/priceworks/carprice/pkg/pipeline"
	"github.com/priceworks/carprice/pkg/schema"
)

// ArtifactVersion is the current artifact schema version. Load rejects
// artifacts written with a different version.
const ArtifactVersion = 1

var (
	// ErrArtifactVersion indicates an artifact with an unsupported schema version.
	ErrArtifactVersion = errors.New("unsupported artifact version")

	// ErrIncompleteArtifact indicates an artifact missing fitted state.
	ErrIncompleteArtifact = errors.New("artifact is missing fitted state")
)

// Artifact is the persisted bundle of fitted preprocessing statistics
// and regressor parameters. It is written once per training run and
// loaded read-only at serving startup; it is never mutated afterwards.
//
// The on-disk format is an explicit, versioned JSON document rather
// than an opaque blob, so the training/serving boundary has a real
// schema to validate against.
type Artifact struct {
	Version   int             `json:"version"`
	RunID     string          `json:"run_id"`
	TrainedAt time.Time       `json:"trained_at"`
	Pipeline  pipeline.Params `json:"pipeline"`
	Model     *Ensemble       `json:"model"`

	pipe *pipeline.Pipeline
}

// NewArtifact bundles a fitted pipeline and ensemble under a fresh run
// ID. The run ID distinguishes training runs in cache keys, so a
// retrained artifact can never read predictions cached by an older one.
func NewArtifact(p *pipeline.Pipeline, e *Ensemble) *Artifact {
	return &Artifact{
		Version:   ArtifactVersion,
		RunID:     uuid.NewString(),
		TrainedAt: time.Now().UTC(),
		Pipeline:  p.Params(),
		Model:     e,
		pipe:      p,
	}
}

// EstimateLogPrice transforms the feature vector with the fitted
// pipeline and runs the regressor. The result is on the log1p scale.
func (a *Artifact) EstimateLogPrice(v schema.FeatureVector) (float64, error) {
	if a.pipe == nil || a.Model == nil {
		return 0, ErrIncompleteArtifact
	}
	return a.Model.Predict(a.pipe.Transform(v)), nil
}

// Save persists the artifact atomically: the document is written to a
// temporary file in the target directory and renamed into place, so a
// crashed or failed run never leaves a partial artifact behind.
// An existing artifact at path is overwritten.
func (a *Artifact) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename artifact into place: %w", err)
	}
	return nil
}

// Load reads and validates an artifact written by Save, rebuilding the
// fitted pipeline from its persisted parameters.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}

	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrArtifactVersion, a.Version, ArtifactVersion)
	}
	if a.Model == nil || len(a.Model.Trees) == 0 {
		return nil, ErrIncompleteArtifact
	}

	pipe, err := pipeline.FromParams(a.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("rebuild pipeline: %w", err)
	}
	a.pipe = pipe

	return &a, nil
}

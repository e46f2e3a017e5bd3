package artifacts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/usecase"
	"golang.org/x/sync/errgroup"
)

// Loader reads Foundry artifacts from the build output directory
type Loader struct {
	log         *slog.Logger
	concurrency int
}

// NewLoader creates an artifact loader
func NewLoader(log *slog.Logger) *Loader {
	return &Loader{
		log:         log.With("component", "artifacts"),
		concurrency: runtime.NumCPU(),
	}
}

// Discover returns every deployable artifact under root, sorted by path.
// Artifacts without creation bytecode (interfaces, abstract contracts,
// libraries needing no deployment) and unreadable documents are skipped.
func (l *Loader) Discover(ctx context.Context, root string) ([]*models.Artifact, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("%w: artifacts directory %s: %v", domain.ErrInvalidArtifact, root, err)
	}

	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if info.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip if not a JSON file
		if filepath.Ext(path) != ".json" || strings.Contains(path, "build-info") {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	var (
		mu    sync.Mutex
		found []*models.Artifact
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(l.concurrency)
	for _, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			artifact, err := l.Load(path)
			if err != nil {
				l.log.Warn("skipping unreadable artifact", "path", path, "error", err)
				return nil
			}
			if !artifact.HasBytecode() {
				l.log.Debug("skipping artifact without bytecode", "path", path)
				return nil
			}

			mu.Lock()
			found = append(found, artifact)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Path < found[j].Path
	})

	l.log.Debug("discovered artifacts", "root", root, "scanned", len(paths), "deployable", len(found))
	return found, nil
}

// Load parses a single artifact file
func (l *Loader) Load(path string) (*models.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArtifact, err)
	}
	return models.ParseArtifact(path, data)
}

var _ usecase.ArtifactSource = (*Loader)(nil)

package builder

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Sibling directories holding staged artifacts and the previous generation while publishing
const (
	stagingDir = ".shimgen.tmp"
	backupDir  = ".shimgen.bak"
)

// publication tracks one artifact through staging, backup and publishing
type publication struct {
	output    *Output
	parentURL string
	stagedURL string
	backupURL string
	backedUp  bool
	published bool
}

// Commit publishes rendered outputs all or nothing. Every artifact is staged under its final
// name in a sibling staging directory, existing artifacts are moved aside, then the staged ones
// are moved into place. Any failure restores the previous generation.
// Source and destination of every move share a base name, so afs moves file to file.
func (b *Builder) Commit(ctx context.Context, result *Result) (err error) {
	publications := make([]*publication, 0, len(result.Outputs))
	for _, output := range result.Outputs {
		parentURL, name := url.Split(output.URL, file.Scheme)
		publications = append(publications, &publication{
			output:    output,
			parentURL: parentURL,
			stagedURL: url.Join(parentURL, stagingDir, name),
			backupURL: url.Join(parentURL, backupDir, name),
		})
	}
	committed := false
	defer func() {
		if !committed {
			if rollbackErr := b.rollback(ctx, publications); rollbackErr != nil {
				err = fmt.Errorf("%w; %v", err, rollbackErr)
			}
		}
		b.cleanup(ctx, publications, committed)
	}()

	for _, pub := range publications {
		if err := b.fs.Upload(ctx, pub.stagedURL, 0644, bytes.NewReader(pub.output.Content)); err != nil {
			return &StepError{Step: StepWrite, Err: fmt.Errorf("failed to stage %s: %w", pub.output.URL, err)}
		}
	}
	for _, pub := range publications {
		exists, err := b.fs.Exists(ctx, pub.output.URL)
		if err != nil {
			return &StepError{Step: StepPublish, Err: fmt.Errorf("failed to check %s: %w", pub.output.URL, err)}
		}
		if !exists {
			continue
		}
		if err = b.fs.Move(ctx, pub.output.URL, pub.backupURL); err != nil {
			return &StepError{Step: StepPublish, Err: fmt.Errorf("failed to back up %s: %w", pub.output.URL, err)}
		}
		pub.backedUp = true
	}
	for _, pub := range publications {
		if err := b.fs.Move(ctx, pub.stagedURL, pub.output.URL); err != nil {
			return &StepError{Step: StepPublish, Err: fmt.Errorf("failed to publish %s: %w", pub.output.URL, err)}
		}
		pub.published = true
	}
	committed = true
	return nil
}

// rollback removes newly published artifacts and moves the previous generation back
func (b *Builder) rollback(ctx context.Context, publications []*publication) error {
	var failed []string
	for _, pub := range publications {
		if pub.published {
			if err := b.fs.Delete(ctx, pub.output.URL); err != nil {
				failed = append(failed, pub.output.URL)
				continue
			}
			pub.published = false
		}
		if !pub.backedUp {
			continue
		}
		if err := b.fs.Move(ctx, pub.backupURL, pub.output.URL); err != nil {
			failed = append(failed, pub.output.URL)
			continue
		}
		pub.backedUp = false
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to restore %v, previous artifacts are kept under %s", failed, backupDir)
	}
	return nil
}

// cleanup drops staging directories, and backups once they are no longer needed
func (b *Builder) cleanup(ctx context.Context, publications []*publication, committed bool) {
	keepBackups := false
	for _, pub := range publications {
		if pub.backedUp && !committed {
			keepBackups = true
		}
	}
	seen := map[string]bool{}
	for _, pub := range publications {
		if seen[pub.parentURL] {
			continue
		}
		seen[pub.parentURL] = true
		b.deleteIfExists(ctx, url.Join(pub.parentURL, stagingDir))
		if !keepBackups {
			b.deleteIfExists(ctx, url.Join(pub.parentURL, backupDir))
		}
	}
}

func (b *Builder) deleteIfExists(ctx context.Context, URL string) {
	if ok, _ := b.fs.Exists(ctx, URL); ok {
		_ = b.fs.Delete(ctx, URL)
	}
}

package builder

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/viant/shimgen/inspector/graph"
)

// Drift describes a published artifact that no longer matches its inputs
type Drift struct {
	URL  string
	Diff string // Unified diff from the published to the regenerated content
}

// Check regenerates every artifact and compares it with what is published, nothing is written
func (b *Builder) Check(ctx context.Context) ([]*Drift, *Result, error) {
	result, err := b.Generate(ctx)
	if err != nil {
		return nil, nil, err
	}
	var drifts []*Drift
	for _, output := range result.Outputs {
		var published []byte
		exists, err := b.fs.Exists(ctx, output.URL)
		if err != nil {
			return nil, nil, &StepError{Step: StepRead, Header: output.URL, Err: err}
		}
		if exists {
			if published, err = b.fs.DownloadWithURL(ctx, output.URL); err != nil {
				return nil, nil, &StepError{Step: StepRead, Header: output.URL, Err: err}
			}
		}
		same, err := sameContent(published, output.Content)
		if err != nil {
			return nil, nil, err
		}
		if same {
			continue
		}
		drifts = append(drifts, &Drift{URL: output.URL, Diff: unifiedDiff(output.URL, published, output.Content)})
	}
	return drifts, result, nil
}

func sameContent(published, generated []byte) (bool, error) {
	if len(published) != len(generated) {
		return false, nil
	}
	publishedHash, err := graph.Hash(published)
	if err != nil {
		return false, err
	}
	generatedHash, err := graph.Hash(generated)
	if err != nil {
		return false, err
	}
	return publishedHash == generatedHash, nil
}

func unifiedDiff(URL string, published, generated []byte) string {
	fromFile := URL
	if published == nil {
		fromFile = "/dev/null"
	}
	diff := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(published)),
		B:        splitLinesKeepNL(string(generated)),
		FromFile: fromFile,
		ToFile:   URL,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil || text == "" {
		return "--- " + fromFile + "\n+++ " + URL + "\n@@ content differs @@\n"
	}
	return text
}

func splitLinesKeepNL(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

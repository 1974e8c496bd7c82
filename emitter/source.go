package emitter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/viant/shimgen/generator/wrapper"
)

// SourceGroup holds the artifacts of one header in declaration order
type SourceGroup struct {
	Header    string
	Artifacts []*wrapper.Artifact
}

// Source writes the C translation unit: banner, preamble, helper catalog, then the shims of each header
func Source(w io.Writer, preamble, helpers, fingerprint string, groups []*SourceGroup) error {
	writer := bufio.NewWriter(w)
	if err := writeBanner(writer, "//", fingerprint); err != nil {
		return err
	}
	for _, section := range []string{preamble, helpers} {
		if strings.TrimSpace(section) == "" {
			continue
		}
		fmt.Fprintf(writer, "\n%s", section)
		if !strings.HasSuffix(section, "\n") {
			writer.WriteByte('\n')
		}
	}
	for _, group := range groups {
		var shims []string
		for _, artifact := range group.Artifacts {
			if artifact.NeedsIndirection {
				shims = append(shims, artifact.SourceText)
			}
		}
		if len(shims) == 0 {
			continue
		}
		fmt.Fprintf(writer, "\n// %s\n\n", group.Header)
		writer.WriteString(strings.Join(shims, "\n"))
	}
	return writer.Flush()
}

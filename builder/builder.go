// Package builder runs the generation pipeline from a header directory to the three published artifacts.
package builder

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/shimgen/emitter"
	"github.com/viant/shimgen/generator/signature"
	"github.com/viant/shimgen/generator/wrapper"
	"github.com/viant/shimgen/inspector"
	"github.com/viant/shimgen/inspector/cdecl"
	"github.com/viant/shimgen/inspector/cenum"
	"github.com/viant/shimgen/inspector/graph"
	"github.com/viant/shimgen/registry"
)

// Defaults mirror the layout of a raylib binding project
const (
	DefaultHeaders    = "raylib.h"
	DefaultSource     = "shim/main.c"
	DefaultSignatures = "features/ffi/_values.coffee"
	DefaultConstants  = "features/consts.coffee"
	DefaultCoreHeader = "rcore.hpp"
	DefaultGuiHeader  = "rgui.hpp"
	DefaultAuxFile    = "structs.h"
)

type (
	// Builder orchestrates parsing, generation and publishing
	Builder struct {
		fs               afs.Service
		registry         *registry.Registry
		factory          *inspector.Factory
		headersURL       string
		sourceURL        string
		signaturesURL    string
		constantsURL     string
		signatureFormat  emitter.Format
		constantsFormat  emitter.Format
		namespace        string
		coreHeader       string
		guiHeader        string
		domainHeader     string
		auxFile          string
		hostLibrary      bool
		helperSignatures bool
		preamble         string
	}

	// Output is one rendered artifact
	Output struct {
		URL     string
		Content []byte
	}

	// Duplicate reports a symbol declared by more than one header
	Duplicate struct {
		Symbol       string   `yaml:"symbol"`
		Headers      []string `yaml:"headers"`
		Declarations []string `yaml:"declarations"` // Prototype per header, in header order
	}

	// Result holds everything a run produced, rendered but not yet published
	Result struct {
		Fingerprint      string
		Headers          []*graph.Header
		Artifacts        []*wrapper.Artifact
		Entries          []*signature.Entry
		Constants        []*emitter.ConstantGroup
		Wrapped          map[string][]string // Header -> symbols that received a shim
		Skipped          []*graph.Skipped
		TypeWarnings     []*signature.Warning
		ConstantWarnings []*cenum.Warning
		Duplicates       []*Duplicate
		Outputs          []*Output // Source, signatures, constants
	}
)

// New creates a builder
func New(opts ...Option) *Builder {
	ret := &Builder{
		headersURL:       DefaultHeaders,
		sourceURL:        DefaultSource,
		signaturesURL:    DefaultSignatures,
		constantsURL:     DefaultConstants,
		signatureFormat:  emitter.FormatRew,
		constantsFormat:  emitter.FormatRew,
		coreHeader:       DefaultCoreHeader,
		guiHeader:        DefaultGuiHeader,
		auxFile:          DefaultAuxFile,
		helperSignatures: true,
		preamble:         wrapper.DefaultPreamble,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.registry == nil {
		ret.registry = registry.Default()
	}
	if ret.namespace == "" {
		ret.namespace = emitter.DefaultNamespace
	}
	ret.factory = inspector.NewFactory(cdecl.WithQualifiers(ret.registry.Qualifiers...))
	ret.headersURL = url.Normalize(ret.headersURL, file.Scheme)
	ret.sourceURL = url.Normalize(ret.sourceURL, file.Scheme)
	ret.signaturesURL = url.Normalize(ret.signaturesURL, file.Scheme)
	ret.constantsURL = url.Normalize(ret.constantsURL, file.Scheme)
	return ret
}

// Run generates all artifacts and publishes them
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	result, err := b.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if err = b.Commit(ctx, result); err != nil {
		return result, err
	}
	return result, nil
}

// Generate runs the whole pipeline in memory
func (b *Builder) Generate(ctx context.Context) (*Result, error) {
	fingerprint, err := graph.NewFingerprint()
	if err != nil {
		return nil, err
	}
	config, err := b.registry.Marshal()
	if err != nil {
		return nil, &StepError{Step: StepRender, Err: fmt.Errorf("failed to encode registry: %w", err)}
	}
	fingerprint.Add("registry", config)
	fingerprint.Add("options", []byte(b.optionsKey()))

	result := &Result{Wrapped: map[string][]string{}}
	names, err := b.listHeaders(ctx)
	if err != nil {
		return nil, err
	}
	wrappers := wrapper.New(b.registry)
	signatures := signature.New(b.registry, signature.WithHostLibrary(b.hostLibrary))
	var sourceGroups []*emitter.SourceGroup
	var signatureGroups []*emitter.SignatureGroup
	for _, name := range names {
		header, data, err := b.inspect(ctx, name, b.factory)
		if err != nil {
			return nil, err
		}
		fingerprint.Add(name, data)
		result.Headers = append(result.Headers, header)
		result.Skipped = append(result.Skipped, header.Skipped...)

		artifacts := wrappers.GenerateAll(name, header.Functions)
		result.Artifacts = append(result.Artifacts, artifacts...)
		if wrapped := wrapper.Wrapped(artifacts); len(wrapped) > 0 {
			result.Wrapped[name] = wrapped
		}
		entries, warnings := signatures.GenerateAll(artifacts)
		result.Entries = append(result.Entries, entries...)
		result.TypeWarnings = append(result.TypeWarnings, warnings...)
		sourceGroups = append(sourceGroups, &emitter.SourceGroup{Header: name, Artifacts: artifacts})
		signatureGroups = append(signatureGroups, &emitter.SignatureGroup{Header: name, Entries: entries})
	}
	if b.helperSignatures {
		entries, warnings := signatures.GenerateAll(wrapper.HelperArtifacts())
		result.Entries = append(result.Entries, entries...)
		result.TypeWarnings = append(result.TypeWarnings, warnings...)
		signatureGroups = append(signatureGroups, &emitter.SignatureGroup{Header: wrapper.HelperHeader, Entries: entries})
	}
	result.Duplicates = duplicates(result.Headers)

	if result.Constants, err = b.constants(ctx, fingerprint, result); err != nil {
		return nil, err
	}
	result.Fingerprint = fingerprint.String()
	if result.Outputs, err = b.render(result, sourceGroups, signatureGroups); err != nil {
		return nil, err
	}
	return result, nil
}

// listHeaders returns declaration header names in lexicographic order
func (b *Builder) listHeaders(ctx context.Context) ([]string, error) {
	objects, err := b.fs.List(ctx, b.headersURL)
	if err != nil {
		return nil, &StepError{Step: StepList, Err: fmt.Errorf("failed to list %s: %w", b.headersURL, err)}
	}
	var names []string
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		name := object.Name()
		if path.Ext(name) != ".h" || name == b.auxFile {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (b *Builder) inspect(ctx context.Context, name string, insp inspector.Inspector) (*graph.Header, []byte, error) {
	URL := url.Join(b.headersURL, name)
	data, err := b.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, nil, &StepError{Header: name, Step: StepRead, Err: err}
	}
	header, err := insp.InspectSource(name, data)
	if err != nil {
		return nil, nil, &StepError{Header: name, Step: StepParse, Err: err}
	}
	header.URL = URL
	return header, data, nil
}

// constants extracts the core, gui and domain enum groups followed by the registry literals
func (b *Builder) constants(ctx context.Context, fingerprint *graph.Fingerprint, result *Result) ([]*emitter.ConstantGroup, error) {
	sources := []struct {
		group     string
		header    string
		skipFirst bool
	}{
		{group: "core", header: b.coreHeader, skipFirst: true},
		{group: "gui", header: b.guiHeader},
		{group: "domain", header: b.domainHeader},
	}
	var groups []*emitter.ConstantGroup
	for _, source := range sources {
		if source.header == "" {
			continue
		}
		header, data, err := b.inspect(ctx, source.header, b.factory.Enums())
		if err != nil {
			return nil, err
		}
		fingerprint.Add(source.header, data)
		for _, item := range header.Skipped {
			result.ConstantWarnings = append(result.ConstantWarnings, &cenum.Warning{Header: source.header, Expr: item.Text, Line: item.Line, Reason: item.Reason})
		}
		table, warnings := cenum.Extract(header.Enums, cenum.WithSkipFirst(source.skipFirst), cenum.WithHeader(source.header))
		result.ConstantWarnings = append(result.ConstantWarnings, warnings...)
		groups = append(groups, &emitter.ConstantGroup{Name: source.group, Table: table})
	}
	groups = append(groups, &emitter.ConstantGroup{Name: "literals", Table: b.registry.Literals})
	return groups, nil
}

func (b *Builder) render(result *Result, sourceGroups []*emitter.SourceGroup, signatureGroups []*emitter.SignatureGroup) ([]*Output, error) {
	source := &bytes.Buffer{}
	if err := emitter.Source(source, b.preamble, wrapper.Helpers(), result.Fingerprint, sourceGroups); err != nil {
		return nil, &StepError{Step: StepRender, Err: fmt.Errorf("source: %w", err)}
	}
	signatures := &bytes.Buffer{}
	if err := emitter.Signatures(signatures, b.signatureFormat, result.Fingerprint, signatureGroups); err != nil {
		return nil, &StepError{Step: StepRender, Err: fmt.Errorf("signatures: %w", err)}
	}
	constants := &bytes.Buffer{}
	if err := emitter.Constants(constants, b.constantsFormat, b.namespace, result.Fingerprint, result.Constants); err != nil {
		return nil, &StepError{Step: StepRender, Err: fmt.Errorf("constants: %w", err)}
	}
	return []*Output{
		{URL: b.sourceURL, Content: source.Bytes()},
		{URL: b.signaturesURL, Content: signatures.Bytes()},
		{URL: b.constantsURL, Content: constants.Bytes()},
	}, nil
}

// optionsKey captures settings that change artifact content without changing any input file
func (b *Builder) optionsKey() string {
	return strings.Join([]string{
		string(b.signatureFormat),
		string(b.constantsFormat),
		b.namespace,
		b.coreHeader,
		b.guiHeader,
		b.domainHeader,
		fmt.Sprintf("host=%v", b.hostLibrary),
		fmt.Sprintf("helpers=%v", b.helperSignatures),
		b.preamble,
	}, "\x00")
}

// duplicates reports symbols declared by more than one header, repeats within one header count once
func duplicates(headers []*graph.Header) []*Duplicate {
	owners := map[string][]*graph.Header{}
	var order []string
	for _, header := range headers {
		for _, function := range header.Functions {
			if header.LookupFunction(function.Name) != function {
				continue
			}
			if _, ok := owners[function.Name]; !ok {
				order = append(order, function.Name)
			}
			owners[function.Name] = append(owners[function.Name], header)
		}
	}
	var result []*Duplicate
	for _, symbol := range order {
		if len(owners[symbol]) < 2 {
			continue
		}
		duplicate := &Duplicate{Symbol: symbol}
		for _, header := range owners[symbol] {
			duplicate.Headers = append(duplicate.Headers, header.Name)
			duplicate.Declarations = append(duplicate.Declarations, header.LookupFunction(symbol).Prototype())
		}
		result = append(result, duplicate)
	}
	return result
}

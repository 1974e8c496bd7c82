package builder

import (
	"github.com/viant/afs"
	"github.com/viant/shimgen/emitter"
	"github.com/viant/shimgen/registry"
)

// Option configures a Builder
type Option func(*Builder)

// WithFS sets the storage service used for every read and write
func WithFS(fs afs.Service) Option {
	return func(b *Builder) {
		b.fs = fs
	}
}

// WithRegistry sets the classification registry shared by all generators
func WithRegistry(reg *registry.Registry) Option {
	return func(b *Builder) {
		b.registry = reg
	}
}

// WithHeaders sets the header directory
func WithHeaders(URL string) Option {
	return func(b *Builder) {
		b.headersURL = URL
	}
}

// WithOutputs sets the C source, signature table and constants destinations
func WithOutputs(sourceURL, signaturesURL, constantsURL string) Option {
	return func(b *Builder) {
		b.sourceURL = sourceURL
		b.signaturesURL = signaturesURL
		b.constantsURL = constantsURL
	}
}

// WithSignatureFormat sets the signature table encoding
func WithSignatureFormat(format emitter.Format) Option {
	return func(b *Builder) {
		b.signatureFormat = format
	}
}

// WithConstantsFormat sets the constants encoding
func WithConstantsFormat(format emitter.Format) Option {
	return func(b *Builder) {
		b.constantsFormat = format
	}
}

// WithNamespace sets the host namespace of the constants artifact
func WithNamespace(namespace string) Option {
	return func(b *Builder) {
		b.namespace = namespace
	}
}

// WithConstantHeaders sets the enum headers, an empty name disables that group
func WithConstantHeaders(core, gui, domain string) Option {
	return func(b *Builder) {
		b.coreHeader = core
		b.guiHeader = gui
		b.domainHeader = domain
	}
}

// WithAuxFile sets the header name excluded from declaration scanning
func WithAuxFile(name string) Option {
	return func(b *Builder) {
		b.auxFile = name
	}
}

// WithHostLibrary drops signature entries for symbols the host exports natively
func WithHostLibrary(enabled bool) Option {
	return func(b *Builder) {
		b.hostLibrary = enabled
	}
}

// WithHelperSignatures controls whether helper catalog entries are described in the signature table
func WithHelperSignatures(enabled bool) Option {
	return func(b *Builder) {
		b.helperSignatures = enabled
	}
}

// WithPreamble replaces the include block emitted ahead of the helper catalog
func WithPreamble(preamble string) Option {
	return func(b *Builder) {
		b.preamble = preamble
	}
}

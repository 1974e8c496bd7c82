// Package main provides the shimgen CLI that turns a directory of C headers into
// a C shim translation unit, a host signature table and a constants table.
//
// Modes:
//   - generate : shimgen [flags]
//   - check    : shimgen -check [flags]   (exit 3 when published artifacts drifted)
//   - verify   : shimgen -verify path/to/lib [flags]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/shimgen/builder"
	"github.com/viant/shimgen/emitter"
	"github.com/viant/shimgen/hostffi"
	"github.com/viant/shimgen/registry"
)

const (
	exitFailure = 1
	exitUsage   = 2
	exitDrift   = 3
)

var (
	flagHeaders         = flag.String("headers", builder.DefaultHeaders, "directory holding the C headers")
	flagSource          = flag.String("out-source", builder.DefaultSource, "destination of the generated C source")
	flagSignatures      = flag.String("out-signatures", builder.DefaultSignatures, "destination of the signature table")
	flagConstants       = flag.String("out-constants", builder.DefaultConstants, "destination of the constants table")
	flagRegistry        = flag.String("registry", "", "YAML registry replacing the built-in struct and scalar catalog")
	flagSignatureFormat = flag.String("signature-format", string(emitter.FormatRew), "signature table format: rew, yaml or json")
	flagConstantsFormat = flag.String("constants-format", string(emitter.FormatRew), "constants table format: rew, yaml or json")
	flagNamespace       = flag.String("namespace", emitter.DefaultNamespace, "host namespace receiving the constants")
	flagCore            = flag.String("core", builder.DefaultCoreHeader, "core enum header, its first enum block is skipped")
	flagGui             = flag.String("gui", builder.DefaultGuiHeader, "gui enum header")
	flagDomain          = flag.String("domain", "", "optional third-party enum header")
	flagHostLibrary     = flag.Bool("host-library", false, "omit functions the host runtime already exports")
	flagHelpers         = flag.Bool("helpers", true, "describe the helper catalog in the signature table")
	flagCheck           = flag.Bool("check", false, "compare regenerated artifacts with the published ones without writing")
	flagVerify          = flag.String("verify", "", "shared library, or directory holding it, to resolve every signature against")
	flagLibName         = flag.String("lib-name", "shim", "library name looked up when -verify names a directory")
	flagVerbose         = flag.Bool("v", false, "report skipped lines and wrapped symbols")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  GENERATE : %s [flags]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  CHECK    : %s -check [flags]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "  VERIFY   : %s -verify libshim.so [flags]\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(exitUsage)
	}
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	signatureFormat, err := emitter.ParseFormat(*flagSignatureFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -signature-format: %v\n", err)
		return exitUsage
	}
	constantsFormat, err := emitter.ParseFormat(*flagConstantsFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -constants-format: %v\n", err)
		return exitUsage
	}
	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	signaturesURL := outputName(*flagSignatures, explicit["out-signatures"], signatureFormat)
	constantsURL := outputName(*flagConstants, explicit["out-constants"], constantsFormat)

	fs := afs.New()
	opts := []builder.Option{
		builder.WithFS(fs),
		builder.WithHeaders(*flagHeaders),
		builder.WithOutputs(*flagSource, signaturesURL, constantsURL),
		builder.WithSignatureFormat(signatureFormat),
		builder.WithConstantsFormat(constantsFormat),
		builder.WithNamespace(*flagNamespace),
		builder.WithConstantHeaders(*flagCore, *flagGui, *flagDomain),
		builder.WithHostLibrary(*flagHostLibrary),
		builder.WithHelperSignatures(*flagHelpers),
	}
	if *flagRegistry != "" {
		reg, err := registry.LoadURL(ctx, fs, *flagRegistry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return exitFailure
		}
		opts = append(opts, builder.WithRegistry(reg))
	}
	srv := builder.New(opts...)

	if *flagCheck {
		drifts, result, err := srv.Check(ctx)
		if err != nil {
			return fail(err)
		}
		report(result)
		for _, drift := range drifts {
			fmt.Fprintf(os.Stdout, "%s", drift.Diff)
		}
		if len(drifts) > 0 {
			fmt.Fprintf(os.Stderr, "%d artifact(s) out of date\n", len(drifts))
			return exitDrift
		}
		return 0
	}

	var result *builder.Result
	if *flagVerify != "" {
		result, err = srv.Generate(ctx)
	} else {
		result, err = srv.Run(ctx)
	}
	if err != nil {
		return fail(err)
	}
	report(result)
	if *flagVerify == "" {
		fmt.Fprintf(os.Stderr, "generated %d signature(s) from %d header(s), fingerprint %s\n", len(result.Entries), len(result.Headers), result.Fingerprint)
		return 0
	}
	libPath := libraryPath(*flagVerify, *flagLibName)
	unresolved, err := hostffi.Verify(libPath, result.Entries)
	if err != nil {
		return fail(err)
	}
	for _, item := range unresolved {
		fmt.Fprintf(os.Stderr, "unresolved %s: %s\n", item.Symbol, item.Reason)
	}
	if len(unresolved) > 0 {
		return exitFailure
	}
	fmt.Fprintf(os.Stderr, "resolved %d signature(s) in %s\n", len(result.Entries), libPath)
	return 0
}

// outputName swaps the extension of a default destination to match its format
func outputName(name string, explicit bool, format emitter.Format) string {
	if explicit {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + format.Ext()
}

// libraryPath resolves a directory to the platform specific library file inside it
func libraryPath(path, name string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return hostffi.LibraryPath(path, name)
	}
	return path
}

func fail(err error) int {
	var stepErr *builder.StepError
	if errors.As(err, &stepErr) {
		fmt.Fprintf(os.Stderr, "shimgen failed at %s: %v\n", stepErr.Step, err)
		return exitFailure
	}
	fmt.Fprintf(os.Stderr, "shimgen failed: %v\n", err)
	return exitFailure
}

func report(result *builder.Result) {
	for _, warning := range result.TypeWarnings {
		if warning.Parameter != "" {
			fmt.Fprintf(os.Stderr, "warning: %s: parameter %s has unknown type %q, passed as buffer\n", warning.Symbol, warning.Parameter, warning.Type)
			continue
		}
		fmt.Fprintf(os.Stderr, "warning: %s: unknown return type %q, returned as buffer\n", warning.Symbol, warning.Type)
	}
	for _, warning := range result.ConstantWarnings {
		if warning.Member == "" {
			fmt.Fprintf(os.Stderr, "warning: %s:%d %q: %s\n", warning.Header, warning.Line, warning.Expr, warning.Reason)
			continue
		}
		fmt.Fprintf(os.Stderr, "warning: %s:%d %s.%s = %s: %s\n", warning.Header, warning.Line, warning.Alias, warning.Member, warning.Expr, warning.Reason)
	}
	for _, duplicate := range result.Duplicates {
		fmt.Fprintf(os.Stderr, "warning: %s declared in %v\n", duplicate.Symbol, duplicate.Headers)
		if *flagVerbose {
			for i, declaration := range duplicate.Declarations {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", duplicate.Headers[i], declaration)
			}
		}
	}
	if !*flagVerbose {
		if len(result.Skipped) > 0 {
			fmt.Fprintf(os.Stderr, "skipped %d line(s), use -v for details\n", len(result.Skipped))
		}
		return
	}
	for _, item := range result.Skipped {
		fmt.Fprintf(os.Stderr, "skipped %s:%d %q: %s\n", item.Header, item.Line, item.Text, item.Reason)
	}
	for _, header := range result.Headers {
		if symbols := result.Wrapped[header.Name]; len(symbols) > 0 {
			fmt.Fprintf(os.Stderr, "%s: wrapped %v\n", header.Name, symbols)
		}
	}
}

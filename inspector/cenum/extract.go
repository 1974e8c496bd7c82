package cenum

import (
	"github.com/viant/shimgen/inspector/graph"
)

type (
	// Warning reports an enumerator whose value could not be resolved
	Warning struct {
		Header string `yaml:"header,omitempty"`
		Alias  string `yaml:"alias,omitempty"`
		Member string `yaml:"member"`
		Expr   string `yaml:"expr"`
		Line   int    `yaml:"line,omitempty"`
		Reason string `yaml:"reason"`
	}

	options struct {
		skipFirst bool
		header    string
	}

	// Option configures Extract
	Option func(*options)
)

// WithSkipFirst drops the first block, used for headers that open with a placeholder enum
func WithSkipFirst(skip bool) Option {
	return func(o *options) {
		o.skipFirst = skip
	}
}

// WithHeader sets the header name reported in warnings
func WithHeader(name string) Option {
	return func(o *options) {
		o.header = name
	}
}

// Extract resolves enum blocks into a flat constant table.
// Each block starts counting at zero; an explicit value resets the counter and
// every member advances it by one. Symbols repeated across blocks keep the last value.
func Extract(blocks []*graph.EnumBlock, opts ...Option) (*graph.ConstantTable, []*Warning) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.skipFirst && len(blocks) > 0 {
		blocks = blocks[1:]
	}
	table := graph.NewConstantTable()
	var warnings []*Warning
	for _, block := range blocks {
		var counter int64
		for _, member := range block.Members {
			if member.Expr != "" {
				value, err := Eval(member.Expr, table)
				if err != nil {
					warnings = append(warnings, &Warning{
						Header: o.header,
						Alias:  block.Alias,
						Member: member.Name,
						Expr:   member.Expr,
						Line:   member.Line,
						Reason: err.Error(),
					})
					counter++
					continue
				}
				counter = value
			}
			table.Put(member.Name, counter)
			counter++
		}
	}
	return table, warnings
}

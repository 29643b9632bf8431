// Package ruleset defines the compiled, in-memory form of a rules file.
//
// A Ruleset is produced by the parser and is immutable afterwards: the
// linker and the evaluator only read it. It consists of:
//
//   - Settings: null literals, thousands separator, numeric precision
//   - ColumnSpec: the declared column names and the structural flags
//   - Blocks: per-column lists of ValueRule
//   - Conditionals: if/then rules spanning one or two columns
//
// ValueRule is a closed tagged variant selected by Kind. A value rule never
// references another column; cross-column logic exists only through
// ConditionalRule.
package ruleset

// ColumnSpec is the mandatory `column names in [...]` declaration plus the
// structural flags.
type ColumnSpec struct {
	Names                 []string
	AllColumnsRequired    bool
	NoExtraColumnsAllowed bool
	CheckColumnOrder      bool
	Line                  int // line of the `column names in` statement
}

// Contains reports whether name is declared.
func (c ColumnSpec) Contains(name string) bool {
	for _, n := range c.Names {
		if n == name {
			return true
		}
	}
	return false
}

// ColumnRuleBlock holds the value rules declared under `column: '<name>'`.
// Rule order is preserved for reporting only.
type ColumnRuleBlock struct {
	Column string
	Line   int
	Rules  []ValueRule
}

// DeclaredType returns the type of the first `has value type` rule.
func (b *ColumnRuleBlock) DeclaredType() (ValueType, bool) {
	if b == nil {
		return TypeUnknown, false
	}
	for _, r := range b.Rules {
		if r.Kind == KindTypeIs {
			return r.Type, true
		}
	}
	return TypeUnknown, false
}

// Side is one half of a conditional rule: a column and a single value rule.
type Side struct {
	Column string
	Rule   ValueRule
}

// ConditionalRule is an if/then pair: for every row where If holds, Then
// must hold too.
type ConditionalRule struct {
	Name string
	Line int
	If   Side
	Then Side
}

// Ruleset is the root of a parsed rules file.
type Ruleset struct {
	Settings     Settings
	Columns      ColumnSpec
	Blocks       map[string]*ColumnRuleBlock
	BlockOrder   []string // column names in order of first appearance
	Conditionals []ConditionalRule
	Source       string // rules file name, may be empty
}

// New returns an empty ruleset with default settings.
func New() *Ruleset {
	return &Ruleset{
		Settings: DefaultSettings(),
		Blocks:   make(map[string]*ColumnRuleBlock),
	}
}

// Block returns the rule block for column, or nil.
func (rs *Ruleset) Block(column string) *ColumnRuleBlock {
	return rs.Blocks[column]
}

// OrderedBlocks returns the blocks in order of first appearance.
func (rs *Ruleset) OrderedBlocks() []*ColumnRuleBlock {
	out := make([]*ColumnRuleBlock, 0, len(rs.BlockOrder))
	for _, name := range rs.BlockOrder {
		if b, ok := rs.Blocks[name]; ok {
			out = append(out, b)
		}
	}
	return out
}

// DeclaredType returns the declared value type of a column.
func (rs *Ruleset) DeclaredType(column string) (ValueType, bool) {
	return rs.Block(column).DeclaredType()
}

// ValueRuleCount counts value rules across blocks and conditional rules.
func (rs *Ruleset) ValueRuleCount() int {
	n := 0
	for _, b := range rs.Blocks {
		n += len(b.Rules)
	}
	return n + 2*len(rs.Conditionals)
}

// Conditional returns the conditional rule with the given name.
func (rs *Ruleset) Conditional(name string) (ConditionalRule, bool) {
	for _, c := range rs.Conditionals {
		if c.Name == name {
			return c, true
		}
	}
	return ConditionalRule{}, false
}

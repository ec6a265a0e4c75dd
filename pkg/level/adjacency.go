package level

import (
	"github.com/Faultbox/tilesmith/pkg/edges"
)

// Rule is a 3x3 row-major neighbourhood a tile is drawn for; true marks a
// neighbour of the same terrain.
type Rule [9]bool

// Rules is an ordered set of adjacency rules, one per autotile variant.
type Rules []Rule

// NoMatch marks cells without a matching rule in Apply results.
const NoMatch = -1

// Shorthand for the rule table below.
const (
	o = false
	x = true
)

// DefaultRules is the 47 tile blob set sampled from the environment sheet.
var DefaultRules = Rules{
	{o, o, o, o, x, x, o, x, x},
	{o, x, x, o, x, x, o, x, x},
	{o, x, x, o, x, x, o, o, o},
	{o, x, x, x, x, x, x, x, x},
	{x, x, x, x, x, x, o, x, x},
	{o, o, o, x, x, x, x, x, x},
	{x, x, x, x, x, x, x, x, x},
	{x, x, x, x, x, x, o, o, o},
	{x, x, o, x, x, x, x, x, x},
	{x, x, x, x, x, x, x, x, o},
	{o, o, o, x, x, o, x, x, o},
	{x, x, o, x, x, o, x, x, o},
	{x, x, o, x, x, o, o, o, o},
	{o, o, o, o, x, o, o, o, o},
	{o, x, o, x, x, x, o, x, o},
	{o, o, o, o, x, x, o, x, o},
	{o, x, o, o, x, x, o, o, o},
	{o, o, o, o, x, o, o, x, o},
	{o, x, o, o, x, o, o, x, o},
	{o, x, o, o, x, o, o, o, o},
	{o, o, o, x, x, o, o, x, o},
	{o, x, o, x, x, o, o, o, o},
	{o, x, x, x, x, x, x, x, o},
	{x, x, o, x, x, x, o, x, x},
	{o, o, o, o, x, x, o, o, o},
	{o, o, o, x, x, x, o, x, x},
	{o, x, x, x, x, x, o, o, o},
	{o, x, o, o, x, x, o, x, x},
	{o, x, x, o, x, x, o, x, o},
	{o, o, o, x, x, x, o, o, o},
	{o, o, o, x, x, x, x, x, o},
	{x, x, o, x, x, x, o, o, o},
	{o, x, o, x, x, o, x, x, o},
	{x, x, o, x, x, o, o, x, o},
	{o, o, o, x, x, o, o, o, o},
	{o, x, x, x, x, x, o, x, x},
	{x, x, x, x, x, x, o, x, o},
	{o, x, o, o, x, x, o, x, o},
	{o, x, o, x, x, x, o, o, o},
	{x, x, o, x, x, x, x, x, o},
	{o, x, o, x, x, x, x, x, x},
	{o, o, o, x, x, x, o, x, o},
	{o, x, o, x, x, o, o, x, o},
	{o, x, o, x, x, x, o, x, x},
	{o, x, x, x, x, x, o, x, o},
	{o, x, o, x, x, x, x, x, o},
	{x, x, o, x, x, x, o, x, o},
}

// RulesFromSignatures turns sampled edge signatures into rules; black
// samples become neighbours.
func RulesFromSignatures(sigs []edges.Signature) Rules {
	rules := make(Rules, len(sigs))
	for i, s := range sigs {
		rules[i] = Rule(s.Bools())
	}
	return rules
}

// Complexity counts the neighbours a rule requires.
func Complexity(r Rule) int {
	n := 0
	for _, v := range r {
		if v {
			n++
		}
	}
	return n
}

// Match returns the index of the most complex rule equal to neighborhood.
// Earlier rules win ties, and a rule with no neighbours never matches.
func (rs Rules) Match(neighborhood [9]bool) (int, bool) {
	best, bestComplexity := NoMatch, 0
	for i, r := range rs {
		if Rule(neighborhood) != r {
			continue
		}
		if c := Complexity(r); c > bestComplexity {
			best, bestComplexity = i, c
		}
	}
	return best, best != NoMatch
}

// Apply matches the neighbourhood of every cell for which pred holds and
// returns the rule index per cell in row-major order. Cells where pred is
// false or no rule matches get NoMatch.
func (rs Rules) Apply(l *Layer, pred func(uint32) bool) []int {
	w, h := l.Size()
	out := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = NoMatch
			if !pred(l.At(x, y)) {
				continue
			}
			if i, ok := rs.Match(l.Neighborhood(x, y, pred)); ok {
				out[y*w+x] = i
			}
		}
	}
	return out
}

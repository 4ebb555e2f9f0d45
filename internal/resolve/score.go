package resolve

import (
	"math"
	"strings"

	"github.com/abramin/wattson/internal/catalog"
)

// Similarity returns a similarity in [0,1] between two indicator phrases:
// the Dice coefficient over rune bigrams of their normalized forms.
func Similarity(a, b string) float64 {
	na, nb := catalog.Normalize(a), catalog.Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	ra, rb := []rune(na), []rune(nb)
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	ga := bigramCounts(ra)
	gb := bigramCounts(rb)
	overlap := 0
	for bg, n := range ga {
		if m := gb[bg]; m > 0 {
			if m < n {
				overlap += m
			} else {
				overlap += n
			}
		}
	}
	return 2 * float64(overlap) / float64(len(ra)-1+len(rb)-1)
}

func bigramCounts(runes []rune) map[string]int {
	counts := make(map[string]int, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		counts[string(runes[i:i+2])]++
	}
	return counts
}

// ruleBoost sums the weights of every rule whose terms all appear in the
// candidate name. When nothing matched the set's default boost applies.
func ruleBoost(rules RuleSet, candidateName string) float64 {
	var sum float64
	matched := false
	for _, rule := range rules.Rules {
		if len(rule.Terms) == 0 {
			continue
		}
		if containsAll(candidateName, rule.Terms) {
			sum += rule.Weight
			matched = true
		}
	}
	if !matched {
		sum += rules.DefaultBoost
	}
	return sum
}

func containsAll(s string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(s, term) {
			return false
		}
	}
	return true
}

// round4 keeps scores stable and readable in candidate tables.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

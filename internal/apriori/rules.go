package apriori

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/goapriori/internal/catindex"
	"github.com/dbsmedya/goapriori/internal/itemset"
	"github.com/dbsmedya/goapriori/internal/logger"
	"github.com/dbsmedya/goapriori/internal/oracle"
)

// ErrInconsistentCounts is returned when an antecedent counts fewer rows
// than the itemset containing it, which can only happen if the dataset
// changed during the run.
var ErrInconsistentCounts = errors.New("antecedent count is below itemset count")

// Rule is an association LHS => RHS with a single-value consequent.
type Rule struct {
	LHS        itemset.ItemSet
	RHS        itemset.Value
	Count      int64 // rows matching LHS and RHS
	LHSCount   int64 // rows matching LHS
	Confidence float64
	Support    float64
}

// RuleGenerator derives rules from a mining result.
type RuleGenerator struct {
	index      *catindex.Index
	oracle     oracle.Oracle
	confidence float64
	logger     *logger.Logger
	observer   Observer
}

// NewRuleGenerator creates a generator keeping rules whose confidence is
// strictly above the given fraction.
func NewRuleGenerator(idx *catindex.Index, o oracle.Oracle, confidence float64, log *logger.Logger) (*RuleGenerator, error) {
	if idx == nil {
		return nil, fmt.Errorf("category index is nil")
	}
	if o == nil {
		return nil, fmt.Errorf("oracle is nil")
	}
	if err := validateFraction("confidence", confidence); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &RuleGenerator{index: idx, oracle: o, confidence: confidence, logger: log}, nil
}

// SetObserver attaches a telemetry observer.
func (g *RuleGenerator) SetObserver(obs Observer) {
	g.observer = obs
}

// Generate considers, for every frequent itemset of two or more members,
// each member as the consequent and the rest as the antecedent.
func (g *RuleGenerator) Generate(ctx context.Context, result *Result) ([]Rule, error) {
	var rules []Rule

	for _, fs := range result.All() {
		if fs.Items.Len() < 2 {
			continue
		}
		for _, rhs := range fs.Items.Values() {
			rule, err := g.derive(ctx, result, fs, rhs)
			if err != nil {
				return nil, err
			}
			if rule.Confidence > g.confidence {
				rules = append(rules, rule)
				g.logger.Debugw("Rule accepted",
					"lhs", rule.LHS.String(),
					"rhs", string(rule.RHS),
					"confidence", rule.Confidence,
				)
			}
		}
	}

	if g.observer != nil {
		g.observer.RulesObserved(len(rules))
	}
	g.logger.Infow("Association rules derived",
		"rules", len(rules),
		"min_confidence", g.confidence,
	)
	return rules, nil
}

func (g *RuleGenerator) derive(ctx context.Context, result *Result, fs FrequentItemSet, rhs itemset.Value) (Rule, error) {
	lhs := fs.Items.Without(rhs)

	pred, err := g.index.Predicate(lhs)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid antecedent: %w", err)
	}
	lhsCount, err := g.oracle.Count(ctx, pred)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to count antecedent %s: %w", lhs, err)
	}

	op := fmt.Sprintf("rule %s => %s", lhs, rhs)
	if lhsCount == 0 {
		return Rule{}, &ComputationError{Op: op, Err: ErrZeroDivision}
	}
	if lhsCount < fs.Count {
		return Rule{}, &ComputationError{Op: op, Err: ErrInconsistentCounts}
	}
	if result.TotalRows <= 0 {
		return Rule{}, &ComputationError{Op: op, Err: ErrZeroDivision}
	}

	return Rule{
		LHS:        lhs,
		RHS:        rhs,
		Count:      fs.Count,
		LHSCount:   lhsCount,
		Confidence: float64(fs.Count) / float64(lhsCount),
		Support:    float64(fs.Count) / float64(result.TotalRows),
	}, nil
}

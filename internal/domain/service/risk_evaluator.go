package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gnavadev/fraud-watch/internal/domain/model"
	"github.com/gnavadev/fraud-watch/internal/domain/valueobject"
)

// Rule identifiers, recorded in RiskAssessment.Reasons in evaluation order.
const (
	RuleChargebackCountHigh       = "chargeback_count_high"
	RuleNewRegistration           = "new_registration"
	RuleRevenueCapacityAnomaly    = "revenue_capacity_anomaly"
	RuleExcessivePerCapitaRevenue = "excessive_per_capita_revenue"
	RuleCorporateMissingIRSFiling = "corporate_missing_irs_filing"
	RuleGeographicMismatch        = "geographic_mismatch"
	RuleClaimVolumeExcess         = "claim_volume_excess"
)

var (
	anomalousRevenue    = decimal.NewFromInt(500_000)
	perCapitaRevenueCap = decimal.NewFromInt(100_000)
)

// Rule is one independent risk rule. Fires must be pure and must return false
// when any field it reads is absent.
type Rule struct {
	Fires  func(r model.RawProviderRecord) bool
	ID     string
	Points int
}

// Evaluator maps a raw provider record to its risk assessment.
type Evaluator interface {
	Evaluate(record model.RawProviderRecord) (model.RiskAssessment, error)
}

// DefaultRules returns the production rule table in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:     RuleChargebackCountHigh,
			Points: 25,
			Fires: func(r model.RawProviderRecord) bool {
				return r.ChargebackCount != nil && *r.ChargebackCount > 3
			},
		},
		{
			ID:     RuleNewRegistration,
			Points: 15,
			Fires: func(r model.RawProviderRecord) bool {
				return r.RegistrationAgeDays != nil && *r.RegistrationAgeDays < 30
			},
		},
		{
			// A center claiming $500k revenue with room for two children.
			ID:     RuleRevenueCapacityAnomaly,
			Points: 40,
			Fires: func(r model.RawProviderRecord) bool {
				return r.Revenue != nil && r.Capacity != nil &&
					r.Revenue.GreaterThan(anomalousRevenue) && *r.Capacity < 3
			},
		},
		{
			// Average spend is around $15k per child.
			ID:     RuleExcessivePerCapitaRevenue,
			Points: 30,
			Fires: func(r model.RawProviderRecord) bool {
				if r.Revenue == nil || r.Capacity == nil || *r.Capacity <= 0 {
					return false
				}
				return r.Revenue.Div(decimal.NewFromInt(int64(*r.Capacity))).GreaterThan(perCapitaRevenueCap)
			},
		},
		{
			ID:     RuleCorporateMissingIRSFiling,
			Points: 15,
			Fires: func(r model.RawProviderRecord) bool {
				return strings.HasPrefix(r.IRSStatus, model.IRSStatusNotFound) &&
					strings.Contains(r.LicenseHolder, "Inc")
			},
		},
		{
			ID:     RuleGeographicMismatch,
			Points: 10,
			Fires: func(r model.RawProviderRecord) bool {
				return r.GeoMismatch != nil && *r.GeoMismatch
			},
		},
		{
			ID:     RuleClaimVolumeExcess,
			Points: 20,
			Fires: func(r model.RawProviderRecord) bool {
				if r.ClaimVolume == nil || r.Capacity == nil || *r.Capacity <= 0 {
					return false
				}
				// claims > capacity*50, without the multiplication overflowing.
				q, rem := *r.ClaimVolume/50, *r.ClaimVolume%50
				return q > *r.Capacity || (q == *r.Capacity && rem > 0)
			},
		},
	}
}

// RiskEvaluator is a domain service that scores provider records against a
// fixed, ordered rule table. It holds no state between calls.
type RiskEvaluator struct {
	rules []Rule
}

// NewRiskEvaluator creates a RiskEvaluator with the default rule table.
func NewRiskEvaluator() *RiskEvaluator {
	return NewRiskEvaluatorWithRules(DefaultRules())
}

// NewRiskEvaluatorWithRules creates a RiskEvaluator over a custom rule table.
func NewRiskEvaluatorWithRules(rules []Rule) *RiskEvaluator {
	owned := make([]Rule, len(rules))
	copy(owned, rules)
	return &RiskEvaluator{rules: owned}
}

// Rules returns a copy of the rule table in evaluation order.
func (e *RiskEvaluator) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate sums the contributions of every firing rule, clamps the total to
// [0,100] and derives the verdict. Reasons lists fired rule IDs in table order.
func (e *RiskEvaluator) Evaluate(record model.RawProviderRecord) (model.RiskAssessment, error) {
	if err := record.Validate(); err != nil {
		return model.RiskAssessment{}, err
	}

	score := 0
	reasons := make([]string, 0)

	for _, rule := range e.rules {
		fired, err := applyRule(rule, record)
		if err != nil {
			return model.RiskAssessment{}, err
		}
		if !fired {
			continue
		}
		if rule.Points > 0 {
			score += rule.Points
		}
		reasons = append(reasons, rule.ID)
	}

	score = clampScore(score)

	return model.RiskAssessment{
		RiskScore: score,
		Verdict:   valueobject.VerdictFromScore(score),
		Reasons:   reasons,
	}, nil
}

func applyRule(rule Rule, record model.RawProviderRecord) (fired bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: rule %s: %v", model.ErrRuleEvaluation, rule.ID, p)
		}
	}()
	if rule.Fires == nil {
		return false, fmt.Errorf("%w: rule %s has no predicate", model.ErrRuleEvaluation, rule.ID)
	}
	return rule.Fires(record), nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Package margin implements initial/maintenance margin computation and
// margin status evaluation per spec.md §4.3, grounded on the margin
// checker of the teacher's
// x/perpetual/keeper/margin.go, generalized from the teacher's flat
// 5%/2.5% rates to the tiered-notional schedule spec.md requires.
package margin

import "github.com/vela-exchange/perpcore/types"

// Tier is one entry of an ascending-by-notional leverage schedule:
// positions whose notional is at or below MaxNotional are capped at
// MaxLeverage. A market with a single tier behaves as flat max leverage.
type Tier struct {
	MaxNotional types.Dec
	MaxLeverage types.Dec
}

// Config holds the per-market margin parameters fixed at market creation,
// per the Design Notes §9 ("configurations as plain records").
type Config struct {
	Tiers   []Tier
	MMRatio types.Dec // maintenance = initial * MMRatio, MMRatio in (0, 1)
}

// Requirement is the computed margin requirement for a given size/mark.
type Requirement struct {
	Notional         types.Dec
	EffectiveLeverage types.Leverage
	Initial          types.Quote
	Maintenance      types.Quote
}

// Compute walks the leverage tiers and derives initial/maintenance margin
// per spec.md §4.3 steps 1-5.
func Compute(cfg Config, absSize types.Dec, mark types.Price, requestedLeverage types.Leverage) Requirement {
	notional := absSize.Mul(mark.Value())

	tierCap := requestedLeverage.Value()
	for _, tier := range cfg.Tiers {
		if notional.LTE(tier.MaxNotional) {
			tierCap = tier.MaxLeverage
			break
		}
		tierCap = tier.MaxLeverage
	}

	effective := types.MinDec(requestedLeverage.Value(), tierCap)
	effectiveLeverage := types.NewLeverageUnchecked(effective)

	initial := types.NewQuote(notional.Quo(effective))
	maintenance := types.NewQuote(initial.Value().Mul(cfg.MMRatio))

	return Requirement{
		Notional:          notional,
		EffectiveLeverage: effectiveLeverage,
		Initial:           initial,
		Maintenance:       maintenance,
	}
}

// Status is the coarse health bucket derived from equity vs. margin
// requirement, per spec.md §4.3.
type Status int8

const (
	Healthy Status = iota
	Warning
	Liquidatable
)

func (s Status) String() string {
	switch s {
	case Warning:
		return "warning"
	case Liquidatable:
		return "liquidatable"
	default:
		return "healthy"
	}
}

// EvaluateStatus classifies equity E against the requirement: Healthy if
// E >= IM, Warning if MM <= E < IM, Liquidatable if E < MM.
func EvaluateStatus(equity types.Quote, req Requirement) Status {
	if equity.Value().GTE(req.Initial.Value()) {
		return Healthy
	}
	if equity.Value().GTE(req.Maintenance.Value()) {
		return Warning
	}
	return Liquidatable
}

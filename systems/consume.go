package systems

import (
	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/config"
)

// ConsumeKind is the size outcome of a well/consumable contact.
type ConsumeKind uint8

const (
	ConsumeGrow ConsumeKind = iota
	ConsumeShrink
	ConsumeOversize // size gate tripped; no size change, no score
)

// String returns the display name for a ConsumeKind.
func (k ConsumeKind) String() string {
	switch k {
	case ConsumeGrow:
		return "grow"
	case ConsumeShrink:
		return "shrink"
	case ConsumeOversize:
		return "oversize"
	}
	return "unknown"
}

// EndReason tags why a session ended.
type EndReason uint8

const (
	EndNone EndReason = iota
	EndOversizeCollision
	EndUndersizeShrink
)

// String returns the display name for an EndReason.
func (r EndReason) String() string {
	switch r {
	case EndNone:
		return "none"
	case EndOversizeCollision:
		return "oversize_collision"
	case EndUndersizeShrink:
		return "undersize_shrink"
	}
	return "unknown"
}

// ConsumptionRules holds the grow/shrink/score constants.
type ConsumptionRules struct {
	GrowFactor        float64
	ShrinkFactor      float64
	ShrinkPenalty     int
	MultiplierDivisor float64
}

// ConsumptionRulesFromConfig extracts consumption constants from cfg.
func ConsumptionRulesFromConfig(cfg *config.Config) ConsumptionRules {
	return ConsumptionRules{
		GrowFactor:        cfg.Well.GrowFactor,
		ShrinkFactor:      cfg.Well.ShrinkFactor,
		ShrinkPenalty:     cfg.Score.ShrinkPenalty,
		MultiplierDivisor: cfg.Score.MultiplierDivisor,
	}
}

// Multiplier returns max(1, floor(diameter / divisor)).
func (r ConsumptionRules) Multiplier(diameter float64) int {
	m := int(diameter / r.MultiplierDivisor)
	if m < 1 {
		return 1
	}
	return m
}

// Consumption is the result of one well/consumable contact.
type Consumption struct {
	Kind        ConsumeKind
	Fatal       EndReason // EndNone unless the session must end
	Points      int       // Requested score delta; negative for the shrink penalty
	OldDiameter float64
	NewDiameter float64
}

// ResolveConsumption applies the size gate, then the class gate, to a contact.
// It resizes the well in place; removing the consumable is left to the caller.
func ResolveConsumption(rules ConsumptionRules, wellBody *components.Body, well *components.Well, body *components.Body, cons *components.Consumable, bypass bool) Consumption {
	res := Consumption{OldDiameter: wellBody.Diameter()}

	// Size gate is absolute: no bypass, no class match overrides it
	if body.Diameter() >= wellBody.Diameter() {
		res.Kind = ConsumeOversize
		res.Fatal = EndOversizeCollision
		res.NewDiameter = res.OldDiameter
		return res
	}

	if cons.Class == well.TargetClass || bypass {
		res.Kind = ConsumeGrow
		res.Points = cons.Points * rules.Multiplier(res.OldDiameter)
		wellBody.SetRadius(wellBody.Radius * rules.GrowFactor)
	} else {
		res.Kind = ConsumeShrink
		res.Points = -rules.ShrinkPenalty
		wellBody.SetRadius(wellBody.Radius * rules.ShrinkFactor)
	}
	res.NewDiameter = wellBody.Diameter()

	// Size exhaustion is evaluated strictly after the shrink completes
	if res.NewDiameter < well.MinDiameter {
		res.Fatal = EndUndersizeShrink
	}
	return res
}

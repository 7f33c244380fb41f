package components

// Category identifies the body variant.
type Category uint8

const (
	CategoryWell Category = iota
	CategoryConsumable
	CategoryPowerUp
)

// String returns the display name for a Category.
func (c Category) String() string {
	switch c {
	case CategoryWell:
		return "well"
	case CategoryConsumable:
		return "consumable"
	case CategoryPowerUp:
		return "powerup"
	}
	return "unknown"
}

// ClassID indexes the configured class table in ascending rank.
type ClassID uint8

// EffectKind identifies a power-up effect.
type EffectKind uint8

const (
	EffectRangeBypass EffectKind = iota
	EffectImmobilize
)

// EffectKindCount is the number of power-up kinds.
const EffectKindCount = 2

// String returns the display name for an EffectKind.
func (k EffectKind) String() string {
	names := EffectKindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// EffectKindNames returns the display names for all effect kinds.
// The order matches the EffectKind constants.
func EffectKindNames() []string {
	return []string{"range_bypass", "immobilize"}
}

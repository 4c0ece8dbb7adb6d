package economy

import "fmt"

// Effect is an unusual particle effect. The code is the backpack.tf price
// index / Steam schema particle ID. Effect identity is the join key between
// catalog entries, listings, and offer line items, so lookups are strict:
// unknown names and codes are malformed data, never silently mapped.
type Effect struct {
	Name string
	Code int
}

// NoEffect is the zero Effect, used for items that are not unusual.
var NoEffect = Effect{}

var effectTable = []Effect{
	{"Community Sparkle", 4},
	{"Holy Glow", 5},
	{"Green Confetti", 6},
	{"Purple Confetti", 7},
	{"Haunted Ghosts", 8},
	{"Green Energy", 9},
	{"Purple Energy", 10},
	{"Circling TF Logo", 11},
	{"Massed Flies", 12},
	{"Burning Flames", 13},
	{"Scorching Flames", 14},
	{"Searing Plasma", 15},
	{"Vivid Plasma", 16},
	{"Sunbeams", 17},
	{"Circling Peace Sign", 18},
	{"Circling Heart", 19},
	{"Map Stamps", 20},
	{"Stormy Storm", 29},
	{"Blizzardy Storm", 30},
	{"Nuts n' Bolts", 31},
	{"Orbiting Planets", 32},
	{"Orbiting Fire", 33},
	{"Bubbling", 34},
	{"Smoking", 35},
	{"Steaming", 36},
	{"Flaming Lantern", 37},
	{"Cloudy Moon", 38},
	{"Cauldron Bubbles", 39},
	{"Eerie Orbiting Fire", 40},
	{"Knifestorm", 43},
	{"Misty Skull", 44},
	{"Harvest Moon", 45},
	{"It's A Secret To Everybody", 46},
	{"Stormy 13th Hour", 47},
	{"Kill-a-Watt", 56},
	{"Terror-Watt", 57},
	{"Cloud 9", 58},
	{"Aces High", 59},
	{"Dead Presidents", 60},
	{"Miami Nights", 61},
	{"Disco Beat Down", 62},
	{"Phosphorous", 63},
	{"Sulphurous", 64},
	{"Memory Leak", 65},
	{"Overclocked", 66},
	{"Electrostatic", 67},
	{"Power Surge", 68},
	{"Anti-Freeze", 69},
	{"Time Warp", 70},
	{"Green Black Hole", 71},
	{"Roboactive", 72},
	{"Arcana", 73},
	{"Spellbound", 74},
	{"Chiroptera Venenata", 75},
	{"Poisoned Shadows", 76},
	{"Something Burning This Way Comes", 77},
	{"Hellfire", 78},
	{"Darkblaze", 79},
	{"Demonflame", 80},
	{"Bonzo The All-Gnawing", 81},
	{"Amaranthine", 82},
	{"Stare From Beyond", 83},
	{"The Ooze", 84},
	{"Ghastly Ghosts Jr", 85},
	{"Haunted Phantasm Jr", 86},
	{"Frostbite", 87},
	{"Molten Mallard", 88},
	{"Morning Glory", 89},
	{"Death at Dusk", 90},
	{"Abduction", 91},
	{"Atomic", 92},
	{"Subatomic", 93},
	{"Electric Hat Protector", 94},
	{"Magnetic Hat Protector", 95},
	{"Voltaic Hat Protector", 96},
	{"Galactic Codex", 97},
	{"Ancient Codex", 98},
	{"Nebula", 99},
	{"Death by Disco", 100},
	{"It's a mystery to everyone", 101},
	{"It's a puzzle to me", 102},
	{"Ether Trail", 103},
	{"Nether Trail", 104},
	{"Ancient Eldritch", 105},
	{"Eldritch Flame", 106},
	{"Neutron Star", 107},
	{"Tesla Coil", 108},
	{"Starstorm Insomnia", 109},
	{"Starstorm Slumber", 110},
	{"Hot", 701},
	{"Isotope", 702},
	{"Cool", 703},
	{"Energy Orb", 704},
	{"Showstopper", 3001},
	{"Holy Grail", 3003},
	{"'72", 3004},
	{"Fountain of Delight", 3005},
	{"Screaming Tiger", 3006},
	{"Skill Gotten Gains", 3007},
	{"Midnight Whirlwind", 3008},
	{"Silver Cyclone", 3009},
	{"Mega Strike", 3010},
	{"Haunted Phantasm", 3011},
	{"Ghastly Ghosts", 3012},
	{"Hellish Inferno", 3013},
	{"Spectral Swirl", 3014},
	{"Infernal Flames", 3015},
	{"Infernal Smoke", 3016},
}

var (
	effectByCode = func() map[int]Effect {
		m := make(map[int]Effect, len(effectTable))
		for _, e := range effectTable {
			m[e.Code] = e
		}
		return m
	}()
	effectByName = func() map[string]Effect {
		m := make(map[string]Effect, len(effectTable))
		for _, e := range effectTable {
			m[e.Name] = e
		}
		return m
	}()
)

// EffectForCode returns the Effect with the given price-index code.
func EffectForCode(code int) (Effect, error) {
	e, ok := effectByCode[code]
	if !ok {
		return NoEffect, fmt.Errorf("economy: effect code %d: %w", code, ErrMalformedData)
	}
	return e, nil
}

// EffectForName returns the Effect with the given display name.
func EffectForName(name string) (Effect, error) {
	e, ok := effectByName[name]
	if !ok {
		return NoEffect, fmt.Errorf("economy: effect name %q: %w", name, ErrMalformedData)
	}
	return e, nil
}

// Effects returns every known effect, in price-index order of the table.
func Effects() []Effect {
	out := make([]Effect, len(effectTable))
	copy(out, effectTable)
	return out
}

func (e Effect) String() string {
	return e.Name
}

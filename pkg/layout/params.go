package layout

// Params are the tunable force constants. Values are taken as given; range
// clamping is the caller's concern.
type Params struct {
	Repulsion  float64 // inverse-square push between every pair
	Gravity    float64 // pull toward the origin, scaled by mass
	Attraction float64 // spring stiffness along links

	// SpringLength is the rest length of a link spring. Links shorter than
	// this exert no pull.
	SpringLength float64

	Damping  float64 // velocity retained per step, in (0,1]
	SimSpeed float64 // multiplier applied to dt for velocity updates

	// MaxLinkDistance caps the length of a link after integration. Zero
	// disables the clamp.
	MaxLinkDistance float64
}

// DefaultParams returns the standard force settings
func DefaultParams() Params {
	return Params{
		Repulsion:       15000,
		Gravity:         0.05,
		Attraction:      1,
		SpringLength:    150,
		Damping:         0.85,
		SimSpeed:        5,
		MaxLinkDistance: 300,
	}
}

// Stats summarizes a single step
type Stats struct {
	KineticEnergy float64
	MaxSpeed      float64
	// Scrubbed counts nodes whose state went non-finite and was restored
	Scrubbed int
}

package entity

// Domain is the short label describing what an entity is currently doing.
type Domain string

const (
	// DomainGeneric labels seed entities created at boot.
	DomainGeneric Domain = "generic"

	// DomainEmergent labels entities created by reproduction.
	DomainEmergent Domain = "emergent"

	// DomainReactor labels entities woken by an active neighbour.
	DomainReactor Domain = "reactor"

	// DomainSleeper labels entities that went dormant for lack of neighbours.
	DomainSleeper Domain = "sleeper"
)

// String returns the label text.
func (d Domain) String() string {
	return string(d)
}

// IsValid returns true if d is one of the known labels.
func (d Domain) IsValid() bool {
	switch d {
	case DomainGeneric, DomainEmergent, DomainReactor, DomainSleeper:
		return true
	default:
		return false
	}
}

// Short returns the label truncated or padded to six characters, the width
// of the domain column in the population panel.
func (d Domain) Short() string {
	s := string(d)
	if len(s) > 6 {
		return s[:6]
	}
	for len(s) < 6 {
		s += " "
	}
	return s
}

// Description returns a human-readable description of the label.
func (d Domain) Description() string {
	switch d {
	case DomainGeneric:
		return "Seed entity, no rule has fired yet"
	case DomainEmergent:
		return "Spawned by an active parent"
	case DomainReactor:
		return "Activated by an active neighbour"
	case DomainSleeper:
		return "Went dormant with no active neighbours"
	default:
		return "Unknown domain"
	}
}

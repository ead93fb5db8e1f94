package domain

// DataKind classifies what physical quantity a library file covers. The set
// is open: manifests from newer releases may carry kinds this tool has never
// seen, and they are passed through untouched.
type DataKind string

const (
	KindNeutron DataKind = "neutron"
	KindThermal DataKind = "thermal"
	KindPhoton  DataKind = "photon"
	KindWMP     DataKind = "wmp"
)

// Particle identifies an incident particle family within a release.
type Particle string

const (
	ParticleNeutron Particle = "neutron"
	ParticlePhoton  Particle = "photon"
	ParticleThermal Particle = "thermal"
)

// SourceFormat names the evaluated data format a release ships.
type SourceFormat string

const (
	FormatACE  SourceFormat = "ace"
	FormatENDF SourceFormat = "endf"
)

// DecayMode is one branch of a nuclide's decay.
type DecayMode struct {
	Type           string  `json:"type"`
	Daughter       string  `json:"daughter"`
	BranchingRatio float64 `json:"branching_ratio"`
}

// DecayRecord is the decay sub-library evaluation for one nuclide, as
// produced by the external ENDF parser.
type DecayRecord struct {
	Name        string      `json:"name"`
	HalfLife    float64     `json:"half_life"` // seconds; 0 for stable
	Stable      bool        `json:"stable"`
	DecayEnergy float64     `json:"decay_energy"` // eV
	Modes       []DecayMode `json:"modes"`
}

// ReactionRecord is one transmutation reaction from an incident-neutron
// evaluation: MT number, Q value and the product it leads to.
type ReactionRecord struct {
	MT      int     `json:"mt"`
	QValue  float64 `json:"q_value"` // eV
	Product string  `json:"product,omitempty"`
}

// NeutronRecord lists the transmutation-relevant reactions of one target.
type NeutronRecord struct {
	Name        string           `json:"name"`
	Fissionable bool             `json:"fissionable"`
	Reactions   []ReactionRecord `json:"reactions"`
}

// YieldRecord holds independent fission product yields for one fissioning
// nuclide, keyed by incident energy.
type YieldRecord struct {
	Name     string               `json:"name"`
	Energies []float64            `json:"energies"`
	Yields   []map[string]float64 `json:"yields"` // parallel to Energies
}

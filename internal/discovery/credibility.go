package discovery

// Source-authority priors for credibility fusion. An authoritative
// (knowledge-base) definition starts higher than a model-generated one.
const (
	AuthoritativeBase   = 0.95
	UnauthoritativeBase = 0.70
)

// Credibility fuses a source-authority prior with embedding similarity:
//
//	credibility = base * (0.7 + 0.3*similarity)
//
// The 0.7 term keeps a floor at zero similarity so authority alone carries
// weight; the 0.3 term caps similarity's influence so a highly similar but
// unauthoritative candidate cannot outrank an authoritative one with middling
// similarity. Range is [0.49, 0.95] for similarity in [0,1].
func Credibility(hasAuthoritativeSource bool, similarity float64) float64 {
	base := UnauthoritativeBase
	if hasAuthoritativeSource {
		base = AuthoritativeBase
	}
	return base * (0.7 + 0.3*similarity)
}

package assessment

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Demographics are onboarding answers that travel with a session for
// reporting and personalisation. They never affect filtering or scoring.
type Demographics struct {
	Profession        string `json:"profession,omitempty"`
	AreaOfFocus       string `json:"areaOfFocus,omitempty"`
	YearsOfExperience string `json:"yearsOfExperience,omitempty"`
}

// Profile holds the respondent attributes used to select applicable questions.
type Profile struct {
	Role         Role         `json:"role"`
	Sector       Sector       `json:"sector,omitempty"`
	SubSector    string       `json:"subSector,omitempty"`
	OrgType      OrgType      `json:"orgType,omitempty"`
	Industry     string       `json:"industry,omitempty"`
	Country      string       `json:"country,omitempty"`
	Demographics Demographics `json:"demographics"`
}

// NewProfile canonicalises country and industry spellings against the track's
// vocabulary and validates the result.
func NewProfile(t *Track, p Profile) (Profile, error) {
	p.Country = canonical(p.Country, t.Countries())
	p.Industry = canonical(p.Industry, t.Industries())
	if err := p.Validate(t); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate rejects profiles whose attribute combination is not representable
// on the track.
func (p Profile) Validate(t *Track) error {
	if p.Role == "" {
		return fmt.Errorf("%w: role is required", ErrInvalidProfile)
	}
	if _, ok := t.RoleTier(p.Role); !ok {
		return fmt.Errorf("%w: role %q is not defined for track %s", ErrInvalidProfile, p.Role, t.ID)
	}

	switch p.Sector {
	case "", SectorPublic, SectorPrivate:
	default:
		return fmt.Errorf("%w: unknown sector %q", ErrInvalidProfile, p.Sector)
	}
	switch p.OrgType {
	case "", OrgTypeNGO, OrgTypeAssociation:
	default:
		return fmt.Errorf("%w: unknown org type %q", ErrInvalidProfile, p.OrgType)
	}

	if p.Industry != "" && p.Sector != SectorPrivate {
		return fmt.Errorf("%w: industry is only allowed for the private sector", ErrInvalidProfile)
	}

	if t.IndustryRule {
		if p.OrgType != "" {
			return fmt.Errorf("%w: org type is not used by track %s", ErrInvalidProfile, t.ID)
		}
	} else if p.Sector != "" {
		return fmt.Errorf("%w: sector is not used by track %s", ErrInvalidProfile, t.ID)
	}

	return nil
}

// Tier returns the access tier of the profile's role on t. Unknown roles map
// to the lowest tier.
func (p Profile) Tier(t *Track) Tier {
	tier, ok := t.RoleTier(p.Role)
	if !ok {
		return TierOperational
	}
	return tier
}

// canonical maps a case variant of a known name to its spelling in known.
// Unknown names are returned trimmed.
func canonical(v string, known []string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	// Casers are stateful and must not be shared across goroutines.
	fold := cases.Fold()
	key := fold.String(v)
	for _, k := range known {
		if fold.String(k) == key {
			return k
		}
	}
	return v
}

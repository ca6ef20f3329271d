package fetch

import (
	"net/url"
	"strings"
)

// Tier classifies how authoritative a source is
type Tier int

const (
	TierUnknown   Tier = iota
	TierPrimary        // Laws, courts, official and academic sources
	TierSecondary      // Encyclopedias, wire services, established publishers
	TierTertiary       // Blogs, forums, everything else
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// Default domain lists; subdomains match their parent
var (
	DefaultPrimaryDomains = []string{
		"gov", "gov.uk", "gouv.fr", "gc.ca", "gov.au", "edu", "ac.uk",
		"europa.eu", "un.org", "who.int", "legislation.gov.uk", "eur-lex.europa.eu",
		"supremecourt.gov", "uscourts.gov", "curia.europa.eu", "echr.coe.int",
		"nih.gov", "doi.org", "arxiv.org",
	}
	DefaultSecondaryDomains = []string{
		"wikipedia.org", "britannica.com", "reuters.com", "apnews.com", "bbc.co.uk", "bbc.com",
		"nature.com", "science.org", "snopes.com", "factcheck.org", "politifact.com",
		"law.cornell.edu", "justia.com", "findlaw.com",
	}
)

// AuthorityClassifier assigns tiers to URLs by domain
type AuthorityClassifier struct {
	primary   map[string]bool
	secondary map[string]bool
}

// NewAuthorityClassifier creates a classifier. Nil lists use the defaults.
func NewAuthorityClassifier(primary, secondary []string) *AuthorityClassifier {
	if primary == nil {
		primary = DefaultPrimaryDomains
	}
	if secondary == nil {
		secondary = DefaultSecondaryDomains
	}

	c := &AuthorityClassifier{
		primary:   make(map[string]bool, len(primary)),
		secondary: make(map[string]bool, len(secondary)),
	}
	for _, d := range primary {
		c.primary[strings.ToLower(d)] = true
	}
	for _, d := range secondary {
		c.secondary[strings.ToLower(d)] = true
	}
	return c
}

// Classify returns the tier of rawURL. Secondary matches are checked first
// so a listed publisher under an academic suffix (law.cornell.edu) stays secondary.
func (c *AuthorityClassifier) Classify(rawURL string) Tier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return TierUnknown
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	switch {
	case matchDomain(host, c.secondary):
		return TierSecondary
	case matchDomain(host, c.primary):
		return TierPrimary
	default:
		return TierTertiary
	}
}

// matchDomain reports whether host or any parent domain is in set
func matchDomain(host string, set map[string]bool) bool {
	for {
		if set[host] {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			return false
		}
		host = host[i+1:]
	}
}

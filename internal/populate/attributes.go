package populate

// AttributeSet is the canonical, provider-agnostic attribute bag consumed by
// the populator. Each provider adapter builds one before handing off, so the
// populator never sees provider-specific shapes.
type AttributeSet struct {
	// PrimaryAffiliation is the single primary affiliation value.
	PrimaryAffiliation string
	// Affiliations is the ordered affiliation list. Shibboleth sources may
	// deliver semicolon-delimited values; they are split before processing.
	Affiliations []string
	// Groups is the ordered list of group codes.
	Groups []string
	// Email address, applied when present.
	Email string
	// FirstName is the given name, applied when present.
	FirstName string
	// LastName is the family name, applied when present.
	LastName string
	// Establishment is the optional establishment code.
	Establishment string
}

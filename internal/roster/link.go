package roster

import "strings"

// ProxyMarker is the trip code used on rosters for dead-head rides.
const ProxyMarker = "Viatger"

// LinkKind tells direct references from proxies.
type LinkKind uint8

const (
	LinkDirect LinkKind = iota + 1
	LinkProxy
)

func (k LinkKind) String() string {
	switch k {
	case LinkDirect:
		return "direct"
	case LinkProxy:
		return "proxy"
	default:
		return "unknown"
	}
}

// Link is the parsed target of a trip reference.
type Link struct {
	Kind LinkKind

	// TripCode is the real trip this reference points at. Empty for a proxy
	// whose annotation carries no code.
	TripCode string

	// Overrides replace the displayed endpoints of a proxy. Empty means none.
	OriginOverride      string
	DestinationOverride string
}

// ParseLink decodes a roster entry. A proxy annotation has the form
// "realTripCode-origin-destination" where the last two fields are optional.
func ParseLink(code, annotation string) Link {
	code = strings.TrimSpace(code)
	if !strings.EqualFold(code, ProxyMarker) {
		return Link{Kind: LinkDirect, TripCode: code}
	}

	link := Link{Kind: LinkProxy}
	fields := strings.Split(strings.TrimSpace(annotation), "-")
	link.TripCode = strings.TrimSpace(fields[0])
	if len(fields) > 1 {
		link.OriginOverride = strings.TrimSpace(fields[1])
	}
	if len(fields) > 2 {
		link.DestinationOverride = strings.TrimSpace(fields[2])
	}
	return link
}

// TripReference is a duty-local pointer to a trip.
type TripReference struct {
	Code       string
	CycleID    string
	Annotation string

	// Link is filled by NewTripReference when the record is read.
	Link Link
}

// NewTripReference builds a reference and parses its link once.
func NewTripReference(code, cycleID, annotation string) TripReference {
	return TripReference{
		Code:       strings.TrimSpace(code),
		CycleID:    strings.TrimSpace(cycleID),
		Annotation: annotation,
		Link:       ParseLink(code, annotation),
	}
}

// Target returns the parsed link, parsing on the fly for references that
// were built as struct literals.
func (r TripReference) Target() Link {
	if r.Link.Kind != 0 {
		return r.Link
	}
	return ParseLink(r.Code, r.Annotation)
}

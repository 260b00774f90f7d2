package registry

import (
	"fmt"

	"github.com/comas/mantletool/internal/suggest"
)

// DomainNotFoundError reports a requested target domain that does not exist
// in the registry, along with the closest existing names for the caller to
// render as a hint.
type DomainNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *DomainNotFoundError) Error() string {
	return fmt.Sprintf("target protection domain not found: '%s'", e.Name)
}

// FindDomain returns the domain with the given name, or a
// *DomainNotFoundError carrying up to 3 similarly-named candidates.
func (r *Registry) FindDomain(name string) (Domain, error) {
	d := Domain{Name: name}
	if r.HasDomain(d) {
		return d, nil
	}
	return Domain{}, &DomainNotFoundError{
		Name:        name,
		Suggestions: suggest.ByLength(name, r.DomainNames(), 3),
	}
}

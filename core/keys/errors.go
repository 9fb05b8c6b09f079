package keys

import "fmt"

// AliasError reports a lookup that assumed the wrong side of the alias table:
// resolving something that is not an alias, or asking for the alias of an
// alias. It signals an internal inconsistency, not a problem in a script.
type AliasError struct {
	Token  string
	Reason string
}

func (e *AliasError) Error() string {
	return fmt.Sprintf("alias lookup: %q %s", e.Token, e.Reason)
}

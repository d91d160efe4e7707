package pricing

import "encoding/json"

// Selection holds the customer's choice(s) for one group or variant
// dimension. Clients send either a bare string (radio groups, variant
// choice) or a list of strings (checkbox groups); both decode into the
// same representation.
type Selection []string

// UnmarshalJSON accepts a scalar string or an array of strings.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = Selection{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = Selection(many)
	return nil
}

// First returns the sole or first chosen name, or "" when nothing was chosen.
func (s Selection) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Count is the number of chosen names. A bare scalar counts as one.
func (s Selection) Count() int {
	return len(s)
}

// Customizations maps an add-on group title or variant dimension label to
// the customer's selection under that key.
type Customizations map[string]Selection

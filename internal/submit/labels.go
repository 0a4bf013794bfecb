package submit

import (
	"fmt"
	"strings"
)

// ParseLabels parses a "--driver-labels" value of the form
// "k1=v1,k2=v2,...". Duplicate keys resolve last-wins. AppIDLabelKey may not
// appear: it is always set by the orchestrator.
func ParseLabels(raw string) (map[string]string, error) {
	labels := map[string]string{}
	if strings.TrimSpace(raw) == "" {
		return labels, nil
	}

	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedLabel, tok)
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedLabel, tok)
		}
		if k == AppIDLabelKey {
			return nil, fmt.Errorf("%w: %q", ErrReservedLabel, k)
		}

		labels[k] = v
	}

	return labels, nil
}

// BuildSelectors assembles the reserved label set for a submission, parsing
// any caller-supplied custom labels on top of the derived AppId and the
// user-supplied app name.
func BuildSelectors(appID, appName, customLabelsRaw string) (Selectors, error) {
	custom, err := ParseLabels(customLabelsRaw)
	if err != nil {
		return Selectors{}, err
	}
	return Selectors{
		AppID:        appID,
		AppName:      appName,
		CustomLabels: custom,
	}, nil
}

package wizard

import (
	"fmt"

	"github.com/tilework-tech/nori/internal/messages"
	"github.com/tilework-tech/nori/internal/profiles"
)

// PickProfile lists the source's profiles in a selection prompt and returns
// the chosen profile name. The first profile is preselected.
func PickProfile(ui UI, source profiles.Source) (string, error) {
	metas, err := source.List()
	if err != nil {
		return "", err
	}
	if len(metas) == 0 {
		return "", fmt.Errorf("no profiles available")
	}

	options := make([]Option, len(metas))
	for i, meta := range metas {
		label := meta.Name
		if meta.Description != "" {
			label = fmt.Sprintf("%s: %s", meta.Name, meta.Description)
		}
		options[i] = Option{Label: label, Value: meta.Name}
	}

	chosen := options[0].Value
	if err := ui.Select(messages.WizardPickProfileTitle, options, &chosen); err != nil {
		return "", err
	}
	return chosen, nil
}

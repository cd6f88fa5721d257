// Package autofill builds the initial values of a build options form from a
// template version's parameter schema and the workspace's active build.
package autofill

import "github.com/tormodhaugland/wsb/internal/model"

// Ephemeral returns the ephemeral parameters in schema order. The order
// returned here is the display and submission order for the whole form.
func Ephemeral(params []model.TemplateVersionParameter) []model.TemplateVersionParameter {
	result := make([]model.TemplateVersionParameter, 0, len(params))
	for _, p := range params {
		if p.Ephemeral {
			result = append(result, p)
		}
	}
	return result
}

// Resolve returns one value per ephemeral parameter, index-aligned with
// Ephemeral(params). Values found in prior are tagged active_build; the rest
// are left empty and tagged default. Prior values for names outside the
// ephemeral set are ignored.
func Resolve(params []model.TemplateVersionParameter, prior []model.WorkspaceBuildParameter) []model.AutofillBuildParameter {
	byName := make(map[string]string, len(prior))
	for _, bp := range prior {
		// first occurrence wins
		if _, ok := byName[bp.Name]; !ok {
			byName[bp.Name] = bp.Value
		}
	}

	ephemeral := Ephemeral(params)
	values := make([]model.AutofillBuildParameter, len(ephemeral))
	for i, p := range ephemeral {
		if v, ok := byName[p.Name]; ok {
			values[i] = model.AutofillBuildParameter{
				WorkspaceBuildParameter: model.WorkspaceBuildParameter{Name: p.Name, Value: v},
				Source:                  model.SourceActiveBuild,
			}
			continue
		}
		values[i] = model.AutofillBuildParameter{
			WorkspaceBuildParameter: model.WorkspaceBuildParameter{Name: p.Name},
			Source:                  model.SourceDefault,
		}
	}
	return values
}

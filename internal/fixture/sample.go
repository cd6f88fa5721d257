package fixture

import (
	"time"

	"github.com/tormodhaugland/wsb/internal/model"
)

func int32p(v int32) *int32 { return &v }

// Sample returns a small data set with one workspace per popover outcome:
// a classic-flow template with ephemeral parameters, a template with none,
// and a template on the settings-page flow.
func Sample() Data {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	return Data{
		Workspaces: []model.Workspace{
			{
				ID:                              "0b6f6a52-9d7e-4d8a-9a31-2d1f0c1e7a01",
				Name:                            "dev",
				OwnerName:                       "alice",
				TemplateName:                    "docker",
				TemplateUseClassicParameterFlow: true,
				LatestBuild: model.WorkspaceBuild{
					ID: "b-dev-1", BuildNumber: 1, TemplateVersionID: "tv-docker",
					Transition: model.TransitionStart, Status: "running", CreatedAt: created,
				},
			},
			{
				ID:                              "0b6f6a52-9d7e-4d8a-9a31-2d1f0c1e7a02",
				Name:                            "scratch",
				OwnerName:                       "alice",
				TemplateName:                    "plain",
				TemplateUseClassicParameterFlow: true,
				LatestBuild: model.WorkspaceBuild{
					ID: "b-scratch-1", BuildNumber: 1, TemplateVersionID: "tv-plain",
					Transition: model.TransitionStart, Status: "running", CreatedAt: created,
				},
			},
			{
				ID:           "0b6f6a52-9d7e-4d8a-9a31-2d1f0c1e7a03",
				Name:         "gpu",
				OwnerName:    "bob",
				TemplateName: "kubernetes",
				LatestBuild: model.WorkspaceBuild{
					ID: "b-gpu-1", BuildNumber: 1, TemplateVersionID: "tv-k8s",
					Transition: model.TransitionStart, Status: "running", CreatedAt: created,
				},
			},
		},
		TemplateVersions: []TemplateVersion{
			{
				ID: "tv-docker",
				Parameters: []model.TemplateVersionParameter{
					{
						Name: "region", DisplayName: "Region", Description: "Where the workspace runs for this start.",
						Type: model.ParameterTypeString, Mutable: true, Ephemeral: true, Required: true,
						Options: []model.TemplateVersionParameterOption{
							{Name: "US East", Value: "us-east"},
							{Name: "US West", Value: "us-west"},
							{Name: "EU Central", Value: "eu-central"},
						},
					},
					{
						Name: "image", DisplayName: "Image", Type: model.ParameterTypeString,
						Mutable: true, DefaultValue: "ubuntu:24.04",
					},
					{
						Name: "cpu", DisplayName: "CPU cores", Type: model.ParameterTypeNumber,
						Mutable: true, Ephemeral: true, DefaultValue: "2",
						ValidationMin: int32p(1), ValidationMax: int32p(16),
					},
					{
						Name: "debug", DisplayName: "Debug mode", Description: "Start with verbose agent logs.",
						Type: model.ParameterTypeBool, Mutable: true, Ephemeral: true, DefaultValue: "false",
					},
				},
			},
			{
				ID: "tv-plain",
				Parameters: []model.TemplateVersionParameter{
					{Name: "dotfiles_uri", DisplayName: "Dotfiles", Type: model.ParameterTypeString, Mutable: true},
				},
			},
			{
				ID: "tv-k8s",
				Parameters: []model.TemplateVersionParameter{
					{
						Name: "gpu_count", DisplayName: "GPUs", Description: "GPUs attached for this start.",
						Type: model.ParameterTypeNumber, Mutable: true, Ephemeral: true, DefaultValue: "0",
					},
				},
			},
		},
		Builds: []Build{
			{
				WorkspaceBuild: model.WorkspaceBuild{
					ID: "b-dev-1", BuildNumber: 1, TemplateVersionID: "tv-docker",
					Transition: model.TransitionStart, Status: "running", CreatedAt: created,
				},
				WorkspaceID: "0b6f6a52-9d7e-4d8a-9a31-2d1f0c1e7a01",
				Parameters: []model.WorkspaceBuildParameter{
					{Name: "region", Value: "us-east"},
					{Name: "image", Value: "ubuntu:24.04"},
				},
			},
			{
				WorkspaceBuild: model.WorkspaceBuild{
					ID: "b-scratch-1", BuildNumber: 1, TemplateVersionID: "tv-plain",
					Transition: model.TransitionStart, Status: "running", CreatedAt: created,
				},
				WorkspaceID: "0b6f6a52-9d7e-4d8a-9a31-2d1f0c1e7a02",
			},
			{
				WorkspaceBuild: model.WorkspaceBuild{
					ID: "b-gpu-1", BuildNumber: 1, TemplateVersionID: "tv-k8s",
					Transition: model.TransitionStart, Status: "running", CreatedAt: created,
				},
				WorkspaceID: "0b6f6a52-9d7e-4d8a-9a31-2d1f0c1e7a03",
				Parameters:  []model.WorkspaceBuildParameter{{Name: "gpu_count", Value: "1"}},
			},
		},
	}
}

// WriteSample writes Sample to path unless a file already exists there.
func WriteSample(path string) (bool, error) {
	s, err := Load(path)
	if err != nil {
		return false, err
	}
	if len(s.data.Workspaces) > 0 {
		return false, nil
	}
	s.data = Sample()
	return true, s.Save()
}

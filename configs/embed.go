// Package configs provides embedded configuration templates for localfiles.
//
// Templates are embedded at build time so every distribution carries them.
// They are written by `localfiles init` (project) and `localfiles init --user`
// (user).
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults (config.NewConfig)
//  2. User config (~/.config/localfiles/config.yaml)
//  3. Project config (.localfiles.yaml)
//  4. Environment variables (LOCALFILES_*)
package configs

import _ "embed"

// UserConfigTemplate is the template for machine-level configuration:
// index location, logging and server settings shared by every project.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the template for .localfiles.yaml: the paths to
// index and watch plus search tuning for one project.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

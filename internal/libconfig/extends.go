package libconfig

// MaxExtendsDepth bounds the length of an extends chain.
const MaxExtendsDepth = 32

// ApplyExtends flattens the extends chain starting at project into a single
// config. Fields set closer to the starting project win; each top-level
// option block is replaced wholesale, never deep-merged. The result keeps the
// starting project's name and root and has no extends reference. A project
// without extends is returned unchanged.
func ApplyExtends(project ProjectConfig, all []ProjectConfig) (ProjectConfig, error) {
	if project.Extends == "" {
		return project, nil
	}

	byName := make(map[string]ProjectConfig, len(all))
	for _, p := range all {
		if p.Name != "" {
			if _, dup := byName[p.Name]; !dup {
				byName[p.Name] = p
			}
		}
	}

	label := project.Name
	if label == "" {
		label = "<unnamed>"
	}

	// chain[0] is the starting project, chain[len-1] the root-most ancestor.
	chain := []ProjectConfig{project}
	visited := map[string]bool{}
	if project.Name != "" {
		visited[project.Name] = true
	}

	current := project
	for current.Extends != "" {
		target := current.Extends
		if visited[target] {
			return ProjectConfig{}, NewConfigError(ErrExtendsCycle,
				"Circular extends detected for 'projects[%s]': '%s' is already part of the chain.", label, target)
		}
		if len(chain) > MaxExtendsDepth {
			return ProjectConfig{}, NewConfigError(ErrExtendsTooDeep,
				"The extends chain of 'projects[%s]' exceeds %d levels.", label, MaxExtendsDepth)
		}
		parent, ok := byName[target]
		if !ok {
			return ProjectConfig{}, NewConfigError(ErrExtendsNotFound,
				"No project config named '%s' to extend, config location 'projects[%s].extends'.", target, current.Name)
		}
		visited[target] = true
		chain = append(chain, parent)
		current = parent
	}

	flat := chain[len(chain)-1]
	for i := len(chain) - 2; i >= 0; i-- {
		flat = overlayProject(flat, chain[i])
	}
	flat.Name = project.Name
	flat.Root = project.Root
	flat.Extends = ""
	return flat, nil
}

// overlayProject returns base with every field set on top copied over it.
func overlayProject(base, top ProjectConfig) ProjectConfig {
	out := base
	mergeString(&out.PackageJSON, top.PackageJSON)
	out.BuildAction = MergeBuildAction(base.BuildAction, top.BuildAction)
	if top.EnvOverrides != nil {
		out.EnvOverrides = top.EnvOverrides
	}
	return out
}

// MergeBuildAction shallow-merges top onto base: every option block set in
// top replaces the corresponding block of base.
func MergeBuildAction(base, top BuildAction) BuildAction {
	out := base
	mergeString(&out.OutputPath, top.OutputPath)
	if top.AllowOutsideWorkspaceRoot != nil {
		out.AllowOutsideWorkspaceRoot = top.AllowOutsideWorkspaceRoot
	}
	if top.Clean != nil {
		out.Clean = top.Clean
	}
	if top.Copy != nil {
		out.Copy = top.Copy
	}
	if top.Style != nil {
		out.Style = top.Style
	}
	if top.ScriptTranspilation != nil {
		out.ScriptTranspilation = top.ScriptTranspilation
	}
	if top.ScriptBundle != nil {
		out.ScriptBundle = top.ScriptBundle
	}
	return out
}

// mergeString overwrites the target only if value is non-empty.
func mergeString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

package libconfig

// ApplyEnvOverrides shallow-merges, in declared order, every envOverrides
// entry whose name is truthy in env. Names with no matching flag are skipped.
// The override table itself is kept on the result; project is not modified.
func ApplyEnvOverrides(project ProjectConfig, env Environment) (ProjectConfig, []string) {
	out := project
	var applied []string
	for _, ov := range project.EnvOverrides {
		if !env.Truthy(ov.Name) {
			continue
		}
		out.BuildAction = MergeBuildAction(out.BuildAction, ov.Action)
		applied = append(applied, ov.Name)
	}
	return out, applied
}

// Resolve flattens project's extends chain against the document's projects
// and then applies the environment overrides. It returns the applied override
// names alongside the resolved config.
func Resolve(project ProjectConfig, all []ProjectConfig, env Environment) (ProjectConfig, []string, error) {
	flat, err := ApplyExtends(project, all)
	if err != nil {
		return ProjectConfig{}, nil, err
	}
	resolved, applied := ApplyEnvOverrides(flat, env)
	return resolved, applied, nil
}

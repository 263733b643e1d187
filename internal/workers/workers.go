package workers

// ToolDef describes one tool a worker exposes.
type ToolDef struct {
	Name        string
	Description string
}

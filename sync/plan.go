package sync

// OpKind classifies a single planned file operation.
type OpKind string

const (
	// OpAdd means the file exists only in staging and will be created.
	OpAdd OpKind = "add"

	// OpUpdate means the file exists in the working tree and will be
	// overwritten with staged content.
	OpUpdate OpKind = "update"

	// OpSkip means the file matched an exclude and will not be touched.
	OpSkip OpKind = "skip"
)

// FileOp is one planned operation against the working tree.
type FileOp struct {
	// Path is the destination path, relative to the working tree root.
	Path string

	// Kind is the planned operation.
	Kind OpKind
}

// Plan is the ordered set of operations a sync run will perform.
// Order follows the lexical walk of the staging tree.
type Plan struct {
	Ops []FileOp
}

// Changes returns the number of operations that write to the tree.
func (p *Plan) Changes() int {
	n := 0
	for _, op := range p.Ops {
		if op.Kind != OpSkip {
			n++
		}
	}
	return n
}

// Skipped returns the destination paths protected by excludes.
func (p *Plan) Skipped() []string {
	var paths []string
	for _, op := range p.Ops {
		if op.Kind == OpSkip {
			paths = append(paths, op.Path)
		}
	}
	return paths
}

package cache

// LayoutKeyOpts holds the layout options that affect the computed result.
type LayoutKeyOpts struct {
	RankSep float64 `json:"rank_sep"`
	NodeSep float64 `json:"node_sep"`
	MarginX float64 `json:"margin_x"`
	MarginY float64 `json:"margin_y"`
	Strict  bool    `json:"strict"`
}

// ArtifactKeyOpts holds the export options that affect an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Keyer derives cache keys. Implementations must return the same key for
// equal inputs and distinct keys whenever any option differs.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey generates a key for a layout of the graph with the given hash.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for an artifact exported from a layout.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}

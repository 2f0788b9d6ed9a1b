package layout

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// Default spacing values.
const (
	DefaultRankSep = 100.0
	DefaultNodeSep = 30.0
)

// Options controls spacing and checking behaviour of [Compute].
//
// A zero Options is valid but has no spacing at all; start from
// [DefaultOptions] and override fields instead.
type Options struct {
	RankSep float64 `json:"rank_sep" toml:"rank_sep" yaml:"rank_sep"` // vertical gap between ranks
	NodeSep float64 `json:"node_sep" toml:"node_sep" yaml:"node_sep"` // horizontal gap between columns
	MarginX float64 `json:"margin_x" toml:"margin_x" yaml:"margin_x"`
	MarginY float64 `json:"margin_y" toml:"margin_y" yaml:"margin_y"`

	// Strict makes Compute fail with ErrCellOccupied when a node is
	// committed onto a cell that already holds another node. By default such
	// placements are accepted, which lets root nodes share column 0.
	Strict bool `json:"strict,omitempty" toml:"strict" yaml:"strict"`

	// Logger receives per-rank progress at debug level. Nil discards.
	Logger *log.Logger `json:"-" toml:"-" yaml:"-"`
}

// DefaultOptions returns the default spacing: 100 between ranks, 30 between
// columns, no margins.
func DefaultOptions() Options {
	return Options{
		RankSep: DefaultRankSep,
		NodeSep: DefaultNodeSep,
	}
}

// ParseOptions builds Options from a loosely typed key/value map such as a
// decoded JSON object. Recognised keys are rankSep, nodeSep, marginX, marginY
// and strict; snake_case spellings are accepted too. Missing keys keep their
// defaults and unknown keys are ignored. Numbers may be any Go numeric type
// or a numeric string.
func ParseOptions(m map[string]any) (Options, error) {
	return DefaultOptions().Merge(m)
}

// Merge returns a copy of o with the values in m applied on top, using the
// same keys and value rules as [ParseOptions].
func (o Options) Merge(m map[string]any) (Options, error) {
	for key, v := range m {
		var err error
		switch normalizeKey(key) {
		case "ranksep":
			o.RankSep, err = toFloat(v)
		case "nodesep":
			o.NodeSep, err = toFloat(v)
		case "marginx":
			o.MarginX, err = toFloat(v)
		case "marginy":
			o.MarginY, err = toFloat(v)
		case "strict":
			o.Strict, err = toBool(v)
		default:
			continue
		}
		if err != nil {
			return Options{}, fmt.Errorf("option %q: %w", key, err)
		}
	}
	return o, nil
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(key))
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	case interface{ Float64() (float64, error) }: // json.Number
		return n.Float64()
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(b))
	default:
		return false, fmt.Errorf("not a boolean: %v (%T)", v, v)
	}
}

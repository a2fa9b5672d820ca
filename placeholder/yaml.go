package placeholder

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/umbra/lang"
)

// LoadYAML decodes a YAML mapping into a Map.
//
// Scalars are stringified. Nested mappings are flattened by joining keys with
// '_', and sequence elements are keyed by their index:
//
//	player:
//	  name: Ada      → player_name = "Ada"
//	  stats: [3, 4]  → player_stats_0 = "3", player_stats_1 = "4"
func LoadYAML(r io.Reader) (Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err)
	}

	var doc map[string]any

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.Int("bytes", len(data)))
	}

	m := make(Map)
	for k, v := range doc {
		flatten(m, k, v)
	}

	return m, nil
}

// LoadFile reads a YAML placeholder file.
func LoadFile(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	// Prefetch file contents while decoding.
	ra := readahead.NewReader(f)
	defer ra.Close()

	m, err := LoadYAML(ra)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("path", path))
	}

	return m, nil
}

func flatten(m Map, key string, v any) {
	switch v := v.(type) {
	case map[string]any:
		for k, sub := range v {
			flatten(m, key+"_"+k, sub)
		}

	case map[any]any:
		for k, sub := range v {
			flatten(m, key+"_"+scalar(k), sub)
		}

	case []any:
		for i, sub := range v {
			flatten(m, key+"_"+strconv.Itoa(i), sub)
		}

	default:
		m.Set(key, scalar(v))
	}
}

func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return yamlString(v)
	}
}

// yamlString renders any other decoded value (timestamps, for example) the
// way YAML would write it.
func yamlString(v any) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}

	return strings.TrimRight(string(b), "\r\n")
}

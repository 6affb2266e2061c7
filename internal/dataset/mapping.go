package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/attribution-cli/internal/fetcher"
)

// LoadChannelMapping reads a source→channel mapping from a CSV table with
// source and channel columns, or from a YAML map when the path ends in
// .yaml or .yml. Any failure is logged and yields an empty mapping.
func LoadChannelMapping(ctx context.Context, path string, opts fetcher.Options) map[string]string {
	m, err := readChannelMapping(ctx, path, opts)
	if err != nil {
		zap.L().Error("error loading channel mapping", zap.String("path", path), zap.Error(err))
		return map[string]string{}
	}
	zap.L().Info("loaded channel mapping", zap.String("path", path), zap.Int("sources", len(m)))
	return m
}

func readChannelMapping(ctx context.Context, path string, opts fetcher.Options) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: read mapping")
		}
		m := make(map[string]string)
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, eris.Wrap(err, "dataset: parse mapping")
		}
		return m, nil
	}

	t, err := fetcher.ReadTable(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	ix := newIndex(t.Header)
	if err := ix.require("channel mapping", "source", "channel"); err != nil {
		return nil, err
	}
	m := make(map[string]string, len(t.Rows))
	for _, row := range t.Rows {
		if src := ix.get(row, "source"); src != "" {
			m[src] = ix.get(row, "channel")
		}
	}
	return m, nil
}

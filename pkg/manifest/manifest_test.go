// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/geodataset/pkg/types"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "index", "manifest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

var (
	t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Minute)
)

func TestRecordAndList(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, types.Download{
		Accession: "GSE1", RemotePath: "/geo/series/GSEnnn/GSE1/suppl/b.tar",
		LocalPath: "/data/b.tar", Size: 20, DownloadedAt: t1,
	}))
	require.NoError(t, s.Record(ctx, types.Download{
		Accession: "GSE1", RemotePath: "/geo/series/GSEnnn/GSE1/soft/GSE1_family.soft.gz",
		LocalPath: "/data/GSE1_family.soft.gz", Size: 10, DownloadedAt: t0,
	}))
	require.NoError(t, s.Record(ctx, types.Download{
		Accession: "GPL96", RemotePath: "/geo/platforms/GPLnnn/GPL96/suppl/x.txt",
		LocalPath: "/data/x.txt", Size: 5, DownloadedAt: t0,
	}))

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/data/GSE1_family.soft.gz", all[0].LocalPath)
	assert.Equal(t, "/data/x.txt", all[1].LocalPath)
	assert.Equal(t, "/data/b.tar", all[2].LocalPath)
	assert.True(t, all[2].DownloadedAt.Equal(t1))

	series, err := s.List(ctx, "GSE1")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, int64(10), series[0].Size)
}

func TestRecordReplacesSameLocalPath(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	d := types.Download{Accession: "GSM1", RemotePath: "/a", LocalPath: "/data/a", Size: 1, DownloadedAt: t0}
	require.NoError(t, s.Record(ctx, d))
	d.Size = 99
	d.DownloadedAt = t1
	require.NoError(t, s.Record(ctx, d))

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(99), all[0].Size)
}

func TestRecordDefaultsTimestamp(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, types.Download{RemotePath: "/a", LocalPath: "/data/a"}))
	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].DownloadedAt.IsZero())
}

func TestListEmpty(t *testing.T) {
	s, _ := openTestStore(t)

	all, err := s.List(context.Background(), "GSE404")
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestExportYAMLAndJSON(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, types.Download{
		Accession: "GDS1", RemotePath: "/geo/datasets/GDSnnn/GDS1/soft/GDS1.soft.gz",
		LocalPath: "/data/GDS1.soft.gz", Size: 42, DownloadedAt: t0,
	}))

	yamlPath := filepath.Join(dir, "export.yaml")
	require.NoError(t, s.ExportYAML(ctx, yamlPath))
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []types.Download
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "GDS1", fromYAML[0].Accession)
	assert.Equal(t, int64(42), fromYAML[0].Size)

	jsonPath := filepath.Join(dir, "export.json")
	require.NoError(t, s.ExportJSON(ctx, jsonPath))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []map[string]any
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 1)
	assert.Equal(t, "/data/GDS1.soft.gz", fromJSON[0]["local_path"])
}

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HenryZhang-ZHY/beetle/internal/config"
	"github.com/HenryZhang-ZHY/beetle/internal/errors"
	"github.com/HenryZhang-ZHY/beetle/internal/storage"
)

func newCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	store := storage.NewFsStorage(filepath.Join(t.TempDir(), "index"))
	target := t.TempDir()
	return New(store, config.Default()), target
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCreateThenSearchEmptyIndex(t *testing.T) {
	c, target := newCatalog(t)
	require.NoError(t, c.Create("idx", target))

	results, err := c.Search(context.Background(), "idx", "anything")

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSingleFileIndexed(t *testing.T) {
	c, target := newCatalog(t)
	require.NoError(t, c.Create("idx", target))
	writeFile(t, filepath.Join(target, "main.c"), "int main() { return 0; }")

	_, err := c.Update(context.Background(), "idx")
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "idx", `"int main"`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, strings.HasSuffix(results[0].Path, "main.c"))

	plain := strings.ReplaceAll(strings.ReplaceAll(results[0].Snippet, "<b>", ""), "</b>", "")
	assert.Contains(t, plain, "int main")
}

func TestIncrementalAdd(t *testing.T) {
	c, target := newCatalog(t)
	require.NoError(t, c.Create("idx", target))
	writeFile(t, filepath.Join(target, "main.c"), "int main() { return 0; }")
	_, err := c.Update(context.Background(), "idx")
	require.NoError(t, err)

	writeFile(t, filepath.Join(target, "add.h"), "int add(int a, int b) { return a + b; }")
	_, err = c.Update(context.Background(), "idx")
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "idx", `"a + b"`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, strings.HasSuffix(results[0].Path, "add.h"))

	still, err := c.Search(context.Background(), "idx", `"int main"`)
	require.NoError(t, err)
	require.Len(t, still, 1)
	assert.True(t, strings.HasSuffix(still[0].Path, "main.c"))
}

func TestIncrementalDelete(t *testing.T) {
	c, target := newCatalog(t)
	require.NoError(t, c.Create("idx", target))
	mainPath := filepath.Join(target, "main.c")
	writeFile(t, mainPath, "int main() { return 0; }")
	writeFile(t, filepath.Join(target, "add.h"), "int add(int a, int b) { return a + b; }")
	_, err := c.Update(context.Background(), "idx")
	require.NoError(t, err)

	require.NoError(t, os.Remove(mainPath))
	_, err = c.Update(context.Background(), "idx")
	require.NoError(t, err)

	gone, err := c.Search(context.Background(), "idx", "main")
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := c.Search(context.Background(), "idx", "add")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestReset_KeepsMetadataDropsDocuments(t *testing.T) {
	c, target := newCatalog(t)
	require.NoError(t, c.Create("idx", target))
	writeFile(t, filepath.Join(target, "main.c"), "int main() { return 0; }")
	_, err := c.Update(context.Background(), "idx")
	require.NoError(t, err)

	require.NoError(t, c.Reset("idx"))

	metas, err := c.List()
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "idx", metas[0].IndexName)

	results, err := c.Search(context.Background(), "idx", "main")
	require.NoError(t, err)
	assert.Empty(t, results)

	// The next update repopulates.
	_, err = c.Update(context.Background(), "idx")
	require.NoError(t, err)
	results, err = c.Search(context.Background(), "idx", "main")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestCrashConsistency_CorruptSnapshotRecovers(t *testing.T) {
	c, target := newCatalog(t)
	require.NoError(t, c.Create("idx", target))
	writeFile(t, filepath.Join(target, "main.c"), "int main() { return 0; }")
	_, err := c.Update(context.Background(), "idx")
	require.NoError(t, err)

	meta, err := c.GetMetadata("idx")
	require.NoError(t, err)
	snapPath := filepath.Join(meta.IndexPath, "file_index_snapshot.bin")
	require.NoError(t, os.WriteFile(snapPath, []byte("not a snapshot"), 0o644))

	stats, err := c.Update(context.Background(), "idx")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added, "full tree reprocessed after snapshot corruption")

	results, err := c.Search(context.Background(), "idx", `"int main"`)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestLifecycle_RemoveMakesIndexAbsent(t *testing.T) {
	c, target := newCatalog(t)
	require.NoError(t, c.Create("idx", target))

	require.NoError(t, c.Remove("idx"))

	assert.True(t, errors.IsKind(c.Remove("idx"), errors.KindNotFound))
	_, err := c.Search(context.Background(), "idx", "anything")
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestCreate_DuplicateNameRejected(t *testing.T) {
	c, target := newCatalog(t)
	require.NoError(t, c.Create("idx", target))

	err := c.Create("idx", target)

	assert.True(t, errors.IsKind(err, errors.KindAlreadyExists))
}

func TestList_OrderedByName(t *testing.T) {
	c, target := newCatalog(t)
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, c.Create(name, target))
	}

	metas, err := c.List()
	require.NoError(t, err)

	names := make([]string, len(metas))
	for i, m := range metas {
		names[i] = m.IndexName
	}
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, names)
}

func TestErrors_CarryKindPrefixForAdapters(t *testing.T) {
	c, _ := newCatalog(t)

	err := c.Remove("ghost")

	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "NotFound:"))
}

package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stem_dashboard/internal/config"
	"stem_dashboard/internal/model"
	"stem_dashboard/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogBody = `{
  "ordering": ["Math", "CS"],
  "CS": ["CS 1A", "CS 1B"],
  "Math": ["MATH 1A", "MATH 1B", "MATH 1C"]
}`

func sampleCatalog() model.CourseCatalog {
	return model.CourseCatalog{
		Ordering: []string{"Math", "CS"},
		CoursesBySubject: map[string][]string{
			"Math": {"MATH 1A", "MATH 1B", "MATH 1C"},
			"CS":   {"CS 1A", "CS 1B"},
		},
	}
}

func TestBuildCourseTreeFollowsOrdering(t *testing.T) {
	nodes := BuildCourseTree(sampleCatalog())
	require.Len(t, nodes, 2)

	assert.Equal(t, "Math", nodes[0].Subject)
	assert.Equal(t, "CS", nodes[1].Subject)
	assert.Len(t, nodes[0].Children, 3)
	assert.Equal(t, "MATH 1B", nodes[0].Children[1].Course)
	assert.Equal(t, []model.CourseLeaf{{Course: "CS 1A"}, {Course: "CS 1B"}}, nodes[1].Children)

	for _, n := range nodes {
		assert.False(t, n.Expanded)
		assert.False(t, n.Checked)
		assert.Equal(t, model.ArrowCollapsed, n.Arrow())
	}
}

func TestBuildCourseTreeEmptyCatalog(t *testing.T) {
	assert.Empty(t, BuildCourseTree(model.CourseCatalog{}))
}

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog(strings.NewReader(catalogBody))
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog(), catalog)
}

func TestParseCatalogSubjectWithoutCourses(t *testing.T) {
	catalog, err := ParseCatalog(strings.NewReader(`{"ordering": ["Physics"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{}, catalog.CoursesBySubject["Physics"])

	nodes := BuildCourseTree(catalog)
	require.Len(t, nodes, 1)
	assert.Empty(t, nodes[0].Children)
}

func TestParseCatalogMalformed(t *testing.T) {
	for _, body := range []string{
		`not json`,
		`{"Math": ["MATH 1A"]}`,
		`{"ordering": "Math"}`,
		`{"ordering": ["Math"], "Math": "MATH 1A"}`,
	} {
		_, err := ParseCatalog(strings.NewReader(body))
		assert.True(t, errors.Is(err, util.ErrMalformedCatalog), body)
	}
}

func TestCourseTreeRowClickTogglesExpansion(t *testing.T) {
	tree := NewCourseTree()
	tree.Load(sampleCatalog())

	node, err := tree.Click("Math", model.ClickRow)
	require.NoError(t, err)
	assert.True(t, node.Expanded)
	assert.Equal(t, model.ArrowExpanded, node.Arrow())
	assert.False(t, node.Checked)

	node, err = tree.Click("Math", model.ClickRow)
	require.NoError(t, err)
	assert.False(t, node.Expanded)
	assert.Equal(t, model.ArrowCollapsed, node.Arrow())

	// 其他科目不受影响
	assert.False(t, tree.Nodes()[1].Expanded)
}

func TestCourseTreeCheckboxClickDoesNotToggleExpansion(t *testing.T) {
	tree := NewCourseTree()
	tree.Load(sampleCatalog())

	node, err := tree.Click("CS", model.ClickCheckbox)
	require.NoError(t, err)
	assert.True(t, node.Checked)
	assert.False(t, node.Expanded)

	_, err = tree.Click("CS", model.ClickRow)
	require.NoError(t, err)
	node, err = tree.Click("CS", model.ClickCheckbox)
	require.NoError(t, err)
	assert.False(t, node.Checked)
	assert.True(t, node.Expanded)
}

func TestCourseTreeClickErrors(t *testing.T) {
	tree := NewCourseTree()
	tree.Load(sampleCatalog())

	_, err := tree.Click("Biology", model.ClickRow)
	assert.True(t, errors.Is(err, util.ErrSubjectNotFound))

	_, err = tree.Click("Math", model.ClickTarget("arrow"))
	assert.True(t, errors.Is(err, util.ErrUnknownClickTarget))

	_, err = tree.ClickCourse("Math", "CS 1A")
	assert.True(t, errors.Is(err, util.ErrCourseNotFound))
}

func TestCourseTreeClickCourse(t *testing.T) {
	tree := NewCourseTree()
	tree.Load(sampleCatalog())

	leaf, err := tree.ClickCourse("Math", "MATH 1C")
	require.NoError(t, err)
	assert.True(t, leaf.Checked)

	nodes := tree.Nodes()
	assert.True(t, nodes[0].Children[2].Checked)
	assert.False(t, nodes[0].Checked)
	assert.False(t, nodes[0].Expanded)
}

func TestCourseTreeNodesIsACopy(t *testing.T) {
	tree := NewCourseTree()
	assert.False(t, tree.Loaded())
	tree.Load(sampleCatalog())
	assert.True(t, tree.Loaded())

	nodes := tree.Nodes()
	nodes[0].Expanded = true
	nodes[0].Children[0].Checked = true

	fresh := tree.Nodes()
	assert.False(t, fresh[0].Expanded)
	assert.False(t, fresh[0].Children[0].Checked)
}

func TestCatalogServiceLoadFromLocalStorage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "course_records.json"), []byte(catalogBody), 0o644))

	cfg := &config.Config{
		Catalog: config.CatalogConfig{Source: util.StorageLocal, Object: "course_records.json"},
		Storage: config.StorageConfig{LocalPath: dir},
	}
	storage, err := NewStorageService(cfg)
	require.NoError(t, err)

	tree := NewCourseTree()
	svc := NewCatalogService(storage, cfg.Catalog.Object, tree)
	require.NoError(t, svc.Load(context.Background()))

	nodes := tree.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "Math", nodes[0].Subject)
}

func TestCatalogServiceLoadFromHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/course_records.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(catalogBody))
	}))
	defer server.Close()

	cfg := &config.Config{
		Catalog: config.CatalogConfig{Source: util.StorageHTTP, URL: server.URL + "/course_records.json"},
	}
	storage, err := NewStorageService(cfg)
	require.NoError(t, err)

	tree := NewCourseTree()
	require.NoError(t, NewCatalogService(storage, "", tree).Load(context.Background()))
	assert.True(t, tree.Loaded())

	missing := NewCatalogService(storage, "/nope", NewCourseTree())
	assert.Error(t, missing.Load(context.Background()))
}

func TestBuildCourseTreeSharedCourseNames(t *testing.T) {
	nodes := BuildCourseTree(model.CourseCatalog{
		Ordering: []string{"Math", "CS"},
		CoursesBySubject: map[string][]string{
			"Math": {"1A", "1B"},
			"CS":   {"1A"},
		},
	})
	require.Len(t, nodes, 2)
	assert.Equal(t, "Math", nodes[0].Subject)
	assert.Len(t, nodes[0].Children, 2)
	assert.Equal(t, "CS", nodes[1].Subject)
	assert.Len(t, nodes[1].Children, 1)
	assert.False(t, nodes[0].Expanded || nodes[1].Expanded)
}

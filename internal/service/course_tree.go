package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"stem_dashboard/internal/model"
	"stem_dashboard/internal/util"
	"stem_dashboard/pkg/logger"
	"sync"

	"go.uber.org/zap"
)

const catalogOrderingKey = "ordering"

// ParseCatalog 解析 {ordering: [...], <subject>: [...]} 形式的课程目录。
// ordering 中列出但文档里没有的科目视为没有课程。
func ParseCatalog(r io.Reader) (model.CourseCatalog, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return model.CourseCatalog{}, fmt.Errorf("%w: %v", util.ErrMalformedCatalog, err)
	}

	orderingRaw, ok := raw[catalogOrderingKey]
	if !ok {
		return model.CourseCatalog{}, fmt.Errorf("%w: missing %q", util.ErrMalformedCatalog, catalogOrderingKey)
	}

	var ordering []string
	if err := json.Unmarshal(orderingRaw, &ordering); err != nil {
		return model.CourseCatalog{}, fmt.Errorf("%w: %q: %v", util.ErrMalformedCatalog, catalogOrderingKey, err)
	}

	catalog := model.CourseCatalog{
		Ordering:         ordering,
		CoursesBySubject: make(map[string][]string, len(ordering)),
	}
	for _, subject := range ordering {
		coursesRaw, ok := raw[subject]
		if !ok {
			logger.Log.Warn("Catalog subject has no course list", zap.String("subject", subject))
			catalog.CoursesBySubject[subject] = []string{}
			continue
		}
		var courses []string
		if err := json.Unmarshal(coursesRaw, &courses); err != nil {
			return model.CourseCatalog{}, fmt.Errorf("%w: subject %q: %v", util.ErrMalformedCatalog, subject, err)
		}
		catalog.CoursesBySubject[subject] = courses
	}

	return catalog, nil
}

// BuildCourseTree 按 ordering 顺序生成节点，初始全部折叠、未勾选
func BuildCourseTree(catalog model.CourseCatalog) []model.CourseNode {
	nodes := make([]model.CourseNode, 0, len(catalog.Ordering))
	for _, subject := range catalog.Ordering {
		courses := catalog.CoursesBySubject[subject]
		node := model.CourseNode{
			Subject:  subject,
			Children: make([]model.CourseLeaf, 0, len(courses)),
		}
		for _, course := range courses {
			node.Children = append(node.Children, model.CourseLeaf{Course: course})
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// CourseTree 课程选择树的交互状态。勾选状态不触发任何过滤。
type CourseTree struct {
	mu     sync.RWMutex
	nodes  []model.CourseNode
	index  map[string]int
	loaded bool
}

func NewCourseTree() *CourseTree {
	return &CourseTree{index: map[string]int{}}
}

func (t *CourseTree) Load(catalog model.CourseCatalog) {
	nodes := BuildCourseTree(catalog)
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, dup := index[n.Subject]; !dup {
			index[n.Subject] = i
		}
	}

	t.mu.Lock()
	t.nodes = nodes
	t.index = index
	t.loaded = true
	t.mu.Unlock()
}

func (t *CourseTree) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

func (t *CourseTree) Nodes() []model.CourseNode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.CourseNode, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Click 点击科目行：target 为 row 时切换展开；为 checkbox 时只切换勾选，不影响展开
func (t *CourseTree) Click(subject string, target model.ClickTarget) (model.CourseNode, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.index[subject]
	if !ok {
		return model.CourseNode{}, fmt.Errorf("%w: %q", util.ErrSubjectNotFound, subject)
	}

	switch target {
	case model.ClickRow:
		t.nodes[i].Expanded = !t.nodes[i].Expanded
	case model.ClickCheckbox:
		t.nodes[i].Checked = !t.nodes[i].Checked
	default:
		return model.CourseNode{}, fmt.Errorf("%w: %q", util.ErrUnknownClickTarget, target)
	}
	return t.nodes[i].Clone(), nil
}

func (t *CourseTree) ClickCourse(subject, course string) (model.CourseLeaf, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.index[subject]
	if !ok {
		return model.CourseLeaf{}, fmt.Errorf("%w: %q", util.ErrSubjectNotFound, subject)
	}
	for j := range t.nodes[i].Children {
		leaf := &t.nodes[i].Children[j]
		if leaf.Course == course {
			leaf.Checked = !leaf.Checked
			return *leaf, nil
		}
	}
	return model.CourseLeaf{}, fmt.Errorf("%w: %q in %q", util.ErrCourseNotFound, course, subject)
}

// CatalogService 启动时加载一次课程目录
type CatalogService struct {
	Storage *StorageService
	Name    string
	Tree    *CourseTree
}

func NewCatalogService(storage *StorageService, name string, tree *CourseTree) *CatalogService {
	return &CatalogService{Storage: storage, Name: name, Tree: tree}
}

func (s *CatalogService) Load(ctx context.Context) error {
	rc, err := s.Storage.Open(ctx, s.Name)
	if err != nil {
		return fmt.Errorf("open catalog %s: %w", s.Storage.Describe(s.Name), err)
	}
	defer rc.Close()

	catalog, err := ParseCatalog(rc)
	if err != nil {
		return err
	}
	s.Tree.Load(catalog)

	logger.Log.Info("Course catalog loaded",
		zap.String("source", s.Storage.Describe(s.Name)),
		zap.Int("subjects", len(catalog.Ordering)))
	return nil
}

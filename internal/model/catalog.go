package model

// CourseCatalog 课程目录，加载后只读
type CourseCatalog struct {
	Ordering         []string            `json:"ordering"`
	CoursesBySubject map[string][]string `json:"coursesBySubject"`
}

// ClickTarget 区分点击的是科目行本身还是行内的复选框
type ClickTarget string

const (
	ClickRow      ClickTarget = "row"
	ClickCheckbox ClickTarget = "checkbox"
)

const (
	ArrowCollapsed = "▶"
	ArrowExpanded  = "▼"
)

type CourseLeaf struct {
	Course  string `json:"course"`
	Checked bool   `json:"checked"`
}

type CourseNode struct {
	Subject  string       `json:"subject"`
	Checked  bool         `json:"checked"`
	Expanded bool         `json:"expanded"`
	Children []CourseLeaf `json:"children"`
}

func (n CourseNode) Arrow() string {
	if n.Expanded {
		return ArrowExpanded
	}
	return ArrowCollapsed
}

func (n CourseNode) Clone() CourseNode {
	c := n
	c.Children = make([]CourseLeaf, len(n.Children))
	copy(c.Children, n.Children)
	return c
}

package app

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"stem_dashboard/docs"
	"stem_dashboard/internal/controller"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pathParam = regexp.MustCompile(`:(\w+)`)

// API 路由都应出现在 swagger 文档中（websocket 除外）
func TestSwaggerDocCoversAPIRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	a := &App{}
	a.registerRoutes(router, &controllers{
		dashboard: &controller.DashboardController{},
		course:    &controller.CourseController{},
		health:    &controller.HealthController{},
	})

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	for _, r := range router.Routes() {
		if !strings.HasPrefix(r.Path, "/api/") || r.Path == "/api/ws" {
			continue
		}
		path := pathParam.ReplaceAllString(r.Path, "{$1}")
		methods, ok := doc.Paths[path]
		if !assert.True(t, ok, "missing path %s", path) {
			continue
		}
		_, ok = methods[strings.ToLower(r.Method)]
		assert.True(t, ok, "missing %s %s", r.Method, path)
	}
	assert.Contains(t, doc.Paths, "/api/range/{kind}")
	assert.NotContains(t, doc.Paths["/api/range/{kind}"], strings.ToLower(http.MethodGet))
}

// Package docs 注册 /swagger 使用的 OpenAPI 文档，内容与 controller 中的 swag 注释保持一致。
// 修改注释后执行 `go generate` (swag init) 重新生成本文件。
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/charts/{name}": {
            "get": {
                "produces": ["image/svg+xml"],
                "tags": ["仪表盘"],
                "summary": "图表 SVG",
                "parameters": [
                    {"enum": ["demand.svg", "wait_time.svg"], "type": "string", "description": "图表名", "name": "name", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/courses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["课程"],
                "summary": "课程选择树",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}}
            }
        },
        "/api/courses/click": {
            "post": {
                "description": "target=row 切换展开；target=checkbox 只切换勾选。带 course 时切换课程勾选。",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["课程"],
                "summary": "点击课程树",
                "parameters": [
                    {"description": "点击目标", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.clickRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}}
            }
        },
        "/api/export.xlsx": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["仪表盘"],
                "summary": "导出当前图表数据",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/health": {
            "get": {
                "description": "检查服务状态",
                "produces": ["application/json"],
                "tags": ["系统"],
                "summary": "健康检查",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}}
            }
        },
        "/api/layout": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["仪表盘"],
                "summary": "上报热力图父容器宽度",
                "parameters": [
                    {"description": "父容器宽度(px)", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.layoutRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}}
            }
        },
        "/api/range/{kind}": {
            "post": {
                "description": "选择 day/week/quarter 并异步请求统计数据，结果通过 /api/ws 推送",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["仪表盘"],
                "summary": "切换时间范围",
                "parameters": [
                    {"enum": ["day", "week", "quarter"], "type": "string", "description": "时间范围", "name": "kind", "in": "path", "required": true},
                    {"description": "取值与显示标签", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.selectRangeRequest"}}
                ],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/util.Response"}}}
            }
        },
        "/api/view": {
            "get": {
                "description": "当前选择的时间范围、两个图表的数据、错误提示与热力图尺寸",
                "produces": ["application/json"],
                "tags": ["仪表盘"],
                "summary": "获取当前视图",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}}
            }
        }
    },
    "definitions": {
        "controller.clickRequest": {
            "type": "object",
            "required": ["subject", "target"],
            "properties": {
                "course": {"type": "string"},
                "subject": {"type": "string"},
                "target": {"type": "string", "enum": ["row", "checkbox"]}
            }
        },
        "controller.layoutRequest": {
            "type": "object",
            "required": ["parent_width"],
            "properties": {
                "parent_width": {"type": "integer"}
            }
        },
        "controller.selectRangeRequest": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "value": {"type": "string"}
            }
        },
        "util.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "STEM Center Analytics Dashboard API",
	Description:      "教学辅导中心统计仪表盘",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

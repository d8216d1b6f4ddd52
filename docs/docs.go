// Package docs はsitetrack APIのSwaggerドキュメントを提供する。
// /swagger/doc.json はhttp-swaggerがこのパッケージの登録内容を配信する。
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
    "securityDefinitions": {
        "token": {
            "type": "apiKey",
            "name": "x-auth-token",
            "in": "header"
        }
    },
    "paths": {
        "/api/auth": {
            "post": {
                "tags": ["auth"],
                "summary": "ログイン",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponseBody"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/middleware.ErrorResponseBody"}}
                }
            }
        },
        "/api/sites": {
            "get": {
                "security": [{"token": []}],
                "tags": ["sites"],
                "summary": "全サイトの訪問集計（管理者のみ）",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.siteListResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/middleware.ErrorResponseBody"}}
                }
            },
            "post": {
                "security": [{"token": []}],
                "tags": ["sites"],
                "summary": "訪問の記録",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.recordVisitRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/middleware.ErrorResponseBody"}}
                }
            },
            "patch": {
                "security": [{"token": []}],
                "tags": ["sites"],
                "summary": "訪問の終了",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.closeVisitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponseBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponseBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ErrorResponseBody"}}
                }
            }
        },
        "/api/sites/me": {
            "get": {
                "security": [{"token": []}],
                "tags": ["sites"],
                "summary": "ログインユーザーの訪問記録",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userSiteListResponse"}}
                }
            }
        },
        "/api/sites/{id}": {
            "get": {
                "security": [{"token": []}],
                "tags": ["sites"],
                "summary": "指定ユーザーの訪問記録（管理者のみ）",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true, "description": "ユーザーID"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userSiteListResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/middleware.ErrorResponseBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 4, "maxLength": 32}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "integer"},
                "accessToken": {"type": "string"}
            }
        },
        "handler.recordVisitRequest": {
            "type": "object",
            "required": ["url", "startTime"],
            "properties": {
                "url": {"type": "string"},
                "startTime": {"type": "string", "format": "date-time"},
                "endTime": {"type": "string", "format": "date-time"}
            }
        },
        "handler.closeVisitRequest": {
            "type": "object",
            "required": ["url", "recordID", "endTime"],
            "properties": {
                "url": {"type": "string"},
                "recordID": {"type": "string"},
                "endTime": {"type": "string", "format": "date-time"}
            }
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "integer"},
                "message": {"type": "string"},
                "recordID": {"type": "string"}
            }
        },
        "handler.openSessionResponse": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "startTime": {"type": "string", "format": "date-time"}
            }
        },
        "handler.userSiteResponse": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "visits": {"type": "integer"},
                "time": {"type": "integer"},
                "timestamps": {"type": "array", "items": {"$ref": "#/definitions/handler.openSessionResponse"}}
            }
        },
        "handler.userSiteListResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "integer"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/handler.userSiteResponse"}}
            }
        },
        "handler.occurrenceResponse": {
            "type": "object",
            "properties": {
                "user": {"type": "string"},
                "visits": {"type": "integer"},
                "time": {"type": "integer"},
                "timestamps": {"type": "array", "items": {"$ref": "#/definitions/handler.openSessionResponse"}}
            }
        },
        "handler.siteResponse": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "url": {"type": "string"},
                "totalVisits": {"type": "integer"},
                "totalTime": {"type": "integer"},
                "occurrences": {"type": "array", "items": {"$ref": "#/definitions/handler.occurrenceResponse"}},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "handler.siteListResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "integer"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/handler.siteResponse"}}
            }
        },
        "middleware.ErrorItem": {
            "type": "object",
            "properties": {
                "param": {"type": "string"},
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "middleware.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "status": {"type": "integer"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/middleware.ErrorItem"}}
            }
        }
    }
}`

// SwaggerInfo はAPIドキュメントのメタ情報を保持する。
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "sitetrack API",
	Description:      "ユーザーごとのサイト訪問回数と滞在時間を記録・集計するAPI。",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

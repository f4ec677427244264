// Package docs holds the OpenAPI document of the fotowand API.
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
        "/api/v1/auth": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.UserEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/model.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/auth/token": {
            "post": {
                "description": "Consumes the refresh token and returns a new token pair.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Refresh access token",
                "parameters": [
                    {"description": "Refresh token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Email and password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/auth/changePassword": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Change password",
                "parameters": [
                    {"description": "Current credentials and new password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ChangePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/auth/createAccount": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create account",
                "parameters": [
                    {"description": "Username, email and password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CreateAccountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/auth/logout": {
            "get": {
                "description": "Revokes the refresh token if one is given. Always succeeds.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "parameters": [
                    {"type": "string", "description": "Refresh token to revoke", "name": "refreshToken", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/auth/permission": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get permission of the caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.PermissionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/book": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["book"],
                "summary": "List books",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.BookListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        }
    },
    "definitions": {
        "model.Book": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "pages": {"type": "integer"},
                "year": {"type": "integer"},
                "imageUrl": {"type": "string"},
                "favorite": {"type": "boolean"}
            }
        },
        "model.BookListResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.Book"}}
            }
        },
        "model.ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "oldPassword": {"type": "string"},
                "newPassword1": {"type": "string"}
            }
        },
        "model.CreateAccountRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password1": {"type": "string"}
            }
        },
        "model.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "model.Permission": {
            "type": "object",
            "properties": {
                "permission": {"type": "boolean"}
            }
        },
        "model.PermissionResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/model.Permission"}
            }
        },
        "model.RefreshRequest": {
            "type": "object",
            "properties": {
                "refreshToken": {"type": "string"}
            }
        },
        "model.Response": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {}
            }
        },
        "model.TokenPair": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "refreshToken": {"type": "string"}
            }
        },
        "model.TokenResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/model.TokenPair"}
            }
        },
        "model.UserEnvelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/model.UserResponse"}
            }
        },
        "model.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "email": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "fotowand API",
	Description:      "Library backend with access/refresh token authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

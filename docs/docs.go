// Package docs holds the OpenAPI description served under /swagger.
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/cars": {
            "get": {
                "tags": ["cars"],
                "summary": "Search approved cars",
                "parameters": [
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "brand", "in": "query"},
                    {"type": "string", "name": "location", "in": "query"},
                    {"type": "number", "name": "minPrice", "in": "query"},
                    {"type": "number", "name": "maxPrice", "in": "query"},
                    {"type": "integer", "name": "minYear", "in": "query"},
                    {"type": "integer", "name": "maxYear", "in": "query"},
                    {"type": "integer", "name": "minMileage", "in": "query"},
                    {"type": "integer", "name": "maxMileage", "in": "query"},
                    {"type": "string", "name": "bodyTypes", "in": "query"},
                    {"type": "string", "name": "transmissions", "in": "query"},
                    {"type": "string", "name": "fuelTypes", "in": "query"},
                    {"type": "string", "name": "driveTypes", "in": "query"},
                    {"type": "string", "name": "conditions", "in": "query"},
                    {"type": "string", "enum": ["priceLowHigh", "priceHighLow", "yearNewOld", "yearOldNew"], "name": "sort", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/search.Result"}},
                    "500": {"description": "SEARCH_FAILED", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/cars/{id}": {
            "get": {
                "tags": ["cars"],
                "summary": "Get one approved car",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "CAR_NOT_FOUND", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/cars/submit": {
            "post": {
                "tags": ["cars"],
                "summary": "Submit a listing for moderation",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "VALIDATION_ERROR", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "413": {"description": "UPLOAD_TOO_LARGE", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {"tags": ["auth"], "summary": "Create a member account", "responses": {"200": {"description": "OK"}, "409": {"description": "EMAIL_EXISTS"}}}
        },
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Start a member session", "responses": {"200": {"description": "OK"}, "401": {"description": "INVALID_CREDENTIALS"}}}
        },
        "/price-alerts": {
            "post": {"tags": ["alerts"], "summary": "Watch a car for a price drop", "responses": {"200": {"description": "OK"}, "404": {"description": "CAR_NOT_FOUND"}}}
        },
        "/admin/login": {
            "post": {"tags": ["admin"], "summary": "Exchange the admin secret for a token", "responses": {"200": {"description": "OK"}, "403": {"description": "INVALID_ADMIN_TOKEN"}}}
        },
        "/admin/cars": {
            "get": {"tags": ["admin"], "summary": "Search all cars", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/search.Result"}}}},
            "post": {"tags": ["admin"], "summary": "Create an approved listing", "security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "responses": {"201": {"description": "Created"}}}
        },
        "/admin/dashboard/stats": {
            "get": {"tags": ["admin"], "summary": "Inventory and engagement overview", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "details": {}
            }
        },
        "search.Pagination": {
            "type": "object",
            "properties": {
                "currentPage": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "totalCars": {"type": "integer"},
                "hasNext": {"type": "boolean"},
                "hasPrev": {"type": "boolean"}
            }
        },
        "search.Result": {
            "type": "object",
            "properties": {
                "cars": {"type": "array", "items": {"type": "object"}},
                "pagination": {"$ref": "#/definitions/search.Pagination"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Exi Dealers Marketplace API",
	Description:      "Car listings, member engagement and moderation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

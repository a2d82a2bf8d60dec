// Package docs registra la especificación OpenAPI que sirve /swagger.
// Se mantiene a mano (solo paths, sin definitions); regenerar con
// `swag init` cuando las anotaciones de los handlers lo ameriten.
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
        "/vaccines": {
            "get": {
                "produces": ["application/json"],
                "tags": ["vaccines"],
                "summary": "Listar el catálogo de vacunas",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/vaccines/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["vaccines"],
                "summary": "Consultar una vacuna del catálogo",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/profiles": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Listar mis perfiles",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Crear un perfil",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/profiles/import": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Importar un perfil",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/profiles/{profileID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Consultar un perfil",
                "parameters": [
                    {"type": "string", "name": "profileID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Renombrar un perfil",
                "parameters": [
                    {"type": "string", "name": "profileID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "tags": ["profiles"],
                "summary": "Borrar un perfil",
                "parameters": [
                    {"type": "string", "name": "profileID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/profiles/{profileID}/plan": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Actualizar el plan de vacunación",
                "parameters": [
                    {"type": "string", "name": "profileID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/profiles/{profileID}/schedule": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Calcular el plan de citas",
                "parameters": [
                    {"type": "string", "name": "profileID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/profiles/{profileID}/export": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Exportar un perfil",
                "parameters": [
                    {"type": "string", "name": "profileID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/profiles/{profileID}/records": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Registrar una aplicación recibida",
                "parameters": [
                    {"type": "string", "name": "profileID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/profiles/{profileID}/records/{recordID}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Borrar un registro del historial",
                "parameters": [
                    {"type": "string", "name": "profileID", "in": "path", "required": true},
                    {"type": "string", "name": "recordID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/profiles/{profileID}/grants": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sharing"],
                "summary": "Listar delegaciones de un perfil",
                "parameters": [
                    {"type": "string", "name": "profileID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sharing"],
                "summary": "Invitar un delegado",
                "parameters": [
                    {"type": "string", "name": "profileID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/grants/{grantID}/accept": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sharing"],
                "summary": "Aceptar una invitación",
                "parameters": [
                    {"type": "string", "name": "grantID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/grants/{grantID}/revoke": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sharing"],
                "summary": "Revocar una delegación",
                "parameters": [
                    {"type": "string", "name": "grantID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/me/grants": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sharing"],
                "summary": "Listar mis delegaciones recibidas",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Vaccine Planner API",
	Description:      "Planificador de citas de vacunación: catálogo, perfiles con historial y delegación de acceso.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

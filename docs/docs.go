// Package docs registra la especificación OpenAPI de la API en swag.
// La UI se sirve en /docs desde cmd/api.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var swaggerJSON string

// SwaggerInfo datos de la especificación expuesta.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Title:            "API Inventario",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  swaggerJSON,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// JSON devuelve el documento registrado.
func JSON() []byte {
	return []byte(SwaggerInfo.ReadDoc())
}

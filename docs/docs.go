// Package docs holds the OpenAPI description served by the API.
package docs

// Info describes the API for documentation tooling.
type Info struct {
	Title           string
	Description     string
	Version         string
	BasePath        string
	SwaggerTemplate string
}

// SwaggerInfo is the API description. The template carries the static
// document skeleton; the endpoint doc comments carry the per-route details.
var SwaggerInfo = &Info{
	Title:       "Clinic Booking API",
	Description: "Medical-office appointment booking backend: patients, doctors, specialties, and slot reservations.",
	Version:     "1.0",
	BasePath:    "/",
	SwaggerTemplate: `{
    "swagger": "2.0",
    "info": {
        "title": "Clinic Booking API",
        "description": "Medical-office appointment booking backend.",
        "version": "1.0"
    },
    "basePath": "/",
    "paths": {}
}`,
}

// Package docs provides Swagger documentation for the API.
package docs

// @title Arc Wardens Outreach API
// @version 1.0
// @description Campaign automation backend for sales outreach

// @contact.name API Support
// @contact.email support@arcwardens.app

// @host localhost:8080
// @BasePath /
// @schemes http https

// Package docs provides generated OpenAPI documentation.
//
// RaybanAI API
//
//	@title			RaybanAI API
//	@version		1.0
//	@description	Image analysis relay API: submit an image reference and get back a vision model analysis.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/raybanai/raybanai
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:3103
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/raybanai/serve.go -o ./swagger --parseDependency --parseInternal

// Package routes cung cấp tất cả routing functions cho UGD Resolver Service
//
// Cấu trúc:
// - api.go: API routes (/v1/tax-offices/*, /v1/admin/*), health, metrics
// - web.go: Web routes (/, /docs)
//
// Sử dụng:
// routes.SetupAllRoutes(router, resolverController, adminController, metrics)
package routes

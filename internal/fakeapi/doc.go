// Package fakeapi is an in-memory stand-in for the public product catalog
// REST API. It backs the fakecatalog binary and the integration tests of the
// catalog client and store.
//
// Routes:
//
//	GET    /products
//	POST   /products
//	GET    /products/categories
//	GET    /products/category/{category}
//	GET    /products/{id}
//	PUT    /products/{id}
//	DELETE /products/{id}
//
// Unlike the public service, writes are applied, so a subsequent list reflects
// them. Errors are returned as {"error", "details", "request_id"} JSON bodies.
package fakeapi

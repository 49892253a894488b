// Package web exposes the workforce services as a JSON REST API.
//
// Every entity is served by a Resource mounted under /api/<resource>:
//
//	POST   /api/countries        create, 201 with a Location header
//	GET    /api/countries        list, optionally sorted with sort=prop,dir
//	GET    /api/countries/{id}   fetch one, 404 when unknown
//	PUT    /api/countries        overwrite, the body must carry the id
//	DELETE /api/countries/{id}   delete, always 204
//
// Paginated resources accept page and size and answer with X-Total-Count and
// Link headers. Mutations carry X-workforceApp-alert and X-workforceApp-params
// headers, rejected requests carry X-workforceApp-error.
//
// The management endpoints /management/health and /management/prometheus
// report database health and Prometheus metrics.
package web

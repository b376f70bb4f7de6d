// Package response provides handler.Response constructors and error handlers.
//
// # Responses
//
//	response.JSON(v)                          // 200 application/json
//	response.JSONWithStatus(v, http.StatusOK) // explicit status, 204/304 omit the body
//	response.String("welcome")                // 200 text/plain
//	response.Status(http.StatusAccepted)      // empty body
//	response.NoStore(response.JSON(v))        // Cache-Control: no-store
//	response.Error(err)                       // hand err to the router error handler
//
// # Errors
//
// HTTPError carries a status, a machine-readable code, a message and optional
// details. It implements StatusCode() so the router can render it:
//
//	return response.Error(response.ErrNotFound.WithMessage("session not found"))
//
// JSONErrorHandler renders any error as
//
//	{"code":"not_found","message":"session not found","details":{...}}
//
// Errors that are not HTTPError values are mapped by their StatusCode() method
// when they have one, otherwise they become 500. The text of a wrapped cause is
// exposed in details only for 4xx errors.
package response

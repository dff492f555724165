package utils

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// ParamFromRequest retrieves a named httprouter path parameter from the
// request context.
func ParamFromRequest(r *http.Request, name string) string {
	params := httprouter.ParamsFromContext(r.Context())
	return params.ByName(name)
}

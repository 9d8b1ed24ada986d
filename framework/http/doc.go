// Package http provides request and JSON response helpers for handlers
// running behind routing.ScopePerRequest.
//
//	func show(w http.ResponseWriter, r *http.Request) {
//	    req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
//	    uow, err := req.Resolve("uow")
//	    if err != nil {
//	        res.ResolutionError(err)
//	        return
//	    }
//	    res.Success(uow)
//	}
package http

package adapter

import "github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"

// Request is the in-memory stand-in for a framework's inbound HTTP
// request, carrying exactly the fields toStepRequest needs to expose
// (spec §6).
type Request struct {
	Method  string
	Path    string
	BaseURL string
	Post    evaluator.RequestValues
	Query   evaluator.RequestValues
	Params  evaluator.RequestValues
	Session map[string]any
	State   map[string]any
}

// ToStepRequest adapts req into the evaluator's RequestData shape (spec
// §6, "toStepRequest(req) → {method, path, post, query, params, session?,
// state?}"). Method and Path aren't part of RequestData — the lifecycle
// controller only needs the request's value bags — so they round-trip
// through Request itself rather than the adapted struct.
func ToStepRequest(req *Request) evaluator.RequestData {
	return evaluator.RequestData{
		Post:    req.Post,
		Query:   req.Query,
		Params:  req.Params,
		Session: req.Session,
		State:   req.State,
	}
}

// GetBaseURL returns the request's base URL (spec §6, "getBaseUrl(req)"),
// used by redirect targets a journey builds relative to the mount point.
func GetBaseURL(req *Request) string { return req.BaseURL }

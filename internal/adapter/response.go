package adapter

// Response is the in-memory stand-in for a framework's outbound HTTP
// response (spec §6's "toStepResponse(res) → opaque handle"): the
// lifecycle controller's caller writes exactly one of Redirect or Render
// to it, then a test reads the result back directly rather than through a
// real response writer.
type Response struct {
	StatusCode int

	Redirected  bool
	RedirectURL string

	Rendered map[string]any
}

// ToStepResponse returns res as the opaque handle a handler is passed
// (spec §6); in-memory, the handle is just the struct itself.
func ToStepResponse(res *Response) any { return res }

// Redirect marks res as a 303 redirect to url (spec §6, "redirect(res,
// url)").
func Redirect(res *Response, url string) {
	res.Redirected = true
	res.RedirectURL = url
	res.StatusCode = 303
}

// Render marks res as a 200 carrying renderContext (spec §6, "render(
// renderContext, req, res)"). req is accepted for interface-shape parity
// with the spec's signature; this in-memory adapter has no templating
// layer to feed it to.
func Render(res *Response, renderContext map[string]any, _ *Request) {
	res.Rendered = renderContext
	res.StatusCode = 200
}

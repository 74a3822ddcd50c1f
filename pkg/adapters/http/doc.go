/*
Package http exposes forms as wallet-style actions over HTTP.

Routes (base path defaults to /api/actions/forms):

	GET  /actions.json                   action rules mapping /forms/* to the API
	GET  /health                         liveness
	GET  /metrics                        Prometheus metrics, when configured
	GET  {base}/{formID}?account=...     render the participant's current step
	POST {base}/{formID}                 submit an answer: {"account": "...", "input": "..."}
	POST {base}/{formID}/complete        completion descriptor
	GET  /api/forms/{formID}             the stored form document

Submissions may also carry the answer in the choice query parameter, which is what
the hrefs of choice actions encode.
*/
package http

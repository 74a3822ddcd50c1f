// Package mcp exposes form flows to Model Context Protocol clients.
//
// Tools:
//
//	render_form  form_id, account?          current step of a participant
//	submit_form  form_id, account, input?   answer the current step
//	get_form     form_id                    stored form definition
//
// The formflow://forms resource lists the stored form identifiers.
package mcp

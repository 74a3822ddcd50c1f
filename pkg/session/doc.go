/*
Package session tracks where each participant is in each form.

A position is a single JSON document, {"currentNodeId": "..."}, kept under
session:{formId}:{participantId} in an expiring key-value store. Reads are
forgiving: a missing, expired or malformed record means the participant starts
over at the entry node. Store failures are never papered over.
*/
package session

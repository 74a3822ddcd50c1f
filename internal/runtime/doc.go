// Package runtime interprets form graphs: it navigates a schema, validates
// answers, renders action descriptors and orchestrates one request at a time.
package runtime

/*
Package formflow interprets user-authored form graphs for remote participants.

A form is a directed graph of typed nodes (start, input, choice, end and extension kinds)
drawn in a visual editor. formflow tracks where each participant stands in that graph
across independent, stateless requests, validates their answers, moves them along the
first outgoing edge, and describes the current step as an action descriptor: icon, title,
description, label and the links a client can follow next.

# Concept

The engine holds no per-participant state. Every request loads the form from a
SchemaLoader and the participant's position from a key-value store, so any number of
engine instances can serve the same participants. Positions expire after a TTL.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/formflow"
		"github.com/aretw0/formflow/pkg/adapters/memory"
		"github.com/aretw0/formflow/pkg/domain"
	)

	func main() {
		repo, err := memory.NewRepositoryFromJSON(map[string]string{"contact": contactJSON})
		if err != nil {
			log.Fatal(err)
		}

		eng, err := formflow.New(repo, formflow.WithIcon("https://example.com/icon.png"))
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		name := "Ana"
		resp, err := eng.Handle(ctx, domain.Request{
			FormID:        "contact",
			ParticipantID: "wallet-1",
			Submit:        true,
			Input:         &name,
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(resp.State, resp.Descriptor.Title)
	}

Adapters expose the same engine over HTTP (pkg/adapters/http) and MCP (pkg/adapters/mcp);
positions can live in memory or Redis (pkg/adapters/redis) and forms in SQLite, a blob
bucket or memory.
*/
package formflow
